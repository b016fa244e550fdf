package dockerutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(V1, V0))
	assert.True(t, Allowed(V1, V1))
	assert.False(t, Allowed(V1, V2))
	assert.True(t, Allowed(V3, V3))
	assert.False(t, Allowed(V0, V1))
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "[v1]", Prefix(V1, ""))
	assert.Equal(t, "[v2][HOST]", Prefix(V2, "HOST"))
	// brackets in the scope are normalized away
	assert.Equal(t, "[v0][CTR]", Prefix(V0, "[CTR]"))
}

func TestPrefixWriterPrependsEachLine(t *testing.T) {
	var buf bytes.Buffer
	pw := &prefixWriter{lvl: V2, scope: "BUILD", w: &buf}
	_, err := pw.Write([]byte("one\ntwo\n"))
	assert.NoError(t, err)
	assert.Equal(t, "[v2][BUILD] one\n[v2][BUILD] two\n", buf.String())
}

func TestPrefixWriterPassesThroughPartialLines(t *testing.T) {
	var buf bytes.Buffer
	pw := &prefixWriter{lvl: V1, w: &buf}
	_, err := pw.Write([]byte("no newline"))
	assert.NoError(t, err)
	assert.Equal(t, "no newline", buf.String())
}
