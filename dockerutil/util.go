package dockerutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Verb represents intrinsic verbosity level v0..v3.
type Verb int

const (
	V0 Verb = 0 // critical/summary
	V1 Verb = 1 // default lifecycle
	V2 Verb = 2 // verbose
	V3 Verb = 3 // very verbose / trace
)

// Allowed reports whether a message at level lvl is printed under the
// selected verbosity.
func Allowed(selected, lvl Verb) bool { return lvl <= selected }

// Prefix builds a canonical prefix string: "[vN][SCOPE]".
// Scope may be "" (omitted) to yield "[vN]".
func Prefix(lvl Verb, scope string) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "[v%d]", int(lvl))
	if scope != "" {
		fmt.Fprintf(b, "[%s]", strings.Trim(scope, "[]"))
	}
	return b.String()
}

// prefixWriter prepends a computed prefix to each line of output. Used to
// colorize and prefix Docker build/run output in verbose mode.
type prefixWriter struct {
	lvl   Verb
	scope string // e.g. "HOST" or ""
	w     io.Writer
	col   *color.Color
}

func (pw *prefixWriter) Write(p []byte) (n int, err error) {
	s := string(p)
	// Simple case: if no newline, just write the bytes unmodified
	if !strings.Contains(s, "\n") {
		return pw.w.Write(p)
	}

	pfx := Prefix(pw.lvl, pw.scope)
	// Split lines and prepend prefix
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for _, line := range lines {
		if pw.col != nil {
			fmt.Fprintf(pw.w, "%s %s\n", pw.col.Sprint(pfx), line)
		} else {
			fmt.Fprintf(pw.w, "%s %s\n", pfx, line)
		}
	}
	return len(p), nil
}
