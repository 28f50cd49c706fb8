// Package bessy compiles and runs bessy source in one call on a fresh VM.
// cmd/bessy does not use it: its file runner and REPL drive
// internal/compiler and internal/vm directly.
package bessy

import (
	"io"

	"github.com/veera-sivarajan/bessy/internal/compiler"
	"github.com/veera-sivarajan/bessy/internal/vm"
)

// Evaluate compiles source and, on success, runs it against out. Any lex,
// compile, or runtime error is returned unchanged — callers print
// err.Error() verbatim as the single diagnostic line. Each call gets a
// fresh VM; a caller that wants globals to persist across
// calls (a REPL) should drive internal/compiler and internal/vm directly
// instead of calling Evaluate.
func Evaluate(source string, out io.Writer) error {
	ch, err := compiler.Compile(source)
	if err != nil {
		return err
	}
	return vm.New().Run(ch, out)
}
