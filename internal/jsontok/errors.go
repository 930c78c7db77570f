package jsontok

import "fmt"

// SyntaxError is raised when the input byte stream does not form
// well-formed JSON (subject to the leniency Options allow).
type SyntaxError struct {
	Msg string
	Pos int64
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("json syntax error at byte %d: %s", e.Pos, e.Msg)
}

// Verbose renders the error either with or without the byte offset,
// matching the tokenizer contract's verbose_error switch.
func (e *SyntaxError) Verbose(verbose bool) string {
	if verbose {
		return e.Error()
	}
	return e.Msg
}
