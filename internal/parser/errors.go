package parser

import "fmt"

// ErrorKind discriminates the two error kinds this package can raise,
// mirroring the teacher's dsl.SyntaxError{Kind, Message} shape.
type ErrorKind int

const (
	LexicalError ErrorKind = iota
	SyntaxErrorKind
)

func (k ErrorKind) String() string {
	if k == LexicalError {
		return "LexicalError"
	}
	return "SyntaxError"
}

// Error reports a lexical or grammar-level failure with a precise source
// location (§4.1, §4.2 failure modes).
type Error struct {
	Kind    ErrorKind
	Message string
	File    string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Line, e.Column, e.Kind, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s: %s", e.Line, e.Column, e.Kind, e.Message)
}
