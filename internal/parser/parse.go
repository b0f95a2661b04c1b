package parser

import (
	"errors"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Parse runs the grammar parser over src and returns the concrete parse
// tree. filename is attached to diagnostics and to every node's Position;
// it may be empty for in-memory content without a path.
//
// Any failure — lexical or grammatical — comes back as *Error, never a
// partial tree, per §4.2's failure mode: "On parse error, no AST is
// returned."
func Parse(filename, src string) (*File, error) {
	tree, err := Parser.ParseString(filename, src)
	if err != nil {
		return nil, toError(err)
	}
	return tree, nil
}

func toError(err error) error {
	var perr participle.Error
	if errors.As(err, &perr) {
		pos := perr.Position()
		return &Error{
			Kind:    classify(perr),
			Message: perr.Message(),
			File:    pos.Filename,
			Line:    pos.Line,
			Column:  pos.Column,
		}
	}
	return &Error{Kind: SyntaxErrorKind, Message: err.Error()}
}

// classify distinguishes lexical failures (ill-formed tokens: unterminated
// strings, bad escapes) from grammatical ones.
func classify(perr participle.Error) ErrorKind {
	var le *lexer.Error
	if errors.As(error(perr), &le) {
		return LexicalError
	}
	return SyntaxErrorKind
}
