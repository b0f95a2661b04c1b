package ast

// DefaultKind discriminates the Default sum type (§3.2, §4.4.3 default
// validation).
type DefaultKind int

const (
	// DefaultNone means no default was written; it is distinct from
	// DefaultNothing, which is the explicit `= nothing` spelling.
	DefaultNone DefaultKind = iota
	DefaultNothing
	DefaultBool
	DefaultInteger
	DefaultFloat
	DefaultString
	DefaultEnumConstant
)

// Default is the flat sum type for a field's `= value` clause. Kind tracks
// the literal's own syntax, not the field's declared type: `1` is always
// DefaultInteger and `1.0` is always DefaultFloat, regardless of which
// field they default. A float-typed field may legally carry a
// DefaultInteger default (§4.4.3: "Float types accept Default.Float or
// Default.Integer") — that leniency is validation's job, not something the
// AST builder decides by inspecting the field's type.
type Default struct {
	Kind DefaultKind
	Pos  Position

	Bool    bool
	Integer int64
	Float   float64
	String  string

	// EnumConstantName is the as-written name for DefaultEnumConstant;
	// EnumConstant is filled in once the resolver has matched it against
	// the field's enum declaration.
	EnumConstantName string
	EnumConstant     *EnumConstant
}

// Equal reports whether two defaults carry the same value. A DefaultFloat
// of 1.0 and a DefaultInteger of 1 are NOT equal: Kind reflects the
// literal's own syntax, so the two can only agree by being the same kind
// with the same payload.
func (d *Default) Equal(o *Default) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Kind != o.Kind {
		return false
	}
	switch d.Kind {
	case DefaultNone, DefaultNothing:
		return true
	case DefaultBool:
		return d.Bool == o.Bool
	case DefaultInteger:
		return d.Integer == o.Integer
	case DefaultFloat:
		return d.Float == o.Float
	case DefaultString:
		return d.String == o.String
	case DefaultEnumConstant:
		return d.EnumConstantName == o.EnumConstantName
	}
	return false
}

// IsExplicit reports whether a default was written in source at all.
func (d *Default) IsExplicit() bool {
	return d != nil && d.Kind != DefaultNone
}
