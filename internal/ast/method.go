package ast

// MethodTypeKind discriminates a service method's input or result type
// (§3.1): Void (nothing passed), Unary (a single struct), or Streaming (a
// stream of the struct).
type MethodTypeKind int

const (
	MethodTypeVoid MethodTypeKind = iota
	MethodTypeUnary
	MethodTypeStreaming
)

// MethodType is the flat sum type for a method's input/result slot.
type MethodType struct {
	Kind MethodTypeKind
	Type *Type // populated for MethodTypeUnary and MethodTypeStreaming
	Pos  Position
}

// MethodKind distinguishes a request/response method from an event
// (fire-and-forget, no result) method (§3.1).
type MethodKind int

const (
	MethodRequestResponse MethodKind = iota
	MethodEvent
)

// Method is one member of a service declaration (§3.1). Service method
// signatures do not participate in the ordinal-based wire compatibility
// model that fields do (§4.5.5): services are compared by name and by
// input/result type only.
type Method struct {
	Kind       MethodKind
	Name       string
	Input      *MethodType
	Result     *MethodType // Kind is always MethodTypeVoid for MethodEvent
	Attributes []*Attribute
	Pos        Position
}
