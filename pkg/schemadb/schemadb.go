// Package schemadb describes the read-only schema database the binding
// engine consumes: a catalogue of type definitions (kind, layout, size,
// display hints) keyed by stable type ids. The engine never computes
// layout itself; offsets and sizes always come from here.
package schemadb

// TypeID selects one schema-defined type from a database. Zero is never a
// valid id.
type TypeID uint32

// ElemKind classifies the storage of a schema type.
type ElemKind uint8

const (
	KindNone ElemKind = iota
	KindBinary
	KindSignedInt
	KindUnsignedInt
	KindFloat
	KindArray
	KindContainer
)

func (k ElemKind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	case KindSignedInt:
		return "int"
	case KindUnsignedInt:
		return "uint"
	case KindFloat:
		return "float"
	case KindArray:
		return "array"
	case KindContainer:
		return "container"
	default:
		return "none"
	}
}

// DisplayHint indicates how a scalar should be rendered and parsed.
type DisplayHint uint8

const (
	HintNone DisplayHint = iota
	HintString
	HintBoolean
	HintEnum
)

// TypeInfo is the per-type metadata record.
type TypeInfo struct {
	ID   TypeID
	Name string
	Kind ElemKind
	// Size is the native layout size in bytes.
	Size int
	// NumSub counts declared sub-entities: members for containers
	// (including inherited ones), elements for arrays, zero for scalars.
	NumSub int
	Hint   DisplayHint
	// ElemType is set for arrays only.
	ElemType TypeID
	// Base is the inherited container type, zero if none.
	Base TypeID
}

// Member is one declared entity of a container. Members with an empty
// Name are padding or anonymous base slots: they take part in layout
// accounting but are not externally visible.
type Member struct {
	Name   string
	Type   TypeID
	Offset int
	Size   int
	Seq    int
}

// Service is the lookup surface consumed by the binding engine.
type Service interface {
	// TypeInfo returns the metadata record for id.
	TypeInfo(id TypeID) (TypeInfo, error)
	// Members enumerates a container's entities in declaration order,
	// base members first.
	Members(id TypeID) ([]Member, error)
	// MaxSize returns the derived maximum size: the size of the largest
	// type that derives from id (id's own size when nothing does).
	MaxSize(id TypeID) (int, error)
	// EnumLabel maps a stored value to its symbolic label.
	EnumLabel(id TypeID, value int64) (string, bool)
	// EnumValue maps a symbolic label to its stored value.
	EnumValue(id TypeID, label string) (int64, bool)
	// LookupName resolves a type by its declared name.
	LookupName(name string) (TypeID, error)
}
