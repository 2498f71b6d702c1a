// Package tensor provides the core tensor types shared by Born Router backends.
package tensor

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
	Bool
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Uint8, Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// Kind returns the tensor kind the data type belongs to.
func (dt DataType) Kind() Kind {
	switch dt {
	case Float32, Float64:
		return KindFloat
	case Int32, Int64, Uint8:
		return KindInt
	case Bool:
		return KindBool
	default:
		panic("unknown data type")
	}
}

// Kind selects the operation family a tensor belongs to.
// Kinds are never mixed within one bridge call.
type Kind int

// Tensor kinds.
const (
	KindFloat Kind = iota
	KindInt
	KindBool
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// ParseKind converts a kind name ("float", "int", "bool") to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "float":
		return KindFloat, true
	case "int":
		return KindInt, true
	case "bool":
		return KindBool, true
	default:
		return 0, false
	}
}
