package fbx

// PropertyKind identifies which payload field of a Property is meaningful.
type PropertyKind uint8

const (
	KindInvalid PropertyKind = iota
	KindBool
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindRaw
	KindFloat32Array
	KindFloat64Array
	KindInt32Array
	KindInt64Array
	KindByteArray
)

func (k PropertyKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt16:
		return "i16"
	case KindInt32:
		return "i32"
	case KindInt64:
		return "i64"
	case KindFloat32:
		return "f32"
	case KindFloat64:
		return "f64"
	case KindString:
		return "string"
	case KindRaw:
		return "raw"
	case KindFloat32Array:
		return "f32[]"
	case KindFloat64Array:
		return "f64[]"
	case KindInt32Array:
		return "i32[]"
	case KindInt64Array:
		return "i64[]"
	case KindByteArray:
		return "u8[]"
	}
	return "invalid"
}

// Property is one typed value attached to a node record. Exactly one
// payload field is set, selected by Kind.
type Property struct {
	Kind PropertyKind

	Bool bool
	I16  int16
	I32  int32
	I64  int64
	F32  float32
	F64  float64
	Str  string
	Raw  []byte

	F32s  []float32
	F64s  []float64
	I32s  []int32
	I64s  []int64
	Bytes []byte
}

// AsInt64 widens any integer scalar.
func (p Property) AsInt64() (int64, bool) {
	switch p.Kind {
	case KindInt16:
		return int64(p.I16), true
	case KindInt32:
		return int64(p.I32), true
	case KindInt64:
		return p.I64, true
	}
	return 0, false
}

// AsNumber widens any numeric scalar to float64.
func (p Property) AsNumber() (float64, bool) {
	switch p.Kind {
	case KindInt16:
		return float64(p.I16), true
	case KindInt32:
		return float64(p.I32), true
	case KindInt64:
		return float64(p.I64), true
	case KindFloat32:
		return float64(p.F32), true
	case KindFloat64:
		return p.F64, true
	}
	return 0, false
}

// AsFloat64s widens either float array kind.
func (p Property) AsFloat64s() ([]float64, bool) {
	switch p.Kind {
	case KindFloat64Array:
		return p.F64s, true
	case KindFloat32Array:
		out := make([]float64, len(p.F32s))
		for i, v := range p.F32s {
			out[i] = float64(v)
		}
		return out, true
	}
	return nil, false
}

// AsInts widens either integer array kind.
func (p Property) AsInts() ([]int, bool) {
	switch p.Kind {
	case KindInt32Array:
		out := make([]int, len(p.I32s))
		for i, v := range p.I32s {
			out[i] = int(v)
		}
		return out, true
	case KindInt64Array:
		out := make([]int, len(p.I64s))
		for i, v := range p.I64s {
			out[i] = int(v)
		}
		return out, true
	}
	return nil, false
}

// Len returns the element count for array kinds, 0 otherwise.
func (p Property) Len() int {
	switch p.Kind {
	case KindFloat32Array:
		return len(p.F32s)
	case KindFloat64Array:
		return len(p.F64s)
	case KindInt32Array:
		return len(p.I32s)
	case KindInt64Array:
		return len(p.I64s)
	case KindByteArray:
		return len(p.Bytes)
	}
	return 0
}
