package fbx

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

func arrayElemSize(tag byte) int {
	switch tag {
	case 'f', 'i':
		return 4
	case 'd', 'l':
		return 8
	}
	return 1 // 'b'
}

// array decodes one array property. The header is count, encoding and
// compressed length, each uint32. Encoding 0 stores the payload raw,
// encoding 1 as a zlib stream; anything else is malformed.
func (p *parser) array(tag byte, off int) (Property, int, error) {
	if off+12 > len(p.data) {
		return Property{}, 0, fmt.Errorf("fbx: truncated %q array header at offset %d: %w", tag, off, ErrMalformedHeader)
	}
	count := int(binary.LittleEndian.Uint32(p.data[off:]))
	encoding := binary.LittleEndian.Uint32(p.data[off+4:])
	compressedLen := int(binary.LittleEndian.Uint32(p.data[off+8:]))
	off += 12

	elemSize := arrayElemSize(tag)
	var raw []byte
	switch encoding {
	case 0:
		total := count * elemSize
		if off+total > len(p.data) {
			return Property{}, 0, fmt.Errorf("fbx: truncated %q array of %d at offset %d: %w", tag, count, off, ErrMalformedHeader)
		}
		raw = p.data[off : off+total]
		off += total
	case 1:
		if off+compressedLen > len(p.data) {
			return Property{}, 0, fmt.Errorf("fbx: truncated compressed %q array at offset %d: %w", tag, off, ErrMalformedHeader)
		}
		zr, err := zlib.NewReader(bytes.NewReader(p.data[off : off+compressedLen]))
		if err != nil {
			return Property{}, 0, fmt.Errorf("fbx: inflate %q array at offset %d: %v: %w", tag, off, err, ErrMalformedArrayEncoding)
		}
		raw, err = io.ReadAll(zr)
		zr.Close()
		if err != nil {
			return Property{}, 0, fmt.Errorf("fbx: inflate %q array at offset %d: %v: %w", tag, off, err, ErrMalformedArrayEncoding)
		}
		if len(raw) < count*elemSize {
			return Property{}, 0, fmt.Errorf("fbx: %q array inflated to %d bytes, need %d: %w", tag, len(raw), count*elemSize, ErrMalformedArrayEncoding)
		}
		off += compressedLen
	default:
		return Property{}, 0, fmt.Errorf("fbx: array encoding %d at offset %d: %w", encoding, off-8, ErrMalformedArrayEncoding)
	}

	return decodeArrayPayload(tag, count, raw), off, nil
}

// decodeArrayPayload converts count little-endian elements into the typed
// slice for the tag.
func decodeArrayPayload(tag byte, count int, raw []byte) Property {
	switch tag {
	case 'f':
		out := make([]float32, count)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return Property{Kind: KindFloat32Array, F32s: out}
	case 'd':
		out := make([]float64, count)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return Property{Kind: KindFloat64Array, F64s: out}
	case 'i':
		out := make([]int32, count)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return Property{Kind: KindInt32Array, I32s: out}
	case 'l':
		out := make([]int64, count)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return Property{Kind: KindInt64Array, I64s: out}
	}
	out := make([]byte, count)
	copy(out, raw[:count])
	return Property{Kind: KindByteArray, Bytes: out}
}

// appendArrayPayload appends the raw little-endian payload of an array
// property, the exact inverse of decodeArrayPayload.
func appendArrayPayload(dst []byte, p Property) []byte {
	switch p.Kind {
	case KindFloat32Array:
		for _, v := range p.F32s {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
		}
	case KindFloat64Array:
		for _, v := range p.F64s {
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
		}
	case KindInt32Array:
		for _, v := range p.I32s {
			dst = binary.LittleEndian.AppendUint32(dst, uint32(v))
		}
	case KindInt64Array:
		for _, v := range p.I64s {
			dst = binary.LittleEndian.AppendUint64(dst, uint64(v))
		}
	case KindByteArray:
		dst = append(dst, p.Bytes...)
	}
	return dst
}
