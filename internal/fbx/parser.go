package fbx

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// magic is the 21-byte signature at the start of every binary container,
// including the trailing NUL.
const magic = "Kaydara FBX Binary  \x00"

// headerSize covers magic, two reserved bytes and the uint32 version.
const headerSize = 27

// wideVersion is the first format version using 64-bit record headers.
const wideVersion = 7500

// ParseFile reads and decodes a binary scene container.
func ParseFile(path string) (*Node, uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("fbx: read %s: %w", path, err)
	}
	root, version, err := Parse(data)
	if err != nil {
		return nil, 0, fmt.Errorf("fbx: %s: %w", path, err)
	}
	return root, version, nil
}

// Parse decodes a binary scene container into its record tree. The
// returned root is synthetic; the file's top-level records are its
// children. The format version is returned alongside.
func Parse(data []byte) (*Node, uint32, error) {
	if len(data) < headerSize {
		return nil, 0, fmt.Errorf("fbx: file too small (%d bytes): %w", len(data), ErrMalformedHeader)
	}
	if string(data[:len(magic)]) != magic {
		return nil, 0, fmt.Errorf("fbx: bad magic: %w", ErrMalformedHeader)
	}
	version := binary.LittleEndian.Uint32(data[23:])

	p := &parser{data: data, wide: version >= wideVersion}
	children, err := p.nodeList(headerSize, len(data))
	if err != nil {
		return nil, 0, err
	}
	return &Node{Name: "__root__", Children: children}, version, nil
}

type parser struct {
	data []byte
	wide bool
}

func (p *parser) nullSize() int {
	if p.wide {
		return 25
	}
	return 13
}

// nodeList reads sibling records from off until end, a null record or EOF.
func (p *parser) nodeList(off, end int) ([]*Node, error) {
	var nodes []*Node
	for off < end {
		if p.isNullRecord(off) {
			break
		}
		node, next, err := p.node(off)
		if err != nil {
			return nil, err
		}
		if next <= off {
			return nil, fmt.Errorf("fbx: record at offset %d does not advance: %w", off, ErrMalformedHeader)
		}
		if node != nil {
			nodes = append(nodes, node)
		}
		off = next
	}
	return nodes, nil
}

// isNullRecord reports whether off starts an all-zero terminator record.
func (p *parser) isNullRecord(off int) bool {
	n := p.nullSize()
	if off+n > len(p.data) {
		return false
	}
	for _, b := range p.data[off : off+n] {
		if b != 0 {
			return false
		}
	}
	return true
}

func (p *parser) node(off int) (*Node, int, error) {
	var end, numProps uint64
	if p.wide {
		if off+24 > len(p.data) {
			return nil, 0, fmt.Errorf("fbx: truncated record header at offset %d: %w", off, ErrMalformedHeader)
		}
		end = binary.LittleEndian.Uint64(p.data[off:])
		numProps = binary.LittleEndian.Uint64(p.data[off+8:])
		off += 24
	} else {
		if off+12 > len(p.data) {
			return nil, 0, fmt.Errorf("fbx: truncated record header at offset %d: %w", off, ErrMalformedHeader)
		}
		end = uint64(binary.LittleEndian.Uint32(p.data[off:]))
		numProps = uint64(binary.LittleEndian.Uint32(p.data[off+4:]))
		off += 12
	}

	// A zero end offset terminates the enclosing list without a payload.
	if end == 0 {
		return nil, off, nil
	}
	if end > uint64(len(p.data)) {
		return nil, 0, fmt.Errorf("fbx: record end offset %d beyond input (%d bytes): %w", end, len(p.data), ErrMalformedHeader)
	}
	if numProps > uint64(len(p.data)) {
		return nil, 0, fmt.Errorf("fbx: record at offset %d claims %d properties: %w", off, numProps, ErrMalformedHeader)
	}

	if off >= len(p.data) {
		return nil, 0, fmt.Errorf("fbx: truncated record name at offset %d: %w", off, ErrMalformedHeader)
	}
	nameLen := int(p.data[off])
	off++
	if off+nameLen > len(p.data) {
		return nil, 0, fmt.Errorf("fbx: truncated record name at offset %d: %w", off, ErrMalformedHeader)
	}
	name := string(p.data[off : off+nameLen])
	off += nameLen

	props := make([]Property, 0, numProps)
	for i := uint64(0); i < numProps; i++ {
		prop, next, err := p.property(off)
		if err != nil {
			return nil, 0, err
		}
		props = append(props, prop)
		off = next
	}

	var children []*Node
	if off < int(end) {
		var err error
		children, err = p.nodeList(off, int(end))
		if err != nil {
			return nil, 0, err
		}
	}

	return &Node{Name: name, Properties: props, Children: children}, int(end), nil
}

func (p *parser) property(off int) (Property, int, error) {
	if off >= len(p.data) {
		return Property{}, 0, fmt.Errorf("fbx: truncated property at offset %d: %w", off, ErrMalformedHeader)
	}
	tag := p.data[off]
	off++

	need := func(n int) error {
		if off+n > len(p.data) {
			return fmt.Errorf("fbx: truncated %q property at offset %d: %w", tag, off, ErrMalformedHeader)
		}
		return nil
	}

	switch tag {
	case 'C':
		if err := need(1); err != nil {
			return Property{}, 0, err
		}
		return Property{Kind: KindBool, Bool: p.data[off] != 0}, off + 1, nil
	case 'Y':
		if err := need(2); err != nil {
			return Property{}, 0, err
		}
		return Property{Kind: KindInt16, I16: int16(binary.LittleEndian.Uint16(p.data[off:]))}, off + 2, nil
	case 'I':
		if err := need(4); err != nil {
			return Property{}, 0, err
		}
		return Property{Kind: KindInt32, I32: int32(binary.LittleEndian.Uint32(p.data[off:]))}, off + 4, nil
	case 'L':
		if err := need(8); err != nil {
			return Property{}, 0, err
		}
		return Property{Kind: KindInt64, I64: int64(binary.LittleEndian.Uint64(p.data[off:]))}, off + 8, nil
	case 'F':
		if err := need(4); err != nil {
			return Property{}, 0, err
		}
		return Property{Kind: KindFloat32, F32: math.Float32frombits(binary.LittleEndian.Uint32(p.data[off:]))}, off + 4, nil
	case 'D':
		if err := need(8); err != nil {
			return Property{}, 0, err
		}
		return Property{Kind: KindFloat64, F64: math.Float64frombits(binary.LittleEndian.Uint64(p.data[off:]))}, off + 8, nil
	case 'S', 'R':
		if err := need(4); err != nil {
			return Property{}, 0, err
		}
		length := int(binary.LittleEndian.Uint32(p.data[off:]))
		off += 4
		if err := need(length); err != nil {
			return Property{}, 0, err
		}
		payload := p.data[off : off+length]
		off += length
		if tag == 'S' {
			return Property{Kind: KindString, Str: string(payload)}, off, nil
		}
		return Property{Kind: KindRaw, Raw: payload}, off, nil
	case 'f', 'd', 'i', 'l', 'b':
		return p.array(tag, off)
	}
	return Property{}, 0, fmt.Errorf("fbx: property type %q at offset %d: %w", tag, off-1, ErrUnknownPropertyType)
}
