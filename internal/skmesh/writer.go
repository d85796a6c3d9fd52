package skmesh

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"wartimes-fbx-exporter/internal/mesh"
)

// Magic opens every skinned mesh file.
const Magic = "SMSH"

// Version is the only format revision the engine loads.
const Version = 1

// Layout, little-endian throughout:
//
//	[4]  magic "SMSH"
//	[4]  uint32 version
//	[4]  uint32 vertex count
//	[4]  uint32 index count
//	[4]  uint32 bone count
//	per vertex (52 bytes): float3 position, float3 normal, float2 uv,
//	                       uint8[4] bone indices, float4 weights
//	per index: uint32
//	per bone: uint8 name length, name bytes, int32 parent,
//	          float[16] inverse bind pose, float[16] bind pose (row-major)

// Write serializes the assembled mesh.
func Write(w io.Writer, m *mesh.Mesh) error {
	buf := make([]byte, 0, 20+len(m.Vertices)*52+len(m.Indices)*4+len(m.Bones)*136)

	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint32(buf, Version)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(m.Vertices)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(m.Indices)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(m.Bones)))

	for _, v := range m.Vertices {
		buf = appendF32(buf, v.Position[0], v.Position[1], v.Position[2])
		buf = appendF32(buf, v.Normal[0], v.Normal[1], v.Normal[2])
		buf = appendF32(buf, v.UV[0], v.UV[1])
		for _, bi := range v.Bones {
			if bi > 255 {
				bi = 255
			}
			buf = append(buf, byte(bi))
		}
		buf = appendF32(buf, v.Weights[0], v.Weights[1], v.Weights[2], v.Weights[3])
	}

	for _, idx := range m.Indices {
		buf = binary.LittleEndian.AppendUint32(buf, idx)
	}

	for _, bone := range m.Bones {
		name := []byte(bone.Name)
		if len(name) > 255 {
			return fmt.Errorf("skmesh: bone name %q is %d bytes, limit is 255", bone.Name, len(name))
		}
		buf = append(buf, byte(len(name)))
		buf = append(buf, name...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(bone.Parent)))
		buf = appendF32(buf, bone.InvBindPose[:]...)
		buf = appendF32(buf, bone.BindPose[:]...)
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("skmesh: write: %w", err)
	}
	return nil
}

// WriteFile serializes the mesh to path.
func WriteFile(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("skmesh: create %s: %w", path, err)
	}
	if err := Write(f, m); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("skmesh: close %s: %w", path, err)
	}
	return nil
}

func appendF32(buf []byte, vals ...float64) []byte {
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(v)))
	}
	return buf
}
