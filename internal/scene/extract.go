package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"wartimes-fbx-exporter/internal/fbx"
	"wartimes-fbx-exporter/internal/mathutil"
)

// ErrMissingRequiredNode marks a structurally incomplete record: a scene
// without an Objects section, or a mesh geometry without vertex or
// polygon data.
var ErrMissingRequiredNode = errors.New("scene: missing required node")

// CleanName strips the NUL-delimited class suffix and any namespace
// prefix from a record name ("skeleton\x00\x01Model" → "skeleton",
// "Model::Arm" → "Arm").
func CleanName(name string) string {
	if i := strings.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	return name
}

// Extract walks the record tree and collects the object graph the
// converter works on. Mesh geometries missing their vertex or polygon
// arrays are logged and skipped; everything else about them is kept
// as-is for the resolver to judge.
func Extract(root *fbx.Node, version uint32, logger *log.Logger) (*Scene, error) {
	objects := root.Find("Objects")
	if objects == nil {
		return nil, fmt.Errorf("scene: no Objects section: %w", ErrMissingRequiredNode)
	}

	s := &Scene{
		Version:   version,
		Models:    make(map[int64]*Model),
		Clusters:  make(map[int64]*Cluster),
		BindPoses: make(map[int64][]float64),
	}

	for _, node := range objects.FindAll("Geometry") {
		if class, _ := node.PropString(2); class != "Mesh" {
			continue
		}
		geo, err := ExtractGeometry(node)
		if err != nil {
			logger.Warn("skipping geometry", "id", geoID(node), "err", err)
			continue
		}
		s.Geometries = append(s.Geometries, geo)
	}

	for _, node := range objects.FindAll("Model") {
		if len(node.Properties) < 3 {
			continue
		}
		id, ok := node.PropInt64(0)
		if !ok {
			continue
		}
		name, _ := node.PropString(1)
		class, _ := node.PropString(2)
		m := &Model{
			ID:      id,
			Name:    CleanName(name),
			Class:   class,
			Scaling: mathutil.Vec3{1, 1, 1},
		}
		if p70 := node.Find("Properties70"); p70 != nil {
			for _, p := range p70.FindAll("P") {
				if len(p.Properties) < 7 {
					continue
				}
				pname, _ := p.PropString(0)
				switch pname {
				case "Lcl Translation":
					m.Translation = propVec3(p)
				case "Lcl Rotation":
					m.Rotation = propVec3(p)
				case "Lcl Scaling":
					m.Scaling = propVec3(p)
				}
			}
		}
		s.Models[id] = m
	}

	for _, node := range objects.FindAll("Deformer") {
		if len(node.Properties) < 3 {
			continue
		}
		id, ok := node.PropInt64(0)
		if !ok {
			continue
		}
		name, _ := node.PropString(1)
		class, _ := node.PropString(2)
		switch class {
		case "Skin":
			s.Skins = append(s.Skins, &Skin{ID: id, Name: CleanName(name)})
		case "Cluster":
			cl := &Cluster{ID: id, Name: CleanName(name)}
			if n := node.Find("Indexes"); n != nil {
				cl.Indexes, _ = n.PropInts(0)
			}
			if n := node.Find("Weights"); n != nil {
				cl.Weights, _ = n.PropFloat64s(0)
			}
			if n := node.Find("Transform"); n != nil {
				cl.Transform, _ = n.PropFloat64s(0)
			}
			if n := node.Find("TransformLink"); n != nil {
				cl.TransformLink, _ = n.PropFloat64s(0)
			}
			s.Clusters[id] = cl
		}
	}

	if conn := root.Find("Connections"); conn != nil {
		for _, c := range conn.FindAll("C") {
			typ, ok1 := c.PropString(0)
			child, ok2 := c.PropInt64(1)
			parent, ok3 := c.PropInt64(2)
			if ok1 && ok2 && ok3 {
				s.Connections = append(s.Connections, Connection{Type: typ, Child: child, Parent: parent})
			}
		}
	}

	for _, pose := range objects.FindAll("Pose") {
		for _, pn := range pose.FindAll("PoseNode") {
			idNode := pn.Find("Node")
			matNode := pn.Find("Matrix")
			if idNode == nil || matNode == nil {
				continue
			}
			id, ok := idNode.PropInt64(0)
			if !ok {
				continue
			}
			if mat, ok := matNode.PropFloat64s(0); ok {
				s.BindPoses[id] = mat
			}
		}
	}

	logger.Debug("scene extracted",
		"geometries", len(s.Geometries),
		"models", len(s.Models),
		"skins", len(s.Skins),
		"clusters", len(s.Clusters),
		"connections", len(s.Connections),
		"bindPoses", len(s.BindPoses))

	return s, nil
}

// ExtractGeometry reads one mesh geometry record. Vertices and
// PolygonVertexIndex are required; attribute layers are optional.
func ExtractGeometry(node *fbx.Node) (*Geometry, error) {
	id, _ := node.PropInt64(0)
	name, _ := node.PropString(1)
	geo := &Geometry{ID: id, Name: CleanName(name)}

	vertNode := node.Find("Vertices")
	if vertNode == nil {
		return nil, fmt.Errorf("scene: geometry %d has no Vertices: %w", id, ErrMissingRequiredNode)
	}
	raw, ok := vertNode.PropFloat64s(0)
	if !ok {
		return nil, fmt.Errorf("scene: geometry %d has no Vertices: %w", id, ErrMissingRequiredNode)
	}
	for i := 0; i+2 < len(raw); i += 3 {
		geo.Positions = append(geo.Positions, [3]float64{raw[i], raw[i+1], raw[i+2]})
	}

	idxNode := node.Find("PolygonVertexIndex")
	if idxNode == nil {
		return nil, fmt.Errorf("scene: geometry %d has no PolygonVertexIndex: %w", id, ErrMissingRequiredNode)
	}
	rawIdx, ok := idxNode.PropInts(0)
	if !ok {
		return nil, fmt.Errorf("scene: geometry %d has no PolygonVertexIndex: %w", id, ErrMissingRequiredNode)
	}
	geo.Polygons = DecodePolygons(rawIdx)

	if layer := node.Find("LayerElementNormal"); layer != nil {
		if n := layer.Find("Normals"); n != nil {
			if raw, ok := n.PropFloat64s(0); ok {
				for i := 0; i+2 < len(raw); i += 3 {
					geo.Normals = append(geo.Normals, [3]float64{raw[i], raw[i+1], raw[i+2]})
				}
				geo.NormalMapping, geo.NormalRef = layerAddressing(layer)
				if geo.NormalRef == RefIndexToDirect {
					if ni := layer.Find("NormalsIndex"); ni != nil {
						geo.NormalIndices, _ = ni.PropInts(0)
					}
				}
			}
		}
	}

	if layer := node.Find("LayerElementUV"); layer != nil {
		if n := layer.Find("UV"); n != nil {
			if raw, ok := n.PropFloat64s(0); ok {
				for i := 0; i+1 < len(raw); i += 2 {
					geo.UVs = append(geo.UVs, [2]float64{raw[i], raw[i+1]})
				}
				geo.UVMapping, geo.UVRef = layerAddressing(layer)
				if geo.UVRef == RefIndexToDirect {
					if ui := layer.Find("UVIndex"); ui != nil {
						geo.UVIndices, _ = ui.PropInts(0)
					}
				}
			}
		}
	}

	return geo, nil
}

// DecodePolygons splits a signed polygon-vertex stream into loops. A
// negative value closes the loop and stores ^v as its final corner; an
// unterminated trailing loop is kept.
func DecodePolygons(indices []int) [][]int {
	var polys [][]int
	var cur []int
	for _, idx := range indices {
		if idx < 0 {
			cur = append(cur, -idx-1)
			polys = append(polys, cur)
			cur = nil
		} else {
			cur = append(cur, idx)
		}
	}
	if len(cur) > 0 {
		polys = append(polys, cur)
	}
	return polys
}

func layerAddressing(layer *fbx.Node) (mapping, ref string) {
	mapping, ref = MapByPolygonVertex, RefDirect
	if n := layer.Find("MappingInformationType"); n != nil {
		if s, ok := n.PropString(0); ok {
			mapping = s
		}
	}
	if n := layer.Find("ReferenceInformationType"); n != nil {
		if s, ok := n.PropString(0); ok {
			ref = s
		}
	}
	return mapping, ref
}

func geoID(node *fbx.Node) int64 {
	id, _ := node.PropInt64(0)
	return id
}

// propVec3 reads the three numeric payloads of a P record (properties
// 4..6, after name, type, label and flags).
func propVec3(p *fbx.Node) mathutil.Vec3 {
	x, _ := p.PropNumber(4)
	y, _ := p.PropNumber(5)
	z, _ := p.PropNumber(6)
	return mathutil.Vec3{x, y, z}
}
