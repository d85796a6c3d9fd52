package obj

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"wartimes-fbx-exporter/internal/mathutil"
)

// Corner is one face vertex: 1-based v/vt/vn indices, 0 marking an
// absent slot.
type Corner struct {
	V, T, N int
}

// Model is a parsed Wavefront prop mesh.
type Model struct {
	Positions []mathutil.Vec3
	Normals   []mathutil.Vec3
	Texcoords [][2]float64
	Faces     [][]Corner
}

// ParseModel reads v/vn/f lines. Existing vt data is dropped since the
// remap pass regenerates it.
func ParseModel(r io.Reader) (*Model, error) {
	m := &Model{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)

		switch parts[0] {
		case "v":
			if len(parts) < 4 {
				continue
			}
			p, err := parseVec3(parts[1:4])
			if err != nil {
				return nil, fmt.Errorf("obj: line %d: %w", lineNo, err)
			}
			m.Positions = append(m.Positions, p)
		case "vn":
			if len(parts) < 4 {
				continue
			}
			n, err := parseVec3(parts[1:4])
			if err != nil {
				return nil, fmt.Errorf("obj: line %d: %w", lineNo, err)
			}
			m.Normals = append(m.Normals, n)
		case "f":
			face := make([]Corner, 0, len(parts)-1)
			for _, token := range parts[1:] {
				c, err := parseCorner(token)
				if err != nil {
					return nil, fmt.Errorf("obj: line %d: %w", lineNo, err)
				}
				face = append(face, c)
			}
			m.Faces = append(m.Faces, face)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("obj: read: %w", err)
	}

	for _, face := range m.Faces {
		for _, c := range face {
			if c.V < 1 || c.V > len(m.Positions) {
				return nil, fmt.Errorf("obj: face references vertex %d of %d", c.V, len(m.Positions))
			}
		}
	}
	return m, nil
}

func parseVec3(fields []string) (mathutil.Vec3, error) {
	var v mathutil.Vec3
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return mathutil.Vec3{}, err
		}
		v[i] = x
	}
	return v, nil
}

// parseCorner accepts the v, v/vt, v/vt/vn and v//vn token forms.
func parseCorner(token string) (Corner, error) {
	comps := strings.Split(token, "/")
	vi, err := strconv.Atoi(comps[0])
	if err != nil {
		return Corner{}, err
	}
	c := Corner{V: vi}
	if len(comps) >= 3 && comps[2] != "" {
		ni, err := strconv.Atoi(comps[2])
		if err != nil {
			return Corner{}, err
		}
		c.N = ni
	}
	return c, nil
}

// RotateY spins positions and normals about the vertical axis.
// Rotated normals are renormalized.
func (m *Model) RotateY(deg float64) {
	rot := mathutil.RotY(mathutil.Deg2Rad(deg))
	for i := range m.Positions {
		m.Positions[i] = rot.MulVec3(m.Positions[i])
	}
	for i := range m.Normals {
		n := rot.MulVec3(m.Normals[i])
		if l := n.Len(); l > 1e-4 {
			n = n.Scale(1 / l)
		}
		m.Normals[i] = n
	}
}

// BoxMapUVs synthesizes one texture coordinate per face corner by
// projecting the corner onto the bounding-box plane facing its normal's
// dominant axis. Corners without a normal project as if facing up.
func (m *Model) BoxMapUVs(tile float64) {
	minV, size := m.uvBounds()

	m.Texcoords = m.Texcoords[:0]
	for fi, face := range m.Faces {
		for ci, c := range face {
			p := m.Positions[c.V-1]
			n := mathutil.Vec3{0, 1, 0}
			if c.N > 0 && c.N <= len(m.Normals) {
				n = m.Normals[c.N-1]
			}
			u, v := boxMapUV(p, n, minV, size, tile)
			m.Texcoords = append(m.Texcoords, [2]float64{u, v})
			m.Faces[fi][ci].T = len(m.Texcoords)
		}
	}
}

func (m *Model) uvBounds() (minV, size mathutil.Vec3) {
	minV = mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxV := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range m.Positions {
		for i := 0; i < 3; i++ {
			minV[i] = math.Min(minV[i], p[i])
			maxV[i] = math.Max(maxV[i], p[i])
		}
	}
	for i := 0; i < 3; i++ {
		size[i] = math.Max(maxV[i]-minV[i], 0.001)
	}
	return minV, size
}

func boxMapUV(p, n, minV, size mathutil.Vec3, tile float64) (u, v float64) {
	ax, ay, az := math.Abs(n[0]), math.Abs(n[1]), math.Abs(n[2])
	switch {
	case ax >= ay && ax >= az:
		// X-facing: project onto YZ
		u = (p[2] - minV[2]) / size[2]
		v = (p[1] - minV[1]) / size[1]
	case ay >= ax && ay >= az:
		// Y-facing: project onto XZ
		u = (p[0] - minV[0]) / size[0]
		v = (p[2] - minV[2]) / size[2]
	default:
		// Z-facing: project onto XY
		u = (p[0] - minV[0]) / size[0]
		v = (p[1] - minV[1]) / size[1]
	}
	return u * tile, v * tile
}

// Encode writes the processed mesh with regenerated header comments and
// v/vt/vn faces (v/vt where a corner has no normal).
func (m *Model) Encode() string {
	var b strings.Builder
	b.WriteString("# Processed: yaw rotated + box-mapped UVs\n")
	fmt.Fprintf(&b, "# Vertices: %d\n", len(m.Positions))
	fmt.Fprintf(&b, "# Normals: %d\n", len(m.Normals))
	fmt.Fprintf(&b, "# TexCoords: %d\n\n", len(m.Texcoords))

	for _, p := range m.Positions {
		fmt.Fprintf(&b, "v %.6f %.6f %.6f\n", p[0], p[1], p[2])
	}
	b.WriteByte('\n')

	for _, t := range m.Texcoords {
		fmt.Fprintf(&b, "vt %.6f %.6f\n", t[0], t[1])
	}
	b.WriteByte('\n')

	for _, n := range m.Normals {
		fmt.Fprintf(&b, "vn %.6f %.6f %.6f\n", n[0], n[1], n[2])
	}
	b.WriteByte('\n')

	for _, face := range m.Faces {
		b.WriteByte('f')
		for _, c := range face {
			if c.N > 0 {
				fmt.Fprintf(&b, " %d/%d/%d", c.V, c.T, c.N)
			} else {
				fmt.Fprintf(&b, " %d/%d", c.V, c.T)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ProcessFile rewrites one OBJ prop in place, or to a suffixed sibling
// when suffix is non-empty.
func ProcessFile(path, suffix string, st Settings, logger *log.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("obj: open %s: %w", path, err)
	}
	m, err := ParseModel(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("obj: parse %s: %w", path, err)
	}

	if len(m.Positions) == 0 {
		logger.Warn("no vertices, skipping", "path", path)
		return nil
	}
	if st.Skip {
		logger.Info("skipped by override", "path", path)
		return nil
	}

	m.RotateY(st.Rotate)
	m.BoxMapUVs(st.Tile)

	out := path
	if suffix != "" {
		ext := filepath.Ext(path)
		out = strings.TrimSuffix(path, ext) + suffix + ext
	}
	if err := os.WriteFile(out, []byte(m.Encode()), 0644); err != nil {
		return fmt.Errorf("obj: write %s: %w", out, err)
	}

	logger.Info("remapped",
		"path", out,
		"vertices", len(m.Positions),
		"uvs", len(m.Texcoords),
		"faces", len(m.Faces))
	return nil
}
