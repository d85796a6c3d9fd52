package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/davecgh/go-spew/spew"

	"wartimes-fbx-exporter/internal/fbx"
	"wartimes-fbx-exporter/internal/mathutil"
	"wartimes-fbx-exporter/internal/scene"
	"wartimes-fbx-exporter/internal/skin"
)

var dump = newDumper()

func newDumper() *spew.ConfigState {
	c := spew.NewDefaultConfig()
	c.Indent = "  "
	c.DisableCapacities = true
	c.DisablePointerAddresses = true
	return c
}

func main() {
	records := flag.Bool("records", false, "Dump the raw record tree instead of the scene summary")
	matrices := flag.Bool("matrices", false, "Print cluster bind matrices")
	depth := flag.Int("depth", 0, "Limit record tree depth (0 = unlimited)")

	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: inspect [flags] <file.fbx> ...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	// Extraction warnings go to stderr so the report stays clean.
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	logger.SetLevel(log.WarnLevel)

	dump.MaxDepth = *depth

	failed := 0
	for _, arg := range flag.Args() {
		if err := inspectFile(arg, *records, *matrices, logger); err != nil {
			fmt.Fprintf(os.Stderr, "inspect %s: %v\n", arg, err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func inspectFile(path string, records, matrices bool, logger *log.Logger) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	root, version, err := fbx.ParseFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== %s (%d bytes, version %d) ===\n", filepath.Base(path), info.Size(), version)

	if records {
		dump.Dump(root)
		return nil
	}

	sc, err := scene.Extract(root, version, logger)
	if err != nil {
		return err
	}

	if matrices {
		printMatrices(sc)
		return nil
	}

	printModels(sc)
	printGeometries(sc)
	printSkins(sc, logger)
	return nil
}

func printModels(sc *scene.Scene) {
	fmt.Printf("\n--- MODELS (%d) ---\n", len(sc.Models))

	ctp := sc.ChildToParent()
	children := make(map[int64][]int64)
	var roots []int64
	for id := range sc.Models {
		parent, ok := ctp[id]
		if ok {
			if _, isModel := sc.Models[parent]; isModel {
				children[parent] = append(children[parent], id)
				continue
			}
		}
		roots = append(roots, id)
	}
	sortByName := func(ids []int64) {
		sort.Slice(ids, func(i, j int) bool { return sc.Models[ids[i]].Name < sc.Models[ids[j]].Name })
	}
	sortByName(roots)
	for _, ids := range children {
		sortByName(ids)
	}

	var walk func(id int64, depth int)
	walk = func(id int64, depth int) {
		m := sc.Models[id]
		for i := 0; i <= depth; i++ {
			fmt.Print("  ")
		}
		fmt.Printf("%s (%s)  children=%d\n", m.Name, m.Class, len(children[id]))
		for _, c := range children[id] {
			walk(c, depth+1)
		}
	}
	for _, id := range roots {
		walk(id, 0)
	}
}

func printGeometries(sc *scene.Scene) {
	fmt.Printf("\n--- GEOMETRIES (%d) ---\n", len(sc.Geometries))
	for i, g := range sc.Geometries {
		fmt.Printf("  Geometry[%d]: name=%q verts=%d polys=%d\n", i, g.Name, len(g.Positions), len(g.Polygons))
		fmt.Printf("    normals=%d (%s/%s) uvs=%d\n", len(g.Normals), g.NormalMapping, g.NormalRef, len(g.UVs))

		if len(g.Positions) == 0 {
			continue
		}
		minV := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
		maxV := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
		for _, p := range g.Positions {
			for k := 0; k < 3; k++ {
				minV[k] = math.Min(minV[k], p[k])
				maxV[k] = math.Max(maxV[k], p[k])
			}
		}
		fmt.Printf("    bounds: X[%.2f, %.2f] Y[%.2f, %.2f] Z[%.2f, %.2f]\n",
			minV[0], maxV[0], minV[1], maxV[1], minV[2], maxV[2])
	}
}

func printSkins(sc *scene.Scene, logger *log.Logger) {
	fmt.Printf("\n--- SKINS (%d, clusters %d) ---\n", len(sc.Skins), len(sc.Clusters))
	if len(sc.Skins) == 0 {
		return
	}

	ctp := sc.ChildToParent()
	perSkin := make(map[int64]int)
	for id := range sc.Clusters {
		perSkin[ctp[id]]++
	}
	for _, s := range sc.Skins {
		fmt.Printf("  Skin: name=%q clusters=%d\n", s.Name, perSkin[s.ID])
	}

	sk, err := skin.Resolve(sc, logger)
	if err != nil {
		fmt.Printf("  resolve: %v\n", err)
		return
	}
	fmt.Printf("  Resolved: geometry=%q (%s) bones=%d scale=%.2f\n",
		sk.Report.GeometryName, sk.Report.Fallback, len(sk.Bones), sk.Scale)
	for i, b := range sk.Bones {
		parent := "-"
		if b.Parent >= 0 {
			parent = sk.Bones[b.Parent].Name
		}
		fmt.Printf("    Bone[%d]: %q parent=%s\n", i, b.Name, parent)
	}
}

// printMatrices shows each cluster's bind matrices plus their product,
// the offset actually applied to mesh space.
func printMatrices(sc *scene.Scene) {
	ids := make([]int64, 0, len(sc.Clusters))
	for id := range sc.Clusters {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fmt.Println("\n--- CLUSTER MATRICES ---")
	for _, id := range ids {
		c := sc.Clusters[id]
		fmt.Printf("\nCluster: %s (id=%d, weights=%d)\n", c.Name, c.ID, len(c.Weights))
		if c.Transform != nil {
			fmt.Println("  Transform (mesh-to-bone):")
			printMat4(mathutil.Mat4FromSlice(c.Transform), "%.4f")
		}
		if c.TransformLink != nil {
			fmt.Println("  TransformLink (bone world):")
			printMat4(mathutil.Mat4FromSlice(c.TransformLink), "%.4f")
		}
		if c.Transform != nil && c.TransformLink != nil {
			tf := mathutil.Mat4FromSlice(c.Transform)
			tfl := mathutil.Mat4FromSlice(c.TransformLink)
			fmt.Println("  Transform * inv(TransformLink):")
			printMat4(mathutil.Mat4Mul(tf, tfl.Inverse()), "%.6f")
		}
	}
}

func printMat4(m mathutil.Mat4, verb string) {
	for row := 0; row < 4; row++ {
		fmt.Printf("    ["+verb+", "+verb+", "+verb+", "+verb+"]\n",
			m[row*4], m[row*4+1], m[row*4+2], m[row*4+3])
	}
}
