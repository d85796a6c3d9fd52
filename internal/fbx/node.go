package fbx

// Node is one record in the decoded scene tree.
type Node struct {
	Name       string
	Properties []Property
	Children   []*Node
}

// Find returns the first direct child with the given name, or nil.
func (n *Node) Find(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindAll returns every direct child with the given name, in order.
func (n *Node) FindAll(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func (n *Node) prop(i int) (Property, bool) {
	if i < 0 || i >= len(n.Properties) {
		return Property{}, false
	}
	return n.Properties[i], true
}

// PropInt64 reads property i as an integer scalar.
func (n *Node) PropInt64(i int) (int64, bool) {
	p, ok := n.prop(i)
	if !ok {
		return 0, false
	}
	return p.AsInt64()
}

// PropString reads property i as a string.
func (n *Node) PropString(i int) (string, bool) {
	p, ok := n.prop(i)
	if !ok || p.Kind != KindString {
		return "", false
	}
	return p.Str, true
}

// PropNumber reads property i as a numeric scalar.
func (n *Node) PropNumber(i int) (float64, bool) {
	p, ok := n.prop(i)
	if !ok {
		return 0, false
	}
	return p.AsNumber()
}

// PropFloat64s reads property i as a float array of either width.
func (n *Node) PropFloat64s(i int) ([]float64, bool) {
	p, ok := n.prop(i)
	if !ok {
		return nil, false
	}
	return p.AsFloat64s()
}

// PropInts reads property i as an integer array of either width.
func (n *Node) PropInts(i int) ([]int, bool) {
	p, ok := n.prop(i)
	if !ok {
		return nil, false
	}
	return p.AsInts()
}
