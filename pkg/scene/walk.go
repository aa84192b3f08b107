// Package scene provides traversal, transform composition and animation
// sampling over an xmodel.Container.
//
// Nothing here mutates the graph except RepairParents. Animation results are
// returned as a Pose so that one decoded model can be posed at several times
// concurrently.
package scene

import "github.com/Faultbox/xmodel/pkg/xmodel"

// ForEachNode calls fn for every node reachable from the container's root
// nodes, depth first, parents before children. depth is 0 for a root.
// Returning false from fn stops the walk. A node reachable twice is visited
// once.
func ForEachNode(c *xmodel.Container, fn func(n *xmodel.Node, depth int) bool) {
	if c == nil {
		return
	}
	seen := make(map[*xmodel.Node]bool)
	var walk func(n *xmodel.Node, depth int) bool
	walk = func(n *xmodel.Node, depth int) bool {
		if n == nil || seen[n] {
			return true
		}
		seen[n] = true
		if !fn(n, depth) {
			return false
		}
		for _, child := range n.Children {
			if !walk(child, depth+1) {
				return false
			}
		}
		return true
	}
	for _, root := range c.Nodes {
		if !walk(root, 0) {
			return
		}
	}
}

// ForEachMesh calls fn once for every mesh of the container and of its
// nodes, container meshes first. Returning false stops the walk.
func ForEachMesh(c *xmodel.Container, fn func(m *xmodel.Mesh) bool) {
	if c == nil {
		return
	}
	seen := make(map[*xmodel.Mesh]bool)
	visit := func(m *xmodel.Mesh) bool {
		if m == nil || seen[m] {
			return true
		}
		seen[m] = true
		return fn(m)
	}
	for _, m := range c.Meshes {
		if !visit(m) {
			return
		}
	}
	ForEachNode(c, func(n *xmodel.Node, _ int) bool {
		for _, m := range n.Meshes {
			if !visit(m) {
				return false
			}
		}
		return true
	})
}

// FindNode returns the first node named name in walk order, or nil.
func FindNode(c *xmodel.Container, name string) *xmodel.Node {
	var found *xmodel.Node
	ForEachNode(c, func(n *xmodel.Node, _ int) bool {
		if n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// Textures returns every texture in use, each once, in first-seen order:
// the container's textures, then those reachable only through materials.
func Textures(c *xmodel.Container) []*xmodel.Texture {
	if c == nil {
		return nil
	}
	var out []*xmodel.Texture
	seen := make(map[*xmodel.Texture]bool)
	add := func(t *xmodel.Texture) {
		if t != nil && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range c.Textures {
		add(t)
	}
	for _, m := range Materials(c) {
		for _, t := range m.Maps() {
			add(t)
		}
	}
	return out
}

// Materials returns every material in use, each once, in first-seen order:
// the container's materials, then those referenced only by meshes.
func Materials(c *xmodel.Container) []*xmodel.Material {
	if c == nil {
		return nil
	}
	var out []*xmodel.Material
	seen := make(map[*xmodel.Material]bool)
	add := func(m *xmodel.Material) {
		if m != nil && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	for _, m := range c.Materials {
		add(m)
	}
	ForEachMesh(c, func(mesh *xmodel.Mesh) bool {
		for _, m := range mesh.Materials {
			add(m)
		}
		return true
	})
	return out
}

// RepairParents rebuilds the parent link of every node from the child
// lists. Roots get a nil parent.
func RepairParents(c *xmodel.Container) {
	if c == nil {
		return
	}
	for _, root := range c.Nodes {
		if root != nil {
			root.SetParent(nil)
		}
	}
	ForEachNode(c, func(n *xmodel.Node, _ int) bool {
		for _, child := range n.Children {
			if child != nil {
				child.SetParent(n)
			}
		}
		return true
	})
}
