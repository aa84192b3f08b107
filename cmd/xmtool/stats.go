package main

import (
	"slices"

	"github.com/Faultbox/xmodel/internal/config"
	"github.com/Faultbox/xmodel/pkg/scene"
	"github.com/Faultbox/xmodel/pkg/xmodel"
)

type stats struct {
	counts   map[xmodel.Tag]int
	depth    int
	vertices int
	elements int
}

type kindCount struct {
	tag   xmodel.Tag
	count int
}

func collectStats(c *xmodel.Container) stats {
	s := stats{counts: make(map[xmodel.Tag]int)}

	// The dumper numbers every reachable structure once, as the encoder does.
	d := newDumper(config.DumpConfig{})
	d.structure(c)
	for v := range d.ids {
		s.counts[v.Tag()]++
	}

	scene.ForEachMesh(c, func(m *xmodel.Mesh) bool {
		s.vertices += len(m.Vertices)
		s.elements += len(m.Elements)
		return true
	})
	scene.ForEachNode(c, func(_ *xmodel.Node, depth int) bool {
		s.depth = max(s.depth, depth+1)
		return true
	})
	return s
}

// kinds returns the non-zero counts ordered by tag.
func (s stats) kinds() []kindCount {
	var out []kindCount
	for tag, n := range s.counts {
		out = append(out, kindCount{tag, n})
	}
	slices.SortFunc(out, func(a, b kindCount) int { return int(a.tag) - int(b.tag) })
	return out
}
