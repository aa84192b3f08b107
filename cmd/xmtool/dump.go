package main

import (
	"encoding/hex"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/xmodel/internal/config"
	"github.com/Faultbox/xmodel/pkg/xmodel"
)

// dumper renders a container as a YAML document. Structures get ids in the
// order the encoder would give them, so a dumped id matches the wire id. A
// second visit prints only {ref: id}.
type dumper struct {
	cfg config.DumpConfig
	ids map[xmodel.Structure]int
}

func newDumper(cfg config.DumpConfig) *dumper {
	return &dumper{cfg: cfg, ids: make(map[xmodel.Structure]int)}
}

func writeDump(w io.Writer, c *xmodel.Container, cfg config.DumpConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDumper(cfg).structure(c)); err != nil {
		return err
	}
	return enc.Close()
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func str(s string) *yaml.Node { return scalar("!!str", s) }

func integer(i int) *yaml.Node { return scalar("!!int", strconv.Itoa(i)) }

func boolean(b bool) *yaml.Node { return scalar("!!bool", strconv.FormatBool(b)) }

func float(f float64) *yaml.Node { return scalar("!!float", formatFloat(f, 64)) }

func single(f float32) *yaml.Node { return scalar("!!float", formatFloat(float64(f), 32)) }

// formatFloat spells f so that YAML resolves it as a float without a tag.
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

type mapping struct{ *yaml.Node }

func newMapping() mapping {
	return mapping{&yaml.Node{Kind: yaml.MappingNode}}
}

func (m mapping) set(key string, value *yaml.Node) {
	m.Content = append(m.Content, str(key), value)
}

func flow(values []float32, limit int) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for i, v := range values {
		if limit > 0 && i == limit {
			seq.Content = append(seq.Content, str("+"+strconv.Itoa(len(values)-limit)))
			break
		}
		seq.Content = append(seq.Content, single(v))
	}
	return seq
}

func list[T xmodel.Structure](d *dumper, items []T) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, s := range items {
		seq.Content = append(seq.Content, d.structure(s))
	}
	return seq
}

func (d *dumper) userData(m mapping, u xmodel.UserData) {
	if len(u) == 0 {
		return
	}
	if d.cfg.UserData {
		m.set("user_data", str(hex.EncodeToString(u)))
	} else {
		m.set("user_data", integer(len(u)))
	}
}

func (d *dumper) pool(m mapping, key string, p xmodel.Pool) {
	if p.Count() == 0 {
		return
	}
	pm := newMapping()
	pm.set("count", integer(p.Count()))
	pm.set("size", integer(p.Size))
	if d.cfg.Pools {
		pm.set("data", flow(p.Data[:p.Count()*p.Size], d.cfg.MaxValues))
	}
	m.set(key, pm.Node)
}

func (d *dumper) structure(s xmodel.Structure) *yaml.Node {
	if xmodel.IsNil(s) {
		return scalar("!!null", "~")
	}
	if id, ok := d.ids[s]; ok {
		m := newMapping()
		m.set("ref", integer(id))
		return m.Node
	}
	id := len(d.ids) + 1
	d.ids[s] = id

	m := newMapping()
	m.set("id", integer(id))
	m.set("kind", str(s.Tag().String()))

	switch v := s.(type) {
	case *xmodel.Container:
		m.set("name", str(v.Name))
		m.set("textures", list(d, v.Textures))
		m.set("materials", list(d, v.Materials))
		m.set("meshes", list(d, v.Meshes))
		m.set("nodes", list(d, v.Nodes))
		m.set("time_rate", float(v.TimeRate))
		m.set("animation_sets", list(d, v.AnimationSets))
		d.userData(m, v.UserData)

	case *xmodel.Texture:
		m.set("name", str(v.Name))
		m.set("path", str(v.Ref))
		if len(v.Data) > 0 {
			m.set("data", integer(len(v.Data)))
		}
		d.userData(m, v.UserData)

	case *xmodel.Material:
		m.set("name", str(v.Name))
		m.set("emissive", flow(v.Emissive[:], 0))
		m.set("ambient", flow(v.Ambient[:], 0))
		m.set("diffuse", flow(v.Diffuse[:], 0))
		m.set("specular", flow(v.Specular[:], 0))
		m.set("shininess", single(v.Shininess))
		m.set("bump", single(v.Bump))
		names := [...]string{"emissive_map", "ambient_map", "diffuse_map", "specular_map", "shininess_map", "bump_map"}
		for i, t := range v.Maps() {
			m.set(names[i], d.structure(t))
		}
		m.set("draw_mode", str(v.DrawMode.String()))
		d.userData(m, v.UserData)

	case *xmodel.Mesh:
		m.set("name", str(v.Name))
		d.pool(m, "positions", v.Positions)
		d.pool(m, "normals", v.Normals)
		d.pool(m, "colors", v.Colors)
		d.pool(m, "texture_coordinates", v.TexCoords)
		if v.Skin != nil {
			m.set("skin", d.skin(v.Skin))
		}
		m.set("vertices", integer(len(v.Vertices)))
		m.set("materials", list(d, v.Materials))
		m.set("elements", integer(len(v.Elements)))
		d.userData(m, v.UserData)

	case *xmodel.Node:
		m.set("name", str(v.Name))
		m.set("connected", boolean(v.Connected))
		slots := [...]string{"matrix", "translate", "scale", "rotate"}
		for i, t := range v.Transforms {
			m.set(slots[i], d.structure(t))
		}
		if len(v.Kinematics) > 0 {
			m.set("kinematics", list(d, v.Kinematics))
		}
		if len(v.Meshes) > 0 {
			m.set("meshes", list(d, v.Meshes))
		}
		if len(v.Children) > 0 {
			m.set("children", list(d, v.Children))
		}
		d.userData(m, v.UserData)

	case *xmodel.Kinematic:
		m.set("target", d.structure(v.Target))
		m.set("max_iterations", integer(int(v.MaxIterations)))
		m.set("chain_length", integer(int(v.ChainLength)))
		m.set("influence", single(v.Influence))

	case *xmodel.Animation:
		m.set("name", str(v.Name))
		m.set("target", d.structure(v.Target))
		if v.Index != xmodel.AllComponents {
			m.set("index", integer(int(v.Index)))
		}
		if d.cfg.Pools {
			m.set("keys", list(d, v.Keys))
		} else {
			d.skip(v.Keys)
			m.set("keys", integer(len(v.Keys)))
		}
		if len(v.Children) > 0 {
			m.set("children", list(d, v.Children))
		}
		d.userData(m, v.UserData)

	case *xmodel.AnimationKey:
		m.set("interpolation", str(v.Interpolation.String()))
		m.set("time", float(v.Time))
		m.set("value", flow(v.Value, d.cfg.MaxValues))

	case *xmodel.AnimationSet:
		m.set("name", str(v.Name))
		m.set("animations", list(d, v.Animations))
		d.userData(m, v.UserData)

	case xmodel.Transform:
		m.set("value", flow(v.Values(), d.cfg.MaxValues))
	}
	return m.Node
}

func (d *dumper) skin(s *xmodel.Skin) *yaml.Node {
	m := newMapping()
	m.set("entries", integer(s.Count()))
	m.set("stride", integer(s.Stride))
	m.set("bones", list(d, s.Nodes))
	return m.Node
}

// skip numbers keys that are not printed so later ids still match the wire.
func (d *dumper) skip(keys []*xmodel.AnimationKey) {
	for _, k := range keys {
		if k == nil {
			continue
		}
		if _, ok := d.ids[k]; !ok {
			d.ids[k] = len(d.ids) + 1
		}
	}
}
