package xmodel

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// encoder writes structures depth-first in wire field order. All state lives
// for one Encode call.
type encoder struct {
	w   *writer
	ids *encodeTable
	log *zap.Logger
}

// putStructure writes a reference to s: 0 for nil, the bare identity for a
// repeat, or identity, tag and payload for a first encounter.
func (e *encoder) putStructure(s Structure) {
	if e.w.err != nil {
		return
	}
	if IsNil(s) {
		e.w.uint32(NullID)
		return
	}
	if id, ok := e.ids.lookup(s); ok {
		e.w.uint32(id)
		return
	}
	tag := s.Tag()
	if !tag.Valid() {
		e.w.setError(fmt.Errorf("%w: %d on %T", ErrUnknownStructureTag, uint32(tag), s))
		return
	}

	id := e.ids.assign(s)
	e.w.uint32(id)
	e.w.uint32(uint32(tag))
	if ce := e.log.Check(zap.DebugLevel, "encode structure"); ce != nil {
		ce.Write(zap.Uint32("id", id), zap.Stringer("tag", tag), zap.Int64("offset", e.w.n))
	}
	e.putPayload(s)
}

func (e *encoder) putPayload(s Structure) {
	switch v := s.(type) {
	case *AxisRotate:
		e.w.float32s(v.Value[:])
	case *Quaternion:
		e.w.float32s(v.Value[:])
	case *Scale:
		e.w.float32s(v.Value[:])
	case *Translate:
		e.w.float32s(v.Value[:])
	case *Matrix:
		e.w.float32s(v.Value[:])
	case *Container:
		e.putContainer(v)
	case *Texture:
		e.putTexture(v)
	case *Material:
		e.putMaterial(v)
	case *Mesh:
		e.putMesh(v)
	case *Node:
		e.putNode(v)
	case *Kinematic:
		e.putKinematic(v)
	case *Animation:
		e.putAnimation(v)
	case *AnimationKey:
		e.putAnimationKey(v)
	case *AnimationSet:
		e.putAnimationSet(v)
	default:
		e.w.setError(fmt.Errorf("%w: %s carried by %T", ErrUnknownStructureTag, s.Tag(), s))
	}
}

// putList writes a u16 count followed by one reference per item.
func putList[T Structure](e *encoder, items []T, what string) {
	e.w.count16(len(items), what)
	for _, item := range items {
		if e.w.err != nil {
			return
		}
		e.putStructure(item)
	}
}

func (e *encoder) putUserData(u UserData) {
	e.w.blob(u, "user data bytes")
}

func (e *encoder) putContainer(c *Container) {
	e.w.string(c.Name)
	putList(e, c.Textures, "textures")
	putList(e, c.Materials, "materials")
	putList(e, c.Meshes, "meshes")
	putList(e, c.Nodes, "nodes")
	e.w.float64(c.TimeRate)
	putList(e, c.AnimationSets, "animation sets")
	e.putUserData(c.UserData)
}

func (e *encoder) putTexture(t *Texture) {
	e.w.string(t.Name)
	e.w.string(t.Ref)
	e.w.blob(t.Data, "texture bytes")
	e.putUserData(t.UserData)
}

func (e *encoder) putMaterial(m *Material) {
	e.w.string(m.Name)

	e.w.float32s(m.Emissive[:])
	e.w.float32s(m.Ambient[:])
	e.w.float32s(m.Diffuse[:])
	e.w.float32s(m.Specular[:])
	e.w.float32(m.Shininess)
	e.w.float32(m.Bump)

	e.putStructure(m.EmissiveMap)
	e.putStructure(m.AmbientMap)
	e.putStructure(m.DiffuseMap)
	e.putStructure(m.SpecularMap)
	e.putStructure(m.ShininessMap)
	e.putStructure(m.BumpMap)

	e.w.uint32(uint32(m.DrawMode))
	e.putUserData(m.UserData)
}

func (e *encoder) putPool(p Pool, what string) (count int) {
	count = p.Count()
	e.w.count32(count, what)
	if count == 0 {
		return 0
	}
	if p.Size > math.MaxUint8 {
		e.w.setError(fmt.Errorf("%w: %s arity %d", ErrOverflow, what, p.Size))
		return 0
	}
	e.w.uint8(uint8(p.Size))
	e.w.float32s(p.Data[:count*p.Size])
	return count
}

func (e *encoder) putMesh(m *Mesh) {
	e.w.string(m.Name)

	positions := e.putPool(m.Positions, "positions")
	normals := e.putPool(m.Normals, "normals")
	colors := e.putPool(m.Colors, "colors")
	texCoords := e.putPool(m.TexCoords, "texture coordinates")

	hasSkin := m.Skin != nil
	e.w.bool(hasSkin)
	if hasSkin {
		e.putSkin(m.Skin)
	}

	// Vertex fields are present only for the pools that exist.
	e.w.count32(len(m.Vertices), "vertices")
	for _, v := range m.Vertices {
		if e.w.err != nil {
			return
		}
		if positions > 0 {
			e.w.uint32(uint32(v.Position))
		}
		if normals > 0 {
			e.w.uint32(uint32(v.Normal))
		}
		if colors > 0 {
			e.w.uint32(uint32(v.Color))
		}
		if texCoords > 0 {
			e.w.uint32(uint32(v.TexCoord))
		}
		if hasSkin {
			e.w.uint32(uint32(v.SkinWeight))
		}
	}

	putList(e, m.Materials, "mesh materials")

	e.w.count32(len(m.Elements), "elements")
	for _, el := range m.Elements {
		if e.w.err != nil {
			return
		}
		e.w.uint16(uint16(el.Material))
		e.w.count8(len(el.Vertices), "element vertices")
		for _, vi := range el.Vertices {
			e.w.uint32(vi)
		}
	}

	e.putUserData(m.UserData)
}

func (e *encoder) putSkin(s *Skin) {
	n := s.Count()
	e.w.count32(n, "weighted indices")
	e.w.count8(s.Stride, "weighted index stride")
	if need := n * s.Stride; len(s.Indices) < need || len(s.Weights) < need {
		e.w.setError(fmt.Errorf("%w: skin holds %d indices and %d weights, stride %d needs %d",
			ErrMalformed, len(s.Indices), len(s.Weights), s.Stride, need))
		return
	}
	for i := 0; i < n; i++ {
		if e.w.err != nil {
			return
		}
		if int(s.Counts[i]) > s.Stride {
			e.w.setError(fmt.Errorf("%w: skin entry %d has %d weights, stride %d",
				ErrMalformed, i, s.Counts[i], s.Stride))
			return
		}
		indices, weights := s.Entry(i)
		e.w.uint8(s.Counts[i])
		for j := range indices {
			e.w.uint16(indices[j])
			e.w.float32(weights[j])
		}
	}

	bones := len(s.Nodes)
	e.w.count16(bones, "skin bones")
	if bones == 0 {
		return
	}
	if len(s.OffsetMatrices) != bones || len(s.OffsetQuaternions) != bones {
		e.w.setError(fmt.Errorf("%w: skin has %d bones, %d offset matrices, %d offset quaternions",
			ErrMalformed, bones, len(s.OffsetMatrices), len(s.OffsetQuaternions)))
		return
	}
	for _, node := range s.Nodes {
		e.putStructure(node)
	}
	for i := range s.OffsetMatrices {
		e.w.float32s(s.OffsetMatrices[i][:])
	}
	for i := range s.OffsetQuaternions {
		e.w.float32s(s.OffsetQuaternions[i][:])
	}
}

func (e *encoder) putNode(n *Node) {
	e.w.string(n.Name)
	e.w.bool(n.Connected)

	e.w.bools(n.IKLockAxis[:])
	e.w.bools(n.IKLimitAngle[:])
	e.w.float32s(n.IKMinAngle[:])
	e.w.float32s(n.IKMaxAngle[:])
	e.w.float32s(n.BoneTail[:])

	for _, t := range n.Transforms {
		e.putStructure(t)
	}

	putList(e, n.Kinematics, "kinematics")
	putList(e, n.Meshes, "node meshes")
	putList(e, n.Children, "children")
	e.putUserData(n.UserData)
}

func (e *encoder) putKinematic(k *Kinematic) {
	e.putStructure(k.Target)
	e.w.uint16(k.MaxIterations)
	e.w.uint16(k.ChainLength)
	e.w.float32(k.Influence)
}

func (e *encoder) putAnimation(a *Animation) {
	e.w.string(a.Name)
	e.putStructure(a.Target)
	e.w.uint16(uint16(a.Index))
	putList(e, a.Keys, "animation keys")
	putList(e, a.Children, "child animations")
	e.putUserData(a.UserData)
}

func (e *encoder) putAnimationKey(k *AnimationKey) {
	e.w.uint8(uint8(k.Interpolation))
	e.w.float64(k.Time)
	e.w.count16(len(k.Value), "key values")
	e.w.float32s(k.Value)
}

func (e *encoder) putAnimationSet(s *AnimationSet) {
	e.w.string(s.Name)
	putList(e, s.Animations, "animations")
	e.putUserData(s.UserData)
}
