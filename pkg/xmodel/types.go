package xmodel

import (
	"fmt"
	"math"
)

// Structure is any value that can be written behind an identity.
// Implementations are pointers; two distinct pointers are two distinct
// structures even when their contents are equal.
type Structure interface {
	Tag() Tag
}

// Transform is a transform leaf that can fill a node slot or be the target
// of an animation. Values returns the live component slice.
type Transform interface {
	Structure
	Values() []float32
}

// UserData is an opaque application blob. Empty means absent.
type UserData []byte

// AxisRotate is a rotation of Angle radians around (X, Y, Z).
type AxisRotate struct {
	Value [SizeAxisRotate]float32 // X, Y, Z, Angle
}

// Quaternion is a rotation stored as X, Y, Z, W.
type Quaternion struct {
	Value [SizeQuaternion]float32
}

// Scale is a per-axis scale factor.
type Scale struct {
	Value [SizeScale]float32
}

// Translate is a translation vector.
type Translate struct {
	Value [SizeTranslate]float32
}

// Matrix is a column-major 4x4 matrix.
type Matrix struct {
	Value [SizeMatrix]float32
}

func (*AxisRotate) Tag() Tag { return TagAxisRotate }
func (*Quaternion) Tag() Tag { return TagQuaternion }
func (*Scale) Tag() Tag      { return TagScale }
func (*Translate) Tag() Tag  { return TagTranslate }
func (*Matrix) Tag() Tag     { return TagMatrix }

func (t *AxisRotate) Values() []float32 { return t.Value[:] }
func (t *Quaternion) Values() []float32 { return t.Value[:] }
func (t *Scale) Values() []float32      { return t.Value[:] }
func (t *Translate) Values() []float32  { return t.Value[:] }
func (t *Matrix) Values() []float32     { return t.Value[:] }

// NewAxisRotate returns a rotation of angle radians around (x, y, z).
func NewAxisRotate(x, y, z, angle float32) *AxisRotate {
	return &AxisRotate{Value: [SizeAxisRotate]float32{x, y, z, angle}}
}

// NewQuaternion returns a quaternion transform.
func NewQuaternion(x, y, z, w float32) *Quaternion {
	return &Quaternion{Value: [SizeQuaternion]float32{x, y, z, w}}
}

// NewScale returns a scale transform.
func NewScale(x, y, z float32) *Scale {
	return &Scale{Value: [SizeScale]float32{x, y, z}}
}

// NewTranslate returns a translation transform.
func NewTranslate(x, y, z float32) *Translate {
	return &Translate{Value: [SizeTranslate]float32{x, y, z}}
}

// NewMatrix returns an identity matrix transform.
func NewMatrix() *Matrix {
	return &Matrix{Value: [SizeMatrix]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// Container is the root of a model. It owns every texture, material, mesh,
// root node and animation set reachable from it.
type Container struct {
	Name          string
	Textures      []*Texture
	Materials     []*Material
	Meshes        []*Mesh
	Nodes         []*Node // root nodes
	TimeRate      float64
	AnimationSets []*AnimationSet
	UserData      UserData
}

func (*Container) Tag() Tag { return TagContainer }

// NewContainer returns an empty container with a time rate of 1.
func NewContainer(name string) *Container {
	return &Container{Name: name, TimeRate: 1}
}

// Texture is an image referenced by path and optionally embedded.
type Texture struct {
	Name     string
	Ref      string
	Data     []byte
	UserData UserData
}

func (*Texture) Tag() Tag { return TagTexture }

// DrawMode holds material face culling flags.
type DrawMode uint32

const (
	DrawFaceNone  DrawMode = 0
	DrawFaceFront DrawMode = 1 << 0
	DrawFaceBack  DrawMode = 1 << 1
)

// String returns the set flags, e.g. "Front|Back".
func (m DrawMode) String() string {
	switch m {
	case DrawFaceNone:
		return "None"
	case DrawFaceFront:
		return "Front"
	case DrawFaceBack:
		return "Back"
	case DrawFaceFront | DrawFaceBack:
		return "Front|Back"
	default:
		return fmt.Sprintf("DrawMode(%#x)", uint32(m))
	}
}

// Texture map slots of a material, in wire order.
const (
	MapEmissive = iota
	MapAmbient
	MapDiffuse
	MapSpecular
	MapShininess
	MapBump
	NumTextureMaps
)

// Material describes surface shading. Its texture maps are shared references:
// the textures belong to the container.
type Material struct {
	Name      string
	Emissive  [SizeRGBA]float32
	Ambient   [SizeRGBA]float32
	Diffuse   [SizeRGBA]float32
	Specular  [SizeRGBA]float32
	Shininess float32
	Bump      float32

	EmissiveMap  *Texture
	AmbientMap   *Texture
	DiffuseMap   *Texture
	SpecularMap  *Texture
	ShininessMap *Texture
	BumpMap      *Texture

	DrawMode DrawMode
	UserData UserData
}

func (*Material) Tag() Tag { return TagMaterial }

// NewMaterial returns a material with the default colours.
func NewMaterial(name string) *Material {
	return &Material{
		Name:      name,
		Emissive:  [SizeRGBA]float32{0, 0, 0, 1},
		Ambient:   [SizeRGBA]float32{0.1, 0.1, 0.1, 1},
		Diffuse:   [SizeRGBA]float32{1, 1, 1, 1},
		Specular:  [SizeRGBA]float32{0.4, 0.4, 0.4, 1},
		Shininess: 5,
		Bump:      1,
		DrawMode:  DrawFaceFront,
	}
}

// Maps returns the texture maps indexed by the Map* constants.
func (m *Material) Maps() [NumTextureMaps]*Texture {
	return [NumTextureMaps]*Texture{
		m.EmissiveMap, m.AmbientMap, m.DiffuseMap,
		m.SpecularMap, m.ShininessMap, m.BumpMap,
	}
}

// Pool is a deduplicated attribute pool. Every element has Size components.
type Pool struct {
	Size int
	Data []float32
}

// Count returns the number of elements in the pool.
func (p Pool) Count() int {
	if p.Size <= 0 {
		return 0
	}
	return len(p.Data) / p.Size
}

// At returns the components of element i.
func (p Pool) At(i int) []float32 {
	return p.Data[i*p.Size : (i+1)*p.Size]
}

// Vertex indexes into the mesh pools. -1 means the attribute is absent.
type Vertex struct {
	Position   int32
	Normal     int32
	Color      int32
	TexCoord   int32
	SkinWeight int32
}

// NewVertex returns a vertex with every attribute absent.
func NewVertex() Vertex {
	return Vertex{Position: -1, Normal: -1, Color: -1, TexCoord: -1, SkinWeight: -1}
}

// Element is a polygon: a material index into Mesh.Materials and a list of
// indices into Mesh.Vertices.
type Element struct {
	Material int16
	Vertices []uint32
}

// NewElement returns a polygon over the given vertices. material is an index
// into Mesh.Materials, or -1 for none.
func NewElement(material int16, vertices ...uint32) Element {
	return Element{Material: material, Vertices: vertices}
}

// Mesh is a piece of geometry with deduplicated attribute pools.
type Mesh struct {
	Name      string
	Positions Pool
	Normals   Pool
	Colors    Pool
	TexCoords Pool
	Skin      *Skin
	Vertices  []Vertex
	Materials []*Material // shared
	Elements  []Element
	UserData  UserData
}

func (*Mesh) Tag() Tag { return TagMesh }

// Skin binds mesh vertices to bone nodes. Entry i occupies
// Indices[i*Stride:(i+1)*Stride] and Weights[i*Stride:(i+1)*Stride], of which
// the first Counts[i] are active.
type Skin struct {
	Stride  int
	Counts  []uint8
	Indices []uint16
	Weights []float32

	Nodes             []*Node // shared bone references
	OffsetMatrices    [][SizeMatrix]float32
	OffsetQuaternions [][SizeQuaternion]float32
}

// Count returns the number of weighted index entries.
func (s *Skin) Count() int {
	return len(s.Counts)
}

// Entry returns the active bone indices and weights of entry i.
func (s *Skin) Entry(i int) ([]uint16, []float32) {
	off := i * s.Stride
	n := int(s.Counts[i])
	return s.Indices[off : off+n], s.Weights[off : off+n]
}

// Transform slots of a node, in wire order.
const (
	TransformMatrix = iota
	TransformTranslate
	TransformScale
	TransformRotate
	NumTransforms
)

// Node is an element of the scene and skeleton tree. It owns its meshes and
// children; the parent link is a weak back-reference rebuilt on decode.
type Node struct {
	Name      string
	Connected bool

	IKLockAxis   [SizeVector3]bool
	IKLimitAngle [SizeVector3]bool
	IKMinAngle   [SizeVector3]float32
	IKMaxAngle   [SizeVector3]float32
	BoneTail     [SizeVector3]float32

	Transforms [NumTransforms]Transform
	Kinematics []*Kinematic
	Meshes     []*Mesh
	Children   []*Node
	UserData   UserData

	parent *Node
}

func (*Node) Tag() Tag { return TagNode }

// NewNode returns a connected node with unlimited IK angles.
func NewNode(name string) *Node {
	pi := float32(math.Pi)
	return &Node{
		Name:       name,
		Connected:  true,
		IKMinAngle: [SizeVector3]float32{-pi, -pi, -pi},
		IKMaxAngle: [SizeVector3]float32{pi, pi, pi},
	}
}

// Parent returns the node whose child list holds n, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// SetParent sets the weak parent link without touching any child list.
func (n *Node) SetParent(parent *Node) {
	n.parent = parent
}

// AddChild appends child to the child list and links it back to n.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
	child.parent = n
}

// Kinematic is an inverse kinematics constraint solved toward Target.
type Kinematic struct {
	Target        *Node // shared
	MaxIterations uint16
	ChainLength   uint16
	Influence     float32
}

func (*Kinematic) Tag() Tag { return TagKinematic }

// NewKinematic returns a constraint with the default solver settings.
func NewKinematic(target *Node) *Kinematic {
	return &Kinematic{Target: target, MaxIterations: 100, ChainLength: 1, Influence: 1}
}

// Interpolation is the curve used between two animation keys.
type Interpolation int8

const (
	InterpolateUnknown Interpolation = -1
	InterpolateLinear  Interpolation = 0
	InterpolateBezier  Interpolation = 1
)

// String returns a human-readable interpolation name.
func (i Interpolation) String() string {
	switch i {
	case InterpolateUnknown:
		return "Unknown"
	case InterpolateLinear:
		return "Linear"
	case InterpolateBezier:
		return "Bezier"
	default:
		return fmt.Sprintf("Interpolation(%d)", int8(i))
	}
}

// AllComponents is the Animation.Index value that animates every component
// of the target.
const AllComponents int16 = -1

// Animation drives one transform channel. Target is shared; keys and
// children are owned.
type Animation struct {
	Name     string
	Target   Transform
	Index    int16
	Keys     []*AnimationKey
	Children []*Animation
	UserData UserData
}

func (*Animation) Tag() Tag { return TagAnimation }

// NewAnimation returns an animation of every component of target.
func NewAnimation(name string, target Transform) *Animation {
	return &Animation{Name: name, Target: target, Index: AllComponents}
}

// AnimationKey is a keyframe value at a point in time.
type AnimationKey struct {
	Interpolation Interpolation
	Time          float64
	Value         []float32
}

func (*AnimationKey) Tag() Tag { return TagAnimationKey }

// NewAnimationKey returns a linear key.
func NewAnimationKey(time float64, value ...float32) *AnimationKey {
	return &AnimationKey{Interpolation: InterpolateLinear, Time: time, Value: value}
}

// AnimationSet is a named clip owning its animations.
type AnimationSet struct {
	Name       string
	Animations []*Animation
	UserData   UserData
}

func (*AnimationSet) Tag() Tag { return TagAnimationSet }

// IsNil reports whether s is nil or an interface holding a nil pointer.
func IsNil(s Structure) bool {
	switch v := s.(type) {
	case nil:
		return true
	case *AxisRotate:
		return v == nil
	case *Quaternion:
		return v == nil
	case *Scale:
		return v == nil
	case *Translate:
		return v == nil
	case *Matrix:
		return v == nil
	case *Container:
		return v == nil
	case *Texture:
		return v == nil
	case *Material:
		return v == nil
	case *Mesh:
		return v == nil
	case *Node:
		return v == nil
	case *Kinematic:
		return v == nil
	case *Animation:
		return v == nil
	case *AnimationKey:
		return v == nil
	case *AnimationSet:
		return v == nil
	default:
		return false
	}
}

// newStructure allocates an empty structure of kind t.
func newStructure(t Tag) (Structure, bool) {
	switch t {
	case TagAxisRotate:
		return &AxisRotate{}, true
	case TagQuaternion:
		return &Quaternion{}, true
	case TagScale:
		return &Scale{}, true
	case TagTranslate:
		return &Translate{}, true
	case TagMatrix:
		return &Matrix{}, true
	case TagContainer:
		return &Container{}, true
	case TagTexture:
		return &Texture{}, true
	case TagMaterial:
		return &Material{}, true
	case TagMesh:
		return &Mesh{}, true
	case TagNode:
		return &Node{}, true
	case TagKinematic:
		return &Kinematic{}, true
	case TagAnimation:
		return &Animation{}, true
	case TagAnimationKey:
		return &AnimationKey{}, true
	case TagAnimationSet:
		return &AnimationSet{}, true
	default:
		return nil, false
	}
}
