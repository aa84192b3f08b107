package xmodel

import "fmt"

// Tag identifies the kind of a structure on the wire.
type Tag uint32

// Structure tags. The set is closed: a decoder rejects anything else.
const (
	TagNull         Tag = 0 // Reserved, never written after an identity
	TagAxisRotate   Tag = 1
	TagQuaternion   Tag = 2
	TagScale        Tag = 3
	TagTranslate    Tag = 4
	TagMatrix       Tag = 5
	TagContainer    Tag = 6
	TagTexture      Tag = 7
	TagMaterial     Tag = 8
	TagMesh         Tag = 9
	TagNode         Tag = 10
	TagKinematic    Tag = 11
	TagAnimation    Tag = 12
	TagAnimationKey Tag = 13
	TagAnimationSet Tag = 14
)

var tagNames = [...]string{
	TagNull:         "Null",
	TagAxisRotate:   "AxisRotate",
	TagQuaternion:   "Quaternion",
	TagScale:        "Scale",
	TagTranslate:    "Translate",
	TagMatrix:       "Matrix",
	TagContainer:    "Container",
	TagTexture:      "Texture",
	TagMaterial:     "Material",
	TagMesh:         "Mesh",
	TagNode:         "Node",
	TagKinematic:    "Kinematic",
	TagAnimation:    "Animation",
	TagAnimationKey: "AnimationKey",
	TagAnimationSet: "AnimationSet",
}

// String returns the kind name of the tag.
func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("Unknown(%d)", uint32(t))
}

// Valid reports whether t names a structure kind that may follow an identity.
func (t Tag) Valid() bool {
	return t >= TagAxisRotate && t <= TagAnimationSet
}

// IsTransform reports whether t is one of the transform leaf kinds.
func (t Tag) IsTransform() bool {
	return t >= TagAxisRotate && t <= TagMatrix
}

// Fixed component counts of the transform leaves and other fixed vectors.
const (
	SizeRGBA       = 4
	SizeVector3    = 3
	SizeAxisRotate = 4 // axis x, y, z and angle
	SizeQuaternion = 4
	SizeScale      = 3
	SizeTranslate  = 3
	SizeMatrix     = 16
)

// Size returns the number of float components carried by a transform leaf of kind t,
// or 0 when t is not a transform kind.
func (t Tag) Size() int {
	switch t {
	case TagAxisRotate:
		return SizeAxisRotate
	case TagQuaternion:
		return SizeQuaternion
	case TagScale:
		return SizeScale
	case TagTranslate:
		return SizeTranslate
	case TagMatrix:
		return SizeMatrix
	default:
		return 0
	}
}
