package scene

import (
	xmath "github.com/Faultbox/xmodel/pkg/math"
	"github.com/Faultbox/xmodel/pkg/xmodel"
)

// Pose overrides transform values without touching the graph. A transform
// missing from the pose keeps its stored values. The nil Pose is the rest
// pose.
type Pose map[xmodel.Transform][]float32

// Values returns the posed values of t.
func (p Pose) Values(t xmodel.Transform) []float32 {
	if v, ok := p[t]; ok {
		return v
	}
	return t.Values()
}

// TransformMatrix converts one transform leaf with the given values.
func TransformMatrix(t xmodel.Transform, values []float32) xmath.Mat4 {
	if len(values) < t.Tag().Size() {
		return xmath.Identity()
	}
	switch t.(type) {
	case *xmodel.AxisRotate:
		return xmath.RotateAxis(xmath.Vec3From(values), values[3])
	case *xmodel.Quaternion:
		return xmath.QuatFrom(values).ToMat4()
	case *xmodel.Scale:
		return xmath.Scale(values[0], values[1], values[2])
	case *xmodel.Translate:
		return xmath.Translate(values[0], values[1], values[2])
	case *xmodel.Matrix:
		return xmath.Mat4From(values)
	}
	return xmath.Identity()
}

// LocalMatrix composes the four transform slots of n in slot order, so a
// point is rotated first, then scaled, translated and finally multiplied by
// the matrix slot. Empty slots are skipped.
func LocalMatrix(n *xmodel.Node, pose Pose) xmath.Mat4 {
	m := xmath.Identity()
	for _, t := range n.Transforms {
		if xmodel.IsNil(t) {
			continue
		}
		m = m.Mul(TransformMatrix(t, pose.Values(t)))
	}
	return m
}

// WorldMatrix composes the local matrices from the root down to n along the
// parent links. Call RepairParents first on a hand-built tree.
func WorldMatrix(n *xmodel.Node, pose Pose) xmath.Mat4 {
	m := LocalMatrix(n, pose)
	seen := map[*xmodel.Node]bool{n: true}
	for p := n.Parent(); p != nil && !seen[p]; p = p.Parent() {
		seen[p] = true
		m = LocalMatrix(p, pose).Mul(m)
	}
	return m
}
