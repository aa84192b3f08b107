package scene

import (
	"slices"
	"sort"

	xmath "github.com/Faultbox/xmodel/pkg/math"
	"github.com/Faultbox/xmodel/pkg/xmodel"
)

// Duration returns the time of the latest key of anim or of any of its
// child animations.
func Duration(anim *xmodel.Animation) float64 {
	if anim == nil {
		return 0
	}
	var d float64
	for _, k := range anim.Keys {
		if k != nil && k.Time > d {
			d = k.Time
		}
	}
	for _, child := range anim.Children {
		d = max(d, Duration(child))
	}
	return d
}

// ClipDuration returns the longest Duration of the animations in set.
func ClipDuration(set *xmodel.AnimationSet) float64 {
	if set == nil {
		return 0
	}
	var d float64
	for _, a := range set.Animations {
		d = max(d, Duration(a))
	}
	return d
}

// Sample returns the values of the target of anim at time t: a copy of the
// stored values with the animated components replaced. Child animations are
// not sampled. It returns nil when anim has no target or no keys.
func Sample(anim *xmodel.Animation, t float64) []float32 {
	if anim == nil || xmodel.IsNil(anim.Target) {
		return nil
	}
	values := slices.Clone(anim.Target.Values())
	if !apply(anim, t, values) {
		return nil
	}
	return values
}

// Evaluate samples every animation of set and its children at time t.
// Animations of the same target apply in order, later ones winning per
// component.
func Evaluate(set *xmodel.AnimationSet, t float64) Pose {
	pose := make(Pose)
	if set == nil {
		return pose
	}
	var walk func(a *xmodel.Animation)
	walk = func(a *xmodel.Animation) {
		if a == nil {
			return
		}
		if !xmodel.IsNil(a.Target) {
			values, ok := pose[a.Target]
			if !ok {
				values = slices.Clone(a.Target.Values())
			}
			if apply(a, t, values) {
				pose[a.Target] = values
			}
		}
		for _, child := range a.Children {
			walk(child)
		}
	}
	for _, a := range set.Animations {
		walk(a)
	}
	return pose
}

// bracket finds the keys around t and the blend weight between them. Times
// before the first key or after the last clamp to that key.
func bracket(keys []*xmodel.AnimationKey, t float64) (k0, k1 *xmodel.AnimationKey, w float32) {
	n := len(keys)
	i := sort.Search(n, func(i int) bool { return keys[i].Time >= t })
	switch {
	case i < n && keys[i].Time == t:
		return keys[i], keys[i], 0
	case i == 0:
		return keys[0], keys[0], 0
	case i == n:
		return keys[n-1], keys[n-1], 0
	}
	k0, k1 = keys[i-1], keys[i]
	return k0, k1, float32((t - k0.Time) / (k1.Time - k0.Time))
}

// apply writes the value of anim at time t into dst, which holds the target
// values. Bezier keys carry no tangents and blend linearly.
func apply(anim *xmodel.Animation, t float64, dst []float32) bool {
	keys := anim.Keys
	if slices.Contains(keys, nil) {
		keys = slices.DeleteFunc(slices.Clone(keys), func(k *xmodel.AnimationKey) bool { return k == nil })
	}
	if len(keys) == 0 {
		return false
	}
	k0, k1, w := bracket(keys, t)

	if anim.Index != xmodel.AllComponents {
		i := int(anim.Index)
		if i < 0 || i >= len(dst) || len(k0.Value) == 0 || len(k1.Value) == 0 {
			return false
		}
		dst[i] = k0.Value[0]*(1-w) + k1.Value[0]*w
		return true
	}

	n := len(dst)
	if len(k0.Value) < n || len(k1.Value) < n {
		return false
	}
	a, b := k0.Value[:n], k1.Value[:n]
	if w <= 0 {
		copy(dst, a)
		return true
	}

	switch anim.Target.(type) {
	case *xmodel.AxisRotate:
		axis := xmath.Vec3From(a).Slerp(xmath.Vec3From(b), w).Array()
		copy(dst, axis[:])
		dst[3] = a[3]*(1-w) + b[3]*w
	case *xmodel.Quaternion:
		q := xmath.QuatFrom(a).Slerp(xmath.QuatFrom(b), w).Array()
		copy(dst, q[:])
	case *xmodel.Matrix:
		m := xmath.Mat4From(a).Interpolate(xmath.Mat4From(b), w)
		copy(dst, m[:])
	default:
		for i := range dst {
			dst[i] = a[i]*(1-w) + b[i]*w
		}
	}
	return true
}
