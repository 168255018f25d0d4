package phys

import "math"

// Vec3 is a vector in the world frame.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Norm() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Inertia is a diagonal inertia tensor in the body's principal frame.
// The bodies simulated here are principal-axis-aligned, so off-diagonal
// terms never appear.
type Inertia struct {
	Ixx, Iyy, Izz float64
}

// SphereInertia returns the tensor of a solid sphere, ixx = 2mr²/5.
func SphereInertia(mass, radius float64) Inertia {
	i := 2.0 * mass * radius * radius / 5.0
	return Inertia{i, i, i}
}

// MulVec applies the tensor to an angular velocity, yielding angular
// momentum H = Iw.
func (i Inertia) MulVec(w Vec3) Vec3 {
	return Vec3{i.Ixx * w.X, i.Iyy * w.Y, i.Izz * w.Z}
}

// SolveVec applies the inverse tensor, yielding w = I⁻¹H.
func (i Inertia) SolveVec(h Vec3) Vec3 {
	return Vec3{h.X / i.Ixx, h.Y / i.Iyy, h.Z / i.Izz}
}
