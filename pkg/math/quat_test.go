package math

import (
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	m := QuatIdentity().ToMat4()
	if !m.ApproxEqual(Identity(), 1e-6) {
		t.Errorf("identity quaternion matrix = %v", m)
	}
}

func TestQuatFromAxisAngleMatchesRotate(t *testing.T) {
	angles := []float32{0, 0.3, 1.5707964, 2.5, -1.1}
	for _, a := range angles {
		q := QuatFromAxisAngle(UnitY, a).ToMat4()
		if !q.ApproxEqual(RotateY(a), 1e-5) {
			t.Errorf("angle %v: quat matrix %v != RotateY %v", a, q, RotateY(a))
		}
		q = QuatFromAxisAngle(UnitX, a).ToMat4()
		if !q.ApproxEqual(RotateX(a), 1e-5) {
			t.Errorf("angle %v: quat matrix %v != RotateX %v", a, q, RotateX(a))
		}
	}
}

func TestQuatYawPitchForward(t *testing.T) {
	yaw, pitch := float32(0.8), float32(-0.4)
	m := QuatFromYawPitch(yaw, pitch).ToMat4()
	got := m.TransformDirection(Vec3{0, 0, -1})

	// (-sin yaw cos pitch, sin pitch, -cos yaw cos pitch)
	want := Vec3{-0.71735609 * 0.92106099, -0.38941834, -0.69670671 * 0.92106099}
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("forward = %v, want %v", got, want)
	}
	if !m.ApproxEqual(RotateY(yaw).Mul(RotateX(pitch)), 1e-5) {
		t.Error("QuatFromYawPitch should equal RotateY * RotateX")
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 0, Y: 0, Z: 0, W: 2}.Normalize()
	if abs(q.W-1) > 1e-6 {
		t.Errorf("Normalize W = %v, want 1", q.W)
	}
	if z := (Quat{}).Normalize(); z != QuatIdentity() {
		t.Errorf("zero quaternion Normalize = %v, want identity", z)
	}
}

func TestQuatMulComposes(t *testing.T) {
	a := QuatFromAxisAngle(UnitY, 0.5)
	b := QuatFromAxisAngle(UnitY, 0.25)
	got := a.Mul(b).ToMat4()
	if !got.ApproxEqual(RotateY(0.75), 1e-5) {
		t.Errorf("composed rotation = %v, want RotateY(0.75)", got)
	}
}
