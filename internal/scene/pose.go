package scene

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/hullgate/pkg/math"
)

// YawPitchPose builds a camera pose at pos looking along
// (-sin yaw cos pitch, sin pitch, -cos yaw cos pitch).
func YawPitchPose(pos math.Vec3, yaw, pitch float32) math.Mat4 {
	return math.QuatFromYawPitch(yaw, pitch).ToMat4().WithTranslation(pos)
}

// YawPitchFromForward inverts the forward formula of YawPitchPose. Roll
// is not representable and is dropped.
func YawPitchFromForward(f math.Vec3) (yaw, pitch float32) {
	f = f.Normalize()
	yaw = math32.Atan2(-f.X, -f.Z)
	pitch = math32.Asin(math32.Max(-1, math32.Min(1, f.Y)))
	return yaw, pitch
}
