package render

import "github.com/piatra-institute/morviq/pkg/core"

// TrilinearSample evaluates field at pos in [0,1]^3 using trilinear
// interpolation over the 8 surrounding voxels. At an exact
// integer voxel coordinate this returns that voxel's value exactly, since
// the fractional parts are all zero and every weight but the corner's
// collapses to zero.
func TrilinearSample(field *core.VolumeField, pos core.Vec3) float32 {
	dx, dy, dz := field.Dims[0], field.Dims[1], field.Dims[2]

	fx := pos.X * float32(dx-1)
	fy := pos.Y * float32(dy-1)
	fz := pos.Z * float32(dz-1)

	x0, y0, z0 := int(fx), int(fy), int(fz)
	x1, y1, z1 := minInt(x0+1, dx-1), minInt(y0+1, dy-1), minInt(z0+1, dz-1)

	tx, ty, tz := fx-float32(x0), fy-float32(y0), fz-float32(z0)

	c000 := field.At(x0, y0, z0)
	c100 := field.At(x1, y0, z0)
	c010 := field.At(x0, y1, z0)
	c110 := field.At(x1, y1, z0)
	c001 := field.At(x0, y0, z1)
	c101 := field.At(x1, y0, z1)
	c011 := field.At(x0, y1, z1)
	c111 := field.At(x1, y1, z1)

	c00 := lerp(c000, c100, tx)
	c10 := lerp(c010, c110, tx)
	c01 := lerp(c001, c101, tx)
	c11 := lerp(c011, c111, tx)

	c0 := lerp(c00, c10, ty)
	c1 := lerp(c01, c11, ty)

	return lerp(c0, c1, tz)
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Gradient computes the central-difference gradient of field at pos with
// step h.
func Gradient(field *core.VolumeField, pos core.Vec3, h float32) core.Vec3 {
	sample := func(p core.Vec3) float32 {
		if !p.InUnitCube() {
			return TrilinearSample(field, clampUnit(p))
		}
		return TrilinearSample(field, p)
	}
	dx := sample(core.Vec3{X: pos.X + h, Y: pos.Y, Z: pos.Z}) - sample(core.Vec3{X: pos.X - h, Y: pos.Y, Z: pos.Z})
	dy := sample(core.Vec3{X: pos.X, Y: pos.Y + h, Z: pos.Z}) - sample(core.Vec3{X: pos.X, Y: pos.Y - h, Z: pos.Z})
	dz := sample(core.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z + h}) - sample(core.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z - h})
	return core.Vec3{X: dx, Y: dy, Z: dz}
}

func clampUnit(p core.Vec3) core.Vec3 {
	c := func(f float32) float32 {
		if f < 0 {
			return 0
		}
		if f > 1 {
			return 1
		}
		return f
	}
	return core.Vec3{X: c(p.X), Y: c(p.Y), Z: c(p.Z)}
}
