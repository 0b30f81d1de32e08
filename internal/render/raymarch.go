package render

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/piatra-institute/morviq/pkg/core"
)

// ErrInvalidViewport is returned when a Raymarcher's camera viewport fails
// validation.
var ErrInvalidViewport = fmt.Errorf("render: invalid viewport")

const (
	tMax       = 5.0
	alphaMax   = 0.95
	sampleMinV = 0.05
	eyeDist    = 2.0
)

// Raymarcher converts a camera, transfer function, render params, and
// volume field into a core.Frame. It is owned by a single peer and never
// shares mutable state with another peer.
type Raymarcher struct {
	log zerolog.Logger

	volume   *core.VolumeField
	camera   core.Camera
	transfer *core.TransferFunction
	params   core.RenderParams
	bioText  string
	bioState BioelectricState
	bioValid bool
}

// NewRaymarcher constructs a Raymarcher that logs through log.
func NewRaymarcher(log zerolog.Logger) *Raymarcher {
	return &Raymarcher{
		log:      log,
		camera:   core.Camera{Projection: core.Identity(), View: core.Identity(), Viewport: core.Viewport{W: 1, H: 1}},
		transfer: core.BioelectricTransferFunction(),
		params:   core.ParamsForQuality(core.QualityMedium),
	}
}

// SetVolume replaces the raymarcher's volume field. A nil field clears it,
// triggering on-demand procedural generation at render time.
func (r *Raymarcher) SetVolume(field *core.VolumeField) { r.volume = field }

// SetCamera replaces the camera. An invalid viewport is rejected and the
// prior camera is kept, matching the "invalid viewport is reported and the
// call is a no-op" contract.
func (r *Raymarcher) SetCamera(c core.Camera) error {
	if err := c.Viewport.Validate(); err != nil {
		r.log.Error().Err(err).Msg("render: rejecting camera with invalid viewport")
		return fmt.Errorf("%w: %v", ErrInvalidViewport, err)
	}
	r.camera = c
	return nil
}

// SetTransfer replaces the transfer function.
func (r *Raymarcher) SetTransfer(tf *core.TransferFunction) { r.transfer = tf }

// SetParams replaces the render params.
func (r *Raymarcher) SetParams(p core.RenderParams) { r.params = p }

// SetBioParams sets the raw bioelectric parameter text. Parsing into a
// BioelectricState happens once, lazily, the next time the procedural field
// is needed: the hot path consumes a struct, not text.
func (r *Raymarcher) SetBioParams(text string) {
	if text == r.bioText {
		return
	}
	r.bioText = text
	r.bioValid = false
}

func (r *Raymarcher) resolveBioState() BioelectricState {
	if r.bioValid {
		return r.bioState
	}
	state, err := ParseBioelectricState(r.bioText)
	if err != nil {
		r.log.Warn().Err(err).Msg("render: invalid bioelectric params, using defaults")
		state = DefaultBioelectricState()
	}
	r.bioState = state
	r.bioValid = true
	return state
}

// Render resets frame to the background and ray-marches every brick into it.
func (r *Raymarcher) Render(frame *core.Frame, bricks []core.BrickInfo) error {
	frame.Reset()
	field := r.volume
	if field == nil {
		field = GenerateBioelectricField(r.resolveBioState(), 64)
	}
	for _, b := range bricks {
		r.renderBrick(field, b, frame)
	}
	return nil
}

// renderBrick accumulates one brick's contribution into frame without
// clearing it.
func (r *Raymarcher) renderBrick(field *core.VolumeField, brick core.BrickInfo, frame *core.Frame) {
	w, h := frame.Width, frame.Height
	theta := float64(brick.ID) * 0.5
	rot := core.RotateY(theta)
	eye := core.Vec3{
		X: eyeDist * float32(math.Sin(theta)),
		Y: 0.5,
		Z: eyeDist * float32(math.Cos(theta)),
	}

	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			u := 2*float32(px)/float32(w) - 1
			v := 1 - 2*float32(py)/float32(h)

			screen := core.Vec3{X: u / 2, Y: v / 2, Z: 0}
			rotated := rotateVec3(rot, screen)
			target := rotated.Add(core.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
			dir := target.Sub(eye).Norm()

			color, depth, hit, _ := MarchRay(field, r.transfer, r.params, eye, dir)
			if hit {
				idx4 := (py*w + px) * 4
				frame.Color[idx4+0] = color[0]
				frame.Color[idx4+1] = color[1]
				frame.Color[idx4+2] = color[2]
				frame.Color[idx4+3] = color[3]
				frame.Depth[py*w+px] = depth
			}
		}
	}
}

func rotateVec3(m core.Mat4, v core.Vec3) core.Vec3 {
	out := m.MulVec4(core.Vec4{X: v.X, Y: v.Y, Z: v.Z, W: 0})
	return core.Vec3{X: out.X, Y: out.Y, Z: out.Z}
}

// MarchRay runs the front-to-back accumulation loop for a single ray. hit
// reports whether accum.a exceeded the 0.01 write threshold; steps reports
// how many samples were taken (bounded by ceil(tMax/stepSize)).
func MarchRay(field *core.VolumeField, tf *core.TransferFunction, params core.RenderParams, origin, dir core.Vec3) (color [4]byte, depth float32, hit bool, steps int) {
	step := params.StepSize
	if step <= 0 {
		step = 0.01
	}
	var accum core.Vec4
	firstHitT := float32(-1)

	for t := float32(0); t < tMax; t += step {
		steps++
		pos := origin.Add(dir.Mul(t))
		if !pos.InUnitCube() {
			continue
		}
		v := TrilinearSample(field, pos)
		if v < sampleMinV {
			continue
		}
		c := tf.Apply(v)
		if params.EnableGradients {
			g := Gradient(field, pos, 0.01)
			gl := g.Len()
			if gl > 0.01 {
				light := core.Vec3{X: 0.5, Y: 0.5, Z: 0.5}
				lambert := -g.Dot(light) / gl
				if lambert < 0 {
					lambert = 0
				}
				shade := 0.3 + 0.7*lambert
				c.X *= shade
				c.Y *= shade
				c.Z *= shade
			}
		}

		alphaSeg := c.W * step * 3
		if alphaSeg > 1 {
			alphaSeg = 1
		}

		oneMinusA := 1 - accum.W
		accum.X += c.X * alphaSeg * oneMinusA
		accum.Y += c.Y * alphaSeg * oneMinusA
		accum.Z += c.Z * alphaSeg * oneMinusA
		accum.W += alphaSeg * oneMinusA

		if firstHitT < 0 && accum.W > 0.01 {
			firstHitT = t
		}
		if accum.W > alphaMax {
			break
		}
	}

	if accum.W <= 0.01 {
		return color, depth, false, steps
	}

	clamped := accum.Clamp01()
	color = [4]byte{
		byteRound(clamped.X),
		byteRound(clamped.Y),
		byteRound(clamped.Z),
		byteRound(clamped.W),
	}
	if params.TrueDepth && firstHitT >= 0 {
		depth = firstHitT / tMax
		if depth > 1 {
			depth = 1
		}
	} else {
		depth = 0.5
	}
	return color, depth, true, steps
}

func byteRound(v float32) byte {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return byte(v*255 + 0.5)
}
