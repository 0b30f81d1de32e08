package render

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/piatra-institute/morviq/pkg/core"
)

// BioelectricState is the fixed struct the renderer's procedural generator
// consumes. Any text form (JSON over the control protocol) is parsed into
// this struct once, outside the raymarcher's hot path.
type BioelectricState struct {
	BasePotential float32 `json:"basePotential"`
	KOut          float32 `json:"kOut"`          // extracellular K+, weights the hyperpolarized sphere
	NaIn          float32 `json:"naIn"`           // intracellular Na+, weights the depolarized sphere
	GNa           float32 `json:"gNa"`            // Na+ channel conductance
	GK            float32 `json:"gK"`             // K+ channel conductance
	GapJunctions  bool    `json:"gapJunctions"`
}

// DefaultBioelectricState returns a plausible resting-state configuration.
func DefaultBioelectricState() BioelectricState {
	return BioelectricState{
		BasePotential: 0.4,
		KOut:          0.3,
		NaIn:          0.3,
		GNa:           0.1,
		GK:            0.1,
		GapJunctions:  false,
	}
}

// ParseBioelectricState parses the JSON blob carried by the control
// protocol's BIOELECTRIC command into a BioelectricState. An empty string
// yields the default state.
func ParseBioelectricState(text string) (BioelectricState, error) {
	if text == "" {
		return DefaultBioelectricState(), nil
	}
	var s BioelectricState
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return BioelectricState{}, fmt.Errorf("render: invalid bioelectric json: %w", err)
	}
	return s, nil
}

var (
	hyperCenter = core.Vec3{X: 0.5, Y: 0.5, Z: 0.5}
	depolCenter = core.Vec3{X: 0.7, Y: 0.3, Z: 0.6}
)

const (
	hyperRadius = 0.25
	depolRadius = 0.2
)

// sphereFalloff returns a linear falloff in [0,1]: 1 at the center, 0 at
// distance >= radius.
func sphereFalloff(p, center core.Vec3, radius float32) float32 {
	d := p.Sub(center).Len()
	if d >= radius {
		return 0
	}
	return 1 - d/radius
}

// bioelectricValue evaluates the voxel formula at a normalized position p
// in [0,1]^3: a base potential term, a centered
// hyperpolarized sphere weighted by K+ concentration (subtracts, since
// hyperpolarization lowers membrane potential), an off-center depolarized
// sphere weighted by Na+ concentration (adds), an anisotropic sinusoidal
// action-potential term weighted by (gNa+gK), and an optional gap-junction
// lattice term. The result is clamped to [0,1].
func bioelectricValue(state BioelectricState, p core.Vec3) float32 {
	v := state.BasePotential
	v -= 0.5 * state.KOut * sphereFalloff(p, hyperCenter, hyperRadius)
	v += 0.5 * state.NaIn * sphereFalloff(p, depolCenter, depolRadius)

	action := float32(math.Sin(8*math.Pi*float64(p.X))) *
		float32(math.Cos(6*math.Pi*float64(p.Y))) *
		float32(math.Sin(4*math.Pi*float64(p.Z)))
	v += (state.GNa + state.GK) * 0.15 * action

	if state.GapJunctions {
		lattice := float32(math.Sin(16*math.Pi*float64(p.X))) *
			float32(math.Sin(16*math.Pi*float64(p.Y))) *
			float32(math.Sin(16*math.Pi*float64(p.Z)))
		v += 0.05 * lattice
	}

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

// GenerateBioelectricField deterministically builds an n^3 procedural field
// from state. Equal states always produce equal fields.
func GenerateBioelectricField(state BioelectricState, n int) *core.VolumeField {
	field, err := core.NewVolumeField([3]int{n, n, n}, [3]float32{1, 1, 1}, [3]float32{})
	if err != nil {
		// n is always a positive constant from call sites; this cannot happen.
		panic(err)
	}
	denom := float32(n - 1)
	if denom == 0 {
		denom = 1
	}
	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				p := core.Vec3{X: float32(x) / denom, Y: float32(y) / denom, Z: float32(z) / denom}
				field.Data[x+y*n+z*n*n] = bioelectricValue(state, p)
			}
		}
	}
	return field
}
