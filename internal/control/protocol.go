package control

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/piatra-institute/morviq/pkg/core"
)

// parseQuality maps the TCP protocol's quality token to a QualityTier.
func parseQuality(text string) (core.QualityTier, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "low":
		return core.QualityLow, nil
	case "medium":
		return core.QualityMedium, nil
	case "high":
		return core.QualityHigh, nil
	default:
		return 0, fmt.Errorf("control: unknown quality %q", text)
	}
}

// parseMat4CSV parses 16 comma-separated floats, row-major, into a Mat4.
func parseMat4CSV(text string) (core.Mat4, error) {
	var m core.Mat4
	fields := strings.Split(strings.TrimSpace(text), ",")
	if len(fields) != 16 {
		return m, fmt.Errorf("control: expected 16 comma-separated floats, got %d", len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return m, fmt.Errorf("control: parsing matrix element %d: %w", i, err)
		}
		m.M[i] = float32(v)
	}
	return m, nil
}

// parsedCamera holds one CAMERA command's decoded payload.
type parsedCamera struct {
	Projection    core.Mat4
	View          core.Mat4
	Width, Height int
}

// parseCameraCommand parses "<16 floats>;<16 floats>;<w> <h>".
func parseCameraCommand(text string) (parsedCamera, error) {
	var out parsedCamera
	parts := strings.Split(text, ";")
	if len(parts) != 3 {
		return out, fmt.Errorf("control: CAMERA expects 3 ';'-separated fields, got %d", len(parts))
	}

	proj, err := parseMat4CSV(parts[0])
	if err != nil {
		return out, fmt.Errorf("control: CAMERA projection: %w", err)
	}
	view, err := parseMat4CSV(parts[1])
	if err != nil {
		return out, fmt.Errorf("control: CAMERA view: %w", err)
	}

	dims := strings.Fields(parts[2])
	if len(dims) != 2 {
		return out, fmt.Errorf("control: CAMERA viewport expects 2 fields, got %d", len(dims))
	}
	w, err := strconv.Atoi(dims[0])
	if err != nil {
		return out, fmt.Errorf("control: CAMERA width: %w", err)
	}
	h, err := strconv.Atoi(dims[1])
	if err != nil {
		return out, fmt.Errorf("control: CAMERA height: %w", err)
	}

	out.Projection, out.View, out.Width, out.Height = proj, view, w, h
	return out, nil
}
