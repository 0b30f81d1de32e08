package control

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piatra-institute/morviq/pkg/core"
)

func TestParseQualityAcceptsAllThreeTiers(t *testing.T) {
	low, err := parseQuality("low")
	require.NoError(t, err)
	assert.Equal(t, core.QualityLow, low)

	medium, err := parseQuality("MEDIUM")
	require.NoError(t, err)
	assert.Equal(t, core.QualityMedium, medium)

	high, err := parseQuality(" high ")
	require.NoError(t, err)
	assert.Equal(t, core.QualityHigh, high)
}

func TestParseQualityRejectsUnknownToken(t *testing.T) {
	_, err := parseQuality("ultra")
	assert.Error(t, err)
}

func TestParseMat4CSVRoundTripsAllSixteenFloatsExactly(t *testing.T) {
	values := make([]string, 16)
	var want core.Mat4
	for i := range values {
		want.M[i] = float32(i) + 0.25
		values[i] = strconv.FormatFloat(float64(want.M[i]), 'g', -1, 32)
	}
	m, err := parseMat4CSV(strings.Join(values, ","))
	require.NoError(t, err)
	assert.Equal(t, want, m)
}

func TestParseMat4CSVRejectsWrongFieldCount(t *testing.T) {
	_, err := parseMat4CSV("1,2,3")
	assert.Error(t, err)
}

func TestParseCameraCommandParsesProjectionViewAndViewport(t *testing.T) {
	row := strings.Join(make16Zeros(), ",")
	text := row + ";" + row + ";1280 720"
	cam, err := parseCameraCommand(text)
	require.NoError(t, err)
	assert.Equal(t, 1280, cam.Width)
	assert.Equal(t, 720, cam.Height)
}

func make16Zeros() []string {
	out := make([]string, 16)
	for i := range out {
		out[i] = "0"
	}
	return out
}

func TestParseCameraCommandRejectsMissingSemicolons(t *testing.T) {
	_, err := parseCameraCommand("1,2,3")
	assert.Error(t, err)
}

func TestParseCameraCommandRejectsMalformedViewport(t *testing.T) {
	row := strings.Join(make16Zeros(), ",")
	_, err := parseCameraCommand(row + ";" + row + ";notanumber 720")
	assert.Error(t, err)
}
