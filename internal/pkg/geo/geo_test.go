package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_SamePoint(t *testing.T) {
	assert.Equal(t, 0.0, Distance(Point{0, 0}, Point{0, 0}))
}

func TestDistance_OneDegreeLongitudeAtEquator(t *testing.T) {
	d := Distance(Point{0, 0}, Point{0, 1})
	assert.InDelta(t, 111195, d, 111195*0.01)
}

func TestDistance_Symmetric(t *testing.T) {
	madrid := Point{40.4168, -3.7038}
	valencia := Point{39.4699, -0.3763}
	assert.InDelta(t, Distance(madrid, valencia), Distance(valencia, madrid), 1e-6)
	assert.InDelta(t, 302000, Distance(madrid, valencia), 5000)
}

func TestNewPoint(t *testing.T) {
	lat, lng := 40.0, -3.0
	bad := 123.0
	nan := math.NaN()

	assert.NotNil(t, NewPoint(&lat, &lng))
	assert.Nil(t, NewPoint(&lat, nil))
	assert.Nil(t, NewPoint(&bad, &lng))
	assert.Nil(t, NewPoint(&nan, &lng))
}
