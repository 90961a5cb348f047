package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm_ZeroDistance(t *testing.T) {
	assert.Equal(t, 0.0, HaversineKm(30.0, 31.0, 30.0, 31.0))
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// Москва -> Санкт-Петербург, около 634 км
	d := HaversineKm(55.7558, 37.6173, 59.9343, 30.3351)
	assert.InDelta(t, 634.0, d, 5.0)
}

func TestHaversineKm_Symmetric(t *testing.T) {
	d1 := HaversineKm(30.0, 31.0, 30.01, 31.01)
	d2 := HaversineKm(30.01, 31.01, 30.0, 31.0)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestHaversineKm_ShortDistance(t *testing.T) {
	// Примерно 1.47 км между (30.0,31.0) и (30.01,31.01)
	d := HaversineKm(30.0, 31.0, 30.01, 31.01)
	assert.Greater(t, d, 1.0)
	assert.Less(t, d, 2.0)
}
