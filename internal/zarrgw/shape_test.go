package zarrgw

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntSlice(t *testing.T) {
	raw := []interface{}{float64(1), float64(2), float64(3)}
	assert.Equal(t, []int{1, 2, 3}, intSlice(raw))
}

func TestIntSlice_NotASlice(t *testing.T) {
	assert.Equal(t, []int{}, intSlice("not a slice"))
}

func TestStringSlice(t *testing.T) {
	raw := []interface{}{"time", "lat", "lon"}
	assert.Equal(t, []string{"time", "lat", "lon"}, stringSlice(raw))
}

func TestStringSlice_Empty(t *testing.T) {
	assert.Equal(t, []string{}, stringSlice(nil))
}
