package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindSOI(t *testing.T) {
	buf := []byte{0x00, 0x11, 0xFF, 0xD8, 0x22, 0xFF, 0xD9}
	assert.Equal(t, 2, findSOI(buf))
}

func TestFindSOINotFound(t *testing.T) {
	buf := []byte{0x00, 0x11, 0x22}
	assert.Equal(t, -1, findSOI(buf))
}

func TestMaxInt(t *testing.T) {
	assert.Equal(t, 5, maxInt(5, 3))
	assert.Equal(t, 5, maxInt(3, 5))
}

func TestDefaultConfigMatchesSpecDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 240, cfg.Height)
	assert.Equal(t, 10, cfg.FPS)
}
