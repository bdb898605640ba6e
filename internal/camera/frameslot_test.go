package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cv "gocv.io/x/gocv"
)

func TestFrameSlotLatestBeforePublishIsFalse(t *testing.T) {
	s := newFrameSlot()
	defer s.close()
	_, ok := s.latest()
	assert.False(t, ok)
}

func TestFrameSlotPublishThenLatest(t *testing.T) {
	s := newFrameSlot()
	defer s.close()

	m := cv.NewMatWithSize(4, 4, cv.MatTypeCV8UC3)
	s.publish(m)

	got, ok := s.latest()
	require.True(t, ok)
	defer got.Close()
	assert.Equal(t, 4, got.Rows())
	assert.Equal(t, 4, got.Cols())
}

func TestFrameSlotOverwriteDiscardsOlder(t *testing.T) {
	s := newFrameSlot()
	defer s.close()

	s.publish(cv.NewMatWithSize(4, 4, cv.MatTypeCV8UC3))
	s.publish(cv.NewMatWithSize(8, 8, cv.MatTypeCV8UC3))

	got, ok := s.latest()
	require.True(t, ok)
	defer got.Close()
	assert.Equal(t, 8, got.Rows())
}

func TestFrameSlotCloseClearsHave(t *testing.T) {
	s := newFrameSlot()
	s.publish(cv.NewMatWithSize(4, 4, cv.MatTypeCV8UC3))
	s.close()

	_, ok := s.latest()
	assert.False(t, ok)
}
