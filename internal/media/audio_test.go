package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToneGenerator_Range(t *testing.T) {
	g := NewToneGenerator(SampleRate, 440, 8)
	samples := make([][2]float64, 256)
	n, ok := g.Stream(samples)
	require.True(t, ok)
	assert.Equal(t, 256, n)
	for i := 0; i < n; i++ {
		assert.LessOrEqual(t, samples[i][0], 1.0)
		assert.GreaterOrEqual(t, samples[i][0], -1.0)
	}
	assert.NoError(t, g.Err())
}

func TestLibrary_ClipsAreBuffered(t *testing.T) {
	lib := NewLibrary()
	lib.AddTone("beep", 440, 100*time.Millisecond)

	assert.Equal(t, SampleRate.N(100*time.Millisecond), lib.Len("beep"))
	assert.Zero(t, lib.Len("missing"))

	s, err := lib.Streamer("beep")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Position())

	_, err = lib.Streamer("missing")
	assert.Error(t, err)

	assert.Contains(t, DefaultLibrary().Names(), "coin")
}

func TestSource_OneShotsOverlap(t *testing.T) {
	lib := NewLibrary()
	lib.AddTone("beep", 440, 50*time.Millisecond)
	src := NewSource(lib)

	src.PlayOneShot("beep")
	src.PlayOneShot("beep")
	src.PlayOneShot("missing")

	assert.Equal(t, 2, src.Active(), "второй клип не должен прерывать первый")
	assert.Equal(t, []string{"beep", "beep"}, src.Played())

	src.Advance(20 * time.Millisecond)
	assert.Equal(t, 2, src.Active())

	// После прокрутки дальше конца клипа микшер пустеет
	src.Advance(100 * time.Millisecond)
	assert.Zero(t, src.Active())
}

func TestSource_SilentMixerDoesNotGrow(t *testing.T) {
	lib := NewLibrary()
	lib.AddTone("tick", 2000, 10*time.Millisecond)
	src := NewSource(lib)

	for i := 0; i < 1000; i++ {
		src.PlayOneShot("tick")
		src.Advance(20 * time.Millisecond)
	}
	assert.Zero(t, src.Active())
	assert.Len(t, src.Played(), 1000)
}

func TestOutput_UninitializedLockIsNoop(t *testing.T) {
	var nilOut *Output
	nilOut.lock()()

	out := NewOutput()
	out.lock()()
	out.Cleanup()

	src := NewSource(DefaultLibrary())
	out.Connect(src)
	src.PlayOneShot("coin")
	assert.Equal(t, 1, src.Active())
	// Подключённый источник не прокручивает общий микшер сам
	src.Advance(time.Second)
	assert.Equal(t, 1, src.Active())
}
