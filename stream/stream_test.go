package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
)

func TestWindowerStateMachine(t *testing.T) {
	w, err := NewWindower(3)
	require.NoError(t, err)
	assert.Equal(t, Filling, w.State())

	_, ok := w.Window()
	assert.False(t, ok)

	state, err := w.SampleReceived(1)
	require.NoError(t, err)
	assert.Equal(t, Filling, state)
	state, _ = w.SampleReceived(2)
	assert.Equal(t, Filling, state)
	state, _ = w.SampleReceived(3)
	assert.Equal(t, Ready, state)

	window, ok := w.Window()
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, window)

	_, err = w.SampleReceived(4)
	assert.ErrorIs(t, err, ErrWindowPending)
	assert.Equal(t, 3, w.Len())

	w.WindowConsumed()
	assert.Equal(t, Filling, w.State())
	assert.Equal(t, 0, w.Len())
}

func TestWindowerNonOverlapping(t *testing.T) {
	w, err := NewWindower(2)
	require.NoError(t, err)

	var windows [][]float64
	for _, s := range []float64{1, 2, 3, 4, 5} {
		state, err := w.SampleReceived(s)
		require.NoError(t, err)
		if state == Ready {
			win, _ := w.Window()
			windows = append(windows, win)
			w.WindowConsumed()
		}
	}

	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, windows)
	assert.Equal(t, 1, w.Len())
}

func TestWindowerWithHop(t *testing.T) {
	w, err := NewWindower(4, WithHop(2))
	require.NoError(t, err)
	assert.Equal(t, 2, w.GetHopSize())

	var windows [][]float64
	for s := 1; s <= 8; s++ {
		state, err := w.SampleReceived(float64(s))
		require.NoError(t, err)
		if state == Ready {
			win, _ := w.Window()
			windows = append(windows, win)
			w.WindowConsumed()
		}
	}

	assert.Equal(t, [][]float64{{1, 2, 3, 4}, {3, 4, 5, 6}, {5, 6, 7, 8}}, windows)
}

func TestWindowerReturnsCopies(t *testing.T) {
	w, err := NewWindower(2)
	require.NoError(t, err)
	w.SampleReceived(1)
	w.SampleReceived(2)

	win, _ := w.Window()
	win[0] = 100
	again, _ := w.Window()
	assert.Equal(t, 1.0, again[0])
}

func TestWindowerRejectsBadSize(t *testing.T) {
	_, err := NewWindower(0)
	assert.Error(t, err)

	w, err := NewWindower(4, WithHop(9))
	require.NoError(t, err)
	assert.Equal(t, 4, w.GetHopSize())
}

func TestLineSourceParsesAndCountsMalformed(t *testing.T) {
	input := "1.5\n\n  -2 \r\nabc\nNaN\n3e2\n"
	src := NewLineSource(strings.NewReader(input), "test")
	ctx := context.Background()

	var got []float64
	for {
		v, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, v)
	}

	assert.Equal(t, []float64{1.5, -2, 300}, got)
	assert.Equal(t, 2, src.Malformed())
	assert.Equal(t, 6, src.Lines())
}

func TestLineSourceDecodesLatin1(t *testing.T) {
	// 0xB5 is a latin-1 micro sign; the line is malformed but must not break decoding
	src := NewLineSource(strings.NewReader("12\xb5\n7\n"), "latin1")

	v, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
	assert.Equal(t, 1, src.Malformed())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("device unplugged")
}

func TestLineSourceSurfacesReadErrors(t *testing.T) {
	src := NewLineSource(failingReader{}, "tty")

	_, err := src.Next(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSource)
	assert.Contains(t, err.Error(), "device unplugged")
}

func TestSourcesHonorContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSliceSource([]float64{1}).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewLineSource(strings.NewReader("1\n"), "x").Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource([]float64{1, 2})
	ctx := context.Background()

	v, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
	v, _ = src.Next(ctx)
	assert.Equal(t, 2.0, v)
	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}
