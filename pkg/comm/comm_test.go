package comm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestFrameRoundTrip(t *testing.T) {
	a, b := Pipe()

	payloads := [][]byte{
		[]byte("32"),
		{},
		{0x0B},
		make([]byte, 4096),
	}

	var g errgroup.Group
	g.Go(func() error {
		for _, p := range payloads {
			if err := a.WriteWithSize(p); err != nil {
				return err
			}
		}
		return nil
	})
	for _, want := range payloads {
		got, err := b.ReadWithSize()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	require.NoError(t, g.Wait())
}

func TestReadAfterClose(t *testing.T) {
	a, b := Pipe()
	require.NoError(t, a.Close())
	_, err := b.ReadWithSize()
	assert.Error(t, err)
	assert.ErrorContains(t, err, "comm:")
}

func TestOversizeFrameRejected(t *testing.T) {
	a, _ := Pipe()
	err := a.WriteWithSize(make([]byte, maxFrameSize+1))
	assert.Error(t, err)
}
