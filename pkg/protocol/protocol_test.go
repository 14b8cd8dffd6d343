package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/provelab/sigma/pkg/comm"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	ssid := SSID("dlog", []byte("zp-6"), []byte("t=4"))
	a, b := comm.Pipe()
	prover := NewChannel(a, ssid, "prover", "verifier")
	verifier := NewChannel(b, ssid, "verifier", "prover")

	var g errgroup.Group
	g.Go(func() error {
		if err := prover.WriteWithSize([]byte("32")); err != nil {
			return err
		}
		e, err := prover.ReadWithSize()
		if err != nil {
			return err
		}
		assert.Equal(t, []byte{0x0B}, e)
		return prover.WriteWithSize([]byte("13"))
	})

	first, err := verifier.ReadWithSize()
	require.NoError(t, err)
	assert.Equal(t, []byte("32"), first)
	require.NoError(t, verifier.WriteWithSize([]byte{0x0B}))
	second, err := verifier.ReadWithSize()
	require.NoError(t, err)
	assert.Equal(t, []byte("13"), second)
	require.NoError(t, g.Wait())
}

func TestEnvelopeChecks(t *testing.T) {
	ssid := SSID("dlog", []byte("session-one"))
	other := SSID("dlog", []byte("session-two"))
	require.NotEqual(t, ssid, other)

	// foreign session
	a, b := comm.Pipe()
	sender := NewChannel(a, other, "prover", "verifier")
	receiver := NewChannel(b, ssid, "verifier", "prover")
	var g errgroup.Group
	g.Go(func() error { return sender.WriteWithSize([]byte("32")) })
	_, err := receiver.ReadWithSize()
	assert.ErrorContains(t, err, "foreign session")
	require.NoError(t, g.Wait())

	// wrong sender name
	a, b = comm.Pipe()
	sender = NewChannel(a, ssid, "impostor", "verifier")
	receiver = NewChannel(b, ssid, "verifier", "prover")
	g = errgroup.Group{}
	g.Go(func() error { return sender.WriteWithSize([]byte("32")) })
	_, err = receiver.ReadWithSize()
	assert.ErrorContains(t, err, "envelope from")
	require.NoError(t, g.Wait())

	// not an envelope at all
	a, b = comm.Pipe()
	receiver = NewChannel(b, ssid, "verifier", "prover")
	g = errgroup.Group{}
	g.Go(func() error { return a.WriteWithSize([]byte("raw bytes")) })
	_, err = receiver.ReadWithSize()
	assert.ErrorContains(t, err, "unmarshal envelope")
	require.NoError(t, g.Wait())
}

func TestSSIDDeterminism(t *testing.T) {
	assert.Equal(t, SSID("dh", []byte("x")), SSID("dh", []byte("x")))
	assert.NotEqual(t, SSID("dh", []byte("x")), SSID("dlog", []byte("x")))
}
