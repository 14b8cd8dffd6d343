package sigmadlog

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provelab/sigma/internal/test"
	"github.com/provelab/sigma/pkg/math/group"
	"github.com/provelab/sigma/pkg/sigma"
)

func nat(v uint64) *saferith.Nat {
	return new(saferith.Nat).SetUint64(v)
}

func input(grp group.Group, w uint64) *Input {
	wNat := nat(w)
	return &Input{H: grp.Generator().Exp(wNat), W: wNat}
}

func TestSoundnessParam(t *testing.T) {
	grp := test.SmallGroup() // q = 23, 5 bits

	for _, tc := range []struct {
		t  int
		ok bool
	}{
		{-1, false}, {0, false}, {1, true}, {4, true}, {5, false}, {64, false},
	} {
		_, err := NewProver(grp, tc.t, rand.Reader)
		if tc.ok {
			assert.NoError(t, err, "t=%d", tc.t)
		} else {
			assert.ErrorIs(t, err, sigma.ErrInvalidSoundness, "t=%d", tc.t)
		}
		_, err = NewVerifier(grp, tc.t, rand.Reader)
		if tc.ok {
			assert.NoError(t, err, "t=%d", tc.t)
		} else {
			assert.ErrorIs(t, err, sigma.ErrInvalidSoundness, "t=%d", tc.t)
		}
		_, err = NewSimulator(grp, tc.t, rand.Reader)
		if tc.ok {
			assert.NoError(t, err, "t=%d", tc.t)
		} else {
			assert.ErrorIs(t, err, sigma.ErrInvalidSoundness, "t=%d", tc.t)
		}
	}
}

// The worked scenario: w=7, forced r=5, e=0b1011. The response must be
// z = (5 + 11·7) mod 23 = 13 and the transcript must verify.
func TestKnownTranscript(t *testing.T) {
	grp := test.SmallGroup()
	prover, err := NewProver(grp, test.SmallT, test.ByteReader(5))
	require.NoError(t, err)
	in := input(grp, 7)

	a, err := prover.ComputeFirstMessage(in)
	require.NoError(t, err)
	// a = g^5 = 32
	data, err := a.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, "32", string(data))

	z, err := prover.ComputeSecondMessage([]byte{0x0B})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(13), z.(*sigma.ScalarMessage).Value)

	verifier, err := NewVerifier(grp, test.SmallT, rand.Reader)
	require.NoError(t, err)
	verifier.SetChallenge([]byte{0x0B})
	ok, err := verifier.Verify(in.Common(), a, z)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompleteness(t *testing.T) {
	grp := test.SmallGroup()
	rng := test.Reader("dlog completeness")
	for w := uint64(0); w < test.SmallQ; w++ {
		prover, err := NewProver(grp, test.SmallT, rng)
		require.NoError(t, err)
		verifier, err := NewVerifier(grp, test.SmallT, rng)
		require.NoError(t, err)
		in := input(grp, w)

		a, err := prover.ComputeFirstMessage(in)
		require.NoError(t, err)
		verifier.SampleChallenge()
		z, err := prover.ComputeSecondMessage(verifier.Challenge())
		require.NoError(t, err)

		ok, err := verifier.Verify(in.Common(), a, z)
		require.NoError(t, err)
		assert.True(t, ok, "w=%d", w)
	}
}

// A prover holding a wrong witness convinces the verifier for exactly
// one challenge out of 2^t: the acceptance rate is the soundness
// error, not better.
func TestSoundnessError(t *testing.T) {
	grp := test.SmallGroup()
	h := grp.Generator().Exp(nat(7)) // true witness is 7
	badInput := &Input{H: h, W: nat(8)}

	accepted := 0
	for e := 0; e < 1<<test.SmallT; e++ {
		prover, err := NewProver(grp, test.SmallT, test.ByteReader(5))
		require.NoError(t, err)
		verifier, err := NewVerifier(grp, test.SmallT, rand.Reader)
		require.NoError(t, err)

		a, err := prover.ComputeFirstMessage(badInput)
		require.NoError(t, err)
		challenge := []byte{byte(e)}
		z, err := prover.ComputeSecondMessage(challenge)
		require.NoError(t, err)

		verifier.SetChallenge(challenge)
		ok, err := verifier.Verify(&CommonInput{H: h}, a, z)
		require.NoError(t, err)
		if ok {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
}

// The simulator's transcript must verify for any challenge, including
// the forced scenario e=0x0B with z drawn as 9.
func TestSimulatorCorrectness(t *testing.T) {
	grp := test.SmallGroup()
	in := input(grp, 7)
	x := in.Common().(*CommonInput)

	sim, err := NewSimulator(grp, test.SmallT, test.ByteReader(9))
	require.NoError(t, err)
	out, err := sim.Simulate(x, []byte{0x0B})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(9), out.Z.(*sigma.ScalarMessage).Value)

	verifier, err := NewVerifier(grp, test.SmallT, rand.Reader)
	require.NoError(t, err)
	verifier.SetChallenge(out.E)
	ok, err := verifier.Verify(x, out.A, out.Z)
	require.NoError(t, err)
	assert.True(t, ok)

	// every challenge value
	for e := 0; e < 1<<test.SmallT; e++ {
		sim, err := NewSimulator(grp, test.SmallT, rand.Reader)
		require.NoError(t, err)
		out, err := sim.Simulate(x, []byte{byte(e)})
		require.NoError(t, err)

		verifier, err := NewVerifier(grp, test.SmallT, rand.Reader)
		require.NoError(t, err)
		verifier.SetChallenge(out.E)
		ok, err := verifier.Verify(x, out.A, out.Z)
		require.NoError(t, err)
		assert.True(t, ok, "e=%d", e)
	}
}

// For a fixed challenge, the set of transcripts an honest prover can
// produce (over its randomness r) equals the set the simulator can
// produce (over its randomness z). In this 23-element group both sides
// can be enumerated exactly.
func TestSimulatorDistribution(t *testing.T) {
	grp := test.SmallGroup()
	in := input(grp, 7)
	challenge := []byte{0x0B}

	transcript := func(a, z sigma.Message) string {
		aData, err := a.MarshalBinary()
		require.NoError(t, err)
		zData, err := z.MarshalBinary()
		require.NoError(t, err)
		return string(aData) + "/" + string(zData)
	}

	honest := make(map[string]struct{})
	for r := uint64(0); r < test.SmallQ; r++ {
		prover, err := NewProver(grp, test.SmallT, test.ByteReader(r))
		require.NoError(t, err)
		a, err := prover.ComputeFirstMessage(in)
		require.NoError(t, err)
		z, err := prover.ComputeSecondMessage(challenge)
		require.NoError(t, err)
		honest[transcript(a, z)] = struct{}{}
	}

	simulated := make(map[string]struct{})
	for zDraw := uint64(0); zDraw < test.SmallQ; zDraw++ {
		sim, err := NewSimulator(grp, test.SmallT, test.ByteReader(zDraw))
		require.NoError(t, err)
		out, err := sim.Simulate(in.Common(), challenge)
		require.NoError(t, err)
		simulated[transcript(out.A, out.Z)] = struct{}{}
	}

	assert.Len(t, honest, int(test.SmallQ))
	assert.Equal(t, honest, simulated)
}

func TestChallengeLength(t *testing.T) {
	grp := test.SmallGroup()
	in := input(grp, 7)

	prover, err := NewProver(grp, test.SmallT, rand.Reader)
	require.NoError(t, err)
	_, err = prover.ComputeFirstMessage(in)
	require.NoError(t, err)
	for _, challenge := range [][]byte{nil, {}, {1, 2}, {1, 2, 3}} {
		_, err = prover.ComputeSecondMessage(challenge)
		assert.ErrorIs(t, err, sigma.ErrChallengeLength)
	}

	sim, err := NewSimulator(grp, test.SmallT, rand.Reader)
	require.NoError(t, err)
	_, err = sim.Simulate(in.Common(), []byte{1, 2})
	assert.ErrorIs(t, err, sigma.ErrChallengeLength)

	verifier, err := NewVerifier(grp, test.SmallT, rand.Reader)
	require.NoError(t, err)
	verifier.SetChallenge([]byte{1, 2})
	a := &sigma.GroupElementMessage{Element: grp.Generator()}
	z := &sigma.ScalarMessage{Value: big.NewInt(3)}
	_, err = verifier.Verify(in.Common(), a, z)
	assert.ErrorIs(t, err, sigma.ErrChallengeLength)
}

func TestUsageOrder(t *testing.T) {
	grp := test.SmallGroup()
	prover, err := NewProver(grp, test.SmallT, rand.Reader)
	require.NoError(t, err)

	_, err = prover.ComputeSecondMessage([]byte{1})
	assert.ErrorIs(t, err, sigma.ErrUsageOrder)

	_, err = prover.ComputeFirstMessage(input(grp, 7))
	require.NoError(t, err)
	_, err = prover.ComputeSecondMessage([]byte{1})
	require.NoError(t, err)
	// the round state is spent
	_, err = prover.ComputeSecondMessage([]byte{1})
	assert.ErrorIs(t, err, sigma.ErrUsageOrder)
}

func TestInputType(t *testing.T) {
	grp := test.SmallGroup()
	prover, err := NewProver(grp, test.SmallT, rand.Reader)
	require.NoError(t, err)
	_, err = prover.ComputeFirstMessage(nil)
	assert.ErrorIs(t, err, sigma.ErrInputType)

	verifier, err := NewVerifier(grp, test.SmallT, rand.Reader)
	require.NoError(t, err)
	verifier.SetChallenge([]byte{1})
	_, err = verifier.Verify("bogus", &sigma.GroupElementMessage{}, &sigma.ScalarMessage{})
	assert.ErrorIs(t, err, sigma.ErrInputType)
}

func TestVerifyRejects(t *testing.T) {
	grp := test.SmallGroup()
	in := input(grp, 7)
	x := in.Common().(*CommonInput)
	challenge := []byte{0x0B}

	newVerifier := func() *Verifier {
		v, err := NewVerifier(grp, test.SmallT, rand.Reader)
		require.NoError(t, err)
		v.SetChallenge(challenge)
		return v
	}

	prover, err := NewProver(grp, test.SmallT, rand.Reader)
	require.NoError(t, err)
	a, err := prover.ComputeFirstMessage(in)
	require.NoError(t, err)
	z, err := prover.ComputeSecondMessage(challenge)
	require.NoError(t, err)

	// no challenge installed
	v, err := NewVerifier(grp, test.SmallT, rand.Reader)
	require.NoError(t, err)
	_, err = v.Verify(x, a, z)
	assert.ErrorIs(t, err, sigma.ErrNoChallenge)

	// statement outside the subgroup
	five, err := grp.FromBytes([]byte("5"))
	require.NoError(t, err)
	ok, err := newVerifier().Verify(&CommonInput{H: five}, a, z)
	require.NoError(t, err)
	assert.False(t, ok)

	// response out of range: z >= q
	big1, _ := new(big.Int).SetString("24", 10)
	ok, err = newVerifier().Verify(x, a, &sigma.ScalarMessage{Value: big1})
	require.NoError(t, err)
	assert.False(t, ok)

	// negative response
	ok, err = newVerifier().Verify(x, a, &sigma.ScalarMessage{Value: big.NewInt(-1)})
	require.NoError(t, err)
	assert.False(t, ok)

	// wrong message shapes
	_, err = newVerifier().Verify(x, z, z)
	assert.ErrorIs(t, err, sigma.ErrMalformedMessage)
	_, err = newVerifier().Verify(x, a, a)
	assert.ErrorIs(t, err, sigma.ErrMalformedMessage)
}
