// Package sigma implements the framework for three-move
// honest-verifier zero-knowledge proofs of knowledge (Σ-protocols): the
// contracts every concrete protocol satisfies, the message shapes
// exchanged on the wire, and the drivers that sequence a proof over a
// channel.
//
// A Σ-protocol run exchanges exactly three messages: the prover's
// commitment a, the verifier's random challenge e of exactly ⌈t/8⌉
// bytes for soundness parameter t, and the prover's response z. The
// mathematical work lives in a Prover/Verifier/Simulator triple;
// ProtocolProver and ProtocolVerifier move their messages across a
// comm.Channel.
package sigma

import (
	"fmt"

	"github.com/cronokirby/saferith"
)

// CommonInput is the public statement x shared by prover and verifier.
// Each protocol defines its own concrete type; passing a foreign one
// yields ErrInputType.
type CommonInput interface{}

// ProverInput is the prover's input: the statement plus the witness.
type ProverInput interface {
	// Common strips the witness, leaving the public statement.
	Common() CommonInput
}

// Prover is the prover-side computation of a single Σ-protocol
// instance. It is stateful across the two rounds (the round-1
// randomness is needed to answer the challenge) and not safe for
// concurrent use.
type Prover interface {
	// ComputeFirstMessage samples the round randomness and returns the
	// commitment a.
	ComputeFirstMessage(input ProverInput) (Message, error)
	// ComputeSecondMessage consumes the verifier's challenge and returns
	// the response z. It fails with ErrUsageOrder if round 1 did not
	// run, and ErrChallengeLength on a wrong-size challenge.
	ComputeSecondMessage(challenge []byte) (Message, error)
	// SoundnessBits returns t.
	SoundnessBits() int
	// Simulator returns a fresh simulator for the same statement class
	// and soundness parameter.
	Simulator() Simulator
}

// Verifier is the verifier-side computation. It holds the challenge
// between rounds and is not safe for concurrent use.
type Verifier interface {
	// SampleChallenge draws a fresh uniform challenge of ⌈t/8⌉ bytes and
	// stores it.
	SampleChallenge()
	// SetChallenge installs an externally chosen challenge. Composers
	// use this to share one challenge across sub-protocols.
	SetChallenge(e []byte)
	// Challenge returns the stored challenge, nil if none is set.
	Challenge() []byte
	// Verify reports whether (a, e, z) is an accepting transcript for x
	// under the stored challenge. A well-formed but unconvincing proof
	// returns (false, nil); errors are reserved for type and shape
	// mismatches and a missing challenge.
	Verify(x CommonInput, a, z Message) (bool, error)
	// SoundnessBits returns t.
	SoundnessBits() int
	// FirstMessage returns an empty message of the shape this protocol
	// expects as commitment, for the driver to deserialize into.
	FirstMessage() Message
	// SecondMessage returns an empty message of the response shape.
	SecondMessage() Message
}

// Simulator produces transcripts distributed identically to honest
// runs, without access to a witness.
type Simulator interface {
	// Simulate outputs an accepting transcript for x under the given
	// challenge, which must have exactly ⌈t/8⌉ bytes.
	Simulate(x CommonInput, e []byte) (*Transcript, error)
	// SimulateRandom draws a uniform challenge and simulates under it.
	SimulateRandom(x CommonInput) (*Transcript, error)
	// SoundnessBits returns t.
	SoundnessBits() int
}

// Transcript is one full (a, e, z) conversation.
type Transcript struct {
	A Message
	E []byte
	Z Message
}

// ChallengeSize returns the challenge byte length ⌈t/8⌉ for soundness
// parameter t.
func ChallengeSize(t int) int {
	return (t + 7) / 8
}

// CheckChallenge verifies that e has exactly ⌈t/8⌉ bytes.
func CheckChallenge(e []byte, t int) error {
	if len(e) != ChallengeSize(t) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrChallengeLength, len(e), ChallengeSize(t))
	}
	return nil
}

// ChallengeNat interprets a challenge as a non-negative big-endian
// integer, the fixed convention for exponent conversion.
func ChallengeNat(e []byte) *saferith.Nat {
	return new(saferith.Nat).SetBytes(e)
}

// ValidateSoundness checks 0 < t ≤ ⌊log₂ q⌋, the condition every
// concrete computation enforces at construction.
func ValidateSoundness(t int, q *saferith.Modulus) error {
	if t <= 0 || t >= q.BitLen() {
		return fmt.Errorf("%w: t=%d, order has %d bits", ErrInvalidSoundness, t, q.BitLen())
	}
	return nil
}
