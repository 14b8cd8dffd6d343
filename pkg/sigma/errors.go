package sigma

import "errors"

var (
	// ErrInvalidSoundness is returned at construction when the soundness
	// parameter t is not in (0, ⌊log₂ q⌋].
	ErrInvalidSoundness = errors.New("sigma: soundness parameter out of range")

	// ErrInputType is returned when a prover or common input belongs to a
	// different protocol than the computation it was handed to.
	ErrInputType = errors.New("sigma: input does not match protocol")

	// ErrArityMismatch is returned by the AND combinator when the number
	// of sub-inputs or sub-messages differs from the number of
	// sub-protocols.
	ErrArityMismatch = errors.New("sigma: arity mismatch")

	// ErrChallengeLength is returned whenever a consumed challenge does
	// not have exactly ⌈t/8⌉ bytes.
	ErrChallengeLength = errors.New("sigma: challenge length does not match soundness parameter")

	// ErrMalformedMessage is returned when wire bytes cannot be parsed
	// into the expected message shape, or a message's concrete shape
	// disagrees with what the protocol expects.
	ErrMalformedMessage = errors.New("sigma: malformed message")

	// ErrUsageOrder is returned when a round is invoked out of order or
	// a single-shot driver is reused.
	ErrUsageOrder = errors.New("sigma: protocol round called out of order")

	// ErrNoChallenge is returned by Verify when neither SampleChallenge
	// nor SetChallenge ran first.
	ErrNoChallenge = errors.New("sigma: challenge not set")
)
