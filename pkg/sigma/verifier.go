package sigma

import (
	"fmt"

	"github.com/provelab/sigma/pkg/comm"
)

type verifierState uint8

const (
	verifierFresh verifierState = iota
	verifierChallengeSent
	verifierDone
)

// ProtocolVerifier drives the verifier side of one proof: it reads the
// commitment into the verifier's message shell, samples and sends the
// challenge, reads the response, and checks the transcript. Like the
// prover driver it is single-shot.
type ProtocolVerifier struct {
	channel  comm.Channel
	verifier Verifier
	a, z     Message
	state    verifierState
}

func NewProtocolVerifier(channel comm.Channel, verifier Verifier) *ProtocolVerifier {
	return &ProtocolVerifier{
		channel:  channel,
		verifier: verifier,
		a:        verifier.FirstMessage(),
		z:        verifier.SecondMessage(),
	}
}

// Verify runs both verifier steps back to back.
func (v *ProtocolVerifier) Verify(x CommonInput) (bool, error) {
	if err := v.SendChallenge(); err != nil {
		return false, err
	}
	return v.ProcessVerify(x)
}

// SendChallenge blocks for the prover's commitment, then samples a
// challenge and writes it to the channel.
func (v *ProtocolVerifier) SendChallenge() error {
	if v.state != verifierFresh {
		return ErrUsageOrder
	}
	data, err := v.channel.ReadWithSize()
	if err != nil {
		return fmt.Errorf("sigma: receive first message: %w", err)
	}
	if err := v.a.UnmarshalBinary(data); err != nil {
		return err
	}
	v.verifier.SampleChallenge()
	if err := v.channel.WriteWithSize(v.verifier.Challenge()); err != nil {
		return fmt.Errorf("sigma: send challenge: %w", err)
	}
	v.state = verifierChallengeSent
	return nil
}

// ProcessVerify blocks for the prover's response and returns the
// verification verdict.
func (v *ProtocolVerifier) ProcessVerify(x CommonInput) (bool, error) {
	if v.state != verifierChallengeSent {
		return false, ErrUsageOrder
	}
	data, err := v.channel.ReadWithSize()
	if err != nil {
		return false, fmt.Errorf("sigma: receive second message: %w", err)
	}
	if err := v.z.UnmarshalBinary(data); err != nil {
		return false, err
	}
	v.state = verifierDone
	return v.verifier.Verify(x, v.a, v.z)
}

// SetChallenge installs a challenge on the underlying verifier
// computation. Composers layered above the driver use it.
func (v *ProtocolVerifier) SetChallenge(e []byte) {
	v.verifier.SetChallenge(e)
}

// Challenge returns the challenge held by the underlying verifier
// computation.
func (v *ProtocolVerifier) Challenge() []byte {
	return v.verifier.Challenge()
}
