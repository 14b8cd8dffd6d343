package sigma

import (
	"fmt"

	"github.com/provelab/sigma/pkg/comm"
)

type proverState uint8

const (
	proverFresh proverState = iota
	proverFirstSent
	proverDone
)

// ProtocolProver drives the prover side of one proof over a channel:
// it sends the commitment, blocks for the challenge, and sends the
// response. A ProtocolProver is single-shot; reuse is ErrUsageOrder.
type ProtocolProver struct {
	channel comm.Channel
	prover  Prover
	state   proverState
}

func NewProtocolProver(channel comm.Channel, prover Prover) *ProtocolProver {
	return &ProtocolProver{channel: channel, prover: prover}
}

// Prove runs both prover steps back to back.
func (p *ProtocolProver) Prove(input ProverInput) error {
	if err := p.ProcessFirstMessage(input); err != nil {
		return err
	}
	return p.ProcessSecondMessage()
}

// ProcessFirstMessage computes the commitment and writes it, framed,
// to the channel.
func (p *ProtocolProver) ProcessFirstMessage(input ProverInput) error {
	if p.state != proverFresh {
		return ErrUsageOrder
	}
	msg, err := p.prover.ComputeFirstMessage(input)
	if err != nil {
		return err
	}
	data, err := msg.MarshalBinary()
	if err != nil {
		return err
	}
	if err := p.channel.WriteWithSize(data); err != nil {
		return fmt.Errorf("sigma: send first message: %w", err)
	}
	p.state = proverFirstSent
	return nil
}

// ProcessSecondMessage blocks for the verifier's challenge, computes
// the response and writes it to the channel.
func (p *ProtocolProver) ProcessSecondMessage() error {
	if p.state != proverFirstSent {
		return ErrUsageOrder
	}
	challenge, err := p.channel.ReadWithSize()
	if err != nil {
		return fmt.Errorf("sigma: receive challenge: %w", err)
	}
	msg, err := p.prover.ComputeSecondMessage(challenge)
	if err != nil {
		return err
	}
	data, err := msg.MarshalBinary()
	if err != nil {
		return err
	}
	if err := p.channel.WriteWithSize(data); err != nil {
		return fmt.Errorf("sigma: send second message: %w", err)
	}
	p.state = proverDone
	return nil
}
