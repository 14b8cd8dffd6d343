// Package sigmaand composes independent Σ-protocols into a single
// proof of their conjunction. One challenge is shared by every
// conjunct, which keeps the composition a three-move protocol with
// soundness error 2^(−t): a cheating prover must guess the one
// challenge that all sub-protocols will see.
package sigmaand

import (
	"fmt"
	"io"

	"github.com/provelab/sigma/pkg/math/sample"
	"github.com/provelab/sigma/pkg/sigma"
)

// CommonInput is the ordered sequence of the conjuncts' statements.
type CommonInput struct {
	Inputs []sigma.CommonInput
}

// Input is the ordered sequence of the conjuncts' prover inputs,
// matched by position to the sub-provers.
type Input struct {
	Inputs []sigma.ProverInput
}

func (i *Input) Common() sigma.CommonInput {
	inputs := make([]sigma.CommonInput, len(i.Inputs))
	for j, in := range i.Inputs {
		inputs[j] = in.Common()
	}
	return &CommonInput{Inputs: inputs}
}

// sharedSoundness checks that every conjunct reports the same t and
// returns it.
func sharedSoundness(ts []int) (int, error) {
	if len(ts) == 0 {
		return 0, fmt.Errorf("%w: no sub-protocols", sigma.ErrArityMismatch)
	}
	t := ts[0]
	for _, other := range ts {
		if other != t {
			return 0, fmt.Errorf("%w: sub-protocols disagree: %d vs %d bits", sigma.ErrInvalidSoundness, t, other)
		}
	}
	return t, nil
}

// Prover runs each sub-prover on its own input and wraps the results,
// forwarding one shared challenge to all of them. The rand handle only
// serves the derived simulator.
type Prover struct {
	provers []sigma.Prover
	t       int
	rand    io.Reader
}

func NewProver(provers []sigma.Prover, rand io.Reader) (*Prover, error) {
	ts := make([]int, len(provers))
	for i, p := range provers {
		ts[i] = p.SoundnessBits()
	}
	t, err := sharedSoundness(ts)
	if err != nil {
		return nil, err
	}
	return &Prover{provers: provers, t: t, rand: rand}, nil
}

func (p *Prover) SoundnessBits() int { return p.t }

func (p *Prover) ComputeFirstMessage(in sigma.ProverInput) (sigma.Message, error) {
	input, ok := in.(*Input)
	if !ok {
		return nil, fmt.Errorf("%w: want *sigmaand.Input, got %T", sigma.ErrInputType, in)
	}
	if len(input.Inputs) != len(p.provers) {
		return nil, fmt.Errorf("%w: %d inputs for %d provers", sigma.ErrArityMismatch, len(input.Inputs), len(p.provers))
	}
	parts := make([]sigma.Message, len(p.provers))
	for i, prover := range p.provers {
		msg, err := prover.ComputeFirstMessage(input.Inputs[i])
		if err != nil {
			return nil, err
		}
		parts[i] = msg
	}
	return &sigma.MultiMessage{Parts: parts}, nil
}

func (p *Prover) ComputeSecondMessage(challenge []byte) (sigma.Message, error) {
	if err := sigma.CheckChallenge(challenge, p.t); err != nil {
		return nil, err
	}
	parts := make([]sigma.Message, len(p.provers))
	for i, prover := range p.provers {
		msg, err := prover.ComputeSecondMessage(challenge)
		if err != nil {
			return nil, err
		}
		parts[i] = msg
	}
	return &sigma.MultiMessage{Parts: parts}, nil
}

func (p *Prover) Simulator() sigma.Simulator {
	sims := make([]sigma.Simulator, len(p.provers))
	for i, prover := range p.provers {
		sims[i] = prover.Simulator()
	}
	// Sub-soundness was checked at construction; the composite
	// simulator inherits it.
	return &Simulator{sims: sims, t: p.t, rand: p.rand}
}

// Verifier shares one challenge across the sub-verifiers and accepts
// iff every one of them accepts. All sub-verifiers are consulted even
// after a failure.
type Verifier struct {
	verifiers []sigma.Verifier
	t         int
	rand      io.Reader
	e         []byte
}

func NewVerifier(verifiers []sigma.Verifier, rand io.Reader) (*Verifier, error) {
	ts := make([]int, len(verifiers))
	for i, v := range verifiers {
		ts[i] = v.SoundnessBits()
	}
	t, err := sharedSoundness(ts)
	if err != nil {
		return nil, err
	}
	return &Verifier{verifiers: verifiers, t: t, rand: rand}, nil
}

func (v *Verifier) SoundnessBits() int { return v.t }

func (v *Verifier) SampleChallenge() {
	v.SetChallenge(sample.Bytes(v.rand, sigma.ChallengeSize(v.t)))
}

// SetChallenge stores the challenge and broadcasts it to every
// sub-verifier, so their Verify calls all see the same e.
func (v *Verifier) SetChallenge(e []byte) {
	v.e = append([]byte(nil), e...)
	for _, sub := range v.verifiers {
		sub.SetChallenge(e)
	}
}

func (v *Verifier) Challenge() []byte { return v.e }

func (v *Verifier) FirstMessage() sigma.Message {
	parts := make([]sigma.Message, len(v.verifiers))
	for i, sub := range v.verifiers {
		parts[i] = sub.FirstMessage()
	}
	return &sigma.MultiMessage{Parts: parts}
}

func (v *Verifier) SecondMessage() sigma.Message {
	parts := make([]sigma.Message, len(v.verifiers))
	for i, sub := range v.verifiers {
		parts[i] = sub.SecondMessage()
	}
	return &sigma.MultiMessage{Parts: parts}
}

func (v *Verifier) Verify(x sigma.CommonInput, a, z sigma.Message) (bool, error) {
	input, ok := x.(*CommonInput)
	if !ok {
		return false, fmt.Errorf("%w: want *sigmaand.CommonInput, got %T", sigma.ErrInputType, x)
	}
	if len(input.Inputs) != len(v.verifiers) {
		return false, fmt.Errorf("%w: %d inputs for %d verifiers", sigma.ErrArityMismatch, len(input.Inputs), len(v.verifiers))
	}
	first, ok := a.(*sigma.MultiMessage)
	if !ok {
		return false, fmt.Errorf("%w: first message must be a multi message, got %T", sigma.ErrMalformedMessage, a)
	}
	second, ok := z.(*sigma.MultiMessage)
	if !ok {
		return false, fmt.Errorf("%w: second message must be a multi message, got %T", sigma.ErrMalformedMessage, z)
	}
	if len(first.Parts) != len(v.verifiers) || len(second.Parts) != len(v.verifiers) {
		return false, fmt.Errorf("%w: message parts do not match %d verifiers", sigma.ErrArityMismatch, len(v.verifiers))
	}

	verified := true
	for i, sub := range v.verifiers {
		ok, err := sub.Verify(input.Inputs[i], first.Parts[i], second.Parts[i])
		if err != nil {
			return false, err
		}
		verified = verified && ok
	}
	return verified, nil
}

// Simulator runs each conjunct's simulator under the shared challenge.
type Simulator struct {
	sims []sigma.Simulator
	t    int
	rand io.Reader
}

func NewSimulator(sims []sigma.Simulator, rand io.Reader) (*Simulator, error) {
	ts := make([]int, len(sims))
	for i, s := range sims {
		ts[i] = s.SoundnessBits()
	}
	t, err := sharedSoundness(ts)
	if err != nil {
		return nil, err
	}
	return &Simulator{sims: sims, t: t, rand: rand}, nil
}

func (s *Simulator) SoundnessBits() int { return s.t }

func (s *Simulator) Simulate(x sigma.CommonInput, e []byte) (*sigma.Transcript, error) {
	input, ok := x.(*CommonInput)
	if !ok {
		return nil, fmt.Errorf("%w: want *sigmaand.CommonInput, got %T", sigma.ErrInputType, x)
	}
	if err := sigma.CheckChallenge(e, s.t); err != nil {
		return nil, err
	}
	if len(input.Inputs) != len(s.sims) {
		return nil, fmt.Errorf("%w: %d inputs for %d simulators", sigma.ErrArityMismatch, len(input.Inputs), len(s.sims))
	}
	aParts := make([]sigma.Message, len(s.sims))
	zParts := make([]sigma.Message, len(s.sims))
	for i, sim := range s.sims {
		out, err := sim.Simulate(input.Inputs[i], e)
		if err != nil {
			return nil, err
		}
		aParts[i] = out.A
		zParts[i] = out.Z
	}
	return &sigma.Transcript{
		A: &sigma.MultiMessage{Parts: aParts},
		E: append([]byte(nil), e...),
		Z: &sigma.MultiMessage{Parts: zParts},
	}, nil
}

func (s *Simulator) SimulateRandom(x sigma.CommonInput) (*sigma.Transcript, error) {
	e := sample.Bytes(s.rand, sigma.ChallengeSize(s.t))
	return s.Simulate(x, e)
}
