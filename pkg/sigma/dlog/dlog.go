// Package sigmadlog implements Schnorr's Σ-protocol for knowledge of a
// discrete logarithm: the prover convinces the verifier that it knows
// w with g^w = h, without revealing w.
//
// See Hazay-Lindell, protocol 6.1.1.
package sigmadlog

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"

	"github.com/provelab/sigma/pkg/math/group"
	"github.com/provelab/sigma/pkg/math/sample"
	"github.com/provelab/sigma/pkg/sigma"
)

// CommonInput is the public statement: h = g^w for some secret w.
type CommonInput struct {
	H group.Element
}

// Input is the prover's input: the statement plus the witness w, with
// g^w = h.
type Input struct {
	H group.Element
	W *saferith.Nat
}

func (i *Input) Common() sigma.CommonInput {
	return &CommonInput{H: i.H}
}

// Prover computes
//
//	SAMPLE r ← ℤq,  a = g^r
//	z = r + e·w mod q
type Prover struct {
	group group.Group
	t     int
	rand  io.Reader

	// round state, live between the two messages
	input *Input
	r     *saferith.Nat
}

func NewProver(g group.Group, t int, rand io.Reader) (*Prover, error) {
	if err := sigma.ValidateSoundness(t, g.Order()); err != nil {
		return nil, err
	}
	return &Prover{group: g, t: t, rand: rand}, nil
}

func (p *Prover) SoundnessBits() int { return p.t }

func (p *Prover) ComputeFirstMessage(in sigma.ProverInput) (sigma.Message, error) {
	input, ok := in.(*Input)
	if !ok {
		return nil, fmt.Errorf("%w: want *sigmadlog.Input, got %T", sigma.ErrInputType, in)
	}
	p.input = input
	p.r = sample.ModN(p.rand, p.group.Order())
	a := p.group.Generator().Exp(p.r)
	return &sigma.GroupElementMessage{Element: a}, nil
}

func (p *Prover) ComputeSecondMessage(challenge []byte) (sigma.Message, error) {
	if p.r == nil {
		return nil, sigma.ErrUsageOrder
	}
	if err := sigma.CheckChallenge(challenge, p.t); err != nil {
		return nil, err
	}
	q := p.group.Order()
	e := sigma.ChallengeNat(challenge)
	// z = r + e·w mod q
	z := new(saferith.Nat).ModMul(e, p.input.W, q)
	z.ModAdd(z, p.r, q)
	p.r, p.input = nil, nil
	return &sigma.ScalarMessage{Value: z.Big()}, nil
}

func (p *Prover) Simulator() sigma.Simulator {
	return &Simulator{group: p.group, t: p.t, rand: p.rand}
}

// Verifier checks
//
//	ACC IFF VALID_PARAMS(G,q,g) AND h ∈ G AND a ∈ G AND z ∈ [0,q)
//	        AND g^z = a·h^e
type Verifier struct {
	group group.Group
	t     int
	rand  io.Reader
	e     []byte
}

func NewVerifier(g group.Group, t int, rand io.Reader) (*Verifier, error) {
	if err := sigma.ValidateSoundness(t, g.Order()); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &Verifier{group: g, t: t, rand: rand}, nil
}

func (v *Verifier) SoundnessBits() int { return v.t }

func (v *Verifier) SampleChallenge() {
	v.e = sample.Bytes(v.rand, sigma.ChallengeSize(v.t))
}

func (v *Verifier) SetChallenge(e []byte) {
	v.e = append([]byte(nil), e...)
}

func (v *Verifier) Challenge() []byte { return v.e }

func (v *Verifier) FirstMessage() sigma.Message {
	return sigma.GroupElementShell(v.group)
}

func (v *Verifier) SecondMessage() sigma.Message {
	return &sigma.ScalarMessage{}
}

func (v *Verifier) Verify(x sigma.CommonInput, a, z sigma.Message) (bool, error) {
	input, ok := x.(*CommonInput)
	if !ok {
		return false, fmt.Errorf("%w: want *sigmadlog.CommonInput, got %T", sigma.ErrInputType, x)
	}
	if v.e == nil {
		return false, sigma.ErrNoChallenge
	}
	if err := sigma.CheckChallenge(v.e, v.t); err != nil {
		return false, err
	}
	first, ok := a.(*sigma.GroupElementMessage)
	if !ok {
		return false, fmt.Errorf("%w: first message must be a group element, got %T", sigma.ErrMalformedMessage, a)
	}
	second, ok := z.(*sigma.ScalarMessage)
	if !ok {
		return false, fmt.Errorf("%w: second message must be a scalar, got %T", sigma.ErrMalformedMessage, z)
	}

	if !v.group.IsMember(input.H) || !v.group.IsMember(first.Element) {
		return false, nil
	}
	zNat, ok := scalarModQ(second, v.group.Order())
	if !ok {
		return false, nil
	}

	// g^z = a·h^e
	e := sigma.ChallengeNat(v.e)
	lhs := v.group.Generator().Exp(zNat)
	rhs := first.Element.Mul(input.H.Exp(e))
	return lhs.Equal(rhs), nil
}

// scalarModQ extracts the response as a Nat, reporting false unless it
// lies in [0, q).
func scalarModQ(m *sigma.ScalarMessage, q *saferith.Modulus) (*saferith.Nat, bool) {
	if m.Value == nil || m.Value.Sign() < 0 {
		return nil, false
	}
	n := new(saferith.Nat).SetBig(m.Value, m.Value.BitLen())
	_, _, lt := n.CmpMod(q)
	if lt != 1 {
		return nil, false
	}
	return n, true
}

// Simulator computes
//
//	SAMPLE z ← ℤq,  a = g^z·h^(−e)   (−e taken mod q)
//	OUTPUT (a, e, z)
type Simulator struct {
	group group.Group
	t     int
	rand  io.Reader
}

func NewSimulator(g group.Group, t int, rand io.Reader) (*Simulator, error) {
	if err := sigma.ValidateSoundness(t, g.Order()); err != nil {
		return nil, err
	}
	return &Simulator{group: g, t: t, rand: rand}, nil
}

func (s *Simulator) SoundnessBits() int { return s.t }

func (s *Simulator) Simulate(x sigma.CommonInput, e []byte) (*sigma.Transcript, error) {
	input, ok := x.(*CommonInput)
	if !ok {
		return nil, fmt.Errorf("%w: want *sigmadlog.CommonInput, got %T", sigma.ErrInputType, x)
	}
	if err := sigma.CheckChallenge(e, s.t); err != nil {
		return nil, err
	}
	q := s.group.Order()
	z := sample.ModN(s.rand, q)
	eNeg := new(saferith.Nat).Mod(sigma.ChallengeNat(e), q)
	eNeg.ModNeg(eNeg, q)
	a := s.group.Generator().Exp(z).Mul(input.H.Exp(eNeg))
	return &sigma.Transcript{
		A: &sigma.GroupElementMessage{Element: a},
		E: append([]byte(nil), e...),
		Z: &sigma.ScalarMessage{Value: z.Big()},
	}, nil
}

func (s *Simulator) SimulateRandom(x sigma.CommonInput) (*sigma.Transcript, error) {
	e := sample.Bytes(s.rand, sigma.ChallengeSize(s.t))
	return s.Simulate(x, e)
}
