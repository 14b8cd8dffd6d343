package group

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/provelab/sigma/pkg/math/sample"
)

// primalityIterations is the number of Miller-Rabin rounds used when
// validating ℤₚ* parameters. Same count Go uses internally.
const primalityIterations = 20

// zpGroup is the subgroup of order q of ℤₚ*, for a safe prime p = 2q+1.
// This subgroup is exactly the set of quadratic residues mod p.
//
// The canonical element encoding is the decimal string of the
// representative in [1, p-1].
type zpGroup struct {
	p *saferith.Modulus
	q *saferith.Modulus
	g *saferith.Nat
}

// NewZp returns the q-order subgroup of ℤₚ* generated by g.
// p must equal 2q+1 and g must have order q.
func NewZp(p, q, g *big.Int) (Group, error) {
	if p.Sign() <= 0 || q.Sign() <= 0 {
		return nil, errors.New("group: zp: parameters must be positive")
	}
	twoQPlus1 := new(big.Int).Lsh(q, 1)
	twoQPlus1.Add(twoQPlus1, big.NewInt(1))
	if twoQPlus1.Cmp(p) != 0 {
		return nil, errors.New("group: zp: p must equal 2q+1")
	}
	if g.Cmp(big.NewInt(2)) < 0 || g.Cmp(p) >= 0 {
		return nil, errors.New("group: zp: generator out of range")
	}
	grp := &zpGroup{
		p: saferith.ModulusFromNat(new(saferith.Nat).SetBig(p, p.BitLen())),
		q: saferith.ModulusFromNat(new(saferith.Nat).SetBig(q, q.BitLen())),
		g: new(saferith.Nat).SetBig(g, p.BitLen()),
	}
	if !grp.hasOrderQ(grp.g) {
		return nil, errors.New("group: zp: generator does not have order q")
	}
	return grp, nil
}

// GenerateZp creates a fresh safe-prime group of the given modulus
// size. A generator is obtained by squaring a random unit, which lands
// in the quadratic-residue subgroup.
func GenerateZp(rand io.Reader, bits int) (Group, error) {
	p, q, err := sample.SafePrime(rand, bits)
	if err != nil {
		return nil, fmt.Errorf("group: zp: generate: %w", err)
	}
	pMod := saferith.ModulusFromNat(new(saferith.Nat).SetBig(p, p.BitLen()))
	one := new(saferith.Nat).SetUint64(1)
	zero := new(saferith.Nat).SetUint64(0)
	for {
		x := sample.ModN(rand, pMod)
		g := new(saferith.Nat).ModMul(x, x, pMod)
		if g.Eq(one) == 1 || g.Eq(zero) == 1 {
			continue
		}
		return NewZp(p, q, g.Big())
	}
}

func (zp *zpGroup) Name() string {
	return fmt.Sprintf("zp-%d", zp.p.BitLen())
}

func (zp *zpGroup) Order() *saferith.Modulus { return zp.q }

func (zp *zpGroup) Generator() Element {
	return &zpElement{group: zp, v: zp.g.Clone()}
}

func (zp *zpGroup) Identity() Element {
	return &zpElement{group: zp, v: new(saferith.Nat).SetUint64(1)}
}

func (zp *zpGroup) NewElement() Element {
	return &zpElement{group: zp}
}

func (zp *zpGroup) FromBytes(data []byte) (Element, error) {
	e := zp.NewElement()
	if err := e.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return e, nil
}

func (zp *zpGroup) IsMember(x Element) bool {
	el, ok := x.(*zpElement)
	if !ok || el.group != zp || el.v == nil {
		return false
	}
	if !zp.inRange(el.v) {
		return false
	}
	return zp.hasOrderQ(el.v)
}

func (zp *zpGroup) Validate() error {
	if !zp.p.Big().ProbablyPrime(primalityIterations) {
		return errors.New("group: zp: p is not prime")
	}
	if !zp.q.Big().ProbablyPrime(primalityIterations) {
		return errors.New("group: zp: q is not prime")
	}
	twoQPlus1 := new(big.Int).Lsh(zp.q.Big(), 1)
	twoQPlus1.Add(twoQPlus1, big.NewInt(1))
	if twoQPlus1.Cmp(zp.p.Big()) != 0 {
		return errors.New("group: zp: p != 2q+1")
	}
	one := new(saferith.Nat).SetUint64(1)
	if zp.g.Eq(one) == 1 || !zp.hasOrderQ(zp.g) {
		return errors.New("group: zp: generator does not have order q")
	}
	return nil
}

// inRange reports x ∈ [1, p-1].
func (zp *zpGroup) inRange(x *saferith.Nat) bool {
	zero := new(saferith.Nat).SetUint64(0)
	if x.Eq(zero) == 1 {
		return false
	}
	_, _, lt := x.CmpMod(zp.p)
	return lt == 1
}

// hasOrderQ reports x^q = 1 mod p, which for x ∈ [1, p-1] means x lies
// in the subgroup. The identity is a member (its order divides q).
func (zp *zpGroup) hasOrderQ(x *saferith.Nat) bool {
	res := new(saferith.Nat).Exp(x, zp.q.Nat(), zp.p)
	one := new(saferith.Nat).SetUint64(1)
	return res.Eq(one) == 1
}

type zpElement struct {
	group *zpGroup
	// v is the representative in [1, p-1]; nil for an unmarshal shell.
	v *saferith.Nat
}

func (e *zpElement) Group() Group { return e.group }

func (e *zpElement) same(x Element) *zpElement {
	other, ok := x.(*zpElement)
	if !ok || other.group != e.group {
		panic(fmt.Sprintf("group: zp: mixed group operands: %v", x))
	}
	return other
}

func (e *zpElement) Mul(x Element) Element {
	other := e.same(x)
	v := new(saferith.Nat).ModMul(e.v, other.v, e.group.p)
	return &zpElement{group: e.group, v: v}
}

func (e *zpElement) Exp(exp *saferith.Nat) Element {
	v := new(saferith.Nat).Exp(e.v, exp, e.group.p)
	return &zpElement{group: e.group, v: v}
}

func (e *zpElement) Inverse() Element {
	v := new(saferith.Nat).ModInverse(e.v, e.group.p)
	return &zpElement{group: e.group, v: v}
}

func (e *zpElement) Equal(x Element) bool {
	other, ok := x.(*zpElement)
	if !ok || other.group != e.group || e.v == nil || other.v == nil {
		return false
	}
	return e.v.Eq(other.v) == 1
}

func (e *zpElement) IsIdentity() bool {
	if e.v == nil {
		return false
	}
	one := new(saferith.Nat).SetUint64(1)
	return e.v.Eq(one) == 1
}

func (e *zpElement) MarshalBinary() ([]byte, error) {
	if e.v == nil {
		return nil, errors.New("group: zp: marshal of empty element")
	}
	return []byte(e.v.Big().String()), nil
}

func (e *zpElement) UnmarshalBinary(data []byte) error {
	v, ok := new(big.Int).SetString(string(data), 10)
	if !ok {
		return fmt.Errorf("group: zp: invalid element encoding %q", data)
	}
	n := new(saferith.Nat).SetBig(v, e.group.p.BitLen())
	if v.Sign() <= 0 || v.Cmp(e.group.p.Big()) >= 0 || !e.group.inRange(n) {
		return fmt.Errorf("group: zp: element %s out of range", v)
	}
	e.v = n
	return nil
}
