package group

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// secpGroup is secp256k1 in multiplicative notation: Mul is point
// addition, Exp is scalar multiplication. The canonical encoding is the
// 33-byte compressed SEC form; the identity is encoded as a single zero
// byte, since the compressed form cannot express the point at infinity.
type secpGroup struct{}

var (
	secpOrder *saferith.Modulus
	secpBaseX secp256k1.FieldVal
	secpBaseY secp256k1.FieldVal
)

func init() {
	n, _ := hex.DecodeString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	secpOrder = saferith.ModulusFromBytes(n)
	gx, _ := hex.DecodeString("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	gy, _ := hex.DecodeString("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8")
	secpBaseX.SetByteSlice(gx)
	secpBaseY.SetByteSlice(gy)
}

// Secp256k1 returns the secp256k1 group.
func Secp256k1() Group { return secpGroup{} }

func (secpGroup) Name() string { return "secp256k1" }

func (secpGroup) Order() *saferith.Modulus { return secpOrder }

func (g secpGroup) Generator() Element {
	e := &secpElement{}
	e.p.X.Set(&secpBaseX)
	e.p.Y.Set(&secpBaseY)
	e.p.Z.SetInt(1)
	return e
}

func (g secpGroup) Identity() Element { return &secpElement{} }

func (g secpGroup) NewElement() Element { return &secpElement{} }

func (g secpGroup) FromBytes(data []byte) (Element, error) {
	e := &secpElement{}
	if err := e.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return e, nil
}

// IsMember accepts any decodable secp256k1 element: the curve has prime
// order, so every point on it lies in the group.
func (g secpGroup) IsMember(x Element) bool {
	_, ok := x.(*secpElement)
	return ok
}

// Validate always succeeds: the parameters are the fixed, published
// curve constants.
func (g secpGroup) Validate() error { return nil }

type secpElement struct {
	p secp256k1.JacobianPoint
}

func (e *secpElement) Group() Group { return secpGroup{} }

func secpCast(x Element) *secpElement {
	other, ok := x.(*secpElement)
	if !ok {
		panic(fmt.Sprintf("group: secp256k1: mixed group operands: %v", x))
	}
	return other
}

func (e *secpElement) Mul(x Element) Element {
	other := secpCast(x)
	out := &secpElement{}
	secp256k1.AddNonConst(&e.p, &other.p, &out.p)
	return out
}

func (e *secpElement) Exp(exp *saferith.Nat) Element {
	if e.IsIdentity() {
		return &secpElement{}
	}
	var s secp256k1.ModNScalar
	var buf [32]byte
	exp.Big().FillBytes(buf[:])
	s.SetBytes(&buf)
	if s.IsZero() {
		return &secpElement{}
	}
	out := &secpElement{}
	secp256k1.ScalarMultNonConst(&s, &e.p, &out.p)
	return out
}

func (e *secpElement) Inverse() Element {
	out := &secpElement{}
	out.p.Set(&e.p)
	out.p.Y.Negate(1)
	out.p.Y.Normalize()
	return out
}

func (e *secpElement) Equal(x Element) bool {
	other, ok := x.(*secpElement)
	if !ok {
		return false
	}
	var a, b secp256k1.JacobianPoint
	a.Set(&e.p)
	b.Set(&other.p)
	a.ToAffine()
	b.ToAffine()
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y) && a.Z.Equals(&b.Z)
}

func (e *secpElement) IsIdentity() bool {
	return (e.p.X.IsZero() && e.p.Y.IsZero()) || e.p.Z.IsZero()
}

func (e *secpElement) MarshalBinary() ([]byte, error) {
	if e.IsIdentity() {
		return []byte{0}, nil
	}
	var affine secp256k1.JacobianPoint
	affine.Set(&e.p)
	affine.ToAffine()
	out := make([]byte, 33)
	out[0] = byte(affine.Y.IsOddBit()) + 2
	data := affine.X.Bytes()
	copy(out[1:], data[:])
	return out, nil
}

func (e *secpElement) UnmarshalBinary(data []byte) error {
	if len(data) == 1 && data[0] == 0 {
		e.p.X.SetInt(0)
		e.p.Y.SetInt(0)
		e.p.Z.SetInt(0)
		return nil
	}
	if len(data) != 33 {
		return fmt.Errorf("group: secp256k1: invalid element length %d", len(data))
	}
	if data[0] != 2 && data[0] != 3 {
		return errors.New("group: secp256k1: invalid compression prefix")
	}
	var p secp256k1.JacobianPoint
	p.Z.SetInt(1)
	if p.X.SetByteSlice(data[1:]) {
		return errors.New("group: secp256k1: x coordinate out of range")
	}
	if !secp256k1.DecompressY(&p.X, data[0] == 3, &p.Y) {
		return errors.New("group: secp256k1: x coordinate not on curve")
	}
	p.Y.Normalize()
	e.p = p
	return nil
}
