// Package group defines the cyclic prime-order group consumed by the
// sigma protocols, together with two concrete backends: the q-order
// subgroup of ℤₚ* for a safe prime p = 2q+1, and secp256k1.
//
// Group operations are written multiplicatively. Exponents are
// *saferith.Nat values which the caller is expected to have reduced
// modulo the group order.
package group

import (
	"encoding"

	"github.com/cronokirby/saferith"
)

// Group describes a cyclic group of prime order q with a fixed
// generator g.
type Group interface {
	// Name identifies the group, e.g. "secp256k1" or "zp-2048".
	Name() string
	// Order returns q.
	Order() *saferith.Modulus
	// Generator returns g.
	Generator() Element
	// Identity returns the neutral element.
	Identity() Element
	// NewElement returns an uninitialized element suitable as an
	// UnmarshalBinary target.
	NewElement() Element
	// FromBytes decodes an element from its canonical encoding.
	FromBytes(data []byte) (Element, error)
	// IsMember reports whether x belongs to this group.
	IsMember(x Element) bool
	// Validate checks the group parameters themselves (primality,
	// generator order). It can be expensive for large parameters.
	Validate() error
}

// Element is a single group element. Operations return fresh elements
// and leave the receiver untouched.
type Element interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Group() Group
	// Mul returns the group product of the receiver and x.
	Mul(x Element) Element
	// Exp returns the receiver raised to e. e must be reduced mod the
	// group order.
	Exp(e *saferith.Nat) Element
	// Inverse returns the element whose product with the receiver is
	// the identity.
	Inverse() Element
	Equal(x Element) bool
	IsIdentity() bool
}
