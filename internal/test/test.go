// Package test holds helpers shared by the package tests: a tiny
// well-known group, deterministic byte readers for forcing protocol
// randomness, and the soundness parameter that goes with the group.
package test

import (
	"io"
	"math/big"

	"github.com/provelab/sigma/internal/hash"
	"github.com/provelab/sigma/pkg/math/group"
)

// The 23-element subgroup of ℤ₄₇*: p = 47 = 2·23+1, generated by 2.
// Small enough to enumerate every element and every challenge.
const (
	SmallP = 47
	SmallQ = 23
	SmallG = 2
	SmallT = 4
)

// SmallGroup returns the q=23 test group.
func SmallGroup() group.Group {
	g, err := group.NewZp(big.NewInt(SmallP), big.NewInt(SmallQ), big.NewInt(SmallG))
	if err != nil {
		panic(err)
	}
	return g
}

// Reader returns a deterministic random stream derived from seed.
func Reader(seed string) io.Reader {
	h := hash.New("sigma/test")
	_ = h.WriteAny(seed)
	return h.Digest()
}

// ByteReader yields the byte b forever. Sampling mod a small q from it
// pins the sampled value to b.
type ByteReader byte

func (r ByteReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r)
	}
	return len(p), nil
}
