package group

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provelab/sigma/pkg/math/sample"
)

func TestSecpOps(t *testing.T) {
	grp := Secp256k1()
	g := grp.Generator()

	// g·g = g²
	assert.True(t, g.Mul(g).Equal(g.Exp(nat(2))))

	// x · x⁻¹ = 1
	x := g.Exp(nat(12345))
	assert.True(t, x.Mul(x.Inverse()).IsIdentity())

	// exponent arithmetic: g^a · g^b = g^(a+b)
	assert.True(t, g.Exp(nat(100)).Mul(g.Exp(nat(23))).Equal(g.Exp(nat(123))))

	assert.True(t, grp.Identity().IsIdentity())
	assert.False(t, g.IsIdentity())
	assert.NoError(t, grp.Validate())
}

func TestSecpEncoding(t *testing.T) {
	grp := Secp256k1()

	for i := 0; i < 16; i++ {
		el := grp.Generator().Exp(sample.ModN(rand.Reader, grp.Order()))
		data, err := el.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, 33)
		back, err := grp.FromBytes(data)
		require.NoError(t, err)
		assert.True(t, el.Equal(back))
	}

	// identity has its own one-byte encoding
	data, err := grp.Identity().MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, data)
	back, err := grp.FromBytes(data)
	require.NoError(t, err)
	assert.True(t, back.IsIdentity())

	_, err = grp.FromBytes([]byte{4, 1, 2})
	assert.Error(t, err)
	_, err = grp.FromBytes(make([]byte, 33))
	assert.Error(t, err)
}

func TestSecpExpEdgeCases(t *testing.T) {
	grp := Secp256k1()
	g := grp.Generator()

	assert.True(t, g.Exp(nat(0)).IsIdentity())
	assert.True(t, grp.Identity().Exp(nat(5)).IsIdentity())
	assert.True(t, g.Exp(nat(1)).Equal(g))
}
