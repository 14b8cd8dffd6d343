// Package hash wraps blake3 as a domain-separated extendable-output
// function. The protocol layer derives session identifiers from it,
// and tests use its digest stream as deterministic randomness.
package hash

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/zeebo/blake3"
)

// DigestLength is the byte length returned by Sum.
const DigestLength = 32

// Hash is a write-only hash state with an extendable output.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash whose state is initialized with the given domain
// string.
func New(domain string) *Hash {
	hash := &Hash{h: blake3.New()}
	hash.writeChunk([]byte(domain))
	return hash
}

// writeChunk writes data with a length prefix, so that consecutive
// writes cannot alias each other.
func (hash *Hash) writeChunk(data []byte) {
	var size [8]byte
	binary.BigEndian.PutUint64(size[:], uint64(len(data)))
	_, _ = hash.h.Write(size[:])
	_, _ = hash.h.Write(data)
}

// WriteAny hashes values of the supported types into the state:
// []byte, string, int, *big.Int and encoding.BinaryMarshaler.
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		switch t := d.(type) {
		case []byte:
			hash.writeChunk(t)
		case string:
			hash.writeChunk([]byte(t))
		case int:
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], uint64(t))
			hash.writeChunk(buf[:])
		case *big.Int:
			if t == nil {
				return fmt.Errorf("hash: write *big.Int: nil")
			}
			hash.writeChunk([]byte(t.String()))
		case encoding.BinaryMarshaler:
			bytes, err := t.MarshalBinary()
			if err != nil {
				return fmt.Errorf("hash: marshal %T: %w", t, err)
			}
			hash.writeChunk(bytes)
		default:
			return fmt.Errorf("hash: unsupported type %T", d)
		}
	}
	return nil
}

// Digest returns a reader for the current output of the function: a
// stream of bytes determined by everything written so far.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns DigestLength bytes of the current output.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLength)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash: internal hash failure: %v", err))
	}
	return out
}
