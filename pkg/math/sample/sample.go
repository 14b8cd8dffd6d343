// Package sample draws the random values the sigma protocols need from
// an explicit io.Reader: exponents mod q, fixed-length challenges, and
// safe primes for ℤₚ* group setup.
package sample

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
)

const maxIterations = 255

var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// ModN samples an element of ℤₙ by rejection.
func ModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	out := new(saferith.Nat)
	buf := make([]byte, (n.BitLen()+7)/8)
	for {
		mustReadBits(rand, buf)
		out.SetBytes(buf)
		_, _, lt := out.CmpMod(n)
		if lt == 1 {
			break
		}
	}
	return out
}

// Bytes reads exactly n random bytes. This is how verifier challenges
// are drawn.
func Bytes(rand io.Reader, n int) []byte {
	buf := make([]byte, n)
	mustReadBits(rand, buf)
	return buf
}

// trialPrimes contains the first 136 odd prime numbers, used to discard
// safe-prime candidates cheaply before the expensive primality tests.
var trialPrimes = []uint64{
	3, 5, 7, 11, 13, 17, 19, 23,
	29, 31, 37, 41, 43, 47, 53, 59,
	61, 67, 71, 73, 79, 83, 89, 97,
	101, 103, 107, 109, 113, 127, 131, 137,
	139, 149, 151, 157, 163, 167, 173, 179,
	181, 191, 193, 197, 199, 211, 223, 227,
	229, 233, 239, 241, 251, 257, 263, 269,
	271, 277, 281, 283, 293, 307, 311, 313,
	317, 331, 337, 347, 349, 353, 359, 367,
	373, 379, 383, 389, 397, 401, 409, 419,
	421, 431, 433, 439, 443, 449, 457, 461,
	463, 467, 479, 487, 491, 499, 503, 509,
	521, 523, 541, 547, 557, 563, 569, 571,
	577, 587, 593, 599, 601, 607, 613, 617,
	619, 631, 641, 643, 647, 653, 659, 661,
	673, 677, 683, 691, 701, 709, 719, 727,
	733, 739, 743, 751, 757, 761, 769, 773,
}

// potentialSafePrime generates a candidate safe prime of the given bit
// size. The candidate has survived trial division but not the heavier
// Miller-Rabin tests.
func potentialSafePrime(rand io.Reader, bits int) (*big.Int, error) {
	if bits < 3 {
		return nil, errors.New("sample: safe prime size must be at least 3 bits")
	}

	// The number of significant bits in the last byte of our number.
	lastBits := uint(bits % 8)
	if lastBits == 0 {
		lastBits = 8
	}

	bytes := make([]byte, (bits+7)/8)
	p := new(big.Int)
	scratch := new(big.Int)
	// We store a remainder per trial prime so that candidates can be
	// adjusted with small deltas instead of recomputing the division.
	mods := make([]uint64, len(trialPrimes))

	for {
		if _, err := io.ReadFull(rand, bytes); err != nil {
			return nil, err
		}

		// Clear bits in the first byte to make sure the candidate has a size <= bits.
		bytes[0] &= uint8(int(1<<lastBits) - 1)
		// Don't let the value be too small: set the most significant two bits,
		// so that a product of two such values is never one bit short.
		if lastBits >= 2 {
			bytes[0] |= 0b11 << (lastBits - 2)
		} else {
			bytes[0] |= 1
			if len(bytes) > 1 {
				bytes[1] |= 0b1000_0000
			}
		}
		// Safe primes are always 3 mod 4, so we set the least significant
		// two bits and keep them that way.
		bytes[len(bytes)-1] |= 3

		p.SetBytes(bytes)

		for i := 0; i < len(trialPrimes); i++ {
			scratch.SetUint64(trialPrimes[i])
			mods[i] = scratch.Mod(p, scratch).Uint64()
		}
		// This is a heuristic cap used by OpenSSL.
		maxDelta := (uint64(1) << 32) - trialPrimes[len(trialPrimes)-1]
	NextDelta:
		// Step by 4 to remain 3 mod 4.
		for delta := uint64(0); delta < maxDelta; delta += 4 {
			for i := 0; i < len(trialPrimes); i++ {
				remainder := (mods[i] + delta) % trialPrimes[i]
				// If x = 0 mod p, x is not prime. If x = 1 mod p, then
				// (x-1)/2 = 0 mod p, so x cannot be a safe prime either.
				if remainder <= 1 {
					continue NextDelta
				}
			}
			scratch.SetUint64(delta)
			p.Add(p, scratch)

			// Adding delta may have pushed the number one bit too long.
			if p.BitLen() == bits {
				return p, nil
			}
		}
	}
}

// primalityIterations is the number of Miller-Rabin rounds. 20 is the
// same number that Go uses internally.
const primalityIterations = 20

// maxPrimeIterations is substantially larger than the other retry caps
// because of the sparsity of safe primes.
const maxPrimeIterations = 100_000

var ErrMaxPrimeIterations = fmt.Errorf("sample: failed to generate prime after %d iterations", maxPrimeIterations)

// SafePrime returns a prime p of the given bit size together with
// q = (p-1)/2, which is also prime.
func SafePrime(rand io.Reader, bits int) (p, q *big.Int, err error) {
	one := new(big.Int).SetUint64(1)
	for i := 0; i < maxPrimeIterations; i++ {
		candidate, err := potentialSafePrime(rand, bits)
		if err != nil {
			return nil, nil, err
		}
		half := new(big.Int).Sub(candidate, one)
		half.Rsh(half, 1)
		// The candidate is likely to be prime already, so check its half
		// first: it is the more likely of the two to fail.
		if !half.ProbablyPrime(primalityIterations) {
			continue
		}
		if !candidate.ProbablyPrime(primalityIterations) {
			continue
		}
		return candidate, half, nil
	}
	return nil, nil, ErrMaxPrimeIterations
}
