// Package comm provides the length-framed byte channel the sigma
// drivers run over: every payload is preceded by a big-endian uint32
// size, reads block until a whole frame arrives, and any underlying
// I/O failure surfaces wrapped so callers can distinguish transport
// faults from protocol faults.
package comm

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// maxFrameSize caps a single frame at 64 MiB. Nothing a sigma protocol
// exchanges comes anywhere close; the cap bounds allocation when the
// peer misbehaves.
const maxFrameSize = 64 << 20

// Channel is a blocking, ordered byte channel carrying
// length-prefixed frames.
type Channel interface {
	WriteWithSize(data []byte) error
	ReadWithSize() ([]byte, error)
}

// Conn frames messages over any byte stream, typically a net.Conn.
// It is single-user: one reader, one writer, no interleaving, matching
// the three-message discipline of a sigma run.
type Conn struct {
	rw io.ReadWriter
}

func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{rw: rw}
}

func (c *Conn) WriteWithSize(data []byte) error {
	if len(data) > maxFrameSize {
		return fmt.Errorf("comm: frame of %d bytes exceeds limit", len(data))
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(data)))
	if _, err := c.rw.Write(header[:]); err != nil {
		return fmt.Errorf("comm: write frame header: %w", err)
	}
	if _, err := c.rw.Write(data); err != nil {
		return fmt.Errorf("comm: write frame body: %w", err)
	}
	return nil
}

func (c *Conn) ReadWithSize() ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(c.rw, header[:]); err != nil {
		return nil, fmt.Errorf("comm: read frame header: %w", err)
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > maxFrameSize {
		return nil, fmt.Errorf("comm: frame of %d bytes exceeds limit", size)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(c.rw, data); err != nil {
		return nil, fmt.Errorf("comm: read frame body: %w", err)
	}
	return data, nil
}

// Close closes the underlying stream when it supports closing.
// Blocked reads on the peer side fail with an I/O error.
func (c *Conn) Close() error {
	if closer, ok := c.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Pipe returns two connected in-memory channels, one per party. Writes
// on one side block until the other side reads, like the synchronous
// sockets the protocols are designed for.
func Pipe() (*Conn, *Conn) {
	a, b := net.Pipe()
	return NewConn(a), NewConn(b)
}
