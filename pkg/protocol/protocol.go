// Package protocol wraps each framed Σ-message in a session envelope
// when a proof runs between processes. The envelope binds every frame
// to a session identifier, a sender and a per-direction sequence
// number, so stray or replayed traffic is rejected before it reaches
// the Σ layer.
package protocol

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/provelab/sigma/internal/hash"
	"github.com/provelab/sigma/pkg/comm"
)

// Message is the envelope carried inside every frame.
type Message struct {
	SSID  []byte
	From  string
	Round uint16
	Data  []byte
}

// SSID derives a session identifier from the protocol name and any
// session-defining values (group parameters, statement encodings, a
// shared nonce).
func SSID(protocol string, parts ...[]byte) []byte {
	h := hash.New("sigma/ssid")
	_ = h.WriteAny(protocol)
	for _, part := range parts {
		_ = h.WriteAny(part)
	}
	return h.Sum()
}

// Channel is a comm.Channel that adds the envelope on write and checks
// and strips it on read. Both parties must agree on the ssid and on
// each other's names.
type Channel struct {
	inner      comm.Channel
	ssid       []byte
	self, peer string
	sendRound  uint16
	recvRound  uint16
}

func NewChannel(inner comm.Channel, ssid []byte, self, peer string) *Channel {
	return &Channel{inner: inner, ssid: ssid, self: self, peer: peer}
}

func (c *Channel) WriteWithSize(data []byte) error {
	c.sendRound++
	env := &Message{
		SSID:  c.ssid,
		From:  c.self,
		Round: c.sendRound,
		Data:  data,
	}
	raw, err := cbor.Marshal(env)
	if err != nil {
		return fmt.Errorf("protocol: marshal envelope: %w", err)
	}
	return c.inner.WriteWithSize(raw)
}

func (c *Channel) ReadWithSize() ([]byte, error) {
	raw, err := c.inner.ReadWithSize()
	if err != nil {
		return nil, err
	}
	env := &Message{}
	if err := cbor.Unmarshal(raw, env); err != nil {
		return nil, fmt.Errorf("protocol: unmarshal envelope: %w", err)
	}
	if !bytes.Equal(env.SSID, c.ssid) {
		return nil, fmt.Errorf("protocol: envelope for foreign session %x", env.SSID)
	}
	if env.From != c.peer {
		return nil, fmt.Errorf("protocol: envelope from %q, want %q", env.From, c.peer)
	}
	if env.Round != c.recvRound+1 {
		return nil, fmt.Errorf("protocol: envelope round %d, want %d", env.Round, c.recvRound+1)
	}
	c.recvRound++
	return env.Data, nil
}
