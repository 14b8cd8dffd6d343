package sigma

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/provelab/sigma/pkg/math/group"
)

// Message is a single Σ-protocol payload. The concrete shapes are
// GroupElementMessage, ScalarMessage, PairMessage and MultiMessage;
// every shape round-trips through its binary encoding.
type Message interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// GroupElementMessage carries one group element, encoded with the
// group's canonical element encoding. Schnorr commitments use it.
type GroupElementMessage struct {
	Element group.Element
}

// GroupElementShell returns an empty message ready to deserialize an
// element of g.
func GroupElementShell(g group.Group) *GroupElementMessage {
	return &GroupElementMessage{Element: g.NewElement()}
}

func (m *GroupElementMessage) MarshalBinary() ([]byte, error) {
	if m.Element == nil {
		return nil, fmt.Errorf("%w: empty group element message", ErrMalformedMessage)
	}
	return m.Element.MarshalBinary()
}

func (m *GroupElementMessage) UnmarshalBinary(data []byte) error {
	if m.Element == nil {
		return fmt.Errorf("%w: group element message has no shell element", ErrMalformedMessage)
	}
	if err := m.Element.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return nil
}

// ScalarMessage carries one arbitrary-precision integer, encoded as its
// decimal string. Responses z use it. A nil Value marks an empty shell;
// deserialization always installs an explicit value.
type ScalarMessage struct {
	Value *big.Int
}

func (m *ScalarMessage) MarshalBinary() ([]byte, error) {
	if m.Value == nil {
		return nil, fmt.Errorf("%w: empty scalar message", ErrMalformedMessage)
	}
	return []byte(m.Value.String()), nil
}

func (m *ScalarMessage) UnmarshalBinary(data []byte) error {
	v, ok := new(big.Int).SetString(string(data), 10)
	if !ok {
		return fmt.Errorf("%w: invalid scalar encoding %q", ErrMalformedMessage, data)
	}
	m.Value = v
	return nil
}

// PairMessage carries two group elements, encoded as the two element
// encodings joined by a single ':'. The Chaum-Pedersen commitment
// (a₁, a₂) uses it.
type PairMessage struct {
	First, Second group.Element
}

// PairShell returns an empty two-element message for elements of g.
func PairShell(g group.Group) *PairMessage {
	return &PairMessage{First: g.NewElement(), Second: g.NewElement()}
}

func (m *PairMessage) MarshalBinary() ([]byte, error) {
	if m.First == nil || m.Second == nil {
		return nil, fmt.Errorf("%w: empty pair message", ErrMalformedMessage)
	}
	first, err := m.First.MarshalBinary()
	if err != nil {
		return nil, err
	}
	second, err := m.Second.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(first)+1+len(second))
	out = append(out, first...)
	out = append(out, ':')
	out = append(out, second...)
	return out, nil
}

func (m *PairMessage) UnmarshalBinary(data []byte) error {
	if m.First == nil || m.Second == nil {
		return fmt.Errorf("%w: pair message has no shell elements", ErrMalformedMessage)
	}
	// The separator byte may also occur inside a binary element
	// encoding, so every candidate split is tried in turn.
	for i := 0; i < len(data); i++ {
		if data[i] != ':' {
			continue
		}
		if m.First.UnmarshalBinary(data[:i]) != nil {
			continue
		}
		if m.Second.UnmarshalBinary(data[i+1:]) == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: no valid element pair in %d bytes", ErrMalformedMessage, len(data))
}

// MultiMessage carries an ordered sequence of sub-messages, each
// individually length-prefixed on the wire. The AND combinator wraps
// its conjuncts' messages in one; nesting is allowed.
type MultiMessage struct {
	Parts []Message
}

func (m *MultiMessage) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	for _, part := range m.Parts {
		data, err := part.MarshalBinary()
		if err != nil {
			return nil, err
		}
		var header [4]byte
		binary.BigEndian.PutUint32(header[:], uint32(len(data)))
		buf.Write(header[:])
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary splits data into length-prefixed chunks and
// deserializes each into the corresponding shell in Parts. The chunk
// count must match the shell count exactly.
func (m *MultiMessage) UnmarshalBinary(data []byte) error {
	rest := data
	for i, part := range m.Parts {
		if len(rest) < 4 {
			return fmt.Errorf("%w: multi message truncated at part %d", ErrMalformedMessage, i)
		}
		size := binary.BigEndian.Uint32(rest[:4])
		rest = rest[4:]
		if uint32(len(rest)) < size {
			return fmt.Errorf("%w: multi message part %d exceeds payload", ErrMalformedMessage, i)
		}
		if err := part.UnmarshalBinary(rest[:size]); err != nil {
			return err
		}
		rest = rest[size:]
	}
	if len(rest) != 0 {
		return fmt.Errorf("%w: %d trailing bytes after multi message", ErrMalformedMessage, len(rest))
	}
	return nil
}
