// Package attachproto defines the wire protocol spoken over a session's
// attach socket: a 1-byte message type, a 4-byte big-endian payload
// length, and the payload itself.
package attachproto

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Message type tags.
const (
	MsgOutput byte = 0x01
	MsgInput  byte = 0x02
	MsgResize byte = 0x03
	MsgInfo   byte = 0x04
	MsgClose  byte = 0x05
)

// HeaderSize is the fixed size of the type+length header preceding every
// message payload.
const HeaderSize = 5

// MaxPayloadSize bounds a single message's payload to guard against a
// corrupt or hostile length field forcing an unbounded allocation.
const MaxPayloadSize = 16 * 1024 * 1024

// ErrUnknownType is returned when a header names a message type this
// package doesn't know how to decode.
var ErrUnknownType = errors.New("attachproto: unknown message type")

// ErrPayloadTooLarge is returned when a header's length exceeds
// MaxPayloadSize.
var ErrPayloadTooLarge = errors.New("attachproto: payload too large")

// ErrInvalidPayload is returned when a payload's length or content is
// incompatible with its declared message type.
var ErrInvalidPayload = errors.New("attachproto: invalid payload")

// ErrConnectionClosed is returned when the peer closes the connection
// mid-read.
var ErrConnectionClosed = errors.New("attachproto: connection closed")

// SessionInfoPayload is the body of an Info message: a snapshot of
// session identity plus a full screen render.
type SessionInfoPayload struct {
	SessionID       string   `json:"session_id"`
	Program         string   `json:"program"`
	Args            []string `json:"args"`
	Pid             int      `json:"pid"`
	Rows            int      `json:"rows"`
	Cols            int      `json:"cols"`
	Screen          string   `json:"screen"`
	ProtocolVersion int      `json:"protocol_version"`
}

// Message is one frame of the attach protocol.
type Message struct {
	Type    byte
	Output  []byte
	Input   []byte
	Rows    uint16
	Cols    uint16
	Info    *SessionInfoPayload
	CloseReason string
}

// NewOutput builds an Output message.
func NewOutput(data []byte) Message { return Message{Type: MsgOutput, Output: data} }

// NewInput builds an Input message.
func NewInput(data []byte) Message { return Message{Type: MsgInput, Input: data} }

// NewResize builds a Resize message.
func NewResize(rows, cols uint16) Message { return Message{Type: MsgResize, Rows: rows, Cols: cols} }

// NewInfo builds an Info message.
func NewInfo(info SessionInfoPayload) Message { return Message{Type: MsgInfo, Info: &info} }

// NewClose builds a Close message with an optional reason.
func NewClose(reason string) Message { return Message{Type: MsgClose, CloseReason: reason} }

// Encode serializes m to its wire form: header followed by payload.
func (m Message) Encode() ([]byte, error) {
	var payload []byte
	switch m.Type {
	case MsgOutput:
		payload = m.Output
	case MsgInput:
		payload = m.Input
	case MsgResize:
		payload = make([]byte, 4)
		binary.BigEndian.PutUint16(payload[0:2], m.Rows)
		binary.BigEndian.PutUint16(payload[2:4], m.Cols)
	case MsgInfo:
		b, err := json.Marshal(m.Info)
		if err != nil {
			return nil, fmt.Errorf("attachproto: encode info: %w", err)
		}
		payload = b
	case MsgClose:
		payload = []byte(m.CloseReason)
	default:
		return nil, ErrUnknownType
	}

	if len(payload) > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}

	buf := make([]byte, HeaderSize+len(payload))
	buf[0] = m.Type
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(payload)))
	copy(buf[HeaderSize:], payload)
	return buf, nil
}

// Decode reconstructs a Message from a type tag and its payload.
func Decode(msgType byte, payload []byte) (Message, error) {
	switch msgType {
	case MsgOutput:
		return Message{Type: MsgOutput, Output: payload}, nil
	case MsgInput:
		return Message{Type: MsgInput, Input: payload}, nil
	case MsgResize:
		if len(payload) != 4 {
			return Message{}, ErrInvalidPayload
		}
		return Message{
			Type: MsgResize,
			Rows: binary.BigEndian.Uint16(payload[0:2]),
			Cols: binary.BigEndian.Uint16(payload[2:4]),
		}, nil
	case MsgInfo:
		var info SessionInfoPayload
		if err := json.Unmarshal(payload, &info); err != nil {
			return Message{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return Message{Type: MsgInfo, Info: &info}, nil
	case MsgClose:
		return Message{Type: MsgClose, CloseReason: string(payload)}, nil
	default:
		return Message{}, ErrUnknownType
	}
}

// ReadMessage reads one framed message from r.
func ReadMessage(r io.Reader) (Message, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Message{}, ErrConnectionClosed
		}
		return Message{}, err
	}
	msgType := header[0]
	length := binary.BigEndian.Uint32(header[1:5])
	if length > MaxPayloadSize {
		return Message{}, ErrPayloadTooLarge
	}
	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return Message{}, ErrConnectionClosed
			}
			return Message{}, err
		}
	}
	return Decode(msgType, payload)
}

// WriteMessage encodes and writes m to w.
func WriteMessage(w io.Writer, m Message) error {
	buf, err := m.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}
