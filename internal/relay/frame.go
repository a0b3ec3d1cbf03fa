// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package relay

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/rocksky-relay/internal/validation"
)

// Keep-alive literals. They are compared byte for byte and never parsed.
const (
	KeepAlivePing = "ping"
	KeepAlivePong = "pong"
)

// Kind is the classification of one inbound frame.
type Kind int

const (
	KindInvalid Kind = iota
	KindKeepAlive
	KindData
	KindControl
	KindRegister
)

func (k Kind) String() string {
	switch k {
	case KindKeepAlive:
		return "keepalive"
	case KindData:
		return "data"
	case KindControl:
		return "control"
	case KindRegister:
		return "register"
	default:
		return "invalid"
	}
}

// Frame is the result of classifying one inbound frame. Exactly one of
// Data, Control and Register is set when Kind names it; Err is set when
// Kind is KindInvalid.
type Frame struct {
	Kind     Kind
	Data     *DataFrame
	Control  *ControlFrame
	Register *RegisterFrame
	Err      error
}

// DataFrame carries a now-playing (or opaque) payload to fan out.
type DataFrame struct {
	Payload  map[string]any
	DeviceID string
	Token    string
}

// ControlFrame carries a remote command. Target is nil when the frame did
// not name one. Args is the raw JSON of the args field, nil when absent.
type ControlFrame struct {
	Type   string
	Action string
	Target *string
	Args   json.RawMessage
	Token  string
}

// RegisterFrame announces a new device.
type RegisterFrame struct {
	ClientName string
	Token      string
}

// Shapes are decoded with pointer fields so validation can tell an absent
// field from an empty one. A field of the wrong JSON type fails the decode
// and with it the whole shape.
type dataShape struct {
	Type     *string        `json:"type" validate:"required,eq=message"`
	Data     map[string]any `json:"data" validate:"required"`
	DeviceID *string        `json:"deviceId" validate:"required"`
	Token    *string        `json:"token" validate:"required"`
}

type controlShape struct {
	Type   *string `json:"type" validate:"required"`
	Action *string `json:"action" validate:"required"`
	Target *string `json:"target"`
	Token  *string `json:"token" validate:"required"`
}

type registerShape struct {
	Type       *string `json:"type" validate:"required,eq=register"`
	ClientName *string `json:"clientName" validate:"required"`
	Token      *string `json:"token" validate:"required"`
}

// Classify decodes one inbound text frame. Shapes are tried in the fixed
// order data, control, register and the first match wins, so a payload
// satisfying several shapes always resolves the same way.
func Classify(raw []byte) Frame {
	if string(raw) == KeepAlivePing {
		return Frame{Kind: KindKeepAlive}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		if json.Valid(raw) {
			return Frame{Kind: KindInvalid, Err: fmt.Errorf("%w: not an object", ErrUnknownFrame)}
		}
		return Frame{Kind: KindInvalid, Err: fmt.Errorf("%w: %w", ErrMalformedFrame, err)}
	}
	if fields == nil {
		return Frame{Kind: KindInvalid, Err: fmt.Errorf("%w: not an object", ErrUnknownFrame)}
	}

	if f, ok := decodeData(raw); ok {
		return Frame{Kind: KindData, Data: f}
	}
	if f, ok := decodeControl(raw, fields); ok {
		return Frame{Kind: KindControl, Control: f}
	}
	f, verr := decodeRegister(raw)
	if verr == nil {
		return Frame{Kind: KindRegister, Register: f}
	}
	return Frame{Kind: KindInvalid, Err: fmt.Errorf("%w: %w", ErrUnknownFrame, verr)}
}

func decodeData(raw []byte) (*DataFrame, bool) {
	var s dataShape
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&s); err != nil {
		return nil, false
	}
	if validation.ValidateStruct(&s) != nil {
		return nil, false
	}
	return &DataFrame{Payload: s.Data, DeviceID: *s.DeviceID, Token: *s.Token}, true
}

func decodeControl(raw []byte, fields map[string]json.RawMessage) (*ControlFrame, bool) {
	// An explicit null target is a type error, not an absent target.
	if t, ok := fields["target"]; ok && bytes.Equal(bytes.TrimSpace(t), []byte("null")) {
		return nil, false
	}

	var s controlShape
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	if validation.ValidateStruct(&s) != nil {
		return nil, false
	}

	f := &ControlFrame{
		Type:   *s.Type,
		Action: *s.Action,
		Target: s.Target,
		Token:  *s.Token,
	}
	if args, ok := fields["args"]; ok {
		f.Args = args
	}
	return f, true
}

func decodeRegister(raw []byte) (*RegisterFrame, error) {
	var s registerShape
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(&s); verr != nil {
		return nil, verr
	}
	return &RegisterFrame{ClientName: *s.ClientName, Token: *s.Token}, nil
}

// Outbound frames.

type registeredAck struct {
	Status   string `json:"status"`
	DeviceID string `json:"deviceId"`
}

type peerJoined struct {
	Type       string `json:"type"`
	DeviceID   string `json:"deviceId"`
	ClientName string `json:"clientName"`
}

type relayedData struct {
	Type     string         `json:"type"`
	Data     map[string]any `json:"data"`
	DeviceID string         `json:"deviceId"`
}

type relayedControl struct {
	Type   string          `json:"type"`
	Action string          `json:"action"`
	Args   json.RawMessage `json:"args,omitempty"`
}

func encodeRegisteredAck(deviceID string) ([]byte, error) {
	return json.Marshal(registeredAck{Status: "registered", DeviceID: deviceID})
}

func encodePeerJoined(deviceID, clientName string) ([]byte, error) {
	return json.Marshal(peerJoined{Type: "device_registered", DeviceID: deviceID, ClientName: clientName})
}

func encodeRelayedData(payload map[string]any, deviceID string) ([]byte, error) {
	return json.Marshal(relayedData{Type: "message", Data: payload, DeviceID: deviceID})
}

func encodeRelayedControl(f *ControlFrame) ([]byte, error) {
	return json.Marshal(relayedControl{Type: f.Type, Action: f.Action, Args: f.Args})
}
