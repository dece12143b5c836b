package ua

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// encMode produces canonical integer-keyed CBOR for service messages, so a
// value always encodes to the same bytes.
var encMode cbor.EncMode

// decMode accepts service messages, tolerating unknown fields from newer
// peers.
var decMode cbor.DecMode

func init() {
	var err error

	// Deterministic output; timestamps keep microsecond precision
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeUnixMicro,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Lenient decoding for forward compatibility
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Marshal encodes v with the wire encoder mode.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes wire bytes into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// NewEncoder returns a streaming wire encoder writing to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a streaming wire decoder reading from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}

// EncodeRequest encodes a request envelope to CBOR bytes.
func EncodeRequest(req *RequestMessage) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return Marshal(req)
}

// DecodeRequest decodes CBOR bytes into a request envelope.
func DecodeRequest(data []byte) (*RequestMessage, error) {
	var req RequestMessage
	if err := Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return &req, nil
}

// EncodeResponse encodes a response envelope to CBOR bytes.
func EncodeResponse(resp *ResponseMessage) ([]byte, error) {
	return Marshal(resp)
}

// DecodeResponse decodes CBOR bytes into a response envelope.
func DecodeResponse(data []byte) (*ResponseMessage, error) {
	var resp ResponseMessage
	if err := Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

// EncodePublish encodes a publish envelope to CBOR bytes.
func EncodePublish(msg *PublishMessage) ([]byte, error) {
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid publish: %w", err)
	}
	return Marshal(msg)
}

// DecodePublish decodes CBOR bytes into a publish envelope.
func DecodePublish(data []byte) (*PublishMessage, error) {
	var msg PublishMessage
	if err := Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode publish: %w", err)
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid publish: %w", err)
	}
	return &msg, nil
}

// Clone creates a deep copy of a value by CBOR re-encoding.
// Useful for detaching messages from caller-owned references.
func Clone[T any](v T) (T, error) {
	var result T
	data, err := Marshal(v)
	if err != nil {
		return result, err
	}
	err = Unmarshal(data, &result)
	return result, err
}

// Equal compares two values by their canonical CBOR encoding.
func Equal(a, b any) bool {
	dataA, errA := Marshal(a)
	dataB, errB := Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(dataA, dataB)
}
