package transport

import (
	"errors"
	"fmt"
	"io"
)

// Operation codes, sent as the first byte of every request
const (
	OpGet    byte = 'g'
	OpSet    byte = 's'
	OpDelete byte = 'd'
	OpList   byte = 'l'
)

var (
	// ErrNoRequest is returned by ReadRequest when the peer closed the
	// connection before sending an operation byte
	ErrNoRequest = fmt.Errorf("%w before operation", ErrConnectionClosed)

	// ErrMissingKey is returned when a get, set or delete request has no key
	ErrMissingKey = errors.New("request needs a key")

	// ErrMissingValue is returned when a set request has no value
	ErrMissingValue = errors.New("request needs a value")
)

// Request is a single client request
type Request struct {
	Op    byte
	Key   []byte
	Value []byte
}

// NeedsKey reports whether op is followed by a framed key on the wire
func NeedsKey(op byte) bool {
	return op == OpGet || op == OpSet || op == OpDelete
}

// NeedsValue reports whether op is followed by a framed value on the wire
func NeedsValue(op byte) bool {
	return op == OpSet
}

// ReadRequest reads a request from r. Unknown operation codes are returned
// without reading anything past the op byte.
func ReadRequest(r io.Reader) (*Request, error) {
	op := make([]byte, 1)
	if _, err := io.ReadFull(r, op); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRequest
		}
		return nil, fmt.Errorf("failed to read operation: %w", err)
	}

	req := &Request{Op: op[0]}

	if NeedsKey(req.Op) {
		key, err := ReadFrame(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
		req.Key = key
	}

	if NeedsValue(req.Op) {
		value, err := ReadFrame(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read value: %w", err)
		}
		req.Value = value
	}

	return req, nil
}

// WriteRequest writes req to w. Key and value are sent only for the
// operations that carry them.
func WriteRequest(w io.Writer, req *Request) error {
	if NeedsKey(req.Op) && len(req.Key) == 0 {
		return ErrMissingKey
	}
	if NeedsValue(req.Op) && len(req.Value) == 0 {
		return ErrMissingValue
	}

	if _, err := w.Write([]byte{req.Op}); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if NeedsKey(req.Op) {
		if err := WriteFrame(w, req.Key); err != nil {
			return fmt.Errorf("failed to write key: %w", err)
		}
	}
	if NeedsValue(req.Op) {
		if err := WriteFrame(w, req.Value); err != nil {
			return fmt.Errorf("failed to write value: %w", err)
		}
	}
	return nil
}
