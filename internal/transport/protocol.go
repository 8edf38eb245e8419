package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// HeaderSize is the size of the frame length prefix in bytes
	HeaderSize = 2

	// MinFrameSize is the smallest payload a frame can carry. The length
	// prefix stores len-1, so an empty payload has no encoding.
	MinFrameSize = 1

	// MaxFrameSize is the largest payload a frame can carry
	MaxFrameSize = 1 << 16
)

var (
	// ErrConnectionClosed is returned when the peer closed the connection
	// before any byte of a frame or request was read
	ErrConnectionClosed = errors.New("connection closed")

	// ErrTruncatedRead is returned when the connection ended partway
	// through a frame
	ErrTruncatedRead = errors.New("truncated read")

	// ErrWriteFailed wraps any error while sending a frame
	ErrWriteFailed = errors.New("write failed")

	// ErrFrameSize is returned when a payload falls outside
	// [MinFrameSize, MaxFrameSize]
	ErrFrameSize = errors.New("invalid frame size")
)

// WriteFrame writes payload to w preceded by its big-endian length minus one
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) < MinFrameSize || len(payload) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes, expected %d..%d", ErrFrameSize, len(payload), MinFrameSize, MaxFrameSize)
	}

	frame := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint16(frame[0:HeaderSize], uint16(len(payload)-1))
	copy(frame[HeaderSize:], payload)

	n, err := w.Write(frame)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if n != len(frame) {
		return fmt.Errorf("%w: wrote %d bytes, expected %d", ErrWriteFailed, n, len(frame))
	}
	return nil
}

// ReadFrame reads one frame from r and returns its payload. The call blocks
// until the whole payload has arrived or the connection fails.
func ReadFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, HeaderSize)

	n, err := io.ReadFull(r, header)
	if err != nil {
		switch {
		case n == 0 && errors.Is(err, io.EOF):
			return nil, ErrConnectionClosed
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, fmt.Errorf("%w: read %d of %d header bytes", ErrTruncatedRead, n, HeaderSize)
		default:
			return nil, fmt.Errorf("failed to read frame header: %w", err)
		}
	}

	size := int(binary.BigEndian.Uint16(header)) + 1
	payload := make([]byte, size)

	n, err = io.ReadFull(r, payload)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: read %d of %d payload bytes", ErrTruncatedRead, n, size)
		}
		return nil, fmt.Errorf("failed to read frame payload: %w", err)
	}
	return payload, nil
}
