package main

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// maxFrameSize guards against a desynchronised stream; it is not a protocol limit.
const maxFrameSize = 64 << 20

var (
	ErrTruncatedFrame = errors.New("truncated frame")
	ErrFrameTooLarge  = errors.New("frame too large")
)

// EncodeFrame returns payload prefixed with its little-endian uint32 length.
func EncodeFrame(payload []byte) []byte {
	buf := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(payload)))
	copy(buf[4:], payload)
	return buf
}

// WriteFrame writes a length header followed by payload.
func WriteFrame(w io.Writer, payload []byte) error {
	hdr := make([]byte, 4)
	binary.LittleEndian.PutUint32(hdr, uint32(len(payload)))
	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one frame from r.
//
// A stream that ends before a full header returns io.EOF. A header whose
// length is zero, or negative when read as a signed int32, yields a nil
// payload and no error so the caller can move on to the next header.
// A stream that ends inside the payload returns ErrTruncatedFrame.
func ReadFrame(r io.Reader) ([]byte, error) {
	hdr := make([]byte, 4)
	if _, err := io.ReadFull(r, hdr); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	length := int32(binary.LittleEndian.Uint32(hdr))
	if length <= 0 {
		return nil, nil
	}
	if int64(length) > maxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	buf := make([]byte, length)
	if n, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: got %d of %d bytes", ErrTruncatedFrame, n, length)
		}
		return nil, fmt.Errorf("read frame payload: %w", err)
	}
	return buf, nil
}

// FrameWriter serializes frames written from several goroutines onto one stream.
type FrameWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

func (fw *FrameWriter) WriteFrame(payload []byte) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return WriteFrame(fw.w, payload)
}

func (fw *FrameWriter) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	return fw.WriteFrame(data)
}
