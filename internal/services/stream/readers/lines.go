package readers

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/kp666/twitter-stream/internal/services/stream/contracts"
	"github.com/kp666/twitter-stream/internal/utils"

	"github.com/valyala/bytebufferpool"
)

var crlf = []byte("\r\n")

// LineDecoder splits a chunked body into CRLF-delimited lines.
// A bare CR or a bare LF never ends a line.
type LineDecoder struct {
	source    contracts.ChunkSource
	buffer    *bytebufferpool.ByteBuffer
	err       error // sticky terminal result
	closeOnce sync.Once
}

// NewLineDecoder creates a decoder pulling from source
func NewLineDecoder(source contracts.ChunkSource) *LineDecoder {
	return &LineDecoder{
		source: source,
		buffer: utils.Get(), // Get buffer from pool
	}
}

// Poll returns the next line without blocking.
//
// ok is false with a nil error while the current line is still incomplete.
// io.EOF marks the end of the body; any other error is the source's own,
// returned unchanged. Both are repeated on every later call.
func (d *LineDecoder) Poll() (line []byte, ok bool, err error) {
	if d.err != nil {
		return nil, false, d.err
	}

	// A previous chunk may have carried several lines
	if line, ok := d.removeFirstLine(); ok {
		return line, true, nil
	}

	// Now the buffer has no CRLF. Extend it until one arrives.
	for {
		chunk, ok, err := d.source.TryNext()
		if err != nil {
			return d.terminate(err)
		}
		if !ok {
			return nil, false, nil
		}
		if len(chunk) == 0 {
			continue
		}

		buf := d.buffer.B
		if chunk[0] == '\n' && len(buf) > 0 && buf[len(buf)-1] == '\r' {
			// CRLF straddles the chunk boundary
			line := bytes.Clone(buf[:len(buf)-1])
			d.reseed(chunk[1:])
			return line, true, nil
		}

		// Only the new bytes can hold a delimiter
		if i := bytes.Index(chunk, crlf); i >= 0 {
			line := make([]byte, 0, len(buf)+i)
			line = append(line, buf...)
			line = append(line, chunk[:i]...)
			d.reseed(chunk[i+2:])
			return line, true, nil
		}

		d.buffer.B = append(d.buffer.B, chunk...)
	}
}

// Ready is signalled when Poll may make progress
func (d *LineDecoder) Ready() <-chan struct{} {
	return d.source.Ready()
}

// Buffered returns the number of bytes waiting for a delimiter
func (d *LineDecoder) Buffered() int {
	if d.buffer == nil {
		return 0
	}
	return len(d.buffer.B)
}

// Close releases the buffer and the source
func (d *LineDecoder) Close() error {
	var err error
	d.closeOnce.Do(func() {
		if d.err == nil {
			d.err = io.EOF
		}
		if d.buffer != nil {
			utils.Put(d.buffer) // Return buffer to pool
			d.buffer = nil
		}
		err = d.source.Close()
	})
	return err
}

// terminate records the terminal result. At end of stream an undelimited
// remainder is flushed as one final line first.
func (d *LineDecoder) terminate(err error) ([]byte, bool, error) {
	if !errors.Is(err, io.EOF) {
		d.err = err
		d.buffer.Reset()
		return nil, false, err
	}

	d.err = io.EOF
	if len(d.buffer.B) > 0 {
		line := bytes.Clone(d.buffer.B)
		d.buffer.Reset()
		return line, true, nil
	}
	return nil, false, io.EOF
}

func (d *LineDecoder) removeFirstLine() ([]byte, bool) {
	buf := d.buffer.B
	i := bytes.Index(buf, crlf)
	if i < 0 {
		return nil, false
	}
	line := bytes.Clone(buf[:i])
	// Shift the remainder down in place
	n := copy(buf, buf[i+2:])
	d.buffer.B = buf[:n]
	return line, true
}

func (d *LineDecoder) reseed(rest []byte) {
	d.buffer.Reset()
	d.buffer.B = append(d.buffer.B, rest...)
}
