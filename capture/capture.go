/*
The package capture reads PDU frames from a line oriented source, e.g. a file, stdin, or the trace
output of a radio on a serial port.

Each line contains one frame:

	[<layer>] <payload>

The payload is either a bit string of '0' and '1' characters (optionally grouped with '_') or
hex:<HEX>[/<bits>], where the optional bit count limits the frame to the leading bits of the hex data.
Blank lines and lines starting with '#' are skipped.
*/
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/tetra"
)

const readBufferSize = 1024

// ErrInvalidFrame is returned for lines that cannot be parsed into a frame.
var ErrInvalidFrame = errors.New("invalid frame")

// Frame is one PDU read from the source.
type Frame struct {
	// Line is the line number in the source, starting with 1.
	Line int
	// Layer is the layer prefix of the line, or the default layer of the reader.
	Layer string
	Bits  *bitbuf.Buffer
	// Err is set if the line could not be parsed. Bits is nil then.
	Err error
}

// Reader reads frames from an io.Reader.
type Reader struct {
	device       io.Reader
	defaultLayer string
	tracer       io.Writer
}

// New creates a new Reader for the given device. Lines without layer prefix are assigned to the default layer.
func New(device io.Reader, defaultLayer string) *Reader {
	return &Reader{
		device:       device,
		defaultLayer: defaultLayer,
	}
}

// NewWithTrace creates a new Reader that traces all received lines to a second writer.
func NewWithTrace(device io.Reader, defaultLayer string, tracer io.Writer) *Reader {
	result := New(device, defaultLayer)
	result.tracer = tracer
	return result
}

// Frames starts reading from the device. The returned channel is closed when the device is exhausted or
// the context is cancelled. Frames must only be called once per Reader.
func (r *Reader) Frames(ctx context.Context) <-chan Frame {
	lines := readLoop(ctx, r.device)
	frames := make(chan Frame)

	go func() {
		defer close(frames)
		lineNumber := 0
		for {
			var line string
			var valid bool
			select {
			case line, valid = <-lines:
				if !valid {
					return
				}
			case <-ctx.Done():
				return
			}
			lineNumber++
			r.tracef("rx %d: %s\n", lineNumber, line)

			frame, ok := ParseLine(line, r.defaultLayer)
			if !ok {
				continue
			}
			frame.Line = lineNumber

			select {
			case frames <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frames
}

func (r *Reader) tracef(format string, args ...any) {
	if r.tracer == nil {
		return
	}
	fmt.Fprintf(r.tracer, format, args...)
}

// readLoop emits every line of the reader. Carriage returns and other control characters are dropped.
func readLoop(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string, 1)
	emit := func(line []byte) bool {
		select {
		case lines <- string(line):
			return true
		case <-ctx.Done():
			return false
		}
	}
	go func() {
		defer close(lines)
		buf := make([]byte, readBufferSize)
		currentLine := make([]byte, 0, readBufferSize)
		for {
			n, err := r.Read(buf)
			for _, b := range buf[0:n] {
				switch {
				case b == '\n':
					if !emit(currentLine) {
						return
					}
					currentLine = currentLine[:0]
				case b < ' ' && b != '\t':
					continue
				default:
					currentLine = append(currentLine, b)
				}
			}
			if err != nil {
				if len(currentLine) > 0 {
					emit(currentLine)
				}
				return
			}
		}
	}()
	return lines
}

// ParseLine parses one line into a frame. It returns false if the line is blank or a comment.
// A line that cannot be parsed results in a frame with Err set.
func ParseLine(line string, defaultLayer string) (Frame, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Frame{}, false
	}

	result := Frame{Layer: defaultLayer}
	payload := line
	if fields := strings.Fields(line); len(fields) > 1 && !isPayload(fields[0]) {
		result.Layer = fields[0]
		payload = strings.Join(fields[1:], "")
	} else {
		payload = strings.Join(fields, "")
	}

	var err error
	if hexPayload, ok := strings.CutPrefix(payload, "hex:"); ok {
		result.Bits, err = parseHex(hexPayload)
	} else {
		result.Bits, err = bitbuf.FromBitString(payload)
	}
	if err != nil {
		result.Bits = nil
		result.Err = fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	} else if result.Layer == "" {
		result.Bits = nil
		result.Err = fmt.Errorf("%w: no layer", ErrInvalidFrame)
	}
	return result, true
}

// isPayload indicates if the given field is part of a payload rather than a layer prefix.
func isPayload(field string) bool {
	if strings.HasPrefix(field, "hex:") {
		return true
	}
	return strings.Trim(field, "01_") == ""
}

func parseHex(payload string) (*bitbuf.Buffer, error) {
	hexData, lengthText, limited := strings.Cut(payload, "/")
	data, err := tetra.HexToBinary(hexData)
	if err != nil {
		return nil, err
	}
	if !limited {
		return bitbuf.FromBytes(data), nil
	}

	length, err := strconv.Atoi(lengthText)
	if err != nil {
		return nil, fmt.Errorf("invalid bit count %q", lengthText)
	}
	if length < 0 || length > len(data)*8 {
		return nil, fmt.Errorf("bit count %d exceeds %d bits of data", length, len(data)*8)
	}
	return bitbuf.New(data, length), nil
}
