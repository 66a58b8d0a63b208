package pdu

import (
	"errors"
	"fmt"

	"github.com/ftl/tetra-air/bitbuf"
)

// Widths of the element framing according to [AI] E.1
const (
	ElementIDWidth       = 4
	LengthIndicatorWidth = 11
	RepeatCountWidth     = 6
	MbitWidth            = 1

	MaxLength      = 1<<LengthIndicatorWidth - 1
	MaxRepeatCount = 1<<RepeatCountWidth - 1
)

/* Delimiters */

// ReadObit reads the optional elements flag.
func ReadObit(buf *bitbuf.Buffer) (bool, error) {
	return buf.ReadBool("obit")
}

// WriteObit writes the optional elements flag.
func WriteObit(buf *bitbuf.Buffer, value bool) {
	buf.WriteBit(value)
}

// ReadPbit reads the presence flag of a type 2 element.
func ReadPbit(buf *bitbuf.Buffer) (bool, error) {
	return buf.ReadBool("pbit")
}

// WritePbit writes the presence flag of a type 2 element.
func WritePbit(buf *bitbuf.Buffer, value bool) {
	buf.WriteBit(value)
}

// ReadMbit reads the more bit that announces a type 3 or 4 element.
func ReadMbit(buf *bitbuf.Buffer) (bool, error) {
	return buf.ReadBool("mbit")
}

// WriteMbit writes the more bit.
func WriteMbit(buf *bitbuf.Buffer, value bool) {
	buf.WriteBit(value)
}

// ReadTerminator reads the m-bit after the last type 3 or 4 element, which must be 0.
func ReadTerminator(buf *bitbuf.Buffer) error {
	more, err := buf.ReadBool("trailing_mbit")
	if err != nil {
		return err
	}
	if more {
		return ErrInvalidTerminator
	}
	return nil
}

/* Type 2 */

// DecodeType2 reads the p-bit and, if it is set, the value with the given width.
func DecodeType2(buf *bitbuf.Buffer, width int, field string) (uint64, bool, error) {
	start := buf.Pos()
	present, err := ReadPbit(buf)
	if err != nil {
		return 0, false, &FieldError{Field: field, Err: err}
	}
	if !present {
		return 0, false, nil
	}
	value, err := buf.ReadField(width, field)
	if err != nil {
		buf.Seek(start)
		return 0, false, err
	}
	return value, true, nil
}

// EncodeType2 writes the p-bit and, if present, the value with the given width.
func EncodeType2(buf *bitbuf.Buffer, value uint64, present bool, width int) {
	WritePbit(buf, present)
	if present {
		buf.WriteBits(value, width)
	}
}

/* Type 3 and type 4 lookahead */

// PeekMbit checks if another type 3 or 4 element follows, without moving the cursor.
func PeekMbit(buf *bitbuf.Buffer) error {
	more, ok := buf.PeekBits(MbitWidth)
	if !ok {
		return ErrOutOfBounds
	}
	if more == 0 {
		return ErrFieldNotPresent
	}
	return nil
}

// PeekElementID checks if the next element carries the given identifier, without moving the cursor.
func PeekElementID(buf *bitbuf.Buffer, id uint64) error {
	found, ok := buf.PeekBitsAt(MbitWidth, ElementIDWidth)
	if !ok {
		return ErrOutOfBounds
	}
	if found != id {
		return ErrFieldNotPresent
	}
	return nil
}

// PeekElement combines PeekMbit and PeekElementID.
func PeekElement(buf *bitbuf.Buffer, id uint64) error {
	if err := PeekMbit(buf); err != nil {
		return err
	}
	return PeekElementID(buf, id)
}

// TryParseType3Span parses the type 3 element with the given identifier, if it is next in the buffer.
// ErrFieldNotPresent signals that the next element is a different one, the cursor is not moved then.
// After a match, any shortage of bits is ErrOutOfBounds and the cursor is restored to the element start.
func TryParseType3Span(buf *bitbuf.Buffer, id uint64) (bitbuf.Span, error) {
	if err := PeekElement(buf, id); err != nil {
		return bitbuf.Span{}, err
	}

	start := buf.Pos()
	result, err := readType3Payload(buf)
	if err != nil {
		buf.Seek(start)
		return bitbuf.Span{}, err
	}
	return result, nil
}

func readType3Payload(buf *bitbuf.Buffer) (bitbuf.Span, error) {
	if err := buf.SeekRelative(MbitWidth + ElementIDWidth); err != nil {
		return bitbuf.Span{}, ErrOutOfBounds
	}
	length, err := buf.ReadField(LengthIndicatorWidth, "length_indicator")
	if err != nil {
		return bitbuf.Span{}, ErrOutOfBounds
	}
	payload, err := buf.ReadSpan(int(length), "payload")
	if err != nil {
		return bitbuf.Span{}, fmt.Errorf("%d bits declared, %d remaining: %w", length, buf.Remaining(), ErrOutOfBounds)
	}
	return payload, nil
}

// TryParseType3 parses a type 3 element with a payload of at most 64 bits and returns the length and the value.
// Longer payloads are ErrOutOfBounds, use TryParseType3Span for these.
func TryParseType3(buf *bitbuf.Buffer, id uint64) (int, uint64, error) {
	start := buf.Pos()
	payload, err := TryParseType3Span(buf, id)
	if err != nil {
		return 0, 0, err
	}
	if payload.Len > bitbuf.MaxFieldWidth {
		buf.Seek(start)
		return 0, 0, fmt.Errorf("payload of %d bits: %w", payload.Len, ErrOutOfBounds)
	}
	return payload.Len, payload.Uint(), nil
}

// WriteType3 writes a complete type 3 element with the lowest length bits of data.
func WriteType3(buf *bitbuf.Buffer, id uint64, data uint64, length int) {
	WriteMbit(buf, true)
	buf.WriteBits(id, ElementIDWidth)
	buf.WriteBits(uint64(length), LengthIndicatorWidth)
	buf.WriteBits(data, length)
}

// WriteType3Span writes a complete type 3 element with an arbitrary payload.
func WriteType3Span(buf *bitbuf.Buffer, id uint64, payload bitbuf.Span) error {
	if !payload.Valid() || payload.Len > MaxLength {
		return &ValueError{Field: "length_indicator", Value: uint64(payload.Len)}
	}
	WriteMbit(buf, true)
	buf.WriteBits(id, ElementIDWidth)
	buf.WriteBits(uint64(payload.Len), LengthIndicatorWidth)
	buf.WriteSpan(payload)
	return nil
}

// ParseType4Header parses the header of the type 4 element with the given identifier, if it is next in the buffer.
// It returns the number of repeated sub-elements and the number of bits they occupy.
func ParseType4Header(buf *bitbuf.Buffer, id uint64) (int, int, error) {
	if err := PeekElement(buf, id); err != nil {
		return 0, 0, err
	}

	start := buf.Pos()
	count, remaining, err := readType4Header(buf)
	if err != nil {
		buf.Seek(start)
		return 0, 0, err
	}
	return count, remaining, nil
}

func readType4Header(buf *bitbuf.Buffer) (int, int, error) {
	if err := buf.SeekRelative(MbitWidth + ElementIDWidth); err != nil {
		return 0, 0, ErrOutOfBounds
	}
	length, err := buf.ReadField(LengthIndicatorWidth, "length_indicator")
	if err != nil {
		return 0, 0, ErrOutOfBounds
	}
	if length < RepeatCountWidth {
		return 0, 0, fmt.Errorf("length %d shorter than the repeat count: %w", length, ErrOutOfBounds)
	}
	count, err := buf.ReadField(RepeatCountWidth, "repeat_count")
	if err != nil {
		return 0, 0, ErrOutOfBounds
	}
	remaining := int(length) - RepeatCountWidth
	if remaining > buf.Remaining() {
		return 0, 0, fmt.Errorf("%d bits declared, %d remaining: %w", remaining, buf.Remaining(), ErrOutOfBounds)
	}
	return int(count), remaining, nil
}

// WriteType4Header writes the m-bit and the element identifier of a type 4 element.
// The caller must write the length indicator, the repeat count and the sub-elements.
func WriteType4Header(buf *bitbuf.Buffer, id uint64) {
	WriteMbit(buf, true)
	buf.WriteBits(id, ElementIDWidth)
}

// WriteType4 writes a complete type 4 element with the given repeat count and the encoded sub-elements.
func WriteType4(buf *bitbuf.Buffer, id uint64, count int, payload bitbuf.Span) error {
	if count > MaxRepeatCount || count < 0 {
		return &ValueError{Field: "repeat_count", Value: uint64(count)}
	}
	if !payload.Valid() {
		return &ValueError{Field: "payload", Value: uint64(payload.Len)}
	}
	length := payload.Len + RepeatCountWidth
	if length > MaxLength {
		return &ValueError{Field: "length_indicator", Value: uint64(length)}
	}
	WriteType4Header(buf, id)
	buf.WriteBits(uint64(length), LengthIndicatorWidth)
	buf.WriteBits(uint64(count), RepeatCountWidth)
	buf.WriteSpan(payload)
	return nil
}

/* Element values */

// Type3Element holds the raw content of a type 3 element with a payload of at most 64 bits.
type Type3Element struct {
	ID   uint64
	Len  int
	Data uint64
}

// Type3Payload holds the raw content of a type 3 element with a payload of any length.
type Type3Payload struct {
	ID      uint64
	Payload bitbuf.Span
}

// Type4Element holds the raw content of a type 4 element whose sub-elements are not decoded.
type Type4Element struct {
	ID      uint64
	Count   int
	Payload bitbuf.Span
}

// IsAbsent reports if the error only signals that an optional element is not present.
func IsAbsent(err error) bool {
	return errors.Is(err, ErrFieldNotPresent)
}
