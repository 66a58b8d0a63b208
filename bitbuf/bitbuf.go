/*
The package bitbuf implements the bit cursor buffer used by all PDU codecs of the TETRA air interface.
Fields are packed MSB first without any padding between them, as defined in [AI] 14.7, 16.9 and annex E.

A Buffer is either fixed (decoding a received PDU) or auto-expanding (encoding a PDU). A failed read
never moves the cursor.
*/
package bitbuf

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// MaxFieldWidth is the maximum width of a single field in bits.
const MaxFieldWidth = 64

var (
	ErrExhausted = errors.New("buffer exhausted")
	ErrWidth     = errors.New("field width exceeds 64 bits")
)

// ExhaustedError is returned when a field cannot be read because not enough bits remain.
type ExhaustedError struct {
	Field     string
	Width     int
	Remaining int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: need %d bits, %d remaining: %v", e.Field, e.Width, e.Remaining, ErrExhausted)
}

func (e *ExhaustedError) Unwrap() error {
	return ErrExhausted
}

// Buffer is a bit sequence with a cursor. The cursor is always within 0..Len().
type Buffer struct {
	data       []byte
	length     int
	pos        int
	autoExpand bool
}

// New returns a fixed buffer over the first bitLen bits of data. The data is not copied.
// A bitLen that is negative or exceeds the data is clamped to all bits of the data.
func New(data []byte, bitLen int) *Buffer {
	if bitLen < 0 || bitLen > len(data)*8 {
		bitLen = len(data) * 8
	}
	return &Buffer{
		data:   data,
		length: bitLen,
	}
}

// FromBytes returns a fixed buffer over all bits of data.
func FromBytes(data []byte) *Buffer {
	return New(data, len(data)*8)
}

// NewAutoExpand returns an empty buffer that grows while bits are written to it.
func NewAutoExpand(capacityBits int) *Buffer {
	return &Buffer{
		data:       make([]byte, 0, (capacityBits+7)/8),
		autoExpand: true,
	}
}

// FromBitString parses a string of '0' and '1' characters into a fixed buffer.
// Whitespace and '_' are ignored, they may be used to group the bits.
func FromBitString(s string) (*Buffer, error) {
	result := &Buffer{
		data: make([]byte, 0, (len(s)+7)/8),
	}
	for i, c := range s {
		switch c {
		case '0', '1':
			if result.length%8 == 0 {
				result.data = append(result.data, 0)
			}
			if c == '1' {
				result.data[result.length/8] |= 0x80 >> (result.length % 8)
			}
			result.length++
		case ' ', '\t', '\n', '\r', '_':
			continue
		default:
			return nil, fmt.Errorf("invalid character %q at position %d in bit string", c, i)
		}
	}
	return result, nil
}

// MustFromBitString is like FromBitString but panics on invalid input. Intended for tests and constant vectors.
func MustFromBitString(s string) *Buffer {
	result, err := FromBitString(s)
	if err != nil {
		panic(err)
	}
	return result
}

// Len returns the total number of bits in the buffer.
func (b *Buffer) Len() int {
	return b.length
}

// Pos returns the cursor position in bits.
func (b *Buffer) Pos() int {
	return b.pos
}

// Remaining returns the number of bits between the cursor and the end of the buffer.
func (b *Buffer) Remaining() int {
	return b.length - b.pos
}

// AutoExpand indicates if this buffer grows on writes.
func (b *Buffer) AutoExpand() bool {
	return b.autoExpand
}

// Seek moves the cursor to the given absolute position.
func (b *Buffer) Seek(pos int) error {
	if pos < 0 || pos > b.length {
		return fmt.Errorf("seek to %d outside of 0..%d", pos, b.length)
	}
	b.pos = pos
	return nil
}

// SeekRelative moves the cursor by delta bits, backwards if delta is negative.
func (b *Buffer) SeekRelative(delta int) error {
	return b.Seek(b.pos + delta)
}

// ReadField reads an unsigned field of the given width and advances the cursor.
// The field name is only used for error reporting.
func (b *Buffer) ReadField(width int, field string) (uint64, error) {
	if width > MaxFieldWidth || width < 0 {
		return 0, fmt.Errorf("%s: %w", field, ErrWidth)
	}
	if width > b.Remaining() {
		return 0, &ExhaustedError{Field: field, Width: width, Remaining: b.Remaining()}
	}
	result := b.extract(b.pos, width)
	b.pos += width
	return result, nil
}

// ReadBool reads a single bit field.
func (b *Buffer) ReadBool(field string) (bool, error) {
	value, err := b.ReadField(1, field)
	return value == 1, err
}

// PeekBits returns the next width bits without moving the cursor.
func (b *Buffer) PeekBits(width int) (uint64, bool) {
	return b.PeekBitsAt(0, width)
}

// PeekBitsAt returns width bits starting skip bits after the cursor without moving the cursor.
func (b *Buffer) PeekBitsAt(skip, width int) (uint64, bool) {
	if width > MaxFieldWidth || width < 0 || skip < 0 {
		return 0, false
	}
	if skip+width > b.Remaining() {
		return 0, false
	}
	return b.extract(b.pos+skip, width), true
}

func (b *Buffer) extract(pos, width int) uint64 {
	var result uint64
	for width > 0 {
		offset := pos % 8
		available := 8 - offset
		n := min(available, width)
		chunk := (b.data[pos/8] >> (available - n)) & byte(1<<n-1)
		result = result<<n | uint64(chunk)
		pos += n
		width -= n
	}
	return result
}

// WriteBits writes the lowest width bits of value at the cursor and advances the cursor.
// Bits of value above width are ignored.
//
// An auto-expanding buffer grows as needed. Writing beyond the end of a fixed buffer,
// or writing more than 64 bits at once, is a programming error and panics.
func (b *Buffer) WriteBits(value uint64, width int) {
	if width > MaxFieldWidth || width < 0 {
		panic(fmt.Sprintf("bitbuf: invalid write width %d", width))
	}
	end := b.pos + width
	if end > b.length {
		if !b.autoExpand {
			panic(fmt.Sprintf("bitbuf: write of %d bits at %d overflows fixed buffer of %d bits", width, b.pos, b.length))
		}
		b.grow(end)
	}

	pos := b.pos
	for width > 0 {
		offset := pos % 8
		available := 8 - offset
		n := min(available, width)
		chunk := byte(value>>(width-n)) & byte(1<<n-1)
		shift := available - n
		mask := byte(1<<n-1) << shift
		b.data[pos/8] = b.data[pos/8]&^mask | chunk<<shift
		pos += n
		width -= n
	}
	b.pos = end
}

// WriteBit writes a single bit.
func (b *Buffer) WriteBit(value bool) {
	if value {
		b.WriteBits(1, 1)
	} else {
		b.WriteBits(0, 1)
	}
}

func (b *Buffer) grow(bitLen int) {
	byteLen := (bitLen + 7) / 8
	if byteLen > len(b.data) {
		b.data = slices.Grow(b.data, byteLen-len(b.data))
		b.data = b.data[:byteLen]
	}
	b.length = bitLen
}

// Bytes returns a copy of all bits in the buffer, MSB first, the last byte padded with zero bits.
func (b *Buffer) Bytes() []byte {
	result := make([]byte, (b.length+7)/8)
	copy(result, b.data)
	if rest := b.length % 8; rest != 0 {
		result[len(result)-1] &= 0xFF << (8 - rest)
	}
	return result
}

// BitString renders all bits of the buffer as '0' and '1' characters.
func (b *Buffer) BitString() string {
	return b.render(0, b.length)
}

// Dump renders the bits relevant for diagnostics: the unread bits of a fixed buffer,
// or all written bits of an auto-expanding buffer.
func (b *Buffer) Dump() string {
	if b.autoExpand {
		return b.BitString()
	}
	return b.render(b.pos, b.length)
}

// Unread renders the bits between the cursor and the end of the buffer.
func (b *Buffer) Unread() string {
	return b.render(b.pos, b.length)
}

func (b *Buffer) String() string {
	return fmt.Sprintf("%d/%d %s", b.pos, b.length, b.Dump())
}

func (b *Buffer) render(from, to int) string {
	var result strings.Builder
	result.Grow(to - from)
	for i := from; i < to; i++ {
		if b.data[i/8]&(0x80>>(i%8)) != 0 {
			result.WriteByte('1')
		} else {
			result.WriteByte('0')
		}
	}
	return result.String()
}
