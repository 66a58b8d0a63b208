package bitbuf

import "fmt"

// Span is a detached run of bits, MSB first. It holds payloads that may be wider than 64 bits.
type Span struct {
	Data []byte
	Len  int
}

// SpanFromUint returns a span holding the lowest width bits of value.
func SpanFromUint(value uint64, width int) Span {
	buf := NewAutoExpand(width)
	buf.WriteBits(value, width)
	return Span{Data: buf.Bytes(), Len: width}
}

// SpanFromBytes returns a span holding all bits of data.
func SpanFromBytes(data []byte) Span {
	return Span{Data: data, Len: len(data) * 8}
}

// Valid indicates if Data holds at least Len bits.
func (s Span) Valid() bool {
	return s.Len >= 0 && s.Len <= len(s.Data)*8
}

// Buffer returns a fixed buffer to read the bits of this span.
func (s Span) Buffer() *Buffer {
	return New(s.Data, s.Len)
}

// Uint returns the span as unsigned value. Only the last 64 bits are significant.
func (s Span) Uint() uint64 {
	buf := s.Buffer()
	if s.Len > MaxFieldWidth {
		buf.SeekRelative(s.Len - MaxFieldWidth)
	}
	result, _ := buf.ReadField(buf.Remaining(), "span")
	return result
}

// Bytes returns the bits of this span, the last byte padded with zero bits.
func (s Span) Bytes() []byte {
	return s.Buffer().Bytes()
}

func (s Span) String() string {
	return s.Buffer().BitString()
}

// Equal compares the significant bits of both spans.
func (s Span) Equal(other Span) bool {
	return s.Len == other.Len && s.String() == other.String()
}

// ReadSpan reads width bits into a detached span and advances the cursor.
func (b *Buffer) ReadSpan(width int, field string) (Span, error) {
	if width < 0 || width > b.Remaining() {
		return Span{}, &ExhaustedError{Field: field, Width: width, Remaining: b.Remaining()}
	}
	result := NewAutoExpand(width)
	for width > 0 {
		n := min(width, MaxFieldWidth)
		value, err := b.ReadField(n, field)
		if err != nil {
			return Span{}, err
		}
		result.WriteBits(value, n)
		width -= n
	}
	return Span{Data: result.Bytes(), Len: result.Len()}, nil
}

// WriteSpan writes all bits of the given span at the cursor. It panics if the span is not valid.
func (b *Buffer) WriteSpan(s Span) {
	if !s.Valid() {
		panic(fmt.Sprintf("bitbuf: span of %d bits with %d bytes of data", s.Len, len(s.Data)))
	}
	src := s.Buffer()
	for src.Remaining() > 0 {
		n := min(src.Remaining(), MaxFieldWidth)
		value, _ := src.ReadField(n, "span")
		b.WriteBits(value, n)
	}
}
