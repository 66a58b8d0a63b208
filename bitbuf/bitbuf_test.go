package bitbuf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadField(t *testing.T) {
	tt := []struct {
		desc     string
		data     []byte
		bitLen   int
		widths   []int
		expected []uint64
	}{
		{"single byte", []byte{0xA5}, 8, []int{8}, []uint64{0xA5}},
		{"nibbles", []byte{0xA5}, 8, []int{4, 4}, []uint64{0xA, 0x5}},
		{"single bits", []byte{0xA0}, 4, []int{1, 1, 1, 1}, []uint64{1, 0, 1, 0}},
		{"across byte boundary", []byte{0x0F, 0xF0}, 16, []int{4, 8, 4}, []uint64{0x0, 0xFF, 0x0}},
		{"odd widths", []byte{0xB3, 0x70}, 12, []int{4, 1, 1, 6}, []uint64{0xB, 0, 0, 0x37}},
		{"zero width", []byte{0xFF}, 8, []int{0, 8}, []uint64{0, 0xFF}},
		{"full 64 bits", []byte{1, 2, 3, 4, 5, 6, 7, 8}, 64, []int{64}, []uint64{0x0102030405060708}},
		{"64 bits unaligned", []byte{0x81, 2, 3, 4, 5, 6, 7, 8, 0x80}, 65, []int{1, 64}, []uint64{1, 0x020406080A0C0E11}},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			buf := New(tc.data, tc.bitLen)
			actual := make([]uint64, 0, len(tc.widths))
			for _, width := range tc.widths {
				value, err := buf.ReadField(width, "field")
				require.NoError(t, err)
				actual = append(actual, value)
			}
			assert.Equal(t, tc.expected, actual)
			assert.Equal(t, 0, buf.Remaining())
		})
	}
}

func TestReadField_Exhausted(t *testing.T) {
	buf := MustFromBitString("10110")
	_, err := buf.ReadField(3, "head")
	require.NoError(t, err)

	value, err := buf.ReadField(3, "tail")

	assert.ErrorIs(t, err, ErrExhausted)
	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "tail", exhausted.Field)
	assert.Equal(t, 3, exhausted.Width)
	assert.Equal(t, 2, exhausted.Remaining)
	assert.Equal(t, uint64(0), value)
	assert.Equal(t, 3, buf.Pos(), "failed read must not move the cursor")
}

func TestReadField_InvalidWidth(t *testing.T) {
	buf := FromBytes(make([]byte, 16))

	_, err := buf.ReadField(65, "wide")

	assert.ErrorIs(t, err, ErrWidth)
	assert.Equal(t, 0, buf.Pos())
}

func TestPeekBits(t *testing.T) {
	buf := MustFromBitString("1 0111 00000100110")

	value, ok := buf.PeekBits(1)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), value)

	value, ok = buf.PeekBitsAt(1, 4)
	assert.True(t, ok)
	assert.Equal(t, uint64(7), value)

	value, ok = buf.PeekBitsAt(5, 11)
	assert.True(t, ok)
	assert.Equal(t, uint64(38), value)

	_, ok = buf.PeekBitsAt(5, 12)
	assert.False(t, ok)

	assert.Equal(t, 0, buf.Pos())
}

func TestSeekRelative(t *testing.T) {
	buf := MustFromBitString("11110000")

	require.NoError(t, buf.SeekRelative(4))
	value, err := buf.ReadField(4, "low")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), value)

	require.NoError(t, buf.SeekRelative(-8))
	assert.Equal(t, 0, buf.Pos())

	assert.Error(t, buf.SeekRelative(9))
	assert.Error(t, buf.SeekRelative(-1))
	assert.Equal(t, 0, buf.Pos())
}

func TestWriteBits(t *testing.T) {
	tt := []struct {
		desc     string
		values   []uint64
		widths   []int
		expected string
	}{
		{"single bit", []uint64{1}, []int{1}, "1"},
		{"pdu type and flags", []uint64{11, 0, 0, 1}, []int{4, 1, 1, 1}, "1011001"},
		{"across bytes", []uint64{0x5, 0x1FF, 0x2}, []int{3, 9, 2}, "10111111111110"},
		{"value is masked to width", []uint64{0xFF}, []int{4}, "1111"},
		{"zero width", []uint64{1, 0}, []int{0, 2}, "00"},
		{"64 bits", []uint64{0x8000000000000001}, []int{64}, "1000000000000000000000000000000000000000000000000000000000000001"},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			buf := NewAutoExpand(8)
			for i, value := range tc.values {
				buf.WriteBits(value, tc.widths[i])
			}
			assert.Equal(t, tc.expected, buf.BitString())
			assert.Equal(t, len(tc.expected), buf.Len())
			assert.Equal(t, buf.Len(), buf.Pos())
		})
	}
}

func TestWriteBits_FixedOverflowPanics(t *testing.T) {
	buf := New(make([]byte, 1), 6)
	buf.WriteBits(0, 4)

	assert.Panics(t, func() { buf.WriteBits(0, 3) })
	assert.Panics(t, func() { NewAutoExpand(0).WriteBits(0, 65) })
}

func TestWriteBits_OverwriteFixed(t *testing.T) {
	buf := FromBytes([]byte{0xFF})
	require.NoError(t, buf.Seek(2))

	buf.WriteBits(0, 3)

	assert.Equal(t, "11000111", buf.BitString())
	assert.Equal(t, 5, buf.Pos())
}

func TestWriteReadRoundtrip(t *testing.T) {
	widths := []int{1, 3, 7, 14, 24, 33, 64, 2}
	values := []uint64{1, 5, 0x55, 0x2AAA, 0xABCDEF, 0x1FFFFFFFF, 0xDEADBEEFCAFEBABE, 2}

	buf := NewAutoExpand(0)
	for i, width := range widths {
		buf.WriteBits(values[i], width)
	}

	reader := New(buf.Bytes(), buf.Len())
	for i, width := range widths {
		value, err := reader.ReadField(width, "field")
		require.NoError(t, err)
		assert.Equal(t, values[i], value, "field %d", i)
	}
	assert.Equal(t, 0, reader.Remaining())
}

func TestFromBitString(t *testing.T) {
	buf, err := FromBitString("1011 0011_01\n")
	require.NoError(t, err)

	assert.Equal(t, 10, buf.Len())
	assert.Equal(t, "1011001101", buf.BitString())
	assert.Equal(t, []byte{0xB3, 0x40}, buf.Bytes())

	_, err = FromBitString("10x1")
	assert.Error(t, err)
}

func TestDump(t *testing.T) {
	fixed := MustFromBitString("110010")
	_, err := fixed.ReadField(2, "head")
	require.NoError(t, err)
	assert.Equal(t, "0010", fixed.Dump())

	expanding := NewAutoExpand(8)
	expanding.WriteBits(0x5, 3)
	assert.Equal(t, "101", expanding.Dump())
}

func TestSpan(t *testing.T) {
	payload := strings.Repeat("01", 32) + "0110"
	buf := MustFromBitString("1" + payload)
	_, err := buf.ReadField(1, "lead")
	require.NoError(t, err)

	span, err := buf.ReadSpan(68, "payload")
	require.NoError(t, err)
	assert.Equal(t, 68, span.Len)
	assert.Equal(t, 0, buf.Remaining())
	assert.Equal(t, payload, span.String())
	assert.Equal(t, uint64(0x5555555555555556), span.Uint())

	out := NewAutoExpand(0)
	out.WriteSpan(span)
	assert.Equal(t, span.String(), out.BitString())

	_, err = MustFromBitString("11").ReadSpan(3, "short")
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestSpanFromUint(t *testing.T) {
	span := SpanFromUint(0x2A, 7)

	assert.Equal(t, "0101010", span.String())
	assert.Equal(t, uint64(0x2A), span.Uint())
	assert.True(t, span.Equal(SpanFromUint(0x2A, 7)))
	assert.False(t, span.Equal(SpanFromUint(0x2A, 8)))
}

func TestNew_ClampsLength(t *testing.T) {
	tt := []struct {
		desc     string
		bitLen   int
		expected int
	}{
		{desc: "within data", bitLen: 5, expected: 5},
		{desc: "beyond data", bitLen: 20, expected: 8},
		{desc: "negative", bitLen: -1, expected: 8},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, New([]byte{0xFF}, tc.bitLen).Len())
		})
	}
}

func TestSpanValid(t *testing.T) {
	tt := []struct {
		desc     string
		span     Span
		expected bool
	}{
		{desc: "empty", span: Span{}, expected: true},
		{desc: "partial byte", span: Span{Data: []byte{0xAB}, Len: 3}, expected: true},
		{desc: "all bits", span: Span{Data: []byte{0xAB, 0xCD}, Len: 16}, expected: true},
		{desc: "longer than data", span: Span{Data: []byte{0xAB}, Len: 16}, expected: false},
		{desc: "negative length", span: Span{Data: []byte{0xAB}, Len: -1}, expected: false},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.span.Valid())
		})
	}
}

func TestWriteSpan_InvalidSpanPanics(t *testing.T) {
	buf := NewAutoExpand(0)

	assert.Panics(t, func() { buf.WriteSpan(Span{Data: []byte{0xAB}, Len: 16}) })
	assert.Equal(t, 0, buf.Len())
}
