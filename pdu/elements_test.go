package pdu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/tetra-air/bitbuf"
)

func bits(s string) *bitbuf.Buffer {
	return bitbuf.MustFromBitString(s)
}

func TestReadTerminator(t *testing.T) {
	assert.NoError(t, ReadTerminator(bits("0")))
	assert.ErrorIs(t, ReadTerminator(bits("1")), ErrInvalidTerminator)
	assert.ErrorIs(t, ReadTerminator(bits("")), ErrBufferExhausted)
}

func TestDecodeType2(t *testing.T) {
	tt := []struct {
		desc            string
		bits            string
		expectedValue   uint64
		expectedPresent bool
		expectedPos     int
		expectedErr     error
	}{
		{desc: "absent", bits: "0111", expectedPos: 1},
		{desc: "present", bits: "10101", expectedValue: 5, expectedPresent: true, expectedPos: 5},
		{desc: "truncated value", bits: "101", expectedErr: ErrBufferExhausted},
		{desc: "missing p-bit", bits: "", expectedErr: ErrBufferExhausted},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			buf := bits(tc.bits)

			value, present, err := DecodeType2(buf, 4, "value")

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Equal(t, 0, buf.Pos())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedValue, value)
			assert.Equal(t, tc.expectedPresent, present)
			assert.Equal(t, tc.expectedPos, buf.Pos())
		})
	}
}

func TestEncodeType2(t *testing.T) {
	buf := bitbuf.NewAutoExpand(8)

	EncodeType2(buf, 5, true, 4)
	EncodeType2(buf, 5, false, 4)

	assert.Equal(t, "101010", buf.BitString())
}

func TestPeekMbit(t *testing.T) {
	assert.ErrorIs(t, PeekMbit(bits("")), ErrOutOfBounds)
	assert.ErrorIs(t, PeekMbit(bits("0")), ErrFieldNotPresent)
	assert.NoError(t, PeekMbit(bits("1")))
}

func TestTryParseType3(t *testing.T) {
	tt := []struct {
		desc         string
		bits         string
		id           uint64
		expectedLen  int
		expectedData uint64
		expectedPos  int
		expectedErr  error
	}{
		{
			desc:         "matching element",
			bits:         "1 0111 00000000101 10110 0",
			id:           7,
			expectedLen:  5,
			expectedData: 22,
			expectedPos:  21,
		},
		{
			desc:         "empty payload",
			bits:         "1 1111 00000000000 0",
			id:           15,
			expectedLen:  0,
			expectedData: 0,
			expectedPos:  16,
		},
		{
			desc:        "other identifier",
			bits:        "1 0111 00000000101 10110",
			id:          8,
			expectedErr: ErrFieldNotPresent,
		},
		{
			desc:        "m-bit not set",
			bits:        "0 0111",
			id:          7,
			expectedErr: ErrFieldNotPresent,
		},
		{
			desc:        "nothing left",
			bits:        "",
			id:          7,
			expectedErr: ErrOutOfBounds,
		},
		{
			desc:        "identifier truncated",
			bits:        "1 01",
			id:          7,
			expectedErr: ErrOutOfBounds,
		},
		{
			desc:        "length indicator truncated",
			bits:        "1 0111 000000",
			id:          7,
			expectedErr: ErrOutOfBounds,
		},
		{
			desc:        "payload truncated",
			bits:        "1 0111 00000000101 101",
			id:          7,
			expectedErr: ErrOutOfBounds,
		},
		{
			desc:        "payload wider than 64 bits",
			bits:        "1 0111 00001000001 " + strings.Repeat("1", 65),
			id:          7,
			expectedErr: ErrOutOfBounds,
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			buf := bits(tc.bits)

			length, data, err := TryParseType3(buf, tc.id)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Equal(t, 0, buf.Pos(), "cursor must not move on error")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedLen, length)
			assert.Equal(t, tc.expectedData, data)
			assert.Equal(t, tc.expectedPos, buf.Pos())
		})
	}
}

func TestTryParseType3Span(t *testing.T) {
	payload := strings.Repeat("10", 40)
	buf := bits("1 1111 00001010000 " + payload)

	span, err := TryParseType3Span(buf, 15)

	require.NoError(t, err)
	assert.Equal(t, 80, span.Len)
	assert.Equal(t, payload, span.String())
	assert.Equal(t, 0, buf.Remaining())
}

func TestWriteType3(t *testing.T) {
	buf := bitbuf.NewAutoExpand(32)

	WriteType3(buf, 7, 22, 5)

	assert.Equal(t, "1011100000000101"+"10110", buf.BitString())

	reader := bits(buf.BitString())
	length, data, err := TryParseType3(reader, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, length)
	assert.Equal(t, uint64(22), data)
}

func TestWriteType3Span_TooLong(t *testing.T) {
	buf := bitbuf.NewAutoExpand(0)

	err := WriteType3Span(buf, 1, bitbuf.Span{Data: make([]byte, 300), Len: 2048})

	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, 0, buf.Len())
}

func TestParseType4Header(t *testing.T) {
	tt := []struct {
		desc              string
		bits              string
		id                uint64
		expectedCount     int
		expectedRemaining int
		expectedPos       int
		expectedErr       error
	}{
		{
			desc:              "group identity downlink",
			bits:              "1 0111 00000100110 000001 01110000000011010100011001110000 0",
			id:                7,
			expectedCount:     1,
			expectedRemaining: 32,
			expectedPos:       22,
		},
		{
			desc:        "other identifier",
			bits:        "1 0111 00000100110 000001",
			id:          12,
			expectedErr: ErrFieldNotPresent,
		},
		{
			desc:        "length shorter than repeat count",
			bits:        "1 0111 00000000101 00000",
			id:          7,
			expectedErr: ErrOutOfBounds,
		},
		{
			desc:        "repeat count truncated",
			bits:        "1 0111 00000100110 000",
			id:          7,
			expectedErr: ErrOutOfBounds,
		},
		{
			desc:        "sub-elements truncated",
			bits:        "1 0111 00000100110 000001 0111",
			id:          7,
			expectedErr: ErrOutOfBounds,
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			buf := bits(tc.bits)

			count, remaining, err := ParseType4Header(buf, tc.id)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Equal(t, 0, buf.Pos())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedCount, count)
			assert.Equal(t, tc.expectedRemaining, remaining)
			assert.Equal(t, tc.expectedPos, buf.Pos())
		})
	}
}

func TestWriteType4(t *testing.T) {
	buf := bitbuf.NewAutoExpand(64)
	payload := bitbuf.MustFromBitString("01110000000011010100011001110000")

	err := WriteType4(buf, 7, 1, bitbuf.Span{Data: payload.Bytes(), Len: payload.Len()})

	require.NoError(t, err)
	assert.Equal(t, "1"+"0111"+"00000100110"+"000001"+"01110000000011010100011001110000", buf.BitString())

	assert.ErrorIs(t, WriteType4(buf, 7, 64, bitbuf.Span{}), ErrInvalidValue)
}

func TestWriteElements_SpanShorterThanLength(t *testing.T) {
	invalid := bitbuf.Span{Data: []byte{0xAB}, Len: 16}
	tt := []struct {
		desc  string
		write func(*bitbuf.Buffer) error
	}{
		{desc: "type 3", write: func(buf *bitbuf.Buffer) error { return WriteType3Span(buf, 15, invalid) }},
		{desc: "type 4", write: func(buf *bitbuf.Buffer) error { return WriteType4(buf, 2, 1, invalid) }},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			buf := bitbuf.NewAutoExpand(0)

			err := tc.write(buf)

			assert.ErrorIs(t, err, ErrInvalidValue)
			assert.Equal(t, 0, buf.Len())
		})
	}
}

func TestExpectDiscriminant(t *testing.T) {
	assert.NoError(t, ExpectDiscriminant(11, 11))

	err := ExpectDiscriminant(5, 11)
	assert.ErrorIs(t, err, ErrPDUTypeMismatch)
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, uint64(11), mismatch.Expected)
	assert.Equal(t, uint64(5), mismatch.Found)
}

func TestErrorKind(t *testing.T) {
	tt := []struct {
		desc     string
		err      error
		expected string
	}{
		{"nil", nil, ""},
		{"exhausted", &bitbuf.ExhaustedError{Field: "x"}, "buffer_exhausted"},
		{"mismatch", ExpectDiscriminant(1, 2), "type_mismatch"},
		{"terminator", &FieldError{Field: "x", Err: ErrInvalidTerminator}, "terminator"},
		{"unknown element", &FieldError{Field: "x", Err: &UnexpectedElementError{ID: 7}}, "unknown_element"},
		{"repeated element", &UnexpectedElementError{ID: 7, Repeated: true}, "terminator"},
		{"length", &LengthError{Field: "x"}, "out_of_bounds"},
		{"value", ExpectValue("x", 3, 2), "invalid_value"},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, ErrorKind(tc.err))
		})
	}
}
