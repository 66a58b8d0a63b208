package sds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/pdu"
	"github.com/ftl/tetra-air/tetra"
)

func hexBuffer(t *testing.T, s string) *bitbuf.Buffer {
	t.Helper()
	bytes, err := tetra.HexToBinary(s)
	require.NoError(t, err)
	return bitbuf.FromBytes(bytes)
}

func TestParseSDSTLPDU(t *testing.T) {
	expectedTimestamp := time.Date(time.Now().Year(), time.April, 11, 10, 15, 0, 0, time.Local)
	tt := []struct {
		desc      string
		pdu       string
		expected  any
		immediate bool
		invalid   bool
	}{
		{
			desc:    "empty",
			invalid: true,
		},
		{
			desc: "simple text message",
			pdu:  "0201746573746D657373616765",
			expected: SimpleTextMessage{
				Protocol: SimpleTextMessaging,
				Encoding: ISO8859_1,
				Text:     "testmessage",
			},
		},
		{
			desc: "simple text message without text",
			pdu:  "0201",
			expected: SimpleTextMessage{
				Protocol: SimpleTextMessaging,
				Encoding: ISO8859_1,
				Text:     "",
			},
		},
		{
			desc: "immediate simple text message",
			pdu:  "0901746573746D657373616765",
			expected: SimpleTextMessage{
				Protocol: SimpleImmediateTextMessaging,
				Encoding: ISO8859_1,
				Text:     "testmessage",
			},
			immediate: true,
		},
		{
			desc: "text message, no report, no store/forward, no timestamp",
			pdu:  "82029C01746573746D657373616765",
			expected: SDSTransfer{
				Protocol:         TextMessaging,
				MessageReference: 0x9C,
				UserData: TextSDU{
					TextHeader: TextHeader{Encoding: ISO8859_1},
					Text:       "testmessage",
				},
			},
		},
		{
			desc: "immediate text message, no report, no store/forward, no timestamp",
			pdu:  "89029C01746573746D657373616765",
			expected: SDSTransfer{
				Protocol:         ImmediateTextMessaging,
				MessageReference: 0x9C,
				UserData: TextSDU{
					TextHeader: TextHeader{Encoding: ISO8859_1},
					Text:       "testmessage",
				},
			},
			immediate: true,
		},
		{
			desc: "text message, no report, store/forward to SSI, no timestamp",
			pdu:  "82039C5101020301746573746D657373616765",
			expected: SDSTransfer{
				Protocol:         TextMessaging,
				MessageReference: 0x9C,
				StoreForwardControl: StoreForwardControl{
					Valid:              true,
					ValidityPeriod:     ValidityPeriod(5 * time.Minute),
					ForwardAddressType: ForwardToSSI,
					ForwardAddressSSI:  0x010203,
				},
				UserData: TextSDU{
					TextHeader: TextHeader{Encoding: ISO8859_1},
					Text:       "testmessage",
				},
			},
		},
		{
			desc: "text message, no report, no store/forward, with timestamp",
			pdu:  "82029C81045A8F746573746D657373616765",
			expected: SDSTransfer{
				Protocol:         TextMessaging,
				MessageReference: 0x9C,
				UserData: TextSDU{
					TextHeader: TextHeader{Encoding: ISO8859_1, Timestamp: expectedTimestamp},
					Text:       "testmessage",
				},
			},
		},
		{
			desc: "concatenated text message part 1 of 2, no report, no store/forward, with timestamp",
			pdu:  "8A02C981045A8F050003C90201746573746D657373616765",
			expected: SDSTransfer{
				Protocol:         UserDataHeaderMessaging,
				MessageReference: 0xC9,
				UserData: ConcatenatedTextSDU{
					TextSDU: TextSDU{
						TextHeader: TextHeader{Encoding: ISO8859_1, Timestamp: expectedTimestamp},
						Text:       "testmessage",
					},
					UserDataHeader: ConcatenatedTextUDH{
						HeaderLength:     5,
						ElementID:        ConcatenatedTextMessageWithShortReference,
						ElementLength:    3,
						MessageReference: 0xC9,
						TotalNumber:      2,
						SequenceNumber:   1,
					},
				},
			},
		},
		{
			desc: "concatenated text message with long reference",
			pdu:  "8A02CA01060804C9010202746573746D657373616765",
			expected: SDSTransfer{
				Protocol:         UserDataHeaderMessaging,
				MessageReference: 0xCA,
				UserData: ConcatenatedTextSDU{
					TextSDU: TextSDU{
						TextHeader: TextHeader{Encoding: ISO8859_1},
						Text:       "testmessage",
					},
					UserDataHeader: ConcatenatedTextUDH{
						HeaderLength:     6,
						ElementID:        ConcatenatedTextMessageWithLongReference,
						ElementLength:    4,
						MessageReference: 0x01C9,
						TotalNumber:      2,
						SequenceNumber:   2,
					},
				},
			},
		},
		{
			desc: "transfer with unknown protocol keeps the user data",
			pdu:  "C0029CABCD",
			expected: SDSTransfer{
				Protocol:         ProtocolIdentifier(0xC0),
				MessageReference: 0x9C,
				UserData:         bitbuf.Span{Data: []byte{0xAB, 0xCD}, Len: 16},
			},
		},
		{
			desc: "SDS-REPORT success, no ack, no store/forward",
			pdu:  "821000C9",
			expected: SDSReport{
				Protocol:         TextMessaging,
				DeliveryStatus:   ReceiptAckByDestination,
				MessageReference: 0xC9,
			},
		},
		{
			desc: "SDS-REPORT success, ack required, no store/forward",
			pdu:  "821800CA",
			expected: SDSReport{
				Protocol:         TextMessaging,
				AckRequired:      true,
				DeliveryStatus:   ReceiptAckByDestination,
				MessageReference: 0xCA,
			},
		},
		{
			desc: "SDS-ACK success",
			pdu:  "822001C9",
			expected: SDSAcknowledge{
				Protocol:         TextMessaging,
				DeliveryStatus:   ReceiptReportAck,
				MessageReference: 0xC9,
			},
		},
		{
			desc:    "unknown SDS-TL message type",
			pdu:     "8270",
			invalid: true,
		},
		{
			desc:    "unsupported protocol",
			pdu:     "0301",
			invalid: true,
		},
		{
			desc:    "truncated SDS-REPORT",
			pdu:     "821000",
			invalid: true,
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			buf := hexBuffer(t, tc.pdu)

			actual, err := ParseSDSTLPDU(buf)

			if tc.invalid {
				assert.Error(t, err)
				assert.Equal(t, 0, buf.Pos())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
			assert.Equal(t, 0, buf.Remaining())

			type immediater interface {
				Immediate() bool
			}
			if i, ok := actual.(immediater); ok {
				assert.Equal(t, tc.immediate, i.Immediate())
			}
		})
	}
}

func TestParseSDSTLPDU_Errors(t *testing.T) {
	tt := []struct {
		desc     string
		pdu      string
		expected error
	}{
		{desc: "empty", pdu: "", expected: pdu.ErrBufferExhausted},
		{desc: "only protocol", pdu: "82", expected: pdu.ErrBufferExhausted},
		{desc: "unknown message type", pdu: "8270", expected: pdu.ErrInvalidValue},
		{desc: "unknown protocol", pdu: "0301", expected: pdu.ErrInvalidValue},
		{desc: "invalid forward address type", pdu: "82039C5401020301", expected: pdu.ErrInvalidValue},
		{desc: "UDH element length mismatch", pdu: "8A02C901050002C90201", expected: pdu.ErrInvalidValue},
		{desc: "UDH longer than the PDU", pdu: "8A02C9010A0003C90201", expected: pdu.ErrBufferExhausted},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := ParseSDSTLPDU(hexBuffer(t, tc.pdu))
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestSDSAcknowledge_Decode_WrongMessageType(t *testing.T) {
	buf := hexBuffer(t, "821000C9")

	_, err := ParseSDSAcknowledge(buf)

	assert.ErrorIs(t, err, pdu.ErrPDUTypeMismatch)
	assert.Equal(t, 0, buf.Pos())
}

func TestSDSTransfer_Encode(t *testing.T) {
	timestamp := time.Date(2021, time.April, 11, 8, 15, 0, 0, time.UTC)
	tt := []struct {
		desc     string
		value    SDSTransfer
		expected []byte
	}{
		{
			desc: "text message with report request and timestamp",
			value: SDSTransfer{
				Protocol:              TextMessaging,
				DeliveryReportRequest: MessageReceivedReportRequested,
				MessageReference:      0xC9,
				UserData: TextSDU{
					TextHeader: TextHeader{Encoding: ISO8859_1, Timestamp: timestamp},
					Text:       "testmessage",
				},
			},
			expected: []byte{0x82, 0x06, 0xC9, 0x81, 0x44, 0x5A, 0x0F, 0x74, 0x65, 0x73, 0x74, 0x6D, 0x65, 0x73, 0x73, 0x61, 0x67, 0x65},
		},
		{
			desc: "concatenated text message with timestamp",
			value: SDSTransfer{
				Protocol:         UserDataHeaderMessaging,
				MessageReference: 0xC9,
				UserData: ConcatenatedTextSDU{
					TextSDU: TextSDU{
						TextHeader: TextHeader{Encoding: ISO8859_1, Timestamp: timestamp},
						Text:       "testmessage",
					},
					UserDataHeader: ConcatenatedTextUDH{
						HeaderLength:     5,
						ElementID:        ConcatenatedTextMessageWithShortReference,
						ElementLength:    3,
						MessageReference: 0xC9,
						TotalNumber:      2,
						SequenceNumber:   1,
					},
				},
			},
			expected: []byte{0x8A, 0x02, 0xC9, 0x81, 0x44, 0x5A, 0x0F, 0x05, 0x00, 0x03, 0xC9, 0x02, 0x01, 0x74, 0x65, 0x73, 0x74, 0x6D, 0x65, 0x73, 0x73, 0x61, 0x67, 0x65},
		},
		{
			desc: "store forward to SSI",
			value: SDSTransfer{
				Protocol:         TextMessaging,
				MessageReference: 0x9C,
				StoreForwardControl: StoreForwardControl{
					Valid:              true,
					ValidityPeriod:     ValidityPeriod(5 * time.Minute),
					ForwardAddressType: ForwardToSSI,
					ForwardAddressSSI:  0x010203,
				},
				UserData: TextSDU{
					TextHeader: TextHeader{Encoding: ISO8859_1},
					Text:       "test",
				},
			},
			expected: []byte{0x82, 0x03, 0x9C, 0x51, 0x01, 0x02, 0x03, 0x01, 0x74, 0x65, 0x73, 0x74},
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			buf := bitbuf.NewAutoExpand(0)

			err := tc.value.Encode(buf)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, buf.Bytes())
			assert.Equal(t, len(tc.expected)*8, buf.Len())
		})
	}
}

func TestSDSTransfer_Encode_InvalidUserData(t *testing.T) {
	value := SDSTransfer{Protocol: TextMessaging, UserData: "text"}

	err := value.Encode(bitbuf.NewAutoExpand(0))

	assert.ErrorIs(t, err, pdu.ErrInvalidValue)
}

func TestEncode_UserDataShorterThanLength(t *testing.T) {
	invalid := bitbuf.Span{Data: []byte{0xAB}, Len: 16}
	tt := []struct {
		desc  string
		value interface{ Encode(*bitbuf.Buffer) error }
	}{
		{desc: "SDS-TRANSFER", value: SDSTransfer{Protocol: 0xC0, UserData: invalid}},
		{desc: "SDS-REPORT", value: SDSReport{Protocol: 0xC0, UserData: invalid}},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			buf := bitbuf.NewAutoExpand(0)

			err := tc.value.Encode(buf)

			assert.ErrorIs(t, err, pdu.ErrInvalidValue)
			assert.Equal(t, 0, buf.Len())
		})
	}
}

func TestNewTextMessageTransfer(t *testing.T) {
	message := NewTextMessageTransfer(0xC9, false, MessageReceivedReportRequested, ISO8859_1, "testmessage")
	buf := bitbuf.NewAutoExpand(0)

	err := message.Encode(buf)
	require.NoError(t, err)
	buf.Seek(0)
	actual, err := ParseSDSTLPDU(buf)

	require.NoError(t, err)
	assert.Equal(t, message, actual)
	assert.True(t, message.ReceivedReportRequested())
	assert.False(t, message.ConsumedReportRequested())
}

func TestNewSDSReport(t *testing.T) {
	transfer := NewTextMessageTransfer(0xCA, false, MessageReceivedReportRequested, ISO8859_1, "testmessage")
	buf := bitbuf.NewAutoExpand(0)

	err := NewSDSReport(transfer, true, ReceiptAckByDestination).Encode(buf)

	require.NoError(t, err)
	assert.Equal(t, []byte{0x82, 0x18, 0x00, 0xCA}, buf.Bytes())
}

func TestSDSAcknowledge_Encode(t *testing.T) {
	buf := bitbuf.NewAutoExpand(0)

	err := SDSAcknowledge{Protocol: TextMessaging, DeliveryStatus: ReceiptReportAck, MessageReference: 0xC9}.Encode(buf)

	require.NoError(t, err)
	assert.Equal(t, []byte{0x82, 0x20, 0x01, 0xC9}, buf.Bytes())
}

func TestSimpleTextMessage_Encode(t *testing.T) {
	buf := bitbuf.NewAutoExpand(0)

	err := NewSimpleTextMessage(false, ISO8859_1, "testmessage").Encode(buf)

	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01, 0x74, 0x65, 0x73, 0x74, 0x6D, 0x65, 0x73, 0x73, 0x61, 0x67, 0x65}, buf.Bytes())
}

func TestStoreForwardControl(t *testing.T) {
	tt := []struct {
		desc  string
		value StoreForwardControl
		bits  string
	}{
		{
			desc:  "no forward address",
			value: StoreForwardControl{Valid: true, ValidityPeriod: InfinitelyValid, ForwardAddressType: NoForwardAddressPresent},
			bits:  "11111111",
		},
		{
			desc:  "short number address",
			value: StoreForwardControl{Valid: true, ValidityPeriod: ValidityPeriod(10 * time.Second), ForwardAddressType: ForwardToSNA, ForwardAddressSNA: 0x2A},
			bits:  "0000100000101010",
		},
		{
			desc: "TSI",
			value: StoreForwardControl{
				Valid:                   true,
				ForwardAddressType:      ForwardToTSI,
				ForwardAddressSSI:       0x000001,
				ForwardAddressExtension: tetra.MNI{MCC: 901, MNC: 9999},
			},
			bits: "00000010" + "000000000000000000000001" + "1110000101" + "10011100001111",
		},
		{
			desc: "external subscriber number with odd digit count",
			value: StoreForwardControl{
				Valid:                    true,
				ForwardAddressType:       ForwardToExternalSubscriberNumber,
				ExternalSubscriberNumber: ExternalSubscriberNumber{1, 2, 11},
			},
			bits: "00000011" + "00000011" + "0001" + "0010" + "1011" + "0000",
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			buf := bitbuf.NewAutoExpand(0)
			require.NoError(t, tc.value.Encode(buf))
			assert.Equal(t, tc.bits, buf.BitString())
			assert.Equal(t, len(tc.bits), tc.value.Length())

			actual, err := ParseStoreForwardControl(bitbuf.MustFromBitString(tc.bits))
			require.NoError(t, err)
			assert.Equal(t, tc.value, actual)
		})
	}
}

func TestExternalSubscriberNumber_String(t *testing.T) {
	assert.Equal(t, "12*#+?", ExternalSubscriberNumber{1, 2, 10, 11, 12, 15}.String())
}

func TestTimestampRoundtrip(t *testing.T) {
	now := time.Now()
	utc := now.UTC()
	expected := time.Date(now.Year(), utc.Month(), utc.Day(), utc.Hour(), utc.Minute(), 0, 0, time.UTC)
	buf := bitbuf.NewAutoExpand(TimestampWidth)

	EncodeTimestampUTC(buf, now)
	buf.Seek(0)
	actual, err := DecodeTimestamp(buf)

	require.NoError(t, err)
	assert.Equal(t, expected, actual)
}

func TestValidityPeriod_Decode(t *testing.T) {
	tt := []struct {
		value    byte
		expected time.Duration
	}{
		{0, 0},
		{1, 10 * time.Second},
		{2, 20 * time.Second},
		{6, 1 * time.Minute},
		{7, 2 * time.Minute},
		{10, 5 * time.Minute},
		{11, 10 * time.Minute},
		{12, 20 * time.Minute},
		{16, 1 * time.Hour},
		{17, 2 * time.Hour},
		{22, 12 * time.Hour},
		{23, 18 * time.Hour},
		{25, 2 * 24 * time.Hour},
		{26, 4 * 24 * time.Hour},
		{30, 12 * 24 * time.Hour},
		{31, time.Duration(InfinitelyValid)},
	}
	for _, tc := range tt {
		t.Run(tc.expected.String(), func(t *testing.T) {
			actual := ParseValidityPeriod(tc.value)
			assert.Equal(t, ValidityPeriod(tc.expected), actual)
		})
	}
}

func TestValidityPeriod_Code(t *testing.T) {
	tt := []struct {
		value    time.Duration
		expected byte
	}{
		{0, 0},
		{1 * time.Millisecond, 1},
		{1 * time.Second, 1},
		{10 * time.Second, 1},
		{10*time.Second + 1*time.Millisecond, 2},
		{20 * time.Second, 2},
		{1 * time.Minute, 6},
		{1*time.Minute + 1*time.Millisecond, 7},
		{2 * time.Minute, 7},
		{5 * time.Minute, 10},
		{5*time.Minute + 1*time.Millisecond, 11},
		{10 * time.Minute, 11},
		{1 * time.Hour, 16},
		{1*time.Hour + 1*time.Millisecond, 17},
		{6 * time.Hour, 21},
		{6*time.Hour + 1*time.Millisecond, 22},
		{12 * time.Hour, 22},
		{24 * time.Hour, 24},
		{24*time.Hour + 1*time.Millisecond, 25},
		{2 * 24 * time.Hour, 25},
		{3 * 24 * time.Hour, 26},
		{12 * 24 * time.Hour, 30},
		{12*24*time.Hour + 1*time.Millisecond, 31},
		{time.Duration(InfinitelyValid), 31},
	}
	for _, tc := range tt {
		t.Run(tc.value.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, ValidityPeriod(tc.value).Code())
		})
	}
}

func TestStatus(t *testing.T) {
	tt := []struct {
		desc     string
		value    Status
		expected any
		str      string
	}{
		{
			desc:     "emergency",
			value:    Emergency,
			expected: Emergency,
			str:      "emergency",
		},
		{
			desc:     "status 2",
			value:    Status2,
			expected: Status2,
			str:      "0x8004",
		},
		{
			desc:     "short report",
			value:    0x7ECA,
			expected: SDSShortReport{ReportType: MessageReceivedShort, MessageReference: 0xCA},
			str:      "short report message received for message 0xCA",
		},
		{
			desc:     "short report consumed",
			value:    0x7F01,
			expected: SDSShortReport{ReportType: MessageConsumedShort, MessageReference: 0x01},
			str:      "short report message consumed for message 0x01",
		},
		{
			desc:     "close to short report",
			value:    0x7ACA,
			expected: Status(0x7ACA),
			str:      "0x7ACA",
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseStatus(tc.value))
			assert.Equal(t, tc.str, tc.value.String())
		})
	}
}

func TestSDSShortReport_Status(t *testing.T) {
	report := SDSShortReport{ReportType: MessageReceivedShort, MessageReference: 0xCA}
	buf := bitbuf.NewAutoExpand(StatusWidth)

	report.Encode(buf)

	assert.Equal(t, Status(0x7ECA), report.Status())
	assert.Equal(t, []byte{0x7E, 0xCA}, buf.Bytes())
	assert.Equal(t, []byte{0x7E, 0xCA}, report.Status().Bytes())
}

func TestParseSDSShortReport_WrongIdentifier(t *testing.T) {
	_, err := ParseSDSShortReport(Status2)

	assert.ErrorIs(t, err, pdu.ErrPDUTypeMismatch)
}

func TestDeliveryStatus_Categories(t *testing.T) {
	assert.True(t, ConsumedByDestination.Success())
	assert.True(t, MessageStored.TemporaryError())
	assert.True(t, DestinationQueueFull.DataDeliveryFailed())
	assert.True(t, NoPendingMessages.FlowControl())
	assert.True(t, StartSending.EndToEndControl())
	assert.False(t, StartSending.FlowControl())
}

func TestDescribe(t *testing.T) {
	buf := hexBuffer(t, "82029C01"+"414243442046472331323334353637383930313233343536"+"746573740D0D31323334353637383930313233343536")
	payload, err := ParseSDSTLPDU(buf)
	require.NoError(t, err)

	assert.Equal(t, `SDS-TRANSFER 0x9C text (ISO8859-1): "test"`, Describe(payload))
	assert.Equal(t, "short report message received for message 0xCA", Describe(ParseStatus(0x7ECA)))
	assert.Equal(t, "status 0x8004", Describe(ParseStatus(Status2)))
}
