package sds

import (
	"fmt"
	"regexp"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/pdu"
)

/* Text related types and functions */

// TextEncoding enum according to [AI] 29.5.4.1
type TextEncoding byte

// All defined text encoding schemes, according to [AI] table 29.29
const (
	Packed7Bit TextEncoding = iota
	ISO8859_1
	ISO8859_2
	ISO8859_3
	ISO8859_4
	ISO8859_5
	ISO8859_6
	ISO8859_7
	ISO8859_8
	ISO8859_9
	ISO8859_10
	ISO8859_13
	ISO8859_14
	ISO8859_15
	CodePage437
	CodePage737
	CodePage850
	CodePage852
	CodePage855
	CodePage857
	CodePage860
	CodePage861
	CodePage863
	CodePage865
	CodePage866
	CodePage869
	UTF16BE
	VISCII
)

// TextCodecs contains encoding.Encoding instances for all supported text encoding schemes.
// Schemes without codec are decoded as ISO8859-1.
var TextCodecs = map[TextEncoding]encoding.Encoding{
	ISO8859_1:   charmap.ISO8859_1,
	ISO8859_2:   charmap.ISO8859_2,
	ISO8859_3:   charmap.ISO8859_3,
	ISO8859_4:   charmap.ISO8859_4,
	ISO8859_5:   charmap.ISO8859_5,
	ISO8859_6:   charmap.ISO8859_6,
	ISO8859_7:   charmap.ISO8859_7,
	ISO8859_8:   charmap.ISO8859_8,
	ISO8859_9:   charmap.ISO8859_9,
	ISO8859_10:  charmap.ISO8859_10,
	ISO8859_13:  charmap.ISO8859_13,
	ISO8859_14:  charmap.ISO8859_14,
	ISO8859_15:  charmap.ISO8859_15,
	CodePage437: charmap.CodePage437,
	CodePage850: charmap.CodePage850,
	CodePage852: charmap.CodePage852,
	CodePage855: charmap.CodePage855,
	CodePage860: charmap.CodePage860,
	CodePage863: charmap.CodePage863,
	CodePage865: charmap.CodePage865,
	CodePage866: charmap.CodePage866,
	UTF16BE:     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
}

var fallbackCodec encoding.Encoding = charmap.ISO8859_1

// EncodingByName maps the names of all supported encodings to their text encoding scheme.
var EncodingByName = map[string]TextEncoding{
	"ISO8859-1":   ISO8859_1,
	"ISO8859-2":   ISO8859_2,
	"ISO8859-3":   ISO8859_3,
	"ISO8859-4":   ISO8859_4,
	"ISO8859-5":   ISO8859_5,
	"ISO8859-6":   ISO8859_6,
	"ISO8859-7":   ISO8859_7,
	"ISO8859-8":   ISO8859_8,
	"ISO8859-9":   ISO8859_9,
	"ISO8859-10":  ISO8859_10,
	"ISO8859-13":  ISO8859_13,
	"ISO8859-14":  ISO8859_14,
	"ISO8859-15":  ISO8859_15,
	"CodePage437": CodePage437,
	"CodePage850": CodePage850,
	"CodePage852": CodePage852,
	"CodePage855": CodePage855,
	"CodePage860": CodePage860,
	"CodePage863": CodePage863,
	"CodePage865": CodePage865,
	"CodePage866": CodePage866,
	"UTF16BE":     UTF16BE,
}

func (e TextEncoding) String() string {
	for name, encoding := range EncodingByName {
		if encoding == e {
			return name
		}
	}
	return fmt.Sprintf("encoding %d", byte(e))
}

// TextEncodingWidth is the width of the text coding scheme in bits.
const TextEncodingWidth = 7

// TimestampWidth is the width of an encoded timestamp in bits.
const TimestampWidth = 24

// ParseTextHeader in text messages and concatenated text messages.
func ParseTextHeader(buf *bitbuf.Buffer) (TextHeader, error) {
	var result TextHeader
	err := decodeAtomic(buf, "text header", result.Decode)
	return result, err
}

// TextHeader represents the meta information for text used in text messages according to [AI] 29.5.3.3
// and concatenated text messages according to [AI] 29.5.10.3
type TextHeader struct {
	Encoding  TextEncoding
	Timestamp time.Time
}

// Decode the text header from the given buffer.
func (h *TextHeader) Decode(buf *bitbuf.Buffer) error {
	timestampUsed, err := buf.ReadBool("timestamp_used")
	if err != nil {
		return err
	}
	encoding, err := buf.ReadField(TextEncodingWidth, "text_coding_scheme")
	if err != nil {
		return err
	}

	var timestamp time.Time
	if timestampUsed {
		timestamp, err = DecodeTimestamp(buf)
		if err != nil {
			return err
		}
	}

	*h = TextHeader{
		Encoding:  TextEncoding(encoding),
		Timestamp: timestamp,
	}
	return nil
}

// Encode this text header. A timestamp is always encoded as UTC.
func (h TextHeader) Encode(buf *bitbuf.Buffer) {
	buf.WriteBit(!h.Timestamp.IsZero())
	buf.WriteBits(uint64(h.Encoding), TextEncodingWidth)
	if !h.Timestamp.IsZero() {
		EncodeTimestampUTC(buf, h.Timestamp)
	}
}

// Length returns the length of this text header in bits.
func (h TextHeader) Length() int {
	if h.Timestamp.IsZero() {
		return 1 + TextEncodingWidth
	}
	return 1 + TextEncodingWidth + TimestampWidth
}

var timeframeLocations = []*time.Location{time.Local, time.UTC, time.Local, time.Local}

// DecodeTimestamp according to [AI] 29.5.4.4. The timestamp does not contain the year, the current year is used.
func DecodeTimestamp(buf *bitbuf.Buffer) (time.Time, error) {
	value, err := buf.ReadField(TimestampWidth, "timestamp")
	if err != nil {
		return time.Time{}, err
	}

	location := timeframeLocations[(value>>22)&0x03]
	month := time.Month((value >> 16) & 0x0F)
	day := int((value >> 11) & 0x1F)
	hour := int((value >> 6) & 0x1F)
	minute := int(value & 0x3F)

	return time.Date(time.Now().Year(), month, day, hour, minute, 0, 0, location), nil
}

// EncodeTimestampUTC according to [AI] 29.5.4.4, always using timeframe type UTC
func EncodeTimestampUTC(buf *bitbuf.Buffer, timestamp time.Time) {
	utc := timestamp.UTC()

	buf.WriteBits(1, 2) // timeframe type UTC
	buf.WriteBits(0, 2)
	buf.WriteBits(uint64(utc.Month()), 4)
	buf.WriteBits(uint64(utc.Day()), 5)
	buf.WriteBits(uint64(utc.Hour()), 5)
	buf.WriteBits(uint64(utc.Minute()), 6)
}

// DecodePayloadText decodes all remaining whole bytes of the buffer as text using the given encoding scheme according to [AI] 29.5.4
func DecodePayloadText(textEncoding TextEncoding, buf *bitbuf.Buffer) (string, error) {
	var decoder *encoding.Decoder
	codec, ok := TextCodecs[textEncoding]
	if ok {
		decoder = codec.NewDecoder()
	} else {
		decoder = fallbackCodec.NewDecoder()
	}

	payload, err := buf.ReadSpan(buf.Remaining()-buf.Remaining()%8, "text")
	if err != nil {
		return "", err
	}
	utf8, err := decoder.Bytes(payload.Data)
	if err != nil {
		return "", fmt.Errorf("%s text: %v: %w", textEncoding, err, pdu.ErrInvalidValue)
	}
	return string(utf8), nil
}

// WritePayloadText encodes the given text using the given text encoding and writes the result into the given buffer.
// If the text cannot be encoded, its raw UTF-8 bytes are written.
func WritePayloadText(buf *bitbuf.Buffer, text string, textEncoding TextEncoding) {
	var encoder *encoding.Encoder
	codec, ok := TextCodecs[textEncoding]
	if ok {
		encoder = codec.NewEncoder()
	} else {
		encoder = fallbackCodec.NewEncoder()
	}

	encodedBytes, err := encoder.Bytes([]byte(text))
	if err != nil {
		encodedBytes = []byte(text)
	}
	buf.WriteSpan(bitbuf.SpanFromBytes(encodedBytes))
}

/* Simple Text Messaging related types and functions */

// ParseSimpleTextMessage parses a simple text message PDU
func ParseSimpleTextMessage(buf *bitbuf.Buffer) (SimpleTextMessage, error) {
	var result SimpleTextMessage
	err := decodeAtomic(buf, "simple text message", result.Decode)
	return result, err
}

// NewSimpleTextMessage returns a new simple text message PDU according to the given parameters
func NewSimpleTextMessage(immediate bool, encoding TextEncoding, text string) SimpleTextMessage {
	var protocol ProtocolIdentifier
	if immediate {
		protocol = SimpleImmediateTextMessaging
	} else {
		protocol = SimpleTextMessaging
	}

	return SimpleTextMessage{
		Protocol: protocol,
		Encoding: encoding,
		Text:     text,
	}
}

// SimpleTextMessage represents the data of a simple text messaging PDU, according to [AI] 29.5.2.3
type SimpleTextMessage struct {
	Protocol ProtocolIdentifier
	Encoding TextEncoding
	Text     string
}

// Decode a simple text message PDU from the given buffer. The text fills the remaining buffer.
func (m *SimpleTextMessage) Decode(buf *bitbuf.Buffer) error {
	protocol, err := buf.ReadField(ProtocolIdentifierWidth, "protocol_identifier")
	if err != nil {
		return err
	}
	if _, err := buf.ReadBool("fill_bit"); err != nil {
		return err
	}
	encoding, err := buf.ReadField(TextEncodingWidth, "text_coding_scheme")
	if err != nil {
		return err
	}
	text, err := DecodePayloadText(TextEncoding(encoding), buf)
	if err != nil {
		return err
	}

	*m = SimpleTextMessage{
		Protocol: ProtocolIdentifier(protocol),
		Encoding: TextEncoding(encoding),
		Text:     text,
	}
	return nil
}

// Immediate indiciates if this message should be displayed/handled immediately by the TE.
func (m SimpleTextMessage) Immediate() bool {
	return m.Protocol == SimpleImmediateTextMessaging
}

// Encode this simple text message
func (m SimpleTextMessage) Encode(buf *bitbuf.Buffer) error {
	m.Protocol.Encode(buf)
	buf.WriteBit(false)
	buf.WriteBits(uint64(m.Encoding), TextEncodingWidth)
	WritePayloadText(buf, m.Text, m.Encoding)
	return nil
}

/* Text messaging related types and functions */

// ParseTextSDU parses the user data of a text message.
func ParseTextSDU(buf *bitbuf.Buffer) (TextSDU, error) {
	var result TextSDU
	err := decodeAtomic(buf, "text SDU", result.Decode)
	return result, err
}

// TextSDU according to [AI] 29.5.3.3
type TextSDU struct {
	TextHeader
	Text string
}

// Decode the text SDU from the given buffer. The text fills the remaining buffer.
func (t *TextSDU) Decode(buf *bitbuf.Buffer) error {
	if err := t.TextHeader.Decode(buf); err != nil {
		return err
	}
	text, err := DecodePayloadText(t.Encoding, buf)
	if err != nil {
		return err
	}
	t.Text = text
	return nil
}

// Encode this text SDU
func (t TextSDU) Encode(buf *bitbuf.Buffer) error {
	t.TextHeader.Encode(buf)
	WritePayloadText(buf, t.Text, t.Encoding)
	return nil
}

/* Concatenated text messageing related types and functions */

// ParseConcatenatedTextSDU parses the user data of a message with user data header.
func ParseConcatenatedTextSDU(buf *bitbuf.Buffer) (ConcatenatedTextSDU, error) {
	var result ConcatenatedTextSDU
	err := decodeAtomic(buf, "concatenated text SDU", result.Decode)
	return result, err
}

// ConcatenatedTextSDU according to [AI] 29.5.10.3
type ConcatenatedTextSDU struct {
	TextSDU
	UserDataHeader ConcatenatedTextUDH
}

// Decode the concatenated text SDU from the given buffer.
//
// Example user data: 81045A8F050003C90201746573746D657373616765
//
//	81: Timestamp Used[1] (yes), Text Encoding Scheme[7] (ISO8859-1)
//	04 5A 8F: Timestamp[24]
//	05: User Data Header length[8] (5)
//	00: UDH Information Element ID[8] (0)
//	03: UDH Information Element Length[8] (3)
//	C9: Message Reference[8] (0xC9), always the message reference of the first part
//	02: Total number of parts[8] (2)
//	01: Sequence number of current part[8] (1), the first part is 1
//
// and then comes the text data
func (t *ConcatenatedTextSDU) Decode(buf *bitbuf.Buffer) error {
	if err := t.TextHeader.Decode(buf); err != nil {
		return err
	}
	if err := t.UserDataHeader.Decode(buf); err != nil {
		return err
	}
	text, err := DecodePayloadText(t.Encoding, buf)
	if err != nil {
		return err
	}
	t.Text = text
	return nil
}

// Encode this concatenated text SDU
func (t ConcatenatedTextSDU) Encode(buf *bitbuf.Buffer) error {
	t.TextHeader.Encode(buf)
	if err := t.UserDataHeader.Encode(buf); err != nil {
		return err
	}
	WritePayloadText(buf, t.Text, t.Encoding)
	return nil
}

// ParseConcatenatedTextUDH according to [AI] table 29.48
func ParseConcatenatedTextUDH(buf *bitbuf.Buffer) (ConcatenatedTextUDH, error) {
	var result ConcatenatedTextUDH
	err := decodeAtomic(buf, "concatenated text UDH", result.Decode)
	return result, err
}

// ConcatenatedTextUDH contents according to [AI] 29.5.10.3
type ConcatenatedTextUDH struct {
	HeaderLength     byte
	ElementID        UDHInformationElementID
	ElementLength    byte
	MessageReference uint16
	TotalNumber      byte
	SequenceNumber   byte
}

// Decode the user data header from the given buffer. Further information elements in the header are skipped.
func (h *ConcatenatedTextUDH) Decode(buf *bitbuf.Buffer) error {
	var fields [3]uint64
	for i, name := range []string{"udh_length", "udh_element_id", "udh_element_length"} {
		value, err := buf.ReadField(8, name)
		if err != nil {
			return err
		}
		fields[i] = value
	}
	*h = ConcatenatedTextUDH{
		HeaderLength:  byte(fields[0]),
		ElementID:     UDHInformationElementID(fields[1]),
		ElementLength: byte(fields[2]),
	}

	referenceWidth := 8
	if h.ElementID == ConcatenatedTextMessageWithLongReference {
		referenceWidth = 16
	}
	if err := pdu.ExpectValue("udh_element_length", uint64(h.ElementLength), uint64(referenceWidth/8+2)); err != nil {
		return err
	}
	if int(h.HeaderLength) < int(h.ElementLength)+2 {
		return &pdu.ValueError{Field: "udh_length", Value: uint64(h.HeaderLength)}
	}

	reference, err := buf.ReadField(referenceWidth, "udh_message_reference")
	if err != nil {
		return err
	}
	if referenceWidth == 16 {
		reference = (reference&0xFF)<<8 | reference>>8
	}
	total, err := buf.ReadField(8, "udh_total_number")
	if err != nil {
		return err
	}
	sequence, err := buf.ReadField(8, "udh_sequence_number")
	if err != nil {
		return err
	}
	h.MessageReference = uint16(reference)
	h.TotalNumber = byte(total)
	h.SequenceNumber = byte(sequence)

	skip := 8 * (int(h.HeaderLength) - int(h.ElementLength) - 2)
	if skip > buf.Remaining() {
		return &bitbuf.ExhaustedError{Field: "udh", Width: skip, Remaining: buf.Remaining()}
	}
	return buf.SeekRelative(skip)
}

// Encode this user data header. The message reference of a long reference is written low byte first.
func (h ConcatenatedTextUDH) Encode(buf *bitbuf.Buffer) error {
	referenceWidth := 8
	if h.ElementID == ConcatenatedTextMessageWithLongReference {
		referenceWidth = 16
	}
	if int(h.HeaderLength) != int(h.ElementLength)+2 || int(h.ElementLength) != referenceWidth/8+2 {
		return &pdu.ValueError{Field: "udh_length", Value: uint64(h.HeaderLength)}
	}

	buf.WriteBits(uint64(h.HeaderLength), 8)
	buf.WriteBits(uint64(h.ElementID), 8)
	buf.WriteBits(uint64(h.ElementLength), 8)
	reference := uint64(h.MessageReference)
	if referenceWidth == 16 {
		reference = (reference&0xFF)<<8 | reference>>8
	}
	buf.WriteBits(reference, referenceWidth)
	buf.WriteBits(uint64(h.TotalNumber), 8)
	buf.WriteBits(uint64(h.SequenceNumber), 8)
	return nil
}

// Length returns the length of this header in bytes.
func (h ConcatenatedTextUDH) Length() int {
	return int(h.HeaderLength) + 1 // the HeaderLength byte itself
}

// UDHInformationElementID enum according to [AI] 29.5.9.4.1
type UDHInformationElementID byte

// The relevant UDHInformationElementID values for concatenated text according to [AI] table 29.47.
const (
	ConcatenatedTextMessageWithShortReference UDHInformationElementID = 0x00
	ConcatenatedTextMessageWithLongReference  UDHInformationElementID = 0x08
)

var leadingOPTA = regexp.MustCompile(`^[A-Za-z ]+#[0-9]{16}`)

// SplitLeadingOPTA splits an operational tactical address that some terminals put in front of the text.
func SplitLeadingOPTA(s string) (string, string) {
	opta := leadingOPTA.FindString(s)
	return opta, s[len(opta):]
}

func RemoveLeadingOPTA(s string) string {
	_, result := SplitLeadingOPTA(s)
	return result
}

var trailingITSI = regexp.MustCompile(`((\x1a\x00)|(\x0d\x0d))([0-9]{16})$`)

// SplitTrailingITSI splits the ITSI that some terminals append to the text.
func SplitTrailingITSI(s string) (string, string) {
	groups := trailingITSI.FindStringSubmatch(s)
	var itsi string
	var matchLen int
	if len(groups) == 0 {
		itsi = ""
		matchLen = 0
	} else {
		itsi = groups[len(groups)-1]
		matchLen = len(groups[0])
	}
	return s[0 : len(s)-matchLen], itsi
}

func RemoveTrailingITSI(s string) string {
	result, _ := SplitTrailingITSI(s)
	return result
}

// Describe returns a one line summary of a payload returned by ParseSDSTLPDU or ParseStatus.
func Describe(payload any) string {
	plain := func(text string) string {
		return RemoveTrailingITSI(RemoveLeadingOPTA(text))
	}
	switch p := payload.(type) {
	case SimpleTextMessage:
		return fmt.Sprintf("simple text (%s): %q", p.Encoding, plain(p.Text))
	case SDSTransfer:
		switch sdu := p.UserData.(type) {
		case TextSDU:
			return fmt.Sprintf("SDS-TRANSFER 0x%02X text (%s): %q", byte(p.MessageReference), sdu.Encoding, plain(sdu.Text))
		case ConcatenatedTextSDU:
			return fmt.Sprintf("SDS-TRANSFER 0x%02X part %d/%d (%s): %q", byte(p.MessageReference), sdu.UserDataHeader.SequenceNumber, sdu.UserDataHeader.TotalNumber, sdu.Encoding, plain(sdu.Text))
		default:
			return fmt.Sprintf("SDS-TRANSFER 0x%02X protocol 0x%02X", byte(p.MessageReference), byte(p.Protocol))
		}
	case SDSReport:
		return fmt.Sprintf("SDS-REPORT 0x%02X status 0x%02X", byte(p.MessageReference), byte(p.DeliveryStatus))
	case SDSAcknowledge:
		return fmt.Sprintf("SDS-ACK 0x%02X status 0x%02X", byte(p.MessageReference), byte(p.DeliveryStatus))
	case SDSShortReport:
		return p.String()
	case Status:
		return "status " + p.String()
	default:
		return fmt.Sprintf("%v", p)
	}
}
