package sds

import (
	"fmt"

	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/pdu"
)

/* General types used in the PDU */

// ProtocolIdentifierWidth is the width of the protocol identifier in bits.
const ProtocolIdentifierWidth = 8

// ProtocolIdentifier enum according to [AI] 29.4.3.9
type ProtocolIdentifier byte

// Encode this protocol identifier
func (p ProtocolIdentifier) Encode(buf *bitbuf.Buffer) {
	buf.WriteBits(uint64(p), ProtocolIdentifierWidth)
}

// SDSTL indicates if this protocol uses the SDS-TL PDUs, see [AI] 29.4.3.9
func (p ProtocolIdentifier) SDSTL() bool {
	return p >= 0x80
}

// All protocol identifiers relevant for SDS handling, according to [AI] table 29.21
const (
	SimpleTextMessaging            ProtocolIdentifier = 0x02
	SimpleImmediateTextMessaging   ProtocolIdentifier = 0x09
	SimpleConcatenatedSDSMessaging ProtocolIdentifier = 0x0C
	TextMessaging                  ProtocolIdentifier = 0x82
	ImmediateTextMessaging         ProtocolIdentifier = 0x89
	UserDataHeaderMessaging        ProtocolIdentifier = 0x8A
	ConcatenatedSDSMessaging       ProtocolIdentifier = 0x8C
)

/* SDS-TL related types and functions */

// ParseSDSTLPDU parses the user data of an SDS type 4 message starting at the cursor of the given buffer according to [AI] 29.4.1.
// Simple text messaging (0x02) and simple immediate text messaging (0x09) are decoded as SimpleTextMessage.
// All protocol identifiers from 0x80 on are decoded as SDS-TRANSFER, SDS-REPORT, or SDS-ACK. The user data
// of text messaging (0x82), immediate text messaging (0x89) and messages with user data header (0x8A) is
// decoded, the user data of all other protocols is kept as bitbuf.Span.
func ParseSDSTLPDU(buf *bitbuf.Buffer) (any, error) {
	value, ok := buf.PeekBits(ProtocolIdentifierWidth)
	if !ok {
		return nil, &bitbuf.ExhaustedError{Field: "protocol_identifier", Width: ProtocolIdentifierWidth, Remaining: buf.Remaining()}
	}
	protocol := ProtocolIdentifier(value)

	switch {
	case protocol == SimpleTextMessaging, protocol == SimpleImmediateTextMessaging:
		return ParseSimpleTextMessage(buf)
	case protocol.SDSTL():
		return parseSDSTLMessage(buf)
	default:
		return nil, fmt.Errorf("protocol 0x%x not supported: %w", value, &pdu.ValueError{Field: "protocol_identifier", Value: value})
	}
}

func parseSDSTLMessage(buf *bitbuf.Buffer) (any, error) {
	value, ok := buf.PeekBitsAt(ProtocolIdentifierWidth, MessageTypeWidth)
	if !ok {
		return nil, &bitbuf.ExhaustedError{Field: "message_type", Width: MessageTypeWidth, Remaining: max(0, buf.Remaining()-ProtocolIdentifierWidth)}
	}

	switch SDSTLMessageType(value) {
	case SDSTransferMessage:
		return ParseSDSTransfer(buf)
	case SDSReportMessage:
		return ParseSDSReport(buf)
	case SDSAcknowledgeMessage:
		return ParseSDSAcknowledge(buf)
	default:
		return nil, fmt.Errorf("SDS-TL message type 0x%x is not supported: %w", value, &pdu.ValueError{Field: "message_type", Value: value})
	}
}

// MessageTypeWidth is the width of the SDS-TL message type in bits.
const MessageTypeWidth = 4

// SDSTLMessageType enum according to [AI] 29.4.3.8
type SDSTLMessageType byte

// All SDS-TL message types according to [AI] table 29.20
const (
	SDSTransferMessage    SDSTLMessageType = 0
	SDSReportMessage      SDSTLMessageType = 1
	SDSAcknowledgeMessage SDSTLMessageType = 2
)

// readHeader reads the protocol identifier and the message type, and checks the message type.
func readHeader(buf *bitbuf.Buffer, expected SDSTLMessageType) (ProtocolIdentifier, error) {
	protocol, err := buf.ReadField(ProtocolIdentifierWidth, "protocol_identifier")
	if err != nil {
		return 0, err
	}
	messageType, err := buf.ReadField(MessageTypeWidth, "message_type")
	if err != nil {
		return 0, err
	}
	if err := pdu.ExpectDiscriminant(messageType, uint64(expected)); err != nil {
		return 0, err
	}
	return ProtocolIdentifier(protocol), nil
}

func writeHeader(buf *bitbuf.Buffer, protocol ProtocolIdentifier, messageType SDSTLMessageType) {
	protocol.Encode(buf)
	buf.WriteBits(uint64(messageType), MessageTypeWidth)
}

// ParseSDSAcknowledge parses a SDS-ACK PDU from the given buffer.
func ParseSDSAcknowledge(buf *bitbuf.Buffer) (SDSAcknowledge, error) {
	var result SDSAcknowledge
	err := decodeAtomic(buf, "SDS-ACK", result.Decode)
	return result, err
}

// SDSAcknowledge represents the SDS-ACK PDU contents as defined in [AI] 29.4.2.1
type SDSAcknowledge struct {
	Protocol         ProtocolIdentifier
	DeliveryStatus   DeliveryStatus
	MessageReference MessageReference
}

// Decode a SDS-ACK PDU from the given buffer.
func (a *SDSAcknowledge) Decode(buf *bitbuf.Buffer) error {
	protocol, err := readHeader(buf, SDSAcknowledgeMessage)
	if err != nil {
		return err
	}
	if _, err := buf.ReadField(4, "reserved"); err != nil {
		return err
	}
	status, err := buf.ReadField(8, "delivery_status")
	if err != nil {
		return err
	}
	reference, err := buf.ReadField(8, "message_reference")
	if err != nil {
		return err
	}

	a.Protocol = protocol
	a.DeliveryStatus = DeliveryStatus(status)
	a.MessageReference = MessageReference(reference)
	return nil
}

// Encode this SDS-ACK PDU
func (a SDSAcknowledge) Encode(buf *bitbuf.Buffer) error {
	writeHeader(buf, a.Protocol, SDSAcknowledgeMessage)
	buf.WriteBits(0, 4)
	a.DeliveryStatus.Encode(buf)
	a.MessageReference.Encode(buf)
	return nil
}

// ParseSDSReport parses a SDS-REPORT PDU from the given buffer.
func ParseSDSReport(buf *bitbuf.Buffer) (SDSReport, error) {
	var result SDSReport
	err := decodeAtomic(buf, "SDS-REPORT", result.Decode)
	return result, err
}

// NewSDSReport creates a new SDS-REPORT PDU based on the given SDS-TRANSFER PDU without store/forward control information.
func NewSDSReport(sdsTransfer SDSTransfer, ackRequired bool, deliveryStatus DeliveryStatus) SDSReport {
	return SDSReport{
		Protocol:         sdsTransfer.Protocol,
		AckRequired:      ackRequired,
		DeliveryStatus:   deliveryStatus,
		MessageReference: sdsTransfer.MessageReference,
	}
}

// SDSReport represents the SDS-REPORT PDU contents as defined in [AI] 29.4.2.2
type SDSReport struct {
	Protocol            ProtocolIdentifier
	AckRequired         bool
	DeliveryStatus      DeliveryStatus
	MessageReference    MessageReference
	StoreForwardControl StoreForwardControl

	// UserData holds the remaining bits of the PDU, if any.
	UserData bitbuf.Span
}

// Decode a SDS-REPORT PDU from the given buffer.
func (r *SDSReport) Decode(buf *bitbuf.Buffer) error {
	protocol, err := readHeader(buf, SDSReportMessage)
	if err != nil {
		return err
	}
	ackRequired, err := buf.ReadBool("ack_required")
	if err != nil {
		return err
	}
	if _, err := buf.ReadField(2, "reserved"); err != nil {
		return err
	}
	storeForwardControl, err := buf.ReadBool("store_forward_control")
	if err != nil {
		return err
	}
	status, err := buf.ReadField(8, "delivery_status")
	if err != nil {
		return err
	}
	reference, err := buf.ReadField(8, "message_reference")
	if err != nil {
		return err
	}

	*r = SDSReport{
		Protocol:         protocol,
		AckRequired:      ackRequired,
		DeliveryStatus:   DeliveryStatus(status),
		MessageReference: MessageReference(reference),
	}
	if storeForwardControl {
		if err := r.StoreForwardControl.Decode(buf); err != nil {
			return err
		}
	}
	if buf.Remaining() > 0 {
		r.UserData, err = buf.ReadSpan(buf.Remaining(), "user_data")
	}
	return err
}

// Encode this SDS-REPORT PDU
func (r SDSReport) Encode(buf *bitbuf.Buffer) error {
	if !r.UserData.Valid() {
		return &pdu.ValueError{Field: "user_data_length", Value: uint64(r.UserData.Len)}
	}
	writeHeader(buf, r.Protocol, SDSReportMessage)
	buf.WriteBit(r.AckRequired)
	buf.WriteBits(0, 2)
	buf.WriteBit(r.StoreForwardControl.Valid)
	r.DeliveryStatus.Encode(buf)
	r.MessageReference.Encode(buf)
	if r.StoreForwardControl.Valid {
		if err := r.StoreForwardControl.Encode(buf); err != nil {
			return err
		}
	}
	buf.WriteSpan(r.UserData)
	return nil
}

// ParseSDSTransfer parses a SDS-TRANSFER PDU from the given buffer.
func ParseSDSTransfer(buf *bitbuf.Buffer) (SDSTransfer, error) {
	var result SDSTransfer
	err := decodeAtomic(buf, "SDS-TRANSFER", result.Decode)
	return result, err
}

// NewTextMessageTransfer returns a new SDS-TRANSFER PDU for text messaging with the given parameters
func NewTextMessageTransfer(messageReference MessageReference, immediate bool, deliveryReport DeliveryReportRequest, encoding TextEncoding, text string) SDSTransfer {
	var protocol ProtocolIdentifier
	if immediate {
		protocol = ImmediateTextMessaging
	} else {
		protocol = TextMessaging
	}

	return SDSTransfer{
		Protocol:              protocol,
		MessageReference:      messageReference,
		DeliveryReportRequest: deliveryReport,
		UserData: TextSDU{
			TextHeader: TextHeader{
				Encoding: encoding,
			},
			Text: text,
		},
	}
}

// SDSTransfer represents the SDS-TRANSFER PDU contents as defined in [AI] 29.4.2.4
type SDSTransfer struct {
	Protocol                        ProtocolIdentifier
	DeliveryReportRequest           DeliveryReportRequest
	ServiceSelectionShortFormReport bool
	MessageReference                MessageReference
	StoreForwardControl             StoreForwardControl

	// UserData is a TextSDU, a ConcatenatedTextSDU, or the undecoded bitbuf.Span for all other protocols.
	UserData any
}

// Decode a SDS-TRANSFER PDU from the given buffer. The user data fills the remaining buffer.
func (m *SDSTransfer) Decode(buf *bitbuf.Buffer) error {
	protocol, err := readHeader(buf, SDSTransferMessage)
	if err != nil {
		return err
	}
	deliveryReportRequest, err := buf.ReadField(2, "delivery_report_request")
	if err != nil {
		return err
	}
	serviceSelection, err := buf.ReadBool("service_selection_short_form_report")
	if err != nil {
		return err
	}
	storeForwardControl, err := buf.ReadBool("store_forward_control")
	if err != nil {
		return err
	}
	reference, err := buf.ReadField(8, "message_reference")
	if err != nil {
		return err
	}

	*m = SDSTransfer{
		Protocol:                        protocol,
		DeliveryReportRequest:           DeliveryReportRequest(deliveryReportRequest),
		ServiceSelectionShortFormReport: !serviceSelection,
		MessageReference:                MessageReference(reference),
	}
	if storeForwardControl {
		if err := m.StoreForwardControl.Decode(buf); err != nil {
			return err
		}
	}

	switch protocol {
	case TextMessaging, ImmediateTextMessaging:
		var sdu TextSDU
		err = sdu.Decode(buf)
		m.UserData = sdu
	case UserDataHeaderMessaging:
		var sdu ConcatenatedTextSDU
		err = sdu.Decode(buf)
		m.UserData = sdu
	default:
		m.UserData, err = buf.ReadSpan(buf.Remaining(), "user_data")
	}
	return err
}

// Encode this SDS-TRANSFER PDU
func (m SDSTransfer) Encode(buf *bitbuf.Buffer) error {
	if sdu, ok := m.UserData.(bitbuf.Span); ok && !sdu.Valid() {
		return &pdu.ValueError{Field: "user_data_length", Value: uint64(sdu.Len)}
	}
	writeHeader(buf, m.Protocol, SDSTransferMessage)
	buf.WriteBits(uint64(m.DeliveryReportRequest), 2)
	buf.WriteBit(!m.ServiceSelectionShortFormReport)
	buf.WriteBit(m.StoreForwardControl.Valid)
	m.MessageReference.Encode(buf)
	if m.StoreForwardControl.Valid {
		if err := m.StoreForwardControl.Encode(buf); err != nil {
			return err
		}
	}

	switch sdu := m.UserData.(type) {
	case TextSDU:
		return sdu.Encode(buf)
	case ConcatenatedTextSDU:
		return sdu.Encode(buf)
	case bitbuf.Span:
		buf.WriteSpan(sdu)
		return nil
	case nil:
		return nil
	default:
		return fmt.Errorf("user data of type %T cannot be encoded: %w", sdu, pdu.ErrInvalidValue)
	}
}

// ReceivedReportRequested indicates if for this SDS-TRANSFER PDU a delivery report is requested for receipt
func (m SDSTransfer) ReceivedReportRequested() bool {
	return m.DeliveryReportRequest == MessageReceivedReportRequested ||
		m.DeliveryReportRequest == MessageReceivedAndConsumedReportRequested
}

// ConsumedReportRequested indicates if for this SDS-TRANSFER PDU a delivery report is requested for consumation
func (m SDSTransfer) ConsumedReportRequested() bool {
	return m.DeliveryReportRequest == MessageConsumedReportRequested ||
		m.DeliveryReportRequest == MessageReceivedAndConsumedReportRequested
}

// Immediate indiciates if this message should be displayed/handled immediately by the TE.
func (m SDSTransfer) Immediate() bool {
	return m.Protocol == ImmediateTextMessaging
}

// MessageReference according to [AI] 29.4.3.7
type MessageReference byte

// Encode this message reference
func (m MessageReference) Encode(buf *bitbuf.Buffer) {
	buf.WriteBits(uint64(m), 8)
}

// DeliveryStatus according to [AI] 29.4.3.2
type DeliveryStatus byte

// Encode this delivery status
func (s DeliveryStatus) Encode(buf *bitbuf.Buffer) {
	buf.WriteBits(uint64(s), 8)
}

// Success indicates if this status represents a success (see [AI] table 29.16).
func (s DeliveryStatus) Success() bool {
	return (s & 0xE0) == 0x00
}

// TemporaryError indicates if this status represents a temporary error (see [AI] table 29.16).
func (s DeliveryStatus) TemporaryError() bool {
	return (s & 0xE0) == 0x20
}

// DataDeliveryFailed indicates if this status represents a data transfer failure (see [AI] table 29.16).
func (s DeliveryStatus) DataDeliveryFailed() bool {
	return (s & 0xE0) == 0x40
}

// FlowControl indicates if this status represents flow control information (see [AI] table 29.16).
func (s DeliveryStatus) FlowControl() bool {
	return (s & 0xE0) == 0x60
}

// EndToEndControl indicates if this status represents end to end control information (see [AI] table 29.16).
func (s DeliveryStatus) EndToEndControl() bool {
	return (s & 0xE0) == 0x80
}

// All DeliveryStatus values according to [AI] table 29.16
const (
	// Success

	ReceiptAckByDestination                  DeliveryStatus = 0x00
	ReceiptReportAck                         DeliveryStatus = 0x01
	ConsumedByDestination                    DeliveryStatus = 0x02
	ConsumedReportAck                        DeliveryStatus = 0x03
	MessageForwardedToExternalNetwork        DeliveryStatus = 0x04
	SentToGroupAckPresented                  DeliveryStatus = 0x05
	ConcatenationPartReceiptAckByDestination DeliveryStatus = 0x06

	// Temporary Error

	Congestion                           DeliveryStatus = 0x20
	MessageStored                        DeliveryStatus = 0x21
	DestinationNotReachableMessageStored DeliveryStatus = 0x22

	// Data Transfer Failed

	NetworkOverload                          DeliveryStatus = 0x40
	ServicePermanentlyNotAvailable           DeliveryStatus = 0x41
	ServiceTemporaryNotAvailable             DeliveryStatus = 0x42
	SourceNotAuthorized                      DeliveryStatus = 0x43
	DestinationNotAuthorzied                 DeliveryStatus = 0x44
	UnknownDestGatewayServiceAddress         DeliveryStatus = 0x45
	UnknownForwardAddress                    DeliveryStatus = 0x46
	GroupAddressWithIndividualService        DeliveryStatus = 0x47
	ValidityPeriodExpiredNotReceived         DeliveryStatus = 0x48
	ValidityPeriodExpiredNotConsumed         DeliveryStatus = 0x49
	DeliveryFailed                           DeliveryStatus = 0x4A
	DestinationNotRegistered                 DeliveryStatus = 0x4B
	DestinationQueueFull                     DeliveryStatus = 0x4C
	MessageTooLong                           DeliveryStatus = 0x4D
	DestinationDoesNotSupportSDSTL           DeliveryStatus = 0x4E
	DestinationHostNotConnected              DeliveryStatus = 0x4F
	ProtocolNotSupported                     DeliveryStatus = 0x50
	DataCodingSchemeNotSupported             DeliveryStatus = 0x51
	DestinationMemoryFullMessageDiscarded    DeliveryStatus = 0x52
	DestinationNotAcceptingSDS               DeliveryStatus = 0x53
	ConcatednatedMessageTooLong              DeliveryStatus = 0x54
	DestinationAddressProhibited             DeliveryStatus = 0x56
	CannotRouteToExternalNetwork             DeliveryStatus = 0x57
	UnknownExternalSubscriberNumber          DeliveryStatus = 0x58
	NegativeReportAcknowledgement            DeliveryStatus = 0x59
	DestinationNotReachable                  DeliveryStatus = 0x5A
	TextDistributionError                    DeliveryStatus = 0x5B
	CorruptInformationElement                DeliveryStatus = 0x5C
	NotAllConcatenationPartsReceived         DeliveryStatus = 0x5D
	DestinationEngagedInAnotherServiceBySwMI DeliveryStatus = 0x5E
	DestinationEngagedInAnotherServiceByDest DeliveryStatus = 0x5F

	// Flow Control

	DestinationMemoryFull      DeliveryStatus = 0x60
	DestinationMemoryAvailable DeliveryStatus = 0x61
	StartPendingMessages       DeliveryStatus = 0x62
	NoPendingMessages          DeliveryStatus = 0x63

	// End to End Control

	StopSending  DeliveryStatus = 0x80
	StartSending DeliveryStatus = 0x81
)

// DeliveryReportRequest enum according to [AI] 29.4.3.3
type DeliveryReportRequest byte

// All delivery report requests according to [AI] table 29.17
const (
	NoReportRequested                         DeliveryReportRequest = 0x00
	MessageReceivedReportRequested            DeliveryReportRequest = 0x01
	MessageConsumedReportRequested            DeliveryReportRequest = 0x02
	MessageReceivedAndConsumedReportRequested DeliveryReportRequest = 0x03
)

// decodeAtomic restores the cursor if decode fails and prefixes the error with the PDU name.
func decodeAtomic(buf *bitbuf.Buffer, name string, decode func(*bitbuf.Buffer) error) error {
	start := buf.Pos()
	err := decode(buf)
	if err != nil {
		buf.Seek(start)
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
