package sds

import (
	"fmt"

	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/pdu"
)

// Status represents a pre-coded status according to [AI] 14.8.34
type Status uint16

// StatusWidth is the width of a pre-coded status in bits.
const StatusWidth = 16

// Bytes returns this status as byte slice.
func (s Status) Bytes() []byte {
	return []byte{
		byte(s >> 8),
		byte(s),
	}
}

func (s Status) String() string {
	switch {
	case s == Emergency:
		return "emergency"
	case s.ShortReport():
		report, _ := ParseSDSShortReport(s)
		return report.String()
	default:
		return fmt.Sprintf("0x%04X", uint16(s))
	}
}

// ShortReport indicates if this status value carries a SDS-SHORT-REPORT, see [AI] table 14.78
func (s Status) ShortReport() bool {
	return (s >> 10) == Status(SDSShortReportPDUIdentifier)
}

// Encode this status
func (s Status) Encode(buf *bitbuf.Buffer) {
	buf.WriteBits(uint64(s), StatusWidth)
}

// ParseStatus interprets the given pre-coded status value. The result is either a SDSShortReport or the Status itself.
func ParseStatus(s Status) any {
	if report, err := ParseSDSShortReport(s); err == nil {
		return report
	}
	return s
}

// The emergency alarm and some relevant status values
const (
	Emergency Status = 0x0000

	// requests

	Status0 Status = 0x8002
	Status1 Status = 0x8003
	Status2 Status = 0x8004
	Status3 Status = 0x8005
	Status4 Status = 0x8006
	Status5 Status = 0x8007
	Status6 Status = 0x8008
	Status7 Status = 0x8009
	Status8 Status = 0x800A
	Status9 Status = 0x800B

	// responses

	StatusA Status = 0x80F2
	StatusE Status = 0x80F3
	StatusC Status = 0x80F4
	StatusF Status = 0x80F5
	StatusH Status = 0x80F6
	StatusJ Status = 0x80F7
	StatusL Status = 0x80F8
	StatusP Status = 0x80F9
	Statusd Status = 0x80FC
	Statush Status = 0x80FD
	Statuso Status = 0x80FE
	Statusu Status = 0x80FF
)

// SDSShortReportPDUIdentifier is the 6 bit identifier of SDS-SHORT-REPORT PDUs
const SDSShortReportPDUIdentifier = 0x1F

// ParseSDSShortReport parses a SDS-SHORT-REPORT PDU from the given pre-coded status value according to [AI] 29.4.2.3
func ParseSDSShortReport(s Status) (SDSShortReport, error) {
	identifier := uint64(s >> 10)
	if identifier != SDSShortReportPDUIdentifier {
		return SDSShortReport{}, fmt.Errorf("SDS-SHORT-REPORT: %w", &pdu.TypeMismatchError{Expected: SDSShortReportPDUIdentifier, Found: identifier})
	}

	return SDSShortReport{
		ReportType:       ShortReportType((s >> 8) & 0x03),
		MessageReference: MessageReference(s),
	}, nil
}

// SDSShortReport represents the SDS-SHORT-REPORT PDU contents as defined in [AI] 29.4.2.3
type SDSShortReport struct {
	ReportType       ShortReportType
	MessageReference MessageReference
}

// Status returns this SDS-SHORT-REPORT as pre-coded status value.
func (r SDSShortReport) Status() Status {
	return Status(SDSShortReportPDUIdentifier)<<10 | Status(r.ReportType&0x03)<<8 | Status(r.MessageReference)
}

// Encode this SDS-SHORT-REPORT PDU
func (r SDSShortReport) Encode(buf *bitbuf.Buffer) {
	r.Status().Encode(buf)
}

func (r SDSShortReport) String() string {
	return fmt.Sprintf("short report %s for message 0x%02X", r.ReportType, byte(r.MessageReference))
}

// ShortReportType enum according to [AI] 29.4.3.10
type ShortReportType byte

// All short report type values accoring to [AI] table 29.22
const (
	ProtocolOrEncodingNotSupportedShort ShortReportType = 0x00
	DestinationMemoryFullShort          ShortReportType = 0x01
	MessageReceivedShort                ShortReportType = 0x02
	MessageConsumedShort                ShortReportType = 0x03
)

func (t ShortReportType) String() string {
	switch t {
	case ProtocolOrEncodingNotSupportedShort:
		return "protocol or encoding not supported"
	case DestinationMemoryFullShort:
		return "destination memory full"
	case MessageReceivedShort:
		return "message received"
	case MessageConsumedShort:
		return "message consumed"
	default:
		return fmt.Sprintf("short report type %d", byte(t))
	}
}
