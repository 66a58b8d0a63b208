package cmce

import (
	"fmt"

	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/pdu"
	"github.com/ftl/tetra-air/sds"
	"github.com/ftl/tetra-air/tetra"
)

// ShortDataType is the short data type identifier according to [AI] 14.8.38
type ShortDataType uint8

// All short data types
const (
	UserDefinedData1 ShortDataType = iota // 16 bits
	UserDefinedData2                      // 32 bits
	UserDefinedData3                      // 64 bits
	UserDefinedData4                      // up to 2047 bits with length indicator
)

// UserDataLengthWidth is the width of the length indicator of user defined data-4.
const UserDataLengthWidth = 11

var userDataWidths = map[ShortDataType]int{
	UserDefinedData1: 16,
	UserDefinedData2: 32,
	UserDefinedData3: 64,
}

// UserData holds the user defined data of D-SDS-DATA and U-SDS-DATA. The data types 1 to 3 are kept
// in Value, user defined data-4 is kept in Payload.
type UserData struct {
	Type    ShortDataType
	Value   *uint64
	Payload bitbuf.Span
}

func (d *UserData) fields() []pdu.Field {
	result := []pdu.Field{
		pdu.Type1("short_data_type_identifier", 2, &d.Type),
	}
	for _, t := range []ShortDataType{UserDefinedData1, UserDefinedData2, UserDefinedData3} {
		name := fmt.Sprintf("user_defined_data_%d", t+1)
		result = append(result, pdu.Conditional(name, userDataWidths[t], &d.Value, d.is(t)))
	}
	return append(result, pdu.Span("user_defined_data_4", UserDataLengthWidth, &d.Payload).If(d.is(UserDefinedData4)))
}

func (d *UserData) is(t ShortDataType) func() bool {
	return func() bool { return d.Type == t }
}

// SDSPayload decodes the SDS-TL PDU carried in user defined data-4.
func (d UserData) SDSPayload() (any, error) {
	if d.Type != UserDefinedData4 {
		return nil, fmt.Errorf("user defined data-4: %w", pdu.ErrFieldNotPresent)
	}
	return sds.ParseSDSTLPDU(d.Payload.Buffer())
}

// DSDSData represents the D-SDS-DATA PDU according to [AI] 14.7.1.10
type DSDSData struct {
	CallingPartyTypeIdentifier PartyType
	CallingPartySSI            *uint64
	CallingPartyExtension      *uint64
	UserData                   UserData

	ExternalSubscriberNumber *pdu.Type3Payload
	DMMSAddress              *pdu.Type3Element
}

func (p *DSDSData) schema() pdu.Schema {
	fixed := []pdu.Field{
		pdu.Enum("calling_party_type_identifier", 2, &p.CallingPartyTypeIdentifier, validPartyType),
	}
	fixed = append(fixed, partyAddress("calling_party", func() PartyType { return p.CallingPartyTypeIdentifier }, &p.CallingPartySSI, &p.CallingPartyExtension)...)
	fixed = append(fixed, p.UserData.fields()...)
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(DSDSDataType),
		Fixed:     fixed,
		Optional: []pdu.Field{
			pdu.Type3Span("external_subscriber_number", ExternalSubscriberNumberID, &p.ExternalSubscriberNumber),
			pdu.Type3("dm_ms_address", DMMSAddressID, &p.DMMSAddress),
		},
	}
}

// CallingParty returns the identity of the calling party, if it is contained in the PDU.
func (p *DSDSData) CallingParty() (tetra.TypedIdentity, bool) {
	return partyIdentity(p.CallingPartyTypeIdentifier, p.CallingPartySSI, p.CallingPartyExtension)
}

// SDSPayload decodes the SDS-TL PDU carried in this D-SDS-DATA.
func (p *DSDSData) SDSPayload() (any, error) {
	return p.UserData.SDSPayload()
}

func (p *DSDSData) PDUName() string { return DSDSDataType.String() }

func (p *DSDSData) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *DSDSData) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// USDSData represents the U-SDS-DATA PDU according to [AI] 14.7.2.8
type USDSData struct {
	AreaSelection             uint8
	CalledPartyTypeIdentifier PartyType
	CalledPartySNA            *uint64
	CalledPartySSI            *uint64
	CalledPartyExtension      *uint64
	UserData                  UserData

	ExternalSubscriberNumber *pdu.Type3Payload
	DMMSAddress              *pdu.Type3Element
}

func (p *USDSData) schema() pdu.Schema {
	fixed := calledParty(&p.AreaSelection, &p.CalledPartyTypeIdentifier, &p.CalledPartySNA, &p.CalledPartySSI, &p.CalledPartyExtension)
	fixed = append(fixed, p.UserData.fields()...)
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(USDSDataType),
		Fixed:     fixed,
		Optional: []pdu.Field{
			pdu.Type3Span("external_subscriber_number", ExternalSubscriberNumberID, &p.ExternalSubscriberNumber),
			pdu.Type3("dm_ms_address", DMMSAddressID, &p.DMMSAddress),
		},
	}
}

// CalledParty returns the identity of the called party, if it is addressed by SSI or TSI.
func (p *USDSData) CalledParty() (tetra.TypedIdentity, bool) {
	return partyIdentity(p.CalledPartyTypeIdentifier, p.CalledPartySSI, p.CalledPartyExtension)
}

// SDSPayload decodes the SDS-TL PDU carried in this U-SDS-DATA.
func (p *USDSData) SDSPayload() (any, error) {
	return p.UserData.SDSPayload()
}

func (p *USDSData) PDUName() string { return USDSDataType.String() }

func (p *USDSData) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *USDSData) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}
