package cmce

import (
	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/pdu"
	"github.com/ftl/tetra-air/sds"
	"github.com/ftl/tetra-air/tetra"
)

// ShortNumberAddressWidth is the width of a short number address in bits.
const ShortNumberAddressWidth = 8

// AreaSelectionWidth is the width of the area selection element in bits.
const AreaSelectionWidth = 4

// UAlert represents the U-ALERT PDU according to [AI] 14.7.2.1
type UAlert struct {
	CallIdentifier         uint16
	Reserved               bool
	SimplexDuplexSelection bool

	BasicServiceInformation *uint64

	Facility    *pdu.Type3Element
	Proprietary *pdu.Type3Payload
}

func (p *UAlert) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(UAlertType),
		Fixed: []pdu.Field{
			callIdentifier(&p.CallIdentifier),
			pdu.Bit("reserved", &p.Reserved),
			pdu.Bit("simplex_duplex_selection", &p.SimplexDuplexSelection),
		},
		Optional: []pdu.Field{
			pdu.Type2("basic_service_information", 8, &p.BasicServiceInformation),
			pdu.Type3("facility", FacilityID, &p.Facility),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *UAlert) PDUName() string { return UAlertType.String() }

func (p *UAlert) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *UAlert) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// UCallRestore represents the U-CALL RESTORE PDU according to [AI] 14.7.2.2
type UCallRestore struct {
	CallIdentifier            uint16
	RequestToTransmitSendData bool
	OtherPartyTypeIdentifier  PartyType
	OtherPartySNA             *uint64
	OtherPartySSI             *uint64
	OtherPartyExtension       *uint64

	// BasicServiceInformation is coded as type 2 element, but it is mandatory.
	BasicServiceInformation *uint64

	Facility    *pdu.Type3Element
	DMMSAddress *pdu.Type3Element
	Proprietary *pdu.Type3Payload
}

func (p *UCallRestore) schema() pdu.Schema {
	otherParty := func() PartyType { return p.OtherPartyTypeIdentifier }
	fixed := []pdu.Field{
		callIdentifier(&p.CallIdentifier),
		pdu.Bit("request_to_transmit_send_data", &p.RequestToTransmitSendData),
		pdu.Enum("other_party_type_identifier", 2, &p.OtherPartyTypeIdentifier, validPartyType),
		pdu.Conditional("other_party_short_number_address", ShortNumberAddressWidth, &p.OtherPartySNA, func() bool { return otherParty() == ShortNumberAddress }),
	}
	fixed = append(fixed, partyAddress("other_party", otherParty, &p.OtherPartySSI, &p.OtherPartyExtension)...)
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(UCallRestoreType),
		Fixed:     fixed,
		Optional: []pdu.Field{
			pdu.Type2("basic_service_information", 8, &p.BasicServiceInformation),
			pdu.Type3("facility", FacilityID, &p.Facility),
			pdu.Type3("dm_ms_address", DMMSAddressID, &p.DMMSAddress),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

// OtherParty returns the identity of the other party, if it is addressed by SSI or TSI.
func (p *UCallRestore) OtherParty() (tetra.TypedIdentity, bool) {
	return partyIdentity(p.OtherPartyTypeIdentifier, p.OtherPartySSI, p.OtherPartyExtension)
}

func (p *UCallRestore) PDUName() string { return UCallRestoreType.String() }

func (p *UCallRestore) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *UCallRestore) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// UConnect represents the U-CONNECT PDU according to [AI] 14.7.2.3
type UConnect struct {
	CallIdentifier         uint16
	HookMethodSelection    bool
	SimplexDuplexSelection bool

	BasicServiceInformation *uint64

	Facility    *pdu.Type3Element
	Proprietary *pdu.Type3Payload
}

func (p *UConnect) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(UConnectType),
		Fixed: []pdu.Field{
			callIdentifier(&p.CallIdentifier),
			pdu.Bit("hook_method_selection", &p.HookMethodSelection),
			pdu.Bit("simplex_duplex_selection", &p.SimplexDuplexSelection),
		},
		Optional: []pdu.Field{
			pdu.Type2("basic_service_information", 8, &p.BasicServiceInformation),
			pdu.Type3("facility", FacilityID, &p.Facility),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *UConnect) PDUName() string { return UConnectType.String() }

func (p *UConnect) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *UConnect) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// UInfo represents the U-INFO PDU according to [AI] 14.7.2.6
type UInfo struct {
	CallIdentifier uint16
	PollResponse   bool

	Modify *uint64

	DTMF        *pdu.Type3Element
	Facility    *pdu.Type3Element
	Proprietary *pdu.Type3Payload
}

func (p *UInfo) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(UInfoType),
		Fixed: []pdu.Field{
			callIdentifier(&p.CallIdentifier),
			pdu.Bit("poll_response", &p.PollResponse),
		},
		Optional: []pdu.Field{
			pdu.Type2("modify", 9, &p.Modify),
			pdu.Type3("dtmf", DTMFID, &p.DTMF),
			pdu.Type3("facility", FacilityID, &p.Facility),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *UInfo) PDUName() string { return UInfoType.String() }

func (p *UInfo) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *UInfo) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// UStatus represents the U-STATUS PDU according to [AI] 14.7.2.10
type UStatus struct {
	AreaSelection             uint8
	CalledPartyTypeIdentifier PartyType
	CalledPartySNA            *uint64
	CalledPartySSI            *uint64
	CalledPartyExtension      *uint64
	PreCodedStatus            sds.Status

	ExternalSubscriberNumber *pdu.Type3Payload
	DMMSAddress              *pdu.Type3Element
}

func (p *UStatus) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(UStatusType),
		Fixed:     append(calledParty(&p.AreaSelection, &p.CalledPartyTypeIdentifier, &p.CalledPartySNA, &p.CalledPartySSI, &p.CalledPartyExtension), pdu.Type1("pre_coded_status", 16, &p.PreCodedStatus)),
		Optional: []pdu.Field{
			pdu.Type3Span("external_subscriber_number", ExternalSubscriberNumberID, &p.ExternalSubscriberNumber),
			pdu.Type3("dm_ms_address", DMMSAddressID, &p.DMMSAddress),
		},
	}
}

// calledParty returns the area selection and called party fields at the beginning of U-STATUS and U-SDS-DATA.
func calledParty(areaSelection *uint8, partyType *PartyType, sna, ssi, extension **uint64) []pdu.Field {
	current := func() PartyType { return *partyType }
	result := []pdu.Field{
		pdu.Type1("area_selection", AreaSelectionWidth, areaSelection),
		pdu.Enum("called_party_type_identifier", 2, partyType, validPartyType),
		pdu.Conditional("called_party_short_number_address", ShortNumberAddressWidth, sna, func() bool { return current() == ShortNumberAddress }),
	}
	return append(result, partyAddress("called_party", current, ssi, extension)...)
}

// CalledParty returns the identity of the called party, if it is addressed by SSI or TSI.
func (p *UStatus) CalledParty() (tetra.TypedIdentity, bool) {
	return partyIdentity(p.CalledPartyTypeIdentifier, p.CalledPartySSI, p.CalledPartyExtension)
}

func (p *UStatus) PDUName() string { return UStatusType.String() }

func (p *UStatus) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *UStatus) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// UTxCeased represents the U-TX CEASED PDU according to [AI] 14.7.2.11
type UTxCeased struct {
	CallIdentifier uint16

	Facility    *pdu.Type3Element
	DMMSAddress *pdu.Type3Element
	Proprietary *pdu.Type3Payload
}

func (p *UTxCeased) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(UTxCeasedType),
		Fixed: []pdu.Field{
			callIdentifier(&p.CallIdentifier),
		},
		Optional: []pdu.Field{
			pdu.Type3("facility", FacilityID, &p.Facility),
			pdu.Type3("dm_ms_address", DMMSAddressID, &p.DMMSAddress),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *UTxCeased) PDUName() string { return UTxCeasedType.String() }

func (p *UTxCeased) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *UTxCeased) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// UTxDemand represents the U-TX DEMAND PDU according to [AI] 14.7.2.12
type UTxDemand struct {
	CallIdentifier    uint16
	TxDemandPriority  uint8
	EncryptionControl bool
	Reserved          bool

	Facility    *pdu.Type3Element
	DMMSAddress *pdu.Type3Element
	Proprietary *pdu.Type3Payload
}

func (p *UTxDemand) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(UTxDemandType),
		Fixed: []pdu.Field{
			callIdentifier(&p.CallIdentifier),
			pdu.Type1("tx_demand_priority", 2, &p.TxDemandPriority),
			pdu.Bit("encryption_control", &p.EncryptionControl),
			pdu.Bit("reserved", &p.Reserved),
		},
		Optional: []pdu.Field{
			pdu.Type3("facility", FacilityID, &p.Facility),
			pdu.Type3("dm_ms_address", DMMSAddressID, &p.DMMSAddress),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *UTxDemand) PDUName() string { return UTxDemandType.String() }

func (p *UTxDemand) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *UTxDemand) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}
