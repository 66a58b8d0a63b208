package mm

import (
	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/pdu"
)

// UITSIDetach represents the U-ITSI DETACH PDU according to [AI] 16.9.3.3
type UITSIDetach struct {
	AddressExtension *uint64

	Proprietary *pdu.Type3Payload
}

func (p *UITSIDetach) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(UITSIDetachType),
		Optional: []pdu.Field{
			pdu.Type2("address_extension", 24, &p.AddressExtension),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *UITSIDetach) PDUName() string { return UITSIDetachType.String() }

func (p *UITSIDetach) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *UITSIDetach) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// LAInformationWidth is the width of the LA information element: a 14 bit location area and its zero bit.
const LAInformationWidth = 14

// ULocationUpdateDemand represents the U-LOCATION UPDATE DEMAND PDU according to [AI] 16.9.3.4
type ULocationUpdateDemand struct {
	LocationUpdateType  LocationUpdateType
	RequestToAppendLA   bool
	CipherControl       bool
	CipheringParameters *uint64

	ClassOfMS        *uint64
	EnergySavingMode *uint64
	LAInformation    *uint64
	SSI              *uint64
	AddressExtension *uint64

	GroupIdentityLocationDemand *pdu.Type3Element
	GroupReportResponse         *pdu.Type3Element
	AuthenticationUplink        *pdu.Type3Element
	ExtendedCapabilities        *pdu.Type3Element
	Proprietary                 *pdu.Type3Payload
}

func (p *ULocationUpdateDemand) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(ULocationUpdateDemandType),
		Fixed: []pdu.Field{
			pdu.Type1("location_update_type", 3, &p.LocationUpdateType),
			pdu.Bit("request_to_append_la", &p.RequestToAppendLA),
			pdu.Bit("cipher_control", &p.CipherControl),
			pdu.Conditional("ciphering_parameters", 10, &p.CipheringParameters, func() bool { return p.CipherControl }),
		},
		Optional: []pdu.Field{
			pdu.Type2("class_of_ms", 24, &p.ClassOfMS),
			pdu.Type2("energy_saving_mode", 3, &p.EnergySavingMode),
			pdu.Type2("la_information", LAInformationWidth, &p.LAInformation),
			pdu.Type2("ssi", 24, &p.SSI),
			pdu.Type2("address_extension", 24, &p.AddressExtension),
			pdu.Type3("group_identity_location_demand", GroupIdentityLocationDemandID, &p.GroupIdentityLocationDemand),
			pdu.Type3("group_report_response", GroupReportResponseID, &p.GroupReportResponse),
			pdu.Type3("authentication_uplink", AuthenticationUplinkID, &p.AuthenticationUplink),
			pdu.Type3("extended_capabilities", ExtendedCapabilitiesID, &p.ExtendedCapabilities),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *ULocationUpdateDemand) PDUName() string { return ULocationUpdateDemandType.String() }

func (p *ULocationUpdateDemand) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *ULocationUpdateDemand) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// UAttachDetachGroupIdentity represents the U-ATTACH/DETACH GROUP IDENTITY PDU according to [AI] 16.9.3.1
type UAttachDetachGroupIdentity struct {
	GroupIdentityReport           bool
	GroupIdentityAttachDetachMode bool

	GroupReportResponse *pdu.Type3Element
	GroupIdentityUplink []GroupIdentityUplink
	Proprietary         *pdu.Type3Payload
}

func (p *UAttachDetachGroupIdentity) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(UAttachDetachGroupIdentityType),
		Fixed: []pdu.Field{
			pdu.Bit("group_identity_report", &p.GroupIdentityReport),
			pdu.Bit("group_identity_attach_detach_mode", &p.GroupIdentityAttachDetachMode),
		},
		Optional: []pdu.Field{
			pdu.Type3("group_report_response", GroupReportResponseID, &p.GroupReportResponse),
			pdu.Type4List("group_identity_uplink", GroupIdentityUplinkID, &p.GroupIdentityUplink),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *UAttachDetachGroupIdentity) PDUName() string { return UAttachDetachGroupIdentityType.String() }

func (p *UAttachDetachGroupIdentity) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *UAttachDetachGroupIdentity) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// UAttachDetachGroupIdentityAck represents the U-ATTACH/DETACH GROUP IDENTITY ACKNOWLEDGEMENT PDU according to [AI] 16.9.3.2
type UAttachDetachGroupIdentityAck struct {
	// Reject is the group identity acknowledgement type, false means accept.
	Reject bool

	GroupIdentityUplink []GroupIdentityUplink
	Proprietary         *pdu.Type3Payload
}

func (p *UAttachDetachGroupIdentityAck) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(UAttachDetachGroupIdentityAckType),
		Fixed: []pdu.Field{
			pdu.Bit("group_identity_acknowledgement_type", &p.Reject),
		},
		Optional: []pdu.Field{
			pdu.Type4List("group_identity_uplink", GroupIdentityUplinkID, &p.GroupIdentityUplink),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *UAttachDetachGroupIdentityAck) PDUName() string {
	return UAttachDetachGroupIdentityAckType.String()
}

func (p *UAttachDetachGroupIdentityAck) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *UAttachDetachGroupIdentityAck) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}
