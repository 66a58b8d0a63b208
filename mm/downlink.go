package mm

import (
	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/pdu"
)

// DLocationUpdateAccept represents the D-LOCATION UPDATE ACCEPT PDU according to [AI] 16.9.2.7
type DLocationUpdateAccept struct {
	AcceptType LocationUpdateType

	SSI                                       *uint64
	AddressExtension                          *uint64
	SubscriberClass                           *uint64
	EnergySavingInformation                   *uint64
	SCCHInformationAndDistributionOn18thFrame *uint64

	NewRegisteredArea                       *pdu.Type4Element
	SecurityDownlink                        *pdu.Type3Element
	GroupIdentityLocationAccept             *pdu.Type3Element
	DefaultGroupAttachmentLifetime          *pdu.Type3Element
	AuthenticationDownlink                  *pdu.Type3Element
	GroupIdentitySecurityRelatedInformation *pdu.Type4Element
	CellTypeControl                         *pdu.Type3Element
	Proprietary                             *pdu.Type3Payload
}

func (p *DLocationUpdateAccept) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(DLocationUpdateAcceptType),
		Fixed: []pdu.Field{
			pdu.Type1("location_update_accept_type", 3, &p.AcceptType),
		},
		Optional: []pdu.Field{
			pdu.Type2("ssi", 24, &p.SSI),
			pdu.Type2("address_extension", 24, &p.AddressExtension),
			pdu.Type2("subscriber_class", 16, &p.SubscriberClass),
			pdu.Type2("energy_saving_information", 14, &p.EnergySavingInformation),
			pdu.Type2("scch_information_and_distribution_on_18th_frame", 6, &p.SCCHInformationAndDistributionOn18thFrame),
			pdu.Type4("new_registered_area", NewRegisteredAreaID, &p.NewRegisteredArea),
			pdu.Type3("security_downlink", SecurityDownlinkID, &p.SecurityDownlink),
			pdu.Type3("group_identity_location_accept", GroupIdentityLocationAcceptID, &p.GroupIdentityLocationAccept),
			pdu.Type3("default_group_attachment_lifetime", DefaultGroupAttachmentLifetimeID, &p.DefaultGroupAttachmentLifetime),
			pdu.Type3("authentication_downlink", AuthenticationDownlinkID, &p.AuthenticationDownlink),
			pdu.Type4("group_identity_security_related_information", GroupIdentitySecurityRelatedInformationID, &p.GroupIdentitySecurityRelatedInformation),
			pdu.Type3("cell_type_control", CellTypeControlID, &p.CellTypeControl),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *DLocationUpdateAccept) PDUName() string { return DLocationUpdateAcceptType.String() }

func (p *DLocationUpdateAccept) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *DLocationUpdateAccept) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// DLocationUpdateReject represents the D-LOCATION UPDATE REJECT PDU according to [AI] 16.9.2.9
type DLocationUpdateReject struct {
	LocationUpdateType  LocationUpdateType
	RejectCause         uint8
	CipherControl       bool
	CipheringParameters *uint64

	AddressExtension *uint64

	CellTypeControl *pdu.Type3Element
	Proprietary     *pdu.Type3Payload
}

func (p *DLocationUpdateReject) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(DLocationUpdateRejectType),
		Fixed: []pdu.Field{
			pdu.Type1("location_update_type", 3, &p.LocationUpdateType),
			pdu.Type1("reject_cause", 5, &p.RejectCause),
			pdu.Bit("cipher_control", &p.CipherControl),
			pdu.Conditional("ciphering_parameters", 10, &p.CipheringParameters, func() bool { return p.CipherControl }),
		},
		Optional: []pdu.Field{
			pdu.Type2("address_extension", 24, &p.AddressExtension),
			pdu.Type3("cell_type_control", CellTypeControlID, &p.CellTypeControl),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *DLocationUpdateReject) PDUName() string { return DLocationUpdateRejectType.String() }

func (p *DLocationUpdateReject) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *DLocationUpdateReject) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// DLocationUpdateProceeding represents the D-LOCATION UPDATE PROCEEDING PDU according to [AI] 16.9.2.8
type DLocationUpdateProceeding struct {
	SSI              uint32
	AddressExtension uint32

	Proprietary *pdu.Type3Payload
}

func (p *DLocationUpdateProceeding) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(DLocationUpdateProceedingType),
		Fixed: []pdu.Field{
			pdu.Type1("ssi", 24, &p.SSI),
			pdu.Type1("address_extension", 24, &p.AddressExtension),
		},
		Optional: []pdu.Field{
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *DLocationUpdateProceeding) PDUName() string { return DLocationUpdateProceedingType.String() }

func (p *DLocationUpdateProceeding) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *DLocationUpdateProceeding) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// DAttachDetachGroupIdentity represents the D-ATTACH/DETACH GROUP IDENTITY PDU according to [AI] 16.9.2.1
type DAttachDetachGroupIdentity struct {
	GroupIdentityReport                 bool
	GroupIdentityAcknowledgementRequest bool
	GroupIdentityAttachDetachMode       bool

	GroupReportResponse                     *pdu.Type3Element
	GroupIdentityDownlink                   []GroupIdentityDownlink
	GroupIdentitySecurityRelatedInformation *pdu.Type4Element
	Proprietary                             *pdu.Type3Payload
}

func (p *DAttachDetachGroupIdentity) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(DAttachDetachGroupIdentityType),
		Fixed: []pdu.Field{
			pdu.Bit("group_identity_report", &p.GroupIdentityReport),
			pdu.Bit("group_identity_acknowledgement_request", &p.GroupIdentityAcknowledgementRequest),
			pdu.Bit("group_identity_attach_detach_mode", &p.GroupIdentityAttachDetachMode),
		},
		Optional: []pdu.Field{
			pdu.Type3("group_report_response", GroupReportResponseID, &p.GroupReportResponse),
			pdu.Type4List("group_identity_downlink", GroupIdentityDownlinkID, &p.GroupIdentityDownlink),
			pdu.Type4("group_identity_security_related_information", GroupIdentitySecurityRelatedInformationID, &p.GroupIdentitySecurityRelatedInformation),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *DAttachDetachGroupIdentity) PDUName() string { return DAttachDetachGroupIdentityType.String() }

func (p *DAttachDetachGroupIdentity) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *DAttachDetachGroupIdentity) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// DAttachDetachGroupIdentityAck represents the D-ATTACH/DETACH GROUP IDENTITY ACKNOWLEDGEMENT PDU according to [AI] 16.9.2.2
type DAttachDetachGroupIdentityAck struct {
	// Reject is the group identity accept/reject element, false means accept.
	Reject   bool
	Reserved bool

	Proprietary                             *pdu.Type3Payload
	GroupIdentityDownlink                   []GroupIdentityDownlink
	GroupIdentitySecurityRelatedInformation *pdu.Type4Element
}

func (p *DAttachDetachGroupIdentityAck) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(DAttachDetachGroupIdentityAckType),
		Fixed: []pdu.Field{
			pdu.Bit("group_identity_accept_reject", &p.Reject),
			pdu.Bit("reserved", &p.Reserved),
		},
		Optional: []pdu.Field{
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
			pdu.Type4List("group_identity_downlink", GroupIdentityDownlinkID, &p.GroupIdentityDownlink),
			pdu.Type4("group_identity_security_related_information", GroupIdentitySecurityRelatedInformationID, &p.GroupIdentitySecurityRelatedInformation),
		},
	}
}

func (p *DAttachDetachGroupIdentityAck) PDUName() string {
	return DAttachDetachGroupIdentityAckType.String()
}

func (p *DAttachDetachGroupIdentityAck) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *DAttachDetachGroupIdentityAck) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}
