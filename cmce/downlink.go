package cmce

import (
	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/pdu"
	"github.com/ftl/tetra-air/sds"
	"github.com/ftl/tetra-air/tetra"
)

func callIdentifier(v *uint16) pdu.Field {
	return pdu.Type1("call_identifier", CallIdentifierWidth, v)
}

// DAlert represents the D-ALERT PDU according to [AI] 14.7.1.1
type DAlert struct {
	CallIdentifier         uint16
	CallTimeOutSetUpPhase  uint8
	Reserved               bool
	SimplexDuplexSelection bool
	CallQueued             bool

	BasicServiceInformation *uint64
	NotificationIndicator   *uint64

	Facility    *pdu.Type3Element
	Proprietary *pdu.Type3Payload
}

func (p *DAlert) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(DAlertType),
		Fixed: []pdu.Field{
			callIdentifier(&p.CallIdentifier),
			pdu.Type1("call_time_out_set_up_phase", 3, &p.CallTimeOutSetUpPhase),
			pdu.Bit("reserved", &p.Reserved),
			pdu.Bit("simplex_duplex_selection", &p.SimplexDuplexSelection),
			pdu.Bit("call_queued", &p.CallQueued),
		},
		Optional: []pdu.Field{
			pdu.Type2("basic_service_information", 8, &p.BasicServiceInformation),
			pdu.Type2("notification_indicator", 6, &p.NotificationIndicator),
			pdu.Type3("facility", FacilityID, &p.Facility),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *DAlert) PDUName() string { return DAlertType.String() }

func (p *DAlert) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *DAlert) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// DCallRestore represents the D-CALL RESTORE PDU according to [AI] 14.7.1.3
type DCallRestore struct {
	CallIdentifier                uint16
	TransmissionGrant             uint8
	TransmissionRequestPermission bool
	ResetCallTimeOutTimer         bool

	NewCallIdentifier     *uint64
	CallTimeOut           *uint64
	CallStatus            *uint64
	Modify                *uint64
	NotificationIndicator *uint64

	Facility         *pdu.Type3Element
	TemporaryAddress *pdu.Type3Element
	DMMSAddress      *pdu.Type3Element
	Proprietary      *pdu.Type3Payload
}

func (p *DCallRestore) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(DCallRestoreType),
		Fixed: []pdu.Field{
			callIdentifier(&p.CallIdentifier),
			pdu.Type1("transmission_grant", 2, &p.TransmissionGrant),
			pdu.Bit("transmission_request_permission", &p.TransmissionRequestPermission),
			pdu.Bit("reset_call_time_out_timer", &p.ResetCallTimeOutTimer),
		},
		Optional: []pdu.Field{
			pdu.Type2("new_call_identifier", CallIdentifierWidth, &p.NewCallIdentifier),
			pdu.Type2("call_time_out", 4, &p.CallTimeOut),
			pdu.Type2("call_status", 3, &p.CallStatus),
			pdu.Type2("modify", 9, &p.Modify),
			pdu.Type2("notification_indicator", 6, &p.NotificationIndicator),
			pdu.Type3("facility", FacilityID, &p.Facility),
			pdu.Type3("temporary_address", TemporaryAddressID, &p.TemporaryAddress),
			pdu.Type3("dm_ms_address", DMMSAddressID, &p.DMMSAddress),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *DCallRestore) PDUName() string { return DCallRestoreType.String() }

func (p *DCallRestore) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *DCallRestore) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// DConnect represents the D-CONNECT PDU according to [AI] 14.7.1.4
type DConnect struct {
	CallIdentifier                uint16
	CallTimeOut                   uint8
	HookMethodSelection           bool
	SimplexDuplexSelection        bool
	TransmissionGrant             uint8
	TransmissionRequestPermission bool
	CallOwnership                 bool

	CallPriority            *uint64
	BasicServiceInformation *uint64
	TemporaryAddress        *uint64
	NotificationIndicator   *uint64

	Facility    *pdu.Type3Element
	Proprietary *pdu.Type3Payload
}

func (p *DConnect) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(DConnectType),
		Fixed: []pdu.Field{
			callIdentifier(&p.CallIdentifier),
			pdu.Type1("call_time_out", 4, &p.CallTimeOut),
			pdu.Bit("hook_method_selection", &p.HookMethodSelection),
			pdu.Bit("simplex_duplex_selection", &p.SimplexDuplexSelection),
			pdu.Type1("transmission_grant", 2, &p.TransmissionGrant),
			pdu.Bit("transmission_request_permission", &p.TransmissionRequestPermission),
			pdu.Bit("call_ownership", &p.CallOwnership),
		},
		Optional: []pdu.Field{
			pdu.Type2("call_priority", 4, &p.CallPriority),
			pdu.Type2("basic_service_information", 8, &p.BasicServiceInformation),
			pdu.Type2("temporary_address", tetra.SSIWidth, &p.TemporaryAddress),
			pdu.Type2("notification_indicator", 6, &p.NotificationIndicator),
			pdu.Type3("facility", FacilityID, &p.Facility),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *DConnect) PDUName() string { return DConnectType.String() }

func (p *DConnect) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *DConnect) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// DConnectAck represents the D-CONNECT ACKNOWLEDGE PDU according to [AI] 14.7.1.5
type DConnectAck struct {
	CallIdentifier                uint16
	CallTimeOut                   uint8
	TransmissionGrant             uint8
	TransmissionRequestPermission bool

	NotificationIndicator *uint64

	Facility    *pdu.Type3Element
	Proprietary *pdu.Type3Payload
}

func (p *DConnectAck) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(DConnectAckType),
		Fixed: []pdu.Field{
			callIdentifier(&p.CallIdentifier),
			pdu.Type1("call_time_out", 4, &p.CallTimeOut),
			pdu.Type1("transmission_grant", 2, &p.TransmissionGrant),
			pdu.Bit("transmission_request_permission", &p.TransmissionRequestPermission),
		},
		Optional: []pdu.Field{
			pdu.Type2("notification_indicator", 6, &p.NotificationIndicator),
			pdu.Type3("facility", FacilityID, &p.Facility),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *DConnectAck) PDUName() string { return DConnectAckType.String() }

func (p *DConnectAck) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *DConnectAck) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// DInfo represents the D-INFO PDU according to [AI] 14.7.1.8
type DInfo struct {
	// CallIdentifier is the dummy call identifier if the PDU is sent connectionless.
	CallIdentifier        uint16
	ResetCallTimeOutTimer bool
	// PollRequest is only valid for acknowledged group calls.
	PollRequest bool

	NewCallIdentifier      *uint64
	CallTimeOut            *uint64
	CallTimeOutSetUpPhase  *uint64
	CallOwnership          *uint64
	Modify                 *uint64
	CallStatus             *uint64
	TemporaryAddress       *uint64
	NotificationIndicator  *uint64
	PollResponsePercentage *uint64
	PollResponseNumber     *uint64

	DTMF                  *pdu.Type3Element
	Facility              *pdu.Type3Element
	PollResponseAddresses *pdu.Type3Element
	Proprietary           *pdu.Type3Payload
}

func (p *DInfo) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(DInfoType),
		Fixed: []pdu.Field{
			callIdentifier(&p.CallIdentifier),
			pdu.Bit("reset_call_time_out_timer", &p.ResetCallTimeOutTimer),
			pdu.Bit("poll_request", &p.PollRequest),
		},
		Optional: []pdu.Field{
			pdu.Type2("new_call_identifier", CallIdentifierWidth, &p.NewCallIdentifier),
			pdu.Type2("call_time_out", 4, &p.CallTimeOut),
			pdu.Type2("call_time_out_set_up_phase", 3, &p.CallTimeOutSetUpPhase),
			pdu.Type2("call_ownership", 1, &p.CallOwnership),
			pdu.Type2("modify", 9, &p.Modify),
			pdu.Type2("call_status", 3, &p.CallStatus),
			pdu.Type2("temporary_address", tetra.SSIWidth, &p.TemporaryAddress),
			pdu.Type2("notification_indicator", 6, &p.NotificationIndicator),
			pdu.Type2("poll_response_percentage", 6, &p.PollResponsePercentage),
			pdu.Type2("poll_response_number", 6, &p.PollResponseNumber),
			pdu.Type3("dtmf", DTMFID, &p.DTMF),
			pdu.Type3("facility", FacilityID, &p.Facility),
			pdu.Type3("poll_response_addresses", PollResponseAddressesID, &p.PollResponseAddresses),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *DInfo) PDUName() string { return DInfoType.String() }

func (p *DInfo) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *DInfo) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// DRelease represents the D-RELEASE PDU according to [AI] 14.7.1.9
type DRelease struct {
	CallIdentifier  uint16
	DisconnectCause uint8

	NotificationIndicator *uint64

	Facility    *pdu.Type3Element
	Proprietary *pdu.Type3Payload
}

func (p *DRelease) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(DReleaseType),
		Fixed: []pdu.Field{
			callIdentifier(&p.CallIdentifier),
			pdu.Type1("disconnect_cause", 5, &p.DisconnectCause),
		},
		Optional: []pdu.Field{
			pdu.Type2("notification_indicator", 6, &p.NotificationIndicator),
			pdu.Type3("facility", FacilityID, &p.Facility),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *DRelease) PDUName() string { return DReleaseType.String() }

func (p *DRelease) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *DRelease) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// DSetup represents the D-SETUP PDU according to [AI] 14.7.1.12
type DSetup struct {
	CallIdentifier                uint16
	CallTimeOut                   uint8
	HookMethodSelection           bool
	SimplexDuplexSelection        bool
	BasicServiceInformation       uint8
	TransmissionGrant             uint8
	TransmissionRequestPermission bool
	CallPriority                  uint8

	NotificationIndicator      *uint64
	TemporaryAddress           *uint64
	CallingPartyTypeIdentifier *uint64
	CallingPartySSI            *uint64
	CallingPartyExtension      *uint64

	ExternalSubscriberNumber *pdu.Type3Payload
	Facility                 *pdu.Type3Element
	DMMSAddress              *pdu.Type3Element
	Proprietary              *pdu.Type3Payload
}

func (p *DSetup) schema() pdu.Schema {
	optional := []pdu.Field{
		pdu.Type2("notification_indicator", 6, &p.NotificationIndicator),
		pdu.Type2("temporary_address", tetra.SSIWidth, &p.TemporaryAddress),
		pdu.Type2("calling_party_type_identifier", 2, &p.CallingPartyTypeIdentifier),
	}
	optional = append(optional, partyAddress("calling_party", p.callingPartyType, &p.CallingPartySSI, &p.CallingPartyExtension)...)
	optional = append(optional,
		pdu.Type3Span("external_subscriber_number", ExternalSubscriberNumberID, &p.ExternalSubscriberNumber),
		pdu.Type3("facility", FacilityID, &p.Facility),
		pdu.Type3("dm_ms_address", DMMSAddressID, &p.DMMSAddress),
		pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
	)
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(DSetupType),
		Fixed: []pdu.Field{
			callIdentifier(&p.CallIdentifier),
			pdu.Type1("call_time_out", 4, &p.CallTimeOut),
			pdu.Bit("hook_method_selection", &p.HookMethodSelection),
			pdu.Bit("simplex_duplex_selection", &p.SimplexDuplexSelection),
			pdu.Type1("basic_service_information", 8, &p.BasicServiceInformation),
			pdu.Type1("transmission_grant", 2, &p.TransmissionGrant),
			pdu.Bit("transmission_request_permission", &p.TransmissionRequestPermission),
			pdu.Type1("call_priority", 4, &p.CallPriority),
		},
		Optional: optional,
	}
}

func (p *DSetup) callingPartyType() PartyType {
	return optionalPartyType(p.CallingPartyTypeIdentifier)
}

// CallingParty returns the identity of the calling party, if it is contained in the PDU.
func (p *DSetup) CallingParty() (tetra.TypedIdentity, bool) {
	return partyIdentity(p.callingPartyType(), p.CallingPartySSI, p.CallingPartyExtension)
}

func (p *DSetup) PDUName() string { return DSetupType.String() }

func (p *DSetup) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *DSetup) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// DStatus represents the D-STATUS PDU according to [AI] 14.7.1.11
type DStatus struct {
	CallingPartyTypeIdentifier PartyType
	CallingPartySSI            *uint64
	CallingPartyExtension      *uint64
	PreCodedStatus             sds.Status

	ExternalSubscriberNumber *pdu.Type3Payload
	DMMSAddress              *pdu.Type3Element
}

func (p *DStatus) schema() pdu.Schema {
	fixed := []pdu.Field{
		pdu.Enum("calling_party_type_identifier", 2, &p.CallingPartyTypeIdentifier, validPartyType),
	}
	fixed = append(fixed, partyAddress("calling_party", func() PartyType { return p.CallingPartyTypeIdentifier }, &p.CallingPartySSI, &p.CallingPartyExtension)...)
	fixed = append(fixed, pdu.Type1("pre_coded_status", 16, &p.PreCodedStatus))
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(DStatusType),
		Fixed:     fixed,
		Optional: []pdu.Field{
			pdu.Type3Span("external_subscriber_number", ExternalSubscriberNumberID, &p.ExternalSubscriberNumber),
			pdu.Type3("dm_ms_address", DMMSAddressID, &p.DMMSAddress),
		},
	}
}

// CallingParty returns the identity of the calling party, if it is contained in the PDU.
func (p *DStatus) CallingParty() (tetra.TypedIdentity, bool) {
	return partyIdentity(p.CallingPartyTypeIdentifier, p.CallingPartySSI, p.CallingPartyExtension)
}

func (p *DStatus) PDUName() string { return DStatusType.String() }

func (p *DStatus) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *DStatus) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// DTxGranted represents the D-TX GRANTED PDU according to [AI] 14.7.1.15
type DTxGranted struct {
	CallIdentifier                uint16
	TransmissionGrant             uint8
	TransmissionRequestPermission bool
	EncryptionControl             bool
	Reserved                      bool

	NotificationIndicator           *uint64
	TransmittingPartyTypeIdentifier *uint64
	TransmittingPartySSI            *uint64
	TransmittingPartyExtension      *uint64

	ExternalSubscriberNumber *pdu.Type3Payload
	Facility                 *pdu.Type3Element
	DMMSAddress              *pdu.Type3Element
	Proprietary              *pdu.Type3Payload
}

func (p *DTxGranted) schema() pdu.Schema {
	optional := []pdu.Field{
		pdu.Type2("notification_indicator", 6, &p.NotificationIndicator),
		pdu.Type2("transmitting_party_type_identifier", 2, &p.TransmittingPartyTypeIdentifier),
	}
	optional = append(optional, partyAddress("transmitting_party", p.transmittingPartyType, &p.TransmittingPartySSI, &p.TransmittingPartyExtension)...)
	optional = append(optional,
		pdu.Type3Span("external_subscriber_number", ExternalSubscriberNumberID, &p.ExternalSubscriberNumber),
		pdu.Type3("facility", FacilityID, &p.Facility),
		pdu.Type3("dm_ms_address", DMMSAddressID, &p.DMMSAddress),
		pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
	)
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(DTxGrantedType),
		Fixed: []pdu.Field{
			callIdentifier(&p.CallIdentifier),
			pdu.Type1("transmission_grant", 2, &p.TransmissionGrant),
			pdu.Bit("transmission_request_permission", &p.TransmissionRequestPermission),
			pdu.Bit("encryption_control", &p.EncryptionControl),
			pdu.Bit("reserved", &p.Reserved),
		},
		Optional: optional,
	}
}

func (p *DTxGranted) transmittingPartyType() PartyType {
	return optionalPartyType(p.TransmittingPartyTypeIdentifier)
}

// TransmittingParty returns the identity of the transmitting party, if it is contained in the PDU.
func (p *DTxGranted) TransmittingParty() (tetra.TypedIdentity, bool) {
	return partyIdentity(p.transmittingPartyType(), p.TransmittingPartySSI, p.TransmittingPartyExtension)
}

func (p *DTxGranted) PDUName() string { return DTxGrantedType.String() }

func (p *DTxGranted) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *DTxGranted) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}

// DTxWait represents the D-TX WAIT PDU according to [AI] 14.7.1.17
type DTxWait struct {
	CallIdentifier                uint16
	TransmissionRequestPermission bool

	NotificationIndicator *uint64

	Facility    *pdu.Type3Element
	DMMSAddress *pdu.Type3Element
	Proprietary *pdu.Type3Payload
}

func (p *DTxWait) schema() pdu.Schema {
	return pdu.Schema{
		Name:      p.PDUName(),
		TypeWidth: PDUTypeWidth,
		Type:      uint64(DTxWaitType),
		Fixed: []pdu.Field{
			callIdentifier(&p.CallIdentifier),
			pdu.Bit("transmission_request_permission", &p.TransmissionRequestPermission),
		},
		Optional: []pdu.Field{
			pdu.Type2("notification_indicator", 6, &p.NotificationIndicator),
			pdu.Type3("facility", FacilityID, &p.Facility),
			pdu.Type3("dm_ms_address", DMMSAddressID, &p.DMMSAddress),
			pdu.Type3Span("proprietary", ProprietaryID, &p.Proprietary),
		},
	}
}

func (p *DTxWait) PDUName() string { return DTxWaitType.String() }

func (p *DTxWait) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, p.schema())
}

func (p *DTxWait) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, p.schema())
}
