/*
The package mm implements the PDUs of the mobility management protocol between the SwMI and the MS
according to [AI] 16. This implementation is based on:
  [AI]  ETSI TS 100 392-2 V3.9.2 (2020-06)

The most relevant chapters in [AI] are 16.9 (MM PDU description) and 16.10 (MM information elements).
*/
package mm

import (
	"fmt"

	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/pdu"
)

// PDUTypeWidth is the width of the MM PDU type in bits.
const PDUTypeWidth = 4

// DownlinkType enum according to [AI] 16.10.39
type DownlinkType byte

// All downlink PDU types according to [AI] table 16.70
const (
	DOTARType                         DownlinkType = 0
	DAuthenticationType               DownlinkType = 1
	DCKChangeDemandType               DownlinkType = 2
	DDisableType                      DownlinkType = 3
	DEnableType                       DownlinkType = 4
	DLocationUpdateAcceptType         DownlinkType = 5
	DLocationUpdateCommandType        DownlinkType = 6
	DLocationUpdateRejectType         DownlinkType = 7
	DLocationUpdateProceedingType     DownlinkType = 9
	DAttachDetachGroupIdentityType    DownlinkType = 10
	DAttachDetachGroupIdentityAckType DownlinkType = 11
	DMMStatusType                     DownlinkType = 12
	DMMFunctionNotSupportedType       DownlinkType = 15
)

var downlinkTypeNames = map[DownlinkType]string{
	DOTARType:                         "D-OTAR",
	DAuthenticationType:               "D-AUTHENTICATION",
	DCKChangeDemandType:               "D-CK CHANGE DEMAND",
	DDisableType:                      "D-DISABLE",
	DEnableType:                       "D-ENABLE",
	DLocationUpdateAcceptType:         "D-LOCATION UPDATE ACCEPT",
	DLocationUpdateCommandType:        "D-LOCATION UPDATE COMMAND",
	DLocationUpdateRejectType:         "D-LOCATION UPDATE REJECT",
	DLocationUpdateProceedingType:     "D-LOCATION UPDATE PROCEEDING",
	DAttachDetachGroupIdentityType:    "D-ATTACH/DETACH GROUP IDENTITY",
	DAttachDetachGroupIdentityAckType: "D-ATTACH/DETACH GROUP IDENTITY ACKNOWLEDGEMENT",
	DMMStatusType:                     "D-MM STATUS",
	DMMFunctionNotSupportedType:       "MM PDU/FUNCTION NOT SUPPORTED",
}

func (t DownlinkType) String() string {
	if name, ok := downlinkTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MM downlink type %d", byte(t))
}

// UplinkType enum according to [AI] 16.10.40
type UplinkType byte

// All uplink PDU types according to [AI] table 16.71
const (
	UAuthenticationType               UplinkType = 0
	UITSIDetachType                   UplinkType = 1
	ULocationUpdateDemandType         UplinkType = 2
	UMMStatusType                     UplinkType = 3
	UCKChangeResultType               UplinkType = 4
	UOTARType                         UplinkType = 5
	UInformationProvideType           UplinkType = 6
	UAttachDetachGroupIdentityType    UplinkType = 7
	UAttachDetachGroupIdentityAckType UplinkType = 8
	UTEIProvideType                   UplinkType = 9
	UDisableStatusType                UplinkType = 11
	UMMFunctionNotSupportedType       UplinkType = 15
)

var uplinkTypeNames = map[UplinkType]string{
	UAuthenticationType:               "U-AUTHENTICATION",
	UITSIDetachType:                   "U-ITSI DETACH",
	ULocationUpdateDemandType:         "U-LOCATION UPDATE DEMAND",
	UMMStatusType:                     "U-MM STATUS",
	UCKChangeResultType:               "U-CK CHANGE RESULT",
	UOTARType:                         "U-OTAR",
	UInformationProvideType:           "U-INFORMATION PROVIDE",
	UAttachDetachGroupIdentityType:    "U-ATTACH/DETACH GROUP IDENTITY",
	UAttachDetachGroupIdentityAckType: "U-ATTACH/DETACH GROUP IDENTITY ACKNOWLEDGEMENT",
	UTEIProvideType:                   "U-TEI PROVIDE",
	UDisableStatusType:                "U-DISABLE STATUS",
	UMMFunctionNotSupportedType:       "MM PDU/FUNCTION NOT SUPPORTED",
}

func (t UplinkType) String() string {
	if name, ok := uplinkTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MM uplink type %d", byte(t))
}

// Type 3 and type 4 element identifiers according to [AI] 16.10.51
const (
	DefaultGroupAttachmentLifetimeID          uint64 = 1
	NewRegisteredAreaID                       uint64 = 2
	SecurityDownlinkID                        uint64 = 3
	GroupIdentityLocationDemandID             uint64 = 3
	GroupReportResponseID                     uint64 = 4
	GroupIdentityLocationAcceptID             uint64 = 5
	DMMSAddressID                             uint64 = 6
	GroupIdentityDownlinkID                   uint64 = 7
	GroupIdentityUplinkID                     uint64 = 8
	AuthenticationUplinkID                    uint64 = 9
	AuthenticationDownlinkID                  uint64 = 10
	ExtendedCapabilitiesID                    uint64 = 11
	GroupIdentitySecurityRelatedInformationID uint64 = 12
	CellTypeControlID                         uint64 = 13
	ProprietaryID                             uint64 = 15
)

// LocationUpdateType enum according to [AI] 16.10.35
type LocationUpdateType uint8

// All location update types according to [AI] table 16.61
const (
	RoamingLocationUpdating LocationUpdateType = iota
	TemporaryRegistration
	PeriodicLocationUpdating
	ITSIAttach
	ServiceRestorationRoamingLocationUpdating
	ServiceRestorationMigratingLocationUpdating
	DemandLocationUpdating
	DisabledMSUpdating
)

func (t LocationUpdateType) String() string {
	switch t {
	case RoamingLocationUpdating:
		return "roaming location updating"
	case TemporaryRegistration:
		return "temporary registration"
	case PeriodicLocationUpdating:
		return "periodic location updating"
	case ITSIAttach:
		return "ITSI attach"
	case ServiceRestorationRoamingLocationUpdating:
		return "service restoration roaming location updating"
	case ServiceRestorationMigratingLocationUpdating:
		return "service restoration migrating location updating"
	case DemandLocationUpdating:
		return "demand location updating"
	case DisabledMSUpdating:
		return "disabled MS updating"
	default:
		return fmt.Sprintf("location update type %d", uint8(t))
	}
}

var downlinkPDUs = map[DownlinkType]func() pdu.Message{
	DLocationUpdateAcceptType:         func() pdu.Message { return new(DLocationUpdateAccept) },
	DLocationUpdateRejectType:         func() pdu.Message { return new(DLocationUpdateReject) },
	DLocationUpdateProceedingType:     func() pdu.Message { return new(DLocationUpdateProceeding) },
	DAttachDetachGroupIdentityType:    func() pdu.Message { return new(DAttachDetachGroupIdentity) },
	DAttachDetachGroupIdentityAckType: func() pdu.Message { return new(DAttachDetachGroupIdentityAck) },
}

var uplinkPDUs = map[UplinkType]func() pdu.Message{
	UITSIDetachType:                   func() pdu.Message { return new(UITSIDetach) },
	ULocationUpdateDemandType:         func() pdu.Message { return new(ULocationUpdateDemand) },
	UAttachDetachGroupIdentityType:    func() pdu.Message { return new(UAttachDetachGroupIdentity) },
	UAttachDetachGroupIdentityAckType: func() pdu.Message { return new(UAttachDetachGroupIdentityAck) },
}

// DecodeDownlink decodes the MM PDU sent by the SwMI that starts at the cursor of the given buffer.
func DecodeDownlink(buf *bitbuf.Buffer) (pdu.Message, error) {
	pduType, err := peekPDUType(buf)
	if err != nil {
		return nil, err
	}
	factory, ok := downlinkPDUs[DownlinkType(pduType)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", DownlinkType(pduType), &pdu.ValueError{Field: "pdu_type", Value: pduType})
	}
	return decode(buf, factory())
}

// DecodeUplink decodes the MM PDU sent by the MS that starts at the cursor of the given buffer.
func DecodeUplink(buf *bitbuf.Buffer) (pdu.Message, error) {
	pduType, err := peekPDUType(buf)
	if err != nil {
		return nil, err
	}
	factory, ok := uplinkPDUs[UplinkType(pduType)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", UplinkType(pduType), &pdu.ValueError{Field: "pdu_type", Value: pduType})
	}
	return decode(buf, factory())
}

func peekPDUType(buf *bitbuf.Buffer) (uint64, error) {
	result, ok := buf.PeekBits(PDUTypeWidth)
	if !ok {
		return 0, &bitbuf.ExhaustedError{Field: "pdu_type", Width: PDUTypeWidth, Remaining: buf.Remaining()}
	}
	return result, nil
}

func decode(buf *bitbuf.Buffer, message pdu.Message) (pdu.Message, error) {
	start := buf.Pos()
	if err := message.Decode(buf); err != nil {
		buf.Seek(start)
		return nil, err
	}
	return message, nil
}
