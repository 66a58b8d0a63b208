/*
The package cmce implements the PDUs of the circuit mode control entity between the SwMI and the MS
according to [AI] 14. This implementation is based on:
  [AI]  ETSI TS 100 392-2 V3.9.2 (2020-06)

The most relevant chapters in [AI] are 14.7 (PDU descriptions) and 14.8 (information elements).
*/
package cmce

import (
	"fmt"

	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/pdu"
	"github.com/ftl/tetra-air/tetra"
)

// PDUTypeWidth is the width of the CMCE PDU type in bits.
const PDUTypeWidth = 5

// CallIdentifierWidth is the width of a call identifier in bits.
const CallIdentifierWidth = 14

// DownlinkType enum according to [AI] 14.8.28
type DownlinkType byte

// All downlink PDU types according to [AI] table 14.55
const (
	DAlertType                    DownlinkType = 0
	DCallProceedingType           DownlinkType = 1
	DConnectType                  DownlinkType = 2
	DConnectAckType               DownlinkType = 3
	DDisconnectType               DownlinkType = 4
	DInfoType                     DownlinkType = 5
	DReleaseType                  DownlinkType = 6
	DSetupType                    DownlinkType = 7
	DStatusType                   DownlinkType = 8
	DTxCeasedType                 DownlinkType = 9
	DTxContinueType               DownlinkType = 10
	DTxGrantedType                DownlinkType = 11
	DTxWaitType                   DownlinkType = 12
	DTxInterruptType              DownlinkType = 13
	DCallRestoreType              DownlinkType = 14
	DSDSDataType                  DownlinkType = 15
	DFacilityType                 DownlinkType = 16
	DCMCEFunctionNotSupportedType DownlinkType = 31
)

var downlinkTypeNames = map[DownlinkType]string{
	DAlertType:                    "D-ALERT",
	DCallProceedingType:           "D-CALL PROCEEDING",
	DConnectType:                  "D-CONNECT",
	DConnectAckType:               "D-CONNECT ACKNOWLEDGE",
	DDisconnectType:               "D-DISCONNECT",
	DInfoType:                     "D-INFO",
	DReleaseType:                  "D-RELEASE",
	DSetupType:                    "D-SETUP",
	DStatusType:                   "D-STATUS",
	DTxCeasedType:                 "D-TX CEASED",
	DTxContinueType:               "D-TX CONTINUE",
	DTxGrantedType:                "D-TX GRANTED",
	DTxWaitType:                   "D-TX WAIT",
	DTxInterruptType:              "D-TX INTERRUPT",
	DCallRestoreType:              "D-CALL RESTORE",
	DSDSDataType:                  "D-SDS-DATA",
	DFacilityType:                 "D-FACILITY",
	DCMCEFunctionNotSupportedType: "CMCE FUNCTION NOT SUPPORTED",
}

func (t DownlinkType) String() string {
	if name, ok := downlinkTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("CMCE downlink type %d", byte(t))
}

// UplinkType enum according to [AI] 14.8.28
type UplinkType byte

// All uplink PDU types according to [AI] table 14.55
const (
	UAlertType                    UplinkType = 0
	UConnectType                  UplinkType = 2
	UDisconnectType               UplinkType = 4
	UInfoType                     UplinkType = 5
	UReleaseType                  UplinkType = 6
	USetupType                    UplinkType = 7
	UStatusType                   UplinkType = 8
	UTxCeasedType                 UplinkType = 9
	UTxDemandType                 UplinkType = 10
	UCallRestoreType              UplinkType = 14
	USDSDataType                  UplinkType = 15
	UFacilityType                 UplinkType = 16
	UCMCEFunctionNotSupportedType UplinkType = 31
)

var uplinkTypeNames = map[UplinkType]string{
	UAlertType:                    "U-ALERT",
	UConnectType:                  "U-CONNECT",
	UDisconnectType:               "U-DISCONNECT",
	UInfoType:                     "U-INFO",
	UReleaseType:                  "U-RELEASE",
	USetupType:                    "U-SETUP",
	UStatusType:                   "U-STATUS",
	UTxCeasedType:                 "U-TX CEASED",
	UTxDemandType:                 "U-TX DEMAND",
	UCallRestoreType:              "U-CALL RESTORE",
	USDSDataType:                  "U-SDS-DATA",
	UFacilityType:                 "U-FACILITY",
	UCMCEFunctionNotSupportedType: "CMCE FUNCTION NOT SUPPORTED",
}

func (t UplinkType) String() string {
	if name, ok := uplinkTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("CMCE uplink type %d", byte(t))
}

// Type 3 element identifiers according to [AI] 14.8.49
const (
	DTMFID                     uint64 = 1
	ExternalSubscriberNumberID uint64 = 2
	FacilityID                 uint64 = 3
	PollResponseAddressesID    uint64 = 4
	TemporaryAddressID         uint64 = 5
	DMMSAddressID              uint64 = 6
	ProprietaryID              uint64 = 15
)

// PartyType is the calling, called, transmitting or other party type identifier according to [AI] 14.8.5.
type PartyType uint8

// All party type identifiers
const (
	ShortNumberAddress PartyType = iota
	SSIParty
	TSIParty
	reservedParty

	// absentParty is used if the party type identifier is an absent type 2 element.
	absentParty PartyType = 0xFF
)

func (t PartyType) String() string {
	switch t {
	case ShortNumberAddress:
		return "SNA"
	case SSIParty:
		return "SSI"
	case TSIParty:
		return "TSI"
	default:
		return fmt.Sprintf("party type %d", uint8(t))
	}
}

func validPartyType(t PartyType) bool {
	return t < reservedParty
}

func optionalPartyType(v *uint64) PartyType {
	if v == nil {
		return absentParty
	}
	return PartyType(*v)
}

// partyAddress returns the conditional SSI and extension fields that follow a party type identifier.
func partyAddress(prefix string, partyType func() PartyType, ssi, extension **uint64) []pdu.Field {
	return []pdu.Field{
		pdu.Conditional(prefix+"_ssi", tetra.SSIWidth, ssi, func() bool {
			t := partyType()
			return t == SSIParty || t == TSIParty
		}),
		pdu.Conditional(prefix+"_extension", tetra.MNIWidth, extension, func() bool { return partyType() == TSIParty }),
	}
}

// partyIdentity returns the TETRA identity addressed by the given party fields.
func partyIdentity(partyType PartyType, ssi, extension *uint64) (tetra.TypedIdentity, bool) {
	if ssi == nil || (partyType != SSIParty && partyType != TSIParty) {
		return tetra.TypedIdentity{}, false
	}
	if extension == nil {
		address := tetra.Address{Type: tetra.ISSI, SSI: uint32(*ssi)}
		return tetra.TypedIdentity{Identity: address.Identity(), Type: tetra.SSI}, true
	}
	identity := fmt.Sprintf("%s-%d", tetra.SplitMNI(*extension), *ssi)
	return tetra.TypedIdentity{Identity: tetra.Identity(identity), Type: tetra.TSI}, true
}

var downlinkPDUs = map[DownlinkType]func() pdu.Message{
	DAlertType:       func() pdu.Message { return new(DAlert) },
	DCallRestoreType: func() pdu.Message { return new(DCallRestore) },
	DConnectType:     func() pdu.Message { return new(DConnect) },
	DConnectAckType:  func() pdu.Message { return new(DConnectAck) },
	DInfoType:        func() pdu.Message { return new(DInfo) },
	DReleaseType:     func() pdu.Message { return new(DRelease) },
	DSetupType:       func() pdu.Message { return new(DSetup) },
	DStatusType:      func() pdu.Message { return new(DStatus) },
	DTxGrantedType:   func() pdu.Message { return new(DTxGranted) },
	DTxWaitType:      func() pdu.Message { return new(DTxWait) },
	DSDSDataType:     func() pdu.Message { return new(DSDSData) },
}

var uplinkPDUs = map[UplinkType]func() pdu.Message{
	UAlertType:       func() pdu.Message { return new(UAlert) },
	UCallRestoreType: func() pdu.Message { return new(UCallRestore) },
	UConnectType:     func() pdu.Message { return new(UConnect) },
	UInfoType:        func() pdu.Message { return new(UInfo) },
	UStatusType:      func() pdu.Message { return new(UStatus) },
	UTxCeasedType:    func() pdu.Message { return new(UTxCeased) },
	UTxDemandType:    func() pdu.Message { return new(UTxDemand) },
	USDSDataType:     func() pdu.Message { return new(USDSData) },
}

// DecodeDownlink decodes the CMCE PDU sent by the SwMI that starts at the cursor of the given buffer.
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

// DecodeUplink decodes the CMCE PDU sent by the MS that starts at the cursor of the given buffer.
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
