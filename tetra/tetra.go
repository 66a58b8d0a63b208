package tetra

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Identity represents an identity of a party in a TETRA communication
type Identity string

// IdentityType enum according to [PEI] 6.17.11 and 6.17.12
type IdentityType byte

// All defined IdentityType values
const (
	SSI IdentityType = iota
	TSI
	SNA
	PABX
	PSTN
	ExtendedTSI
)

// TypedIdentity combines an identity with its type in one struct
type TypedIdentity struct {
	Identity Identity
	Type     IdentityType
}

// SsiType tells what kind of subscriber a short subscriber identity refers to, see [AI] 7.2
type SsiType byte

// All SsiType values
const (
	UnknownSsi SsiType = iota
	GenericSsi
	ISSI
	GSSI
	USSI
	SMI
	EventLabel
)

func (t SsiType) String() string {
	switch t {
	case UnknownSsi:
		return "Unknown"
	case GenericSsi:
		return "SSI"
	case ISSI:
		return "ISSI"
	case GSSI:
		return "GSSI"
	case USSI:
		return "USSI"
	case SMI:
		return "SMI"
	case EventLabel:
		return "EventLabel"
	default:
		return fmt.Sprintf("SsiType(%d)", byte(t))
	}
}

// SSIWidth is the width of a short subscriber identity in bits.
const SSIWidth = 24

// Address identifies a subscriber on the air interface.
type Address struct {
	// Encrypted is set if SSI still holds an encrypted short identity (ESI).
	Encrypted bool
	Type      SsiType
	SSI       uint32
}

func (a Address) String() string {
	if a.Encrypted {
		return fmt.Sprintf("E_%s:%d", a.Type, a.SSI)
	}
	return fmt.Sprintf("%s:%d", a.Type, a.SSI)
}

// Identity returns the SSI as decimal identity string.
func (a Address) Identity() Identity {
	return Identity(fmt.Sprintf("%d", a.SSI))
}

// Widths of the mobile network identity according to [AI] 16.10.30
const (
	MCCWidth = 10
	MNCWidth = 14
	MNIWidth = MCCWidth + MNCWidth
)

// MNI is the mobile network identity carried in the address extension element.
type MNI struct {
	MCC uint16
	MNC uint16
}

// SplitMNI splits a 24 bit address extension into mobile country code and mobile network code.
func SplitMNI(addressExtension uint64) MNI {
	return MNI{
		MCC: uint16((addressExtension >> MNCWidth) & (1<<MCCWidth - 1)),
		MNC: uint16(addressExtension & (1<<MNCWidth - 1)),
	}
}

// Value returns the MNI as 24 bit address extension.
func (m MNI) Value() uint64 {
	return uint64(m.MCC&(1<<MCCWidth-1))<<MNCWidth | uint64(m.MNC&(1<<MNCWidth-1))
}

// Valid checks if MCC and MNC fit into their fields.
func (m MNI) Valid() bool {
	return m.MCC < 1<<MCCWidth && m.MNC < 1<<MNCWidth
}

func (m MNI) String() string {
	return fmt.Sprintf("%d-%d", m.MCC, m.MNC)
}

var hexSanitizer = regexp.MustCompile(`\s+`)

// HexToBinary converts a hex representation of binary data into a slice of bytes. Whitespace is ignored.
func HexToBinary(s string) ([]byte, error) {
	sanitized := hexSanitizer.ReplaceAllString(s, "")
	return hex.DecodeString(sanitized)
}

// BinaryToHex converts a slice of bytes into an upper case hex representation
func BinaryToHex(pdu []byte) string {
	return strings.ToUpper(hex.EncodeToString(pdu))
}
