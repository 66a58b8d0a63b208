package sds

import (
	"fmt"
	"strings"
	"time"

	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/pdu"
	"github.com/ftl/tetra-air/tetra"
)

// ParseStoreForwardControl from the given buffer.
func ParseStoreForwardControl(buf *bitbuf.Buffer) (StoreForwardControl, error) {
	var result StoreForwardControl
	err := decodeAtomic(buf, "store forward control", result.Decode)
	return result, err
}

// StoreForwardControl represents the optional store and forward control information contained in the SDS-REPORT and SDS-TRANSFER PDUs, see [AI] 29.4.3.12
type StoreForwardControl struct {
	// Valid indicates if this StoreForwardControl instance contains valid data. Valid is false if store and forward control is not used with this message.
	Valid                    bool
	ValidityPeriod           ValidityPeriod
	ForwardAddressType       ForwardAddressType
	ForwardAddressSNA        byte
	ForwardAddressSSI        uint32
	ForwardAddressExtension  tetra.MNI
	ExternalSubscriberNumber ExternalSubscriberNumber
}

// Decode the store forward control information from the given buffer.
func (s *StoreForwardControl) Decode(buf *bitbuf.Buffer) error {
	validityPeriod, err := buf.ReadField(5, "validity_period")
	if err != nil {
		return err
	}
	addressType, err := buf.ReadField(3, "forward_address_type")
	if err != nil {
		return err
	}
	*s = StoreForwardControl{
		Valid:              true,
		ValidityPeriod:     ParseValidityPeriod(byte(validityPeriod)),
		ForwardAddressType: ForwardAddressType(addressType),
	}

	switch s.ForwardAddressType {
	case ForwardToSNA:
		value, err := buf.ReadField(8, "forward_address_sna")
		s.ForwardAddressSNA = byte(value)
		return err
	case ForwardToSSI, ForwardToTSI:
		value, err := buf.ReadField(tetra.SSIWidth, "forward_address_ssi")
		if err != nil {
			return err
		}
		s.ForwardAddressSSI = uint32(value)
		if s.ForwardAddressType == ForwardToSSI {
			return nil
		}
		value, err = buf.ReadField(tetra.MNIWidth, "forward_address_extension")
		s.ForwardAddressExtension = tetra.SplitMNI(value)
		return err
	case ForwardToExternalSubscriberNumber:
		return s.ExternalSubscriberNumber.decode(buf)
	case NoForwardAddressPresent:
		return nil
	default:
		return &pdu.ValueError{Field: "forward_address_type", Value: addressType}
	}
}

// Encode the store forward control information into the given buffer.
func (s StoreForwardControl) Encode(buf *bitbuf.Buffer) error {
	buf.WriteBits(uint64(s.ValidityPeriod.Code()), 5)
	buf.WriteBits(uint64(s.ForwardAddressType), 3)

	switch s.ForwardAddressType {
	case ForwardToSNA:
		buf.WriteBits(uint64(s.ForwardAddressSNA), 8)
	case ForwardToSSI:
		buf.WriteBits(uint64(s.ForwardAddressSSI), tetra.SSIWidth)
	case ForwardToTSI:
		buf.WriteBits(uint64(s.ForwardAddressSSI), tetra.SSIWidth)
		buf.WriteBits(s.ForwardAddressExtension.Value(), tetra.MNIWidth)
	case ForwardToExternalSubscriberNumber:
		return s.ExternalSubscriberNumber.encode(buf)
	case NoForwardAddressPresent:
	default:
		return &pdu.ValueError{Field: "forward_address_type", Value: uint64(s.ForwardAddressType)}
	}
	return nil
}

// Length returns the length of this encoded store forward control in bits.
func (s StoreForwardControl) Length() int {
	switch s.ForwardAddressType {
	case ForwardToSNA:
		return 16
	case ForwardToSSI:
		return 8 + tetra.SSIWidth
	case ForwardToTSI:
		return 8 + tetra.SSIWidth + tetra.MNIWidth
	case ForwardToExternalSubscriberNumber:
		digits := len(s.ExternalSubscriberNumber)
		return 16 + 4*(digits+digits%2)
	default:
		return 8
	}
}

// ValidityPeriod according to [AI] 29.4.3.14
type ValidityPeriod time.Duration

// InfinitelyValid represents the infinite validity period (31).
const InfinitelyValid ValidityPeriod = -1

// ParseValidityPeriod from a 5 bits value according to [AI] table 29.25
func ParseValidityPeriod(b byte) ValidityPeriod {
	switch {
	case b == 0:
		return 0
	case b <= 6:
		return ValidityPeriod(time.Duration(b) * 10 * time.Second)
	case b <= 10:
		return ValidityPeriod(time.Duration(b-5) * time.Minute)
	case b <= 16:
		return ValidityPeriod(time.Duration(b-10) * 10 * time.Minute)
	case b <= 21:
		return ValidityPeriod(time.Duration(b-15) * time.Hour)
	case b <= 24:
		return ValidityPeriod(time.Duration(b-20) * 6 * time.Hour)
	case b <= 30:
		return ValidityPeriod(time.Duration(b-24) * 48 * time.Hour)
	default:
		return InfinitelyValid
	}
}

// Code returns the 5 bits value of the validity period according to [AI] table 29.25.
// Periods between two steps are rounded up to the next step.
func (p ValidityPeriod) Code() byte {
	if p == InfinitelyValid {
		return 31
	}
	d := time.Duration(p)
	steps := func(unit time.Duration) byte {
		result := d / unit
		if d%unit > 0 {
			result++
		}
		return byte(result)
	}

	switch {
	case d <= 0:
		return 0
	case d <= time.Minute:
		return steps(10 * time.Second)
	case d <= 5*time.Minute:
		return steps(time.Minute) + 5
	case d <= time.Hour:
		return steps(10*time.Minute) + 10
	case d <= 6*time.Hour:
		return steps(time.Hour) + 15
	case d <= 24*time.Hour:
		return steps(6*time.Hour) + 20
	case d <= 12*24*time.Hour:
		return steps(48*time.Hour) + 24
	default:
		return 31
	}
}

// ForwardAddressType enum according to [AI] 29.4.3.5
type ForwardAddressType byte

// All forward address type values according to [AI] table 29.18
const (
	ForwardToSNA                      ForwardAddressType = 0x00
	ForwardToSSI                      ForwardAddressType = 0x01
	ForwardToTSI                      ForwardAddressType = 0x02
	ForwardToExternalSubscriberNumber ForwardAddressType = 0x03
	NoForwardAddressPresent           ForwardAddressType = 0x07
)

// ExternalSubscriberNumber according to [AI] 29.4.3.6, contains an arbitrary number of digits.
type ExternalSubscriberNumber []ExternalSubscriberNumberDigit

// ExternalSubscriberNumberDigit represents one digit in the ExternalSubscriberNumber
type ExternalSubscriberNumberDigit byte // its only 4 bits per digit

const externalSubscriberNumberDigits = "0123456789*#+"

func (n ExternalSubscriberNumber) String() string {
	var result strings.Builder
	for _, digit := range n {
		if int(digit) < len(externalSubscriberNumberDigits) {
			result.WriteByte(externalSubscriberNumberDigits[digit])
		} else {
			result.WriteByte('?')
		}
	}
	return result.String()
}

// The digits are preceded by their count. An odd number of digits is padded with a dummy digit.
func (n *ExternalSubscriberNumber) decode(buf *bitbuf.Buffer) error {
	count, err := buf.ReadField(8, "external_subscriber_number_digits")
	if err != nil {
		return err
	}
	padded := int(count + count%2)
	if buf.Remaining() < padded*4 {
		return &bitbuf.ExhaustedError{Field: "external_subscriber_number", Width: padded * 4, Remaining: buf.Remaining()}
	}

	result := make(ExternalSubscriberNumber, 0, count)
	for i := 0; i < padded; i++ {
		digit, err := buf.ReadField(4, "external_subscriber_number_digit")
		if err != nil {
			return err
		}
		if i < int(count) {
			result = append(result, ExternalSubscriberNumberDigit(digit))
		}
	}
	*n = result
	return nil
}

func (n ExternalSubscriberNumber) encode(buf *bitbuf.Buffer) error {
	if len(n) > 0xFF {
		return fmt.Errorf("external subscriber number with %d digits: %w", len(n), pdu.ErrInvalidValue)
	}
	buf.WriteBits(uint64(len(n)), 8)
	for _, digit := range n {
		buf.WriteBits(uint64(digit), 4)
	}
	if len(n)%2 != 0 {
		buf.WriteBits(0, 4)
	}
	return nil
}
