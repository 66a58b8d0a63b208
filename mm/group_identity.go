package mm

import (
	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/pdu"
)

// GroupAddressType enum according to [AI] 16.10.22
type GroupAddressType uint8

// All group identity address types
const (
	GSSIAddress GroupAddressType = iota
	GTSIAddress
	VGSSIAddress
	GTSIAndVGSSIAddress
)

func (t GroupAddressType) hasGSSI() bool {
	return t == GSSIAddress || t == GTSIAddress || t == GTSIAndVGSSIAddress
}

func (t GroupAddressType) hasAddressExtension() bool {
	return t == GTSIAddress || t == GTSIAndVGSSIAddress
}

func (t GroupAddressType) hasVGSSI() bool {
	return t == VGSSIAddress || t == GTSIAndVGSSIAddress
}

// GroupIdentityDownlink represents one group identity sub-element sent by the SwMI according to [AI] 16.10.22
type GroupIdentityDownlink struct {
	// Detach is the group identity attach/detach type identifier.
	Detach bool

	// AttachmentLifetime and ClassOfUsage are only present for an attachment.
	AttachmentLifetime uint8
	ClassOfUsage       uint8

	// DetachmentType is only present for a detachment.
	DetachmentType uint8

	AddressType      GroupAddressType
	GSSI             *uint64
	AddressExtension *uint64
	VGSSI            *uint64
}

func (g *GroupIdentityDownlink) schema() pdu.Schema {
	attach := func() bool { return !g.Detach }
	return pdu.Schema{
		Fixed: []pdu.Field{
			pdu.Bit("group_identity_attach_detach_type_identifier", &g.Detach),
			pdu.Type1("group_identity_attachment_lifetime", 2, &g.AttachmentLifetime).If(attach),
			pdu.Type1("class_of_usage", 3, &g.ClassOfUsage).If(attach),
			pdu.Type1("group_identity_detachment_downlink", 2, &g.DetachmentType).If(func() bool { return g.Detach }),
			pdu.Type1("group_identity_address_type", 2, &g.AddressType),
			pdu.Conditional("gssi", 24, &g.GSSI, func() bool { return g.AddressType.hasGSSI() }),
			pdu.Conditional("address_extension", 24, &g.AddressExtension, func() bool { return g.AddressType.hasAddressExtension() }),
			pdu.Conditional("vgssi", 24, &g.VGSSI, func() bool { return g.AddressType.hasVGSSI() }),
		},
	}
}

func (g *GroupIdentityDownlink) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, g.schema())
}

func (g *GroupIdentityDownlink) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, g.schema())
}

// GroupIdentityUplink represents one group identity sub-element sent by the MS according to [AI] 16.10.27
type GroupIdentityUplink struct {
	// Detach is the group identity attach/detach type identifier.
	Detach bool

	// ClassOfUsage is only present for an attachment.
	ClassOfUsage uint8

	// DetachmentType is only present for a detachment.
	DetachmentType uint8

	AddressType      GroupAddressType
	GSSI             *uint64
	AddressExtension *uint64
	VGSSI            *uint64
}

func (g *GroupIdentityUplink) schema() pdu.Schema {
	return pdu.Schema{
		Fixed: []pdu.Field{
			pdu.Bit("group_identity_attach_detach_type_identifier", &g.Detach),
			pdu.Type1("class_of_usage", 3, &g.ClassOfUsage).If(func() bool { return !g.Detach }),
			pdu.Type1("group_identity_detachment_uplink", 2, &g.DetachmentType).If(func() bool { return g.Detach }),
			pdu.Enum("group_identity_address_type", 2, &g.AddressType, func(t GroupAddressType) bool { return t != GTSIAndVGSSIAddress }),
			pdu.Conditional("gssi", 24, &g.GSSI, func() bool { return g.AddressType == GSSIAddress || g.AddressType == GTSIAddress }),
			pdu.Conditional("address_extension", 24, &g.AddressExtension, func() bool { return g.AddressType == GTSIAddress }),
			pdu.Conditional("vgssi", 24, &g.VGSSI, func() bool { return g.AddressType == VGSSIAddress }),
		},
	}
}

func (g *GroupIdentityUplink) Decode(buf *bitbuf.Buffer) error {
	return pdu.Decode(buf, g.schema())
}

func (g *GroupIdentityUplink) Encode(buf *bitbuf.Buffer) error {
	return pdu.Encode(buf, g.schema())
}
