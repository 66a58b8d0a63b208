package codec

import (
	"github.com/ftl/tetra-air/cmce"
	"github.com/ftl/tetra-air/mm"
	"github.com/ftl/tetra-air/pdu"
	"github.com/ftl/tetra-air/tetra"
)

// Networks returns the mobile network identities of all address extensions contained in the given message.
func Networks(message pdu.Message) []tetra.MNI {
	var extensions []*uint64
	switch m := message.(type) {
	case *mm.DLocationUpdateAccept:
		extensions = append(extensions, m.AddressExtension)
	case *mm.DLocationUpdateReject:
		extensions = append(extensions, m.AddressExtension)
	case *mm.DLocationUpdateProceeding:
		extension := uint64(m.AddressExtension)
		extensions = append(extensions, &extension)
	case *mm.DAttachDetachGroupIdentity:
		extensions = appendDownlinkGroups(extensions, m.GroupIdentityDownlink)
	case *mm.DAttachDetachGroupIdentityAck:
		extensions = appendDownlinkGroups(extensions, m.GroupIdentityDownlink)
	case *mm.UITSIDetach:
		extensions = append(extensions, m.AddressExtension)
	case *mm.ULocationUpdateDemand:
		extensions = append(extensions, m.AddressExtension)
	case *mm.UAttachDetachGroupIdentity:
		extensions = appendUplinkGroups(extensions, m.GroupIdentityUplink)
	case *mm.UAttachDetachGroupIdentityAck:
		extensions = appendUplinkGroups(extensions, m.GroupIdentityUplink)
	case *cmce.DSetup:
		extensions = append(extensions, m.CallingPartyExtension)
	case *cmce.DStatus:
		extensions = append(extensions, m.CallingPartyExtension)
	case *cmce.DTxGranted:
		extensions = append(extensions, m.TransmittingPartyExtension)
	case *cmce.DSDSData:
		extensions = append(extensions, m.CallingPartyExtension)
	case *cmce.UCallRestore:
		extensions = append(extensions, m.OtherPartyExtension)
	case *cmce.UStatus:
		extensions = append(extensions, m.CalledPartyExtension)
	case *cmce.USDSData:
		extensions = append(extensions, m.CalledPartyExtension)
	}

	var result []tetra.MNI
	for _, extension := range extensions {
		if extension == nil {
			continue
		}
		result = append(result, tetra.SplitMNI(*extension))
	}
	return result
}

func appendDownlinkGroups(extensions []*uint64, groups []mm.GroupIdentityDownlink) []*uint64 {
	for _, group := range groups {
		extensions = append(extensions, group.AddressExtension)
	}
	return extensions
}

func appendUplinkGroups(extensions []*uint64, groups []mm.GroupIdentityUplink) []*uint64 {
	for _, group := range groups {
		extensions = append(extensions, group.AddressExtension)
	}
	return extensions
}
