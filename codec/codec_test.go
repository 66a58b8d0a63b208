package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/cmce"
	"github.com/ftl/tetra-air/mm"
	"github.com/ftl/tetra-air/pdu"
	"github.com/ftl/tetra-air/tetra"
)

const (
	uITSIDetachBits                   = "0001110011001100000101001110010"
	dAttachDetachGroupIdentityAckBits = "10110011011100000100110000001011100000000110101000110011100000"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"cmce-dl", "cmce-ul", "mm-dl", "mm-ul"}, Names())
}

func TestParseLayer(t *testing.T) {
	layer, err := ParseLayer("cmce-ul")
	require.NoError(t, err)
	assert.Equal(t, CMCEUplink, layer)

	_, err = ParseLayer("llc")
	assert.ErrorIs(t, err, ErrUnknownLayer)
}

func TestDecode(t *testing.T) {
	tt := []struct {
		desc     string
		layer    Layer
		bits     string
		pdu      string
		trailing string
		kind     string
	}{
		{
			desc:  "U-ITSI DETACH",
			layer: MMUplink,
			bits:  uITSIDetachBits,
			pdu:   "U-ITSI DETACH",
		},
		{
			desc:  "D-ATTACH/DETACH GROUP IDENTITY ACKNOWLEDGEMENT",
			layer: MMDownlink,
			bits:  dAttachDetachGroupIdentityAckBits,
			pdu:   "D-ATTACH/DETACH GROUP IDENTITY ACKNOWLEDGEMENT",
		},
		{
			desc:     "trailing bits",
			layer:    MMUplink,
			bits:     uITSIDetachBits + "101",
			pdu:      "U-ITSI DETACH",
			trailing: "101",
		},
		{
			desc:  "truncated",
			layer: MMUplink,
			bits:  uITSIDetachBits[:20],
			kind:  "buffer_exhausted",
		},
		{
			desc:  "unsupported PDU type",
			layer: CMCEDownlink,
			bits:  "00001",
			kind:  "invalid_value",
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			record, err := Decode(tc.layer, bitbuf.MustFromBitString(tc.bits))

			assert.Equal(t, tc.layer, record.Layer)
			assert.Equal(t, tc.bits, record.Bits)
			assert.Equal(t, tc.kind, record.ErrorKind)
			if tc.kind != "" {
				assert.Error(t, err)
				assert.True(t, record.Failed())
				assert.Nil(t, record.Message)
				return
			}
			require.NoError(t, err)
			assert.False(t, record.Failed())
			assert.Equal(t, tc.pdu, record.PDU)
			assert.Equal(t, tc.trailing, record.Trailing)
			assert.Equal(t, tc.pdu, record.Message.PDUName())
		})
	}
}

func TestDecode_UnknownLayer(t *testing.T) {
	_, err := Decode(Layer("llc"), bitbuf.MustFromBitString("0"))

	assert.ErrorIs(t, err, ErrUnknownLayer)
}

func TestEncode(t *testing.T) {
	record, err := Decode(MMUplink, bitbuf.MustFromBitString(uITSIDetachBits))
	require.NoError(t, err)

	actual, err := Encode(record.Message)

	require.NoError(t, err)
	assert.Equal(t, uITSIDetachBits, actual)
}

func TestCheckNetworks(t *testing.T) {
	record, err := Decode(MMUplink, bitbuf.MustFromBitString(uITSIDetachBits))
	require.NoError(t, err)

	record.CheckNetworks(tetra.MNI{MCC: 262, MNC: 1})
	assert.Equal(t, []string{"204-1337"}, record.ForeignNetworks)

	record.CheckNetworks(tetra.MNI{MCC: 204, MNC: 1337})
	assert.Empty(t, record.ForeignNetworks)
}

func TestNetworks(t *testing.T) {
	tt := []struct {
		desc     string
		message  pdu.Message
		expected []tetra.MNI
	}{
		{
			desc:    "no extension",
			message: &cmce.DStatus{CallingPartyTypeIdentifier: cmce.SSIParty},
		},
		{
			desc: "called party",
			message: &cmce.USDSData{
				CalledPartyTypeIdentifier: cmce.TSIParty,
				CalledPartyExtension:      value(tetra.MNI{MCC: 901, MNC: 9999}.Value()),
			},
			expected: []tetra.MNI{{MCC: 901, MNC: 9999}},
		},
		{
			desc: "group identities",
			message: &mm.DAttachDetachGroupIdentity{
				GroupIdentityDownlink: []mm.GroupIdentityDownlink{
					{AddressType: mm.GSSIAddress},
					{AddressType: mm.GTSIAddress, AddressExtension: value(tetra.MNI{MCC: 262, MNC: 1}.Value())},
				},
			},
			expected: []tetra.MNI{{MCC: 262, MNC: 1}},
		},
		{
			desc:     "location update proceeding",
			message:  &mm.DLocationUpdateProceeding{AddressExtension: uint32(tetra.MNI{MCC: 1, MNC: 2}.Value())},
			expected: []tetra.MNI{{MCC: 1, MNC: 2}},
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, Networks(tc.message))
		})
	}
}

func TestRecordStream(t *testing.T) {
	var stream bytes.Buffer
	writer := NewRecordWriter(&stream)

	decoded, err := Decode(MMUplink, bitbuf.MustFromBitString(uITSIDetachBits+"11"))
	require.NoError(t, err)
	decoded.CheckNetworks(tetra.MNI{MCC: 262, MNC: 1})
	failed, err := Decode(CMCEDownlink, bitbuf.MustFromBitString("0011"))
	require.Error(t, err)

	require.NoError(t, writer.Write(decoded))
	require.NoError(t, writer.Write(failed))

	reader := NewRecordReader(&stream)
	first, err := reader.Read()
	require.NoError(t, err)
	assert.Equal(t, MMUplink, first.Layer)
	assert.Equal(t, "U-ITSI DETACH", first.PDU)
	assert.Equal(t, "11", first.Trailing)
	assert.Equal(t, []string{"204-1337"}, first.ForeignNetworks)
	assert.Contains(t, first.Message, "AddressExtension")

	second, err := reader.Read()
	require.NoError(t, err)
	assert.Equal(t, CMCEDownlink, second.Layer)
	assert.Equal(t, "buffer_exhausted", second.ErrorKind)
	assert.Empty(t, second.Message)

	_, err = reader.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func value(v uint64) *uint64 {
	return &v
}
