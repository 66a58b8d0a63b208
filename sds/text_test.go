package sds

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextDecorations(t *testing.T) {
	tt := []struct {
		desc          string
		value         string
		expectedOPTA  string
		expectedITSI  string
		expectedPlain string
	}{
		{desc: "plain text", value: "status report", expectedPlain: "status report"},
		{desc: "leading OPTA only", value: "FW RESCUE#4711471147114711", expectedOPTA: "FW RESCUE#4711471147114711"},
		{desc: "leading OPTA", value: "FW RESCUE#4711471147114711on scene", expectedOPTA: "FW RESCUE#4711471147114711", expectedPlain: "on scene"},
		{desc: "trailing ITSI after cr cr", value: "on scene\r\r2620010012345678", expectedITSI: "2620010012345678", expectedPlain: "on scene"},
		{desc: "trailing ITSI after ctrl-z nul", value: "on scene\x1a\x002620010012345678", expectedITSI: "2620010012345678", expectedPlain: "on scene"},
		{desc: "ITSI too short", value: "on scene\r\r262001", expectedPlain: "on scene\r\r262001"},
		{desc: "OPTA not at the start", value: "on scene: FW#4711471147114711", expectedPlain: "on scene: FW#4711471147114711"},
		{
			desc:          "OPTA and ITSI",
			value:         "FW RESCUE#4711471147114711on scene\r\r2620010012345678",
			expectedOPTA:  "FW RESCUE#4711471147114711",
			expectedITSI:  "2620010012345678",
			expectedPlain: "on scene",
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			opta, tail := SplitLeadingOPTA(tc.value)
			head, itsi := SplitTrailingITSI(tail)

			assert.Equal(t, tc.expectedOPTA, opta)
			assert.Equal(t, tc.expectedITSI, itsi)
			assert.Equal(t, tc.expectedPlain, head)
			assert.Equal(t, tc.expectedPlain, RemoveTrailingITSI(RemoveLeadingOPTA(tc.value)))
		})
	}
}

func TestDescribe_DecodedText(t *testing.T) {
	tt := []struct {
		desc     string
		header   string
		text     string
		expected string
	}{
		{
			desc:     "SDS-TRANSFER with plain text",
			header:   "82" + "02" + "2A" + "01",
			text:     "on scene",
			expected: `SDS-TRANSFER 0x2A text (ISO8859-1): "on scene"`,
		},
		{
			desc:     "SDS-TRANSFER with OPTA and ITSI",
			header:   "82" + "02" + "2B" + "01",
			text:     "FW RESCUE#4711471147114711on scene\x1a\x002620010012345678",
			expected: `SDS-TRANSFER 0x2B text (ISO8859-1): "on scene"`,
		},
		{
			desc:     "immediate SDS-TRANSFER",
			header:   "89" + "02" + "2C" + "01",
			text:     "evacuate",
			expected: `SDS-TRANSFER 0x2C text (ISO8859-1): "evacuate"`,
		},
		{
			desc:     "simple text message",
			header:   "02" + "01",
			text:     "FW RESCUE#4711471147114711on scene",
			expected: `simple text (ISO8859-1): "on scene"`,
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			payload, err := ParseSDSTLPDU(hexBuffer(t, tc.header+hex.EncodeToString([]byte(tc.text))))
			require.NoError(t, err)

			assert.Equal(t, tc.expected, Describe(payload))
		})
	}
}
