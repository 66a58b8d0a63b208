package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/tetra-air/capture"
	"github.com/ftl/tetra-air/codec"
	"github.com/ftl/tetra-air/logging"
	"github.com/ftl/tetra-air/tetra"
)

const (
	uITSIDetachLine = "mm-ul 0001110011001100000101001110010"
	dSDSDataLine    = "cmce-dl 011110100010010110101101000011111000001100000000001000000001011101000110010101110011011101000"
)

func TestDecoder_Handle(t *testing.T) {
	var logOutput bytes.Buffer
	var records bytes.Buffer
	dec := newDecoder(zerolog.New(&logOutput))
	dec.SetHomeNetwork(tetra.MNI{MCC: 262, MNC: 1})
	dec.SetRecordWriter(codec.NewRecordWriter(&records))
	device := capture.NewInMemoryLines(
		uITSIDetachLine,
		dSDSDataLine,
		"mm-ul 0001",
		"llc 0101",
		"mm-ul 01x",
	)

	for frame := range capture.New(device, "mm-dl").Frames(context.Background()) {
		dec.Handle(frame)
	}

	assert.Equal(t, stats{Decoded: 2, Failed: 1, Invalid: 2}, dec.Stats())
	log := logOutput.String()
	assert.Contains(t, log, `"pdu":"U-ITSI DETACH"`)
	assert.Contains(t, log, `"foreign":["204-1337"]`)
	assert.Contains(t, log, `simple text (ISO8859-1)`)
	assert.Contains(t, log, `"kind":"buffer_exhausted"`)
	assert.Contains(t, log, "unknown layer")

	reader := codec.NewRecordReader(&records)
	var stored []codec.StoredRecord
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		stored = append(stored, record)
	}
	require.Len(t, stored, 3)
	assert.Equal(t, "U-ITSI DETACH", stored[0].PDU)
	assert.Equal(t, "D-SDS-DATA", stored[1].PDU)
	assert.True(t, stored[2].Error != "")
}

func TestRun_Verify(t *testing.T) {
	t.Setenv(logging.LevelEnv, "")

	err := run([]string{"--verify", "../../vectors/testdata/vectors.yaml", "--log-level", "disabled"})

	assert.NoError(t, err)
}

func TestRun_VerifyFails(t *testing.T) {
	t.Setenv(logging.LevelEnv, "")
	filename := filepath.Join(t.TempDir(), "vectors.yaml")
	content := "vectors:\n  - name: wrong\n    layer: mm-ul\n    bits: \"0001110011001100000101001110010\"\n    pdu: D-STATUS\n"
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))

	err := run([]string{"--verify", filename, "--log-level", "disabled"})

	var exit *exitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.ExitCode())
}

func TestRun_Input(t *testing.T) {
	t.Setenv(logging.LevelEnv, "")
	dir := t.TempDir()
	input := filepath.Join(dir, "capture.txt")
	record := filepath.Join(dir, "records.cbor")
	content := strings.Join([]string{"# capture", uITSIDetachLine, dSDSDataLine, ""}, "\n")
	require.NoError(t, os.WriteFile(input, []byte(content), 0o644))

	err := run([]string{"--input", input, "--record", record, "--log-level", "disabled"})
	require.NoError(t, err)

	recordFile, err := os.Open(record)
	require.NoError(t, err)
	defer recordFile.Close()
	reader := codec.NewRecordReader(recordFile)
	first, err := reader.Read()
	require.NoError(t, err)
	assert.Equal(t, "U-ITSI DETACH", first.PDU)
	second, err := reader.Read()
	require.NoError(t, err)
	assert.Equal(t, "D-SDS-DATA", second.PDU)
}

func TestRun_InvalidArguments(t *testing.T) {
	tt := []struct {
		desc string
		args []string
	}{
		{desc: "unknown flag", args: []string{"--frequency", "390"}},
		{desc: "unexpected argument", args: []string{"capture.txt"}},
		{desc: "invalid log level", args: []string{"--log-level", "loud"}},
		{desc: "missing config", args: []string{"--config", "/nonexistent/tetradec.toml"}},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			err := run(tc.args)

			assert.Error(t, err)
		})
	}
}
