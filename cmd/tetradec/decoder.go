package main

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/ftl/tetra-air/capture"
	"github.com/ftl/tetra-air/cmce"
	"github.com/ftl/tetra-air/codec"
	"github.com/ftl/tetra-air/pdu"
	"github.com/ftl/tetra-air/sds"
	"github.com/ftl/tetra-air/tetra"
)

type sdsCarrier interface {
	SDSPayload() (any, error)
}

var (
	_ sdsCarrier = (*cmce.DSDSData)(nil)
	_ sdsCarrier = (*cmce.USDSData)(nil)
)

type stats struct {
	Decoded int
	Failed  int
	Invalid int
}

// decoder decodes the frames of the input one by one. Errors are logged and the frame is dropped.
type decoder struct {
	logger  zerolog.Logger
	home    *tetra.MNI
	records *codec.RecordWriter
	stats   stats
}

func newDecoder(logger zerolog.Logger) *decoder {
	return &decoder{
		logger: logger,
	}
}

func (d *decoder) SetHomeNetwork(home tetra.MNI) {
	d.home = &home
}

func (d *decoder) SetRecordWriter(records *codec.RecordWriter) {
	d.records = records
}

func (d *decoder) Stats() stats {
	return d.stats
}

func (d *decoder) Handle(frame capture.Frame) {
	if frame.Err != nil {
		d.stats.Invalid++
		d.logger.Warn().Int("line", frame.Line).Err(frame.Err).Msg("invalid frame")
		return
	}
	layer, err := codec.ParseLayer(frame.Layer)
	if err != nil {
		d.stats.Invalid++
		d.logger.Warn().Int("line", frame.Line).Err(err).Msg("invalid frame")
		return
	}

	record, err := codec.Decode(layer, frame.Bits)
	if err != nil {
		d.stats.Failed++
		d.logger.Warn().Int("line", frame.Line).Str("layer", string(layer)).Str("kind", record.ErrorKind).Str("bits", record.Bits).Err(err).Msg("cannot decode PDU")
	} else {
		d.stats.Decoded++
		if d.home != nil {
			record.CheckNetworks(*d.home)
		}
		d.logRecord(frame.Line, record)
	}

	if d.records == nil {
		return
	}
	if err := d.records.Write(record); err != nil {
		d.logger.Error().Int("line", frame.Line).Err(err).Msg("cannot write record")
	}
}

func (d *decoder) logRecord(line int, record codec.Record) {
	event := d.logger.Info().Int("line", line).Str("layer", string(record.Layer)).Str("pdu", record.PDU)
	if record.Trailing != "" {
		event = event.Str("trailing", record.Trailing)
	}
	if len(record.ForeignNetworks) > 0 {
		event = event.Strs("foreign", record.ForeignNetworks)
	}
	if carrier, ok := record.Message.(sdsCarrier); ok {
		event = event.Str("sds", describeSDS(carrier))
	}
	event.Msg("decoded")

	if d.logger.GetLevel() <= zerolog.DebugLevel {
		d.logger.Debug().Int("line", line).Interface("message", record.Message).Msg(record.PDU)
	}
}

func describeSDS(carrier sdsCarrier) string {
	payload, err := carrier.SDSPayload()
	switch {
	case err == nil:
		return sds.Describe(payload)
	case errors.Is(err, pdu.ErrFieldNotPresent):
		return "user defined data"
	default:
		return "invalid SDS-TL PDU: " + err.Error()
	}
}
