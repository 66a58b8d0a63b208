package codec

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/ftl/tetra-air/pdu"
	"github.com/ftl/tetra-air/tetra"
)

// Record is the result of decoding one PDU.
type Record struct {
	Layer     Layer       `json:"layer"`
	Bits      string      `json:"bits"`
	PDU       string      `json:"pdu,omitempty"`
	Message   pdu.Message `json:"message,omitempty"`
	Trailing  string      `json:"trailing,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorKind string      `json:"error_kind,omitempty"`

	// ForeignNetworks lists the addressed networks that differ from the home network, see CheckNetworks.
	ForeignNetworks []string `json:"foreign_networks,omitempty"`
}

// Failed indicates if decoding the PDU failed.
func (r Record) Failed() bool {
	return r.Error != ""
}

// CheckNetworks fills ForeignNetworks with all mobile network identities addressed by the message that
// differ from the given home network.
func (r *Record) CheckNetworks(home tetra.MNI) {
	r.ForeignNetworks = nil
	if r.Message == nil {
		return
	}
	for _, network := range Networks(r.Message) {
		if network != home {
			r.ForeignNetworks = append(r.ForeignNetworks, network.String())
		}
	}
}

// StoredRecord is a Record read back from a record stream. The message is kept as generic map.
type StoredRecord struct {
	Layer           Layer          `json:"layer"`
	Bits            string         `json:"bits"`
	PDU             string         `json:"pdu,omitempty"`
	Message         map[string]any `json:"message,omitempty"`
	Trailing        string         `json:"trailing,omitempty"`
	Error           string         `json:"error,omitempty"`
	ErrorKind       string         `json:"error_kind,omitempty"`
	ForeignNetworks []string       `json:"foreign_networks,omitempty"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// RecordWriter writes records as CBOR sequence (RFC 8742).
type RecordWriter struct {
	encoder *cbor.Encoder
}

// NewRecordWriter returns a RecordWriter that writes to the given io.Writer.
func NewRecordWriter(w io.Writer) *RecordWriter {
	return &RecordWriter{
		encoder: encMode.NewEncoder(w),
	}
}

// Write one record.
func (w *RecordWriter) Write(record Record) error {
	return w.encoder.Encode(record)
}

// RecordReader reads records from a CBOR sequence written by RecordWriter.
type RecordReader struct {
	decoder *cbor.Decoder
}

// NewRecordReader returns a RecordReader that reads from the given io.Reader.
func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{
		decoder: decMode.NewDecoder(r),
	}
}

// Read the next record. At the end of the stream, io.EOF is returned.
func (r *RecordReader) Read() (StoredRecord, error) {
	var result StoredRecord
	err := r.decoder.Decode(&result)
	return result, err
}
