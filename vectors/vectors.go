/*
The package vectors runs conformance vectors against the PDU codec. A vector file is written in YAML:

	vectors:
	  - name: "U-ITSI DETACH"
	    layer: mm-ul
	    bits: "0001110011001100000101001110010"
	    pdu: "U-ITSI DETACH"
	  - name: "truncated"
	    layer: mm-ul
	    bits: "00011100"
	    error: buffer_exhausted

A vector without error must decode into the given PDU, consume all bits, and encode back into the same bits.
A vector with error must fail with the given kind of error and leave the cursor at the start of the PDU.
*/
package vectors

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/codec"
)

// ErrMismatch indicates that the outcome of a vector differs from the expectation.
var ErrMismatch = errors.New("vector mismatch")

var errorKinds = map[string]bool{
	"buffer_exhausted": true,
	"type_mismatch":    true,
	"terminator":       true,
	"not_present":      true,
	"out_of_bounds":    true,
	"invalid_value":    true,
	"unknown_element":  true,
}

type Vector struct {
	Name  string `yaml:"name"`
	Layer string `yaml:"layer"`
	Bits  string `yaml:"bits"`
	PDU   string `yaml:"pdu,omitempty"`
	Error string `yaml:"error,omitempty"`
}

type file struct {
	Vectors []Vector `yaml:"vectors"`
}

// Load reads the vectors from the YAML file at the given path.
func Load(path string) ([]Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load vectors: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read reads the vectors from YAML. Unknown keys and incomplete vectors are rejected.
func Read(r io.Reader) ([]Vector, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var content file
	err := decoder.Decode(&content)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse vectors: %w", err)
	}

	for i, vector := range content.Vectors {
		if err := vector.validate(); err != nil {
			return nil, fmt.Errorf("vector %d: %w", i+1, err)
		}
	}
	return content.Vectors, nil
}

func (v Vector) validate() error {
	switch {
	case v.Name == "":
		return errors.New("no name")
	case v.Layer == "":
		return fmt.Errorf("%s: no layer", v.Name)
	case v.Error != "" && !errorKinds[v.Error]:
		return fmt.Errorf("%s: unknown error kind %q", v.Name, v.Error)
	case v.Error != "" && v.PDU != "":
		return fmt.Errorf("%s: pdu and error are mutually exclusive", v.Name)
	}
	if _, err := bitbuf.FromBitString(v.Bits); err != nil {
		return fmt.Errorf("%s: %w", v.Name, err)
	}
	return nil
}

// Result of running one vector.
type Result struct {
	Vector Vector
	Record codec.Record
	// Encoded contains the bits of the re-encoded PDU.
	Encoded string
	// Err is nil if the vector passed.
	Err error
}

func (r Result) Passed() bool {
	return r.Err == nil
}

// Run decodes the bits of the given vector and checks the outcome against the expectation.
func Run(vector Vector) Result {
	result := Result{Vector: vector}

	layer, err := codec.ParseLayer(vector.Layer)
	if err != nil {
		result.Err = err
		return result
	}
	buf, err := bitbuf.FromBitString(vector.Bits)
	if err != nil {
		result.Err = err
		return result
	}

	result.Record, err = codec.Decode(layer, buf)
	if vector.Error != "" {
		switch {
		case err == nil:
			result.Err = fmt.Errorf("%w: expected %s, got %s", ErrMismatch, vector.Error, result.Record.PDU)
		case result.Record.ErrorKind != vector.Error:
			result.Err = fmt.Errorf("%w: expected %s, got %s (%v)", ErrMismatch, vector.Error, result.Record.ErrorKind, err)
		case buf.Pos() != 0:
			result.Err = fmt.Errorf("%w: cursor moved to %d", ErrMismatch, buf.Pos())
		}
		return result
	}
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrMismatch, err)
		return result
	}
	if vector.PDU != "" && result.Record.PDU != vector.PDU {
		result.Err = fmt.Errorf("%w: expected %s, got %s", ErrMismatch, vector.PDU, result.Record.PDU)
		return result
	}
	if result.Record.Trailing != "" {
		result.Err = fmt.Errorf("%w: %d bits not consumed: %s", ErrMismatch, len(result.Record.Trailing), result.Record.Trailing)
		return result
	}

	result.Encoded, err = codec.Encode(result.Record.Message)
	if err != nil {
		result.Err = fmt.Errorf("%w: encode: %v", ErrMismatch, err)
		return result
	}
	if result.Encoded != buf.BitString() {
		result.Err = fmt.Errorf("%w: encoded %s", ErrMismatch, result.Encoded)
	}
	return result
}

// RunAll runs all vectors and returns the results and the number of failed vectors.
func RunAll(vectors []Vector) ([]Result, int) {
	results := make([]Result, 0, len(vectors))
	failed := 0
	for _, vector := range vectors {
		result := Run(vector)
		if !result.Passed() {
			failed++
		}
		results = append(results, result)
	}
	return results, failed
}
