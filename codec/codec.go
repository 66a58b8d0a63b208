/*
The package codec maps the names of the supported protocol layers to their PDU decoders and wraps the
result of one decoding run into a Record.
*/
package codec

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ftl/tetra-air/bitbuf"
	"github.com/ftl/tetra-air/cmce"
	"github.com/ftl/tetra-air/mm"
	"github.com/ftl/tetra-air/pdu"
)

// Layer names a protocol entity and the direction of the PDUs.
type Layer string

// All supported layers
const (
	MMDownlink   Layer = "mm-dl"
	MMUplink     Layer = "mm-ul"
	CMCEDownlink Layer = "cmce-dl"
	CMCEUplink   Layer = "cmce-ul"
)

// ErrUnknownLayer is returned for layer names that have no decoder.
var ErrUnknownLayer = errors.New("unknown layer")

// DecodeFunc decodes one PDU starting at the cursor of the given buffer.
type DecodeFunc func(*bitbuf.Buffer) (pdu.Message, error)

var decoders = map[Layer]DecodeFunc{
	MMDownlink:   mm.DecodeDownlink,
	MMUplink:     mm.DecodeUplink,
	CMCEDownlink: cmce.DecodeDownlink,
	CMCEUplink:   cmce.DecodeUplink,
}

// Names returns the names of all supported layers in alphabetical order.
func Names() []string {
	result := make([]string, 0, len(decoders))
	for layer := range decoders {
		result = append(result, string(layer))
	}
	slices.Sort(result)
	return result
}

// ParseLayer returns the layer with the given name.
func ParseLayer(name string) (Layer, error) {
	layer := Layer(name)
	if _, ok := decoders[layer]; !ok {
		return "", fmt.Errorf("%s: %w", name, ErrUnknownLayer)
	}
	return layer, nil
}

// Decode decodes one PDU of the given layer from the cursor of the buffer. The record is also filled
// if decoding fails, the error is then contained in the record and returned.
func Decode(layer Layer, buf *bitbuf.Buffer) (Record, error) {
	decode, ok := decoders[layer]
	if !ok {
		return Record{}, fmt.Errorf("%s: %w", layer, ErrUnknownLayer)
	}

	result := Record{
		Layer: layer,
		Bits:  buf.Unread(),
	}
	message, err := decode(buf)
	if err != nil {
		result.Error = err.Error()
		result.ErrorKind = pdu.ErrorKind(err)
		return result, err
	}

	result.PDU = message.PDUName()
	result.Message = message
	if buf.Remaining() > 0 {
		result.Trailing = buf.Unread()
	}
	return result, nil
}

// Encode writes the given message into a new buffer and returns its bits.
func Encode(message pdu.Message) (string, error) {
	buf, err := pdu.Marshal(message)
	if err != nil {
		return "", err
	}
	return buf.BitString(), nil
}
