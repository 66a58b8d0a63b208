package pdu

import (
	"fmt"

	"github.com/ftl/tetra-air/bitbuf"
)

// Codec is implemented by everything that can be decoded from and encoded into a bit buffer.
type Codec interface {
	Decode(buf *bitbuf.Buffer) error
	Encode(buf *bitbuf.Buffer) error
}

// Message is a complete layer 3 PDU.
type Message interface {
	Codec
	PDUName() string
}

// Marshal encodes the given codec into a new buffer.
func Marshal(c Codec) (*bitbuf.Buffer, error) {
	buf := bitbuf.NewAutoExpand(128)
	if err := c.Encode(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Unsigned is the set of value types that can be bound to type 1 fields.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Kind is the element class of a field.
type Kind int

// All element classes, see [AI] E.1
const (
	KindType1 Kind = iota
	KindConditional
	KindType2
	KindType3
	KindType4
)

func (k Kind) String() string {
	switch k {
	case KindType1:
		return "type1"
	case KindConditional:
		return "conditional"
	case KindType2:
		return "type2"
	case KindType3:
		return "type3"
	case KindType4:
		return "type4"
	default:
		return fmt.Sprintf("kind%d", int(k))
	}
}

// Field describes one element of a PDU and binds it to the struct field that holds its value.
type Field struct {
	Name  string
	Kind  Kind
	Width int
	ID    uint64

	when   func() bool
	decode func(buf *bitbuf.Buffer) error
	encode func(buf *bitbuf.Buffer) error
	isSet  func() bool
	reset  func()
}

// If makes this field conditional: it is only present on the wire if cond returns true.
// The condition usually depends on a field that was decoded before.
func (f Field) If(cond func() bool) Field {
	f.Kind = KindConditional
	f.when = cond
	return f
}

func (f Field) tagged() bool {
	return f.Kind == KindType3 || f.Kind == KindType4
}

func (f Field) active() bool {
	return f.when == nil || f.when()
}

func fitsWidth(value uint64, width int) bool {
	return width >= bitbuf.MaxFieldWidth || value < 1<<width
}

func always() bool { return true }

// Type1 binds a mandatory fixed width field.
func Type1[T Unsigned](name string, width int, v *T) Field {
	return Field{
		Name:  name,
		Kind:  KindType1,
		Width: width,
		decode: func(buf *bitbuf.Buffer) error {
			value, err := buf.ReadField(width, name)
			if err != nil {
				return err
			}
			*v = T(value)
			return nil
		},
		encode: func(buf *bitbuf.Buffer) error {
			if !fitsWidth(uint64(*v), width) {
				return &ValueError{Field: name, Value: uint64(*v)}
			}
			buf.WriteBits(uint64(*v), width)
			return nil
		},
		isSet: always,
		reset: func() {
			var zero T
			*v = zero
		},
	}
}

// Enum binds a mandatory fixed width field whose value must be accepted by valid.
// Values outside of the valid set are ErrInvalidValue on decode and on encode.
func Enum[T Unsigned](name string, width int, v *T, valid func(T) bool) Field {
	result := Type1(name, width, v)
	decode := result.decode
	encode := result.encode
	result.decode = func(buf *bitbuf.Buffer) error {
		start := buf.Pos()
		if err := decode(buf); err != nil {
			return err
		}
		if !valid(*v) {
			buf.Seek(start)
			return &ValueError{Field: name, Value: uint64(*v)}
		}
		return nil
	}
	result.encode = func(buf *bitbuf.Buffer) error {
		if !valid(*v) {
			return &ValueError{Field: name, Value: uint64(*v)}
		}
		return encode(buf)
	}
	return result
}

// Bit binds a mandatory single bit flag.
func Bit(name string, v *bool) Field {
	return Field{
		Name:  name,
		Kind:  KindType1,
		Width: 1,
		decode: func(buf *bitbuf.Buffer) error {
			value, err := buf.ReadBool(name)
			if err != nil {
				return err
			}
			*v = value
			return nil
		},
		encode: func(buf *bitbuf.Buffer) error {
			buf.WriteBit(*v)
			return nil
		},
		isSet: always,
		reset: func() { *v = false },
	}
}

// Span binds a variable length field that is preceded by its length in bits.
func Span(name string, lengthWidth int, v *bitbuf.Span) Field {
	return Field{
		Name:  name,
		Kind:  KindType1,
		Width: lengthWidth,
		decode: func(buf *bitbuf.Buffer) error {
			start := buf.Pos()
			length, err := buf.ReadField(lengthWidth, name+"_length")
			if err != nil {
				return err
			}
			value, err := buf.ReadSpan(int(length), name)
			if err != nil {
				buf.Seek(start)
				return err
			}
			*v = value
			return nil
		},
		encode: func(buf *bitbuf.Buffer) error {
			if !v.Valid() || !fitsWidth(uint64(v.Len), lengthWidth) {
				return &ValueError{Field: name + "_length", Value: uint64(v.Len)}
			}
			buf.WriteBits(uint64(v.Len), lengthWidth)
			buf.WriteSpan(*v)
			return nil
		},
		isSet: always,
		reset: func() { *v = bitbuf.Span{} },
	}
}

// Conditional binds a field without presence flag that is only present on the wire if cond returns true.
// The bound value is nil if the field is absent.
func Conditional(name string, width int, v **uint64, cond func() bool) Field {
	return Field{
		Name:  name,
		Kind:  KindConditional,
		Width: width,
		when:  cond,
		decode: func(buf *bitbuf.Buffer) error {
			value, err := buf.ReadField(width, name)
			if err != nil {
				return err
			}
			*v = &value
			return nil
		},
		encode: func(buf *bitbuf.Buffer) error {
			if *v == nil {
				return &FieldError{Field: name, Err: fmt.Errorf("required by condition but missing: %w", ErrInvalidValue)}
			}
			if !fitsWidth(**v, width) {
				return &ValueError{Field: name, Value: **v}
			}
			buf.WriteBits(**v, width)
			return nil
		},
		isSet: func() bool { return *v != nil },
		reset: func() { *v = nil },
	}
}

// Type2 binds an optional fixed width element announced by a p-bit. The bound value is nil if the element is absent.
func Type2(name string, width int, v **uint64) Field {
	return Field{
		Name:  name,
		Kind:  KindType2,
		Width: width,
		decode: func(buf *bitbuf.Buffer) error {
			value, present, err := DecodeType2(buf, width, name)
			if err != nil {
				return err
			}
			if present {
				*v = &value
			}
			return nil
		},
		encode: func(buf *bitbuf.Buffer) error {
			if *v == nil {
				EncodeType2(buf, 0, false, width)
				return nil
			}
			if !fitsWidth(**v, width) {
				return &ValueError{Field: name, Value: **v}
			}
			EncodeType2(buf, **v, true, width)
			return nil
		},
		isSet: func() bool { return *v != nil },
		reset: func() { *v = nil },
	}
}

// Type3 binds an optional type 3 element with the given element identifier.
func Type3(name string, id uint64, v **Type3Element) Field {
	return Field{
		Name: name,
		Kind: KindType3,
		ID:   id,
		decode: func(buf *bitbuf.Buffer) error {
			length, data, err := TryParseType3(buf, id)
			if err != nil {
				return err
			}
			*v = &Type3Element{ID: id, Len: length, Data: data}
			return nil
		},
		encode: func(buf *bitbuf.Buffer) error {
			element := *v
			if element.Len > bitbuf.MaxFieldWidth || element.Len < 0 {
				return &ValueError{Field: name, Value: uint64(element.Len)}
			}
			WriteType3(buf, id, element.Data, element.Len)
			return nil
		},
		isSet: func() bool { return *v != nil },
		reset: func() { *v = nil },
	}
}

// Type3Span binds an optional type 3 element whose payload is kept as span, so it may be wider than 64 bits.
func Type3Span(name string, id uint64, v **Type3Payload) Field {
	return Field{
		Name: name,
		Kind: KindType3,
		ID:   id,
		decode: func(buf *bitbuf.Buffer) error {
			payload, err := TryParseType3Span(buf, id)
			if err != nil {
				return err
			}
			*v = &Type3Payload{ID: id, Payload: payload}
			return nil
		},
		encode: func(buf *bitbuf.Buffer) error {
			if err := WriteType3Span(buf, id, (*v).Payload); err != nil {
				return &FieldError{Field: name, Err: err}
			}
			return nil
		},
		isSet: func() bool { return *v != nil },
		reset: func() { *v = nil },
	}
}

// Type4 binds an optional type 4 element with the given element identifier. The sub-elements are kept undecoded.
func Type4(name string, id uint64, v **Type4Element) Field {
	return Field{
		Name: name,
		Kind: KindType4,
		ID:   id,
		decode: func(buf *bitbuf.Buffer) error {
			start := buf.Pos()
			count, remaining, err := ParseType4Header(buf, id)
			if err != nil {
				return err
			}
			payload, err := buf.ReadSpan(remaining, name)
			if err != nil {
				buf.Seek(start)
				return fmt.Errorf("%v: %w", err, ErrOutOfBounds)
			}
			*v = &Type4Element{ID: id, Count: count, Payload: payload}
			return nil
		},
		encode: func(buf *bitbuf.Buffer) error {
			return WriteType4(buf, id, (*v).Count, (*v).Payload)
		},
		isSet: func() bool { return *v != nil },
		reset: func() { *v = nil },
	}
}

// Type4List binds an optional type 4 element whose repeated sub-elements are decoded with their own codec.
// The sub-elements must fill exactly the length declared in the element header.
func Type4List[E any, P interface {
	*E
	Codec
}](name string, id uint64, v *[]E) Field {
	return Field{
		Name: name,
		Kind: KindType4,
		ID:   id,
		decode: func(buf *bitbuf.Buffer) error {
			count, remaining, err := ParseType4Header(buf, id)
			if err != nil {
				return err
			}
			start := buf.Pos()
			items := make([]E, count)
			for i := range items {
				if err := P(&items[i]).Decode(buf); err != nil {
					return fmt.Errorf("%s[%d]: %w", name, i, err)
				}
			}
			consumed := buf.Pos() - start
			if consumed != remaining {
				return &LengthError{Field: name, Declared: remaining, Consumed: consumed}
			}
			*v = items
			return nil
		},
		encode: func(buf *bitbuf.Buffer) error {
			payload := bitbuf.NewAutoExpand(32 * len(*v))
			for i := range *v {
				if err := P(&(*v)[i]).Encode(payload); err != nil {
					return fmt.Errorf("%s[%d]: %w", name, i, err)
				}
			}
			return WriteType4(buf, id, len(*v), bitbuf.Span{Data: payload.Bytes(), Len: payload.Len()})
		},
		isSet: func() bool { return len(*v) > 0 },
		reset: func() { *v = nil },
	}
}

// Schema describes the layout of a PDU or of a sub-element.
type Schema struct {
	Name string

	// TypeWidth is the width of the leading PDU type discriminator, 0 if the schema has none.
	TypeWidth int
	Type      uint64

	// Fixed holds the type 1 and conditional fields in front of the o-bit.
	Fixed []Field

	// Optional holds the fields behind the o-bit. If it is empty, the PDU has no o-bit.
	// Type 2 and conditional fields are listed before type 3 and type 4 fields.
	Optional []Field
}

// Decode reads all fields of the schema from the buffer into the bound values.
func Decode(buf *bitbuf.Buffer, s Schema) error {
	if s.TypeWidth > 0 {
		found, err := buf.ReadField(s.TypeWidth, "pdu_type")
		if err != nil {
			return wrap(s.Name, err)
		}
		if found != s.Type {
			return &TypeMismatchError{PDU: s.Name, Expected: s.Type, Found: found}
		}
	}

	for _, f := range s.Fixed {
		if f.Kind == KindConditional {
			f.reset()
		}
	}
	for _, f := range s.Optional {
		f.reset()
	}

	for _, f := range s.Fixed {
		if !f.active() {
			continue
		}
		if err := f.decode(buf); err != nil {
			return wrap(s.Name, err)
		}
	}

	if len(s.Optional) == 0 {
		return nil
	}

	obit, err := ReadObit(buf)
	if err != nil {
		return wrap(s.Name, err)
	}
	if !obit {
		return nil
	}

	tagged := make([]Field, 0, len(s.Optional))
	for _, f := range s.Optional {
		if f.tagged() {
			tagged = append(tagged, f)
			continue
		}
		if !f.active() {
			continue
		}
		if err := f.decode(buf); err != nil {
			return wrap(s.Name, err)
		}
	}
	if len(tagged) == 0 {
		return nil
	}

	return wrap(s.Name, decodeTagged(buf, tagged))
}

// decodeTagged matches the type 3 and type 4 elements in the buffer against the given fields.
// Each field is matched at most once, the elements may appear in any order.
func decodeTagged(buf *bitbuf.Buffer, tagged []Field) error {
	matched := make([]bool, len(tagged))
	for {
		more, ok := buf.PeekBits(MbitWidth)
		if !ok || more == 0 {
			break
		}
		id, ok := buf.PeekBitsAt(MbitWidth, ElementIDWidth)
		if !ok {
			return fmt.Errorf("m-bit set without element identifier: %w", ErrInvalidTerminator)
		}

		i := matchTagged(tagged, matched, id)
		if i < 0 {
			return &UnexpectedElementError{ID: id, Repeated: isMatched(tagged, matched, id)}
		}
		if err := tagged[i].decode(buf); err != nil {
			return &FieldError{Field: tagged[i].Name, Err: err}
		}
		matched[i] = true
	}
	return ReadTerminator(buf)
}

func matchTagged(tagged []Field, matched []bool, id uint64) int {
	for i, f := range tagged {
		if !matched[i] && f.ID == id {
			return i
		}
	}
	return -1
}

func isMatched(tagged []Field, matched []bool, id uint64) bool {
	for i, f := range tagged {
		if matched[i] && f.ID == id {
			return true
		}
	}
	return false
}

// Encode writes all fields of the schema from the bound values into the buffer.
func Encode(buf *bitbuf.Buffer, s Schema) error {
	if s.TypeWidth > 0 {
		buf.WriteBits(s.Type, s.TypeWidth)
	}

	for _, f := range s.Fixed {
		if !f.active() {
			continue
		}
		if err := f.encode(buf); err != nil {
			return wrap(s.Name, err)
		}
	}

	if len(s.Optional) == 0 {
		return nil
	}

	obit := false
	hasTagged := false
	for _, f := range s.Optional {
		hasTagged = hasTagged || f.tagged()
		if f.Kind != KindConditional && f.isSet() {
			obit = true
		}
	}
	WriteObit(buf, obit)
	if !obit {
		return nil
	}

	for _, f := range s.Optional {
		if f.tagged() || !f.active() {
			continue
		}
		if err := f.encode(buf); err != nil {
			return wrap(s.Name, err)
		}
	}
	for _, f := range s.Optional {
		if !f.tagged() || !f.isSet() {
			continue
		}
		if err := f.encode(buf); err != nil {
			return wrap(s.Name, err)
		}
	}
	if hasTagged {
		WriteMbit(buf, false)
	}
	return nil
}

func wrap(name string, err error) error {
	if err == nil || name == "" {
		return err
	}
	return fmt.Errorf("%s: %w", name, err)
}
