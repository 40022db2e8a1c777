package aptos

import (
	"fmt"
	"strings"

	"github.com/aptos-labs/aptos-go-sdk/bcs"
)

// TypeTag variants, in BCS enum order.
const (
	TagBool uint32 = iota
	TagU8
	TagU64
	TagU128
	TagAddress
	TagSigner
	TagVector
	TagStruct
	TagU16
	TagU32
	TagU256
)

var primitiveTags = map[string]uint32{
	"bool":    TagBool,
	"u8":      TagU8,
	"u16":     TagU16,
	"u32":     TagU32,
	"u64":     TagU64,
	"u128":    TagU128,
	"u256":    TagU256,
	"address": TagAddress,
	"signer":  TagSigner,
}

// TypeTag is a parsed Move type such as u64, vector<u8> or 0x1::aptos_coin::AptosCoin.
type TypeTag struct {
	Variant uint32
	// Elem is set for vectors.
	Elem *TypeTag
	// Struct is set for structs.
	Struct *StructTag
}

type StructTag struct {
	Address    AccountAddress
	Module     string
	Name       string
	TypeParams []TypeTag
}

func (t TypeTag) MarshalBCS(ser *bcs.Serializer) {
	ser.Uleb128(t.Variant)
	switch t.Variant {
	case TagVector:
		t.Elem.MarshalBCS(ser)
	case TagStruct:
		t.Struct.MarshalBCS(ser)
	}
}

func (s StructTag) MarshalBCS(ser *bcs.Serializer) {
	s.Address.MarshalBCS(ser)
	ser.WriteString(s.Module)
	ser.WriteString(s.Name)
	ser.Uleb128(uint32(len(s.TypeParams)))
	for _, p := range s.TypeParams {
		p.MarshalBCS(ser)
	}
}

func (t TypeTag) String() string {
	switch t.Variant {
	case TagVector:
		return "vector<" + t.Elem.String() + ">"
	case TagStruct:
		return t.Struct.String()
	}
	for name, v := range primitiveTags {
		if v == t.Variant {
			return name
		}
	}
	return fmt.Sprintf("unknown(%d)", t.Variant)
}

func (s StructTag) String() string {
	out := s.Address.String() + "::" + s.Module + "::" + s.Name
	if len(s.TypeParams) == 0 {
		return out
	}
	params := make([]string, len(s.TypeParams))
	for i, p := range s.TypeParams {
		params[i] = p.String()
	}
	return out + "<" + strings.Join(params, ", ") + ">"
}

// ParseTypeTag parses a Move type string.
func ParseTypeTag(s string) (TypeTag, error) {
	p := &typeParser{src: strings.TrimSpace(s)}
	tag, err := p.parse()
	if err != nil {
		return TypeTag{}, err
	}
	if p.pos != len(p.src) {
		return TypeTag{}, fmt.Errorf("unexpected trailing input in type %q", s)
	}
	return tag, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

// ident reads up to the next delimiter.
func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '<' || c == '>' || c == ',' || c == ' ' || c == ':' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) expect(tok string) error {
	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], tok) {
		return fmt.Errorf("expected %q at offset %d in type %q", tok, p.pos, p.src)
	}
	p.pos += len(tok)
	return nil
}

func (p *typeParser) peek(tok string) bool {
	p.skipSpace()
	return strings.HasPrefix(p.src[p.pos:], tok)
}

func (p *typeParser) parse() (TypeTag, error) {
	head := p.ident()
	if head == "" {
		return TypeTag{}, fmt.Errorf("empty type at offset %d in %q", p.pos, p.src)
	}
	if v, ok := primitiveTags[head]; ok {
		return TypeTag{Variant: v}, nil
	}
	if head == "vector" {
		if err := p.expect("<"); err != nil {
			return TypeTag{}, err
		}
		elem, err := p.parse()
		if err != nil {
			return TypeTag{}, err
		}
		if err := p.expect(">"); err != nil {
			return TypeTag{}, err
		}
		return TypeTag{Variant: TagVector, Elem: &elem}, nil
	}

	addr, err := ParseAddress(head)
	if err != nil {
		return TypeTag{}, err
	}
	if err := p.expect("::"); err != nil {
		return TypeTag{}, err
	}
	module := p.ident()
	if err := p.expect("::"); err != nil {
		return TypeTag{}, err
	}
	name := p.ident()
	if module == "" || name == "" {
		return TypeTag{}, fmt.Errorf("incomplete struct type %q", p.src)
	}
	st := &StructTag{Address: addr, Module: module, Name: name}
	if p.peek("<") {
		p.pos++
		for {
			param, err := p.parse()
			if err != nil {
				return TypeTag{}, err
			}
			st.TypeParams = append(st.TypeParams, param)
			if p.peek(",") {
				p.pos++
				continue
			}
			if err := p.expect(">"); err != nil {
				return TypeTag{}, err
			}
			break
		}
	}
	return TypeTag{Variant: TagStruct, Struct: st}, nil
}
