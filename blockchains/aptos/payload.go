package aptos

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"aptosyield/custody/errors"

	"github.com/aptos-labs/aptos-go-sdk/bcs"
)

// ArgKind is the Move type of one entry-function argument.
type ArgKind string

const (
	ArgAddress ArgKind = "address"
	ArgBool    ArgKind = "bool"
	ArgU8      ArgKind = "u8"
	ArgU64     ArgKind = "u64"
	ArgU128    ArgKind = "u128"
	ArgString  ArgKind = "string"
	// ArgBytesList is vector<vector<u8>>, written as comma separated hex blobs.
	ArgBytesList ArgKind = "vector<vector<u8>>"
)

// Argument is an entry-function argument in its textual form.
type Argument struct {
	Kind  ArgKind `json:"kind"`
	Value string  `json:"value"`
}

// Encode returns the BCS bytes of the argument value.
func (a Argument) Encode() ([]byte, error) {
	ser := &bcs.Serializer{}
	switch a.Kind {
	case ArgAddress:
		addr, err := ParseAddress(a.Value)
		if err != nil {
			return nil, err
		}
		addr.MarshalBCS(ser)
	case ArgBool:
		v, err := strconv.ParseBool(a.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid bool argument %q", a.Value)
		}
		ser.Bool(v)
	case ArgU8:
		v, err := strconv.ParseUint(a.Value, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid u8 argument %q", a.Value)
		}
		ser.U8(uint8(v))
	case ArgU64:
		v, err := strconv.ParseUint(a.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid u64 argument %q", a.Value)
		}
		ser.U64(v)
	case ArgU128:
		le, err := u128LittleEndian(a.Value)
		if err != nil {
			return nil, err
		}
		ser.FixedBytes(le)
	case ArgString:
		ser.WriteString(a.Value)
	case ArgBytesList:
		var blobs []string
		if strings.TrimSpace(a.Value) != "" {
			blobs = strings.Split(a.Value, ",")
		}
		ser.Uleb128(uint32(len(blobs)))
		for _, blob := range blobs {
			b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(blob), "0x"))
			if err != nil {
				return nil, fmt.Errorf("invalid hex blob %q: %w", blob, err)
			}
			ser.WriteBytes(b)
		}
	default:
		return nil, fmt.Errorf("unsupported argument kind %q", a.Kind)
	}
	if err := ser.Error(); err != nil {
		return nil, err
	}
	return ser.ToBytes(), nil
}

var maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

func u128LittleEndian(s string) ([]byte, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 || v.Cmp(maxU128) > 0 {
		return nil, fmt.Errorf("invalid u128 argument %q", s)
	}
	be := v.FillBytes(make([]byte, 16))
	le := make([]byte, 16)
	for i := range be {
		le[i] = be[15-i]
	}
	return le, nil
}

// FunctionID is a parsed 0xADDR::module::function identifier.
type FunctionID struct {
	Module   AccountAddress
	ModName  string
	Function string
}

// ParseFunctionID rejects anything that is not address::module::function.
func ParseFunctionID(s string) (FunctionID, error) {
	parts := strings.Split(strings.TrimSpace(s), "::")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return FunctionID{}, fmt.Errorf("%w: malformed function id %q", errors.ErrUnknownFunction, s)
	}
	addr, err := ParseAddress(parts[0])
	if err != nil {
		return FunctionID{}, fmt.Errorf("%w: %v", errors.ErrUnknownFunction, err)
	}
	return FunctionID{Module: addr, ModName: parts[1], Function: parts[2]}, nil
}

func (f FunctionID) String() string {
	return f.Module.String() + "::" + f.ModName + "::" + f.Function
}

// EntryFunction is the BCS shape of an entry-function call.
type EntryFunction struct {
	Function FunctionID
	TypeArgs []TypeTag
	Args     [][]byte
}

// Payload variant of TransactionPayload::EntryFunction.
const payloadEntryFunction uint32 = 2

func (e EntryFunction) MarshalBCS(ser *bcs.Serializer) {
	ser.Uleb128(payloadEntryFunction)
	e.Function.Module.MarshalBCS(ser)
	ser.WriteString(e.Function.ModName)
	ser.WriteString(e.Function.Function)
	ser.Uleb128(uint32(len(e.TypeArgs)))
	for _, t := range e.TypeArgs {
		t.MarshalBCS(ser)
	}
	ser.Uleb128(uint32(len(e.Args)))
	for _, a := range e.Args {
		ser.WriteBytes(a)
	}
}
