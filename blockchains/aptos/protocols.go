package aptos

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"aptosyield/custody/assets"
	"aptosyield/custody/errors"
)

// Protocol module addresses on mainnet.
const (
	FrameworkAddress = "0x1"
	JouleAddress     = "0x2fe576faa841347a9b1b32c869685deb75a15e3f62dfe37cbd6d52cc403a16f6"
	EchelonAddress   = "0xc6bc659f1649553c1a3fa05d9727433dc03843baac29473c817d06d39e7621ba"
	AriesAddress     = "0x9770fa9c725cbd97eb50b2be5f7416efdfd1f1554beb0750d4dae4c64e860da3"
	HyperionAddress  = "0x8b4a2c4bb53857c718a04c020b98f8c2e1f99a68b0f57389a8bf5434cd22e05c"
)

const (
	ProtocolAptos    = "aptos"
	ProtocolJoule    = "joule"
	ProtocolEchelon  = "echelon"
	ProtocolAries    = "aries"
	ProtocolHyperion = "hyperion"
)

const (
	ActionTransfer = "transfer"
	ActionLend     = "lend"
	ActionWithdraw = "withdraw"
	ActionBorrow   = "borrow"
	ActionRepay    = "repay"
	ActionSwap     = "swap"
)

// Argument sources understood by a template.
const (
	fromAmount    = "amount"
	fromReceiver  = "receiver"
	fromRecipient = "recipient" // receiver, or the sender when none was given
	fromAsset     = "asset"
	fromDeadline  = "deadline"
	paramPrefix   = "param:"
	literalPrefix = "lit:"
)

// ArgSpec says where one argument comes from and what Move type it has.
type ArgSpec struct {
	Kind    ArgKind
	From    string
	Default string
}

// CallTemplate is one row of the protocol table.
type CallTemplate struct {
	Function string
	// CoinTypeArg puts the asset's coin type in typeArguments.
	CoinTypeArg bool
	Args        []ArgSpec
}

type callKey struct {
	Protocol string
	Action   string
	Fungible bool
}

// Call is a protocol call ready for the builder.
type Call struct {
	FunctionID    string     `json:"functionId"`
	TypeArguments []string   `json:"typeArguments"`
	Arguments     []Argument `json:"functionArguments"`
}

// CallInputs are the per-request values a template draws from.
type CallInputs struct {
	Sender   AccountAddress
	Receiver string
	Amount   uint64
	Deadline uint64
	Params   map[string]string
}

func param(kind ArgKind, name, def string) ArgSpec {
	return ArgSpec{Kind: kind, From: paramPrefix + name, Default: def}
}

func literal(kind ArgKind, value string) ArgSpec {
	return ArgSpec{Kind: kind, From: literalPrefix + value}
}

var (
	amountArg    = ArgSpec{Kind: ArgU64, From: fromAmount}
	assetArg     = ArgSpec{Kind: ArgAddress, From: fromAsset}
	receiverArg  = ArgSpec{Kind: ArgAddress, From: fromReceiver}
	recipientArg = ArgSpec{Kind: ArgAddress, From: fromRecipient}
	deadlineArg  = ArgSpec{Kind: ArgU64, From: fromDeadline}

	joulePosition  = param(ArgString, "positionId", "1")
	jouleNewPos    = param(ArgBool, "newPosition", "false")
	joulePriceData = param(ArgBytesList, "priceUpdates", "")
	echelonMarket  = param(ArgAddress, "market", "")
	ariesProfile   = param(ArgString, "profile", "Main Account")
)

func fn(addr, module, name string) string {
	return addr + "::" + module + "::" + name
}

// callTable is keyed by (protocol, action, isFungible). Adding a protocol is adding rows here.
var callTable = map[callKey]CallTemplate{
	{ProtocolAptos, ActionTransfer, false}: {fn(FrameworkAddress, "aptos_account", "transfer_coins"), true, []ArgSpec{receiverArg, amountArg}},
	{ProtocolAptos, ActionTransfer, true}:  {fn(FrameworkAddress, "aptos_account", "transfer_fungible_assets"), false, []ArgSpec{assetArg, receiverArg, amountArg}},

	{ProtocolJoule, ActionLend, false}:     {fn(JouleAddress, "pool", "lend"), true, []ArgSpec{joulePosition, amountArg, jouleNewPos}},
	{ProtocolJoule, ActionLend, true}:      {fn(JouleAddress, "pool", "lend_fa"), false, []ArgSpec{joulePosition, assetArg, amountArg, jouleNewPos}},
	{ProtocolJoule, ActionWithdraw, false}: {fn(JouleAddress, "pool", "withdraw"), true, []ArgSpec{joulePosition, amountArg}},
	{ProtocolJoule, ActionWithdraw, true}:  {fn(JouleAddress, "pool", "withdraw_fa"), false, []ArgSpec{joulePosition, assetArg, amountArg}},
	{ProtocolJoule, ActionBorrow, false}:   {fn(JouleAddress, "pool", "borrow"), true, []ArgSpec{joulePosition, amountArg, joulePriceData}},
	{ProtocolJoule, ActionBorrow, true}:    {fn(JouleAddress, "pool", "borrow_fa"), false, []ArgSpec{joulePosition, assetArg, amountArg, joulePriceData}},
	{ProtocolJoule, ActionRepay, false}:    {fn(JouleAddress, "pool", "repay"), true, []ArgSpec{joulePosition, amountArg}},
	{ProtocolJoule, ActionRepay, true}:     {fn(JouleAddress, "pool", "repay_fa"), false, []ArgSpec{joulePosition, assetArg, amountArg}},

	{ProtocolEchelon, ActionLend, false}:     {fn(EchelonAddress, "scripts", "supply"), true, []ArgSpec{echelonMarket, amountArg}},
	{ProtocolEchelon, ActionLend, true}:      {fn(EchelonAddress, "scripts", "supply_fa"), false, []ArgSpec{echelonMarket, amountArg}},
	{ProtocolEchelon, ActionWithdraw, false}: {fn(EchelonAddress, "scripts", "withdraw"), true, []ArgSpec{echelonMarket, amountArg}},
	{ProtocolEchelon, ActionWithdraw, true}:  {fn(EchelonAddress, "scripts", "withdraw_fa"), false, []ArgSpec{echelonMarket, amountArg}},
	{ProtocolEchelon, ActionBorrow, false}:   {fn(EchelonAddress, "scripts", "borrow"), true, []ArgSpec{echelonMarket, amountArg}},
	{ProtocolEchelon, ActionBorrow, true}:    {fn(EchelonAddress, "scripts", "borrow_fa"), false, []ArgSpec{echelonMarket, amountArg}},
	{ProtocolEchelon, ActionRepay, false}:    {fn(EchelonAddress, "scripts", "repay"), true, []ArgSpec{echelonMarket, amountArg}},
	{ProtocolEchelon, ActionRepay, true}:     {fn(EchelonAddress, "scripts", "repay_fa"), false, []ArgSpec{echelonMarket, amountArg}},

	{ProtocolAries, ActionLend, false}:     {fn(AriesAddress, "controller", "deposit"), true, []ArgSpec{ariesProfile, amountArg, literal(ArgBool, "false")}},
	{ProtocolAries, ActionRepay, false}:    {fn(AriesAddress, "controller", "deposit"), true, []ArgSpec{ariesProfile, amountArg, literal(ArgBool, "true")}},
	{ProtocolAries, ActionWithdraw, false}: {fn(AriesAddress, "controller", "withdraw"), true, []ArgSpec{ariesProfile, amountArg, literal(ArgBool, "false")}},
	{ProtocolAries, ActionBorrow, false}:   {fn(AriesAddress, "controller", "withdraw"), true, []ArgSpec{ariesProfile, amountArg, literal(ArgBool, "true")}},

	{ProtocolHyperion, ActionSwap, true}: {fn(HyperionAddress, "router_v3", "exact_input_swap_entry"), false, []ArgSpec{
		param(ArgU8, "feeTier", "1"),
		amountArg,
		param(ArgU64, "amountOutMin", ""),
		param(ArgU128, "sqrtPriceLimit", "4295048016"),
		assetArg,
		param(ArgAddress, "toToken", ""),
		recipientArg,
		deadlineArg,
	}},
}

// Template returns the table row for a protocol action on an asset kind.
func Template(protocol, action string, fungible bool) (CallTemplate, error) {
	key := callKey{strings.ToLower(protocol), strings.ToLower(action), fungible}
	tmpl, ok := callTable[key]
	if !ok {
		kind := "coin"
		if fungible {
			kind = "fungible asset"
		}
		return CallTemplate{}, fmt.Errorf("%w: %s %s on a %s", errors.ErrUnknownProtocol, protocol, action, kind)
	}
	return tmpl, nil
}

// CallFor expands the table row for (protocol, action, asset kind) into a concrete call.
func CallFor(protocol, action string, asset assets.Descriptor, in CallInputs) (Call, error) {
	tmpl, err := Template(protocol, action, asset.IsFungible)
	if err != nil {
		return Call{}, err
	}

	call := Call{FunctionID: tmpl.Function, TypeArguments: []string{}}
	if tmpl.CoinTypeArg {
		call.TypeArguments = []string{asset.Token}
	}
	for _, spec := range tmpl.Args {
		value, err := resolve(spec, asset, in)
		if err != nil {
			return Call{}, err
		}
		call.Arguments = append(call.Arguments, Argument{Kind: spec.Kind, Value: value})
	}
	return call, nil
}

func resolve(spec ArgSpec, asset assets.Descriptor, in CallInputs) (string, error) {
	switch {
	case spec.From == fromAmount:
		return strconv.FormatUint(in.Amount, 10), nil
	case spec.From == fromAsset:
		return asset.Token, nil
	case spec.From == fromReceiver:
		if in.Receiver == "" {
			return "", fmt.Errorf("%w: receiver is required", errors.ErrUnknownFunction)
		}
		return in.Receiver, nil
	case spec.From == fromRecipient:
		if in.Receiver != "" {
			return in.Receiver, nil
		}
		return in.Sender.StringLong(), nil
	case spec.From == fromDeadline:
		return strconv.FormatUint(in.Deadline, 10), nil
	case strings.HasPrefix(spec.From, literalPrefix):
		return strings.TrimPrefix(spec.From, literalPrefix), nil
	case strings.HasPrefix(spec.From, paramPrefix):
		name := strings.TrimPrefix(spec.From, paramPrefix)
		if v, ok := in.Params[name]; ok && v != "" {
			return v, nil
		}
		if spec.Default == "" && spec.Kind != ArgBytesList {
			return "", fmt.Errorf("%w: missing parameter %q", errors.ErrUnknownFunction, name)
		}
		return spec.Default, nil
	}
	return "", fmt.Errorf("%w: unknown argument source %q", errors.ErrUnknownFunction, spec.From)
}

// Supported lists "protocol/action" pairs, for diagnostics and the assets endpoint.
func Supported() []string {
	seen := map[string]bool{}
	var out []string
	for key := range callTable {
		name := key.Protocol + "/" + key.Action
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
