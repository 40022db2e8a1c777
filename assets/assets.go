// Package assets holds the static, read-only table of supported Aptos assets.
package assets

import (
	"fmt"
	"strings"

	"aptosyield/custody/errors"
)

// Descriptor describes one asset. Decimals is the power-of-ten scaling factor
// (1000000 for a six decimal token), not a digit count.
type Descriptor struct {
	Symbol     string `json:"assetName"`
	Provider   string `json:"provider"`
	Token      string `json:"token"`
	Decimals   int64  `json:"decimals"`
	IsFungible bool   `json:"isFungible"`
}

// Version changes whenever the table below changes.
const Version = "2025-01"

// AptosCoin is the gas token and the default asset of a transfer.
const AptosCoin = "0x1::aptos_coin::AptosCoin"

var table = []Descriptor{
	{Symbol: "APT", Provider: "Aptos", Token: AptosCoin, Decimals: 100000000, IsFungible: false},
	{Symbol: "USDC", Provider: "Circle", Token: "0xbae207659db88bea0cbead6da0ed00aac12edcdda169e591cd41c94180b46f3b", Decimals: 1000000, IsFungible: true},
	{Symbol: "USDt", Provider: "Tether", Token: "0x357b0b74bc833e95a115ad22604854d6b0fca151cecd94111770e5d6ffc9dc2b", Decimals: 1000000, IsFungible: true},
	{Symbol: "zUSDC", Provider: "LayerZero", Token: "0xf22bede237a07e121b56d91a491eb7bcdfd1f5907926a9e58338f964a01b17fa::asset::USDC", Decimals: 1000000, IsFungible: false},
	{Symbol: "zUSDT", Provider: "LayerZero", Token: "0xf22bede237a07e121b56d91a491eb7bcdfd1f5907926a9e58338f964a01b17fa::asset::USDT", Decimals: 1000000, IsFungible: false},
	{Symbol: "zWETH", Provider: "LayerZero", Token: "0xf22bede237a07e121b56d91a491eb7bcdfd1f5907926a9e58338f964a01b17fa::asset::WETH", Decimals: 1000000, IsFungible: false},
	{Symbol: "amAPT", Provider: "Amnis", Token: "0x111ae3e5bc816a5e63c2da97d0aa3886519e0cd5e4b046659fa35796bd11542a::amapt_token::AmnisApt", Decimals: 100000000, IsFungible: false},
	{Symbol: "stAPT", Provider: "Amnis", Token: "0x111ae3e5bc816a5e63c2da97d0aa3886519e0cd5e4b046659fa35796bd11542a::stapt_token::StakedApt", Decimals: 100000000, IsFungible: false},
	{Symbol: "thAPT", Provider: "Thala", Token: "0xfaf4e633ae9eb31366c9ca24214231760926576c7b625313b3688b5e900731f6::staking::ThalaAPT", Decimals: 100000000, IsFungible: false},
	{Symbol: "sthAPT", Provider: "Thala", Token: "0xfaf4e633ae9eb31366c9ca24214231760926576c7b625313b3688b5e900731f6::staking::StakedThalaAPT", Decimals: 100000000, IsFungible: false},
	{Symbol: "WBTC", Provider: "LayerZero", Token: "0x68844a0d7f2587e726ad0579f3d640865bb4162c08a4589eeda3f9689ec52a3d", Decimals: 100000000, IsFungible: true},
}

var byToken, bySymbol = func() (map[string]Descriptor, map[string]Descriptor) {
	tokens := make(map[string]Descriptor, len(table))
	symbols := make(map[string]Descriptor, len(table))
	for _, d := range table {
		tokens[normalize(d.Token)] = d
		symbols[normalize(d.Symbol)] = d
	}
	return tokens, symbols
}()

// normalize lowercases a token and strips leading zeros from its address part, so short and
// long address forms of the same id match.
func normalize(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	if !strings.HasPrefix(t, "0x") {
		return t
	}
	addr, rest, qualified := strings.Cut(t[2:], "::")
	addr = strings.TrimLeft(addr, "0")
	if addr == "" {
		addr = "0"
	}
	if qualified {
		return "0x" + addr + "::" + rest
	}
	return "0x" + addr
}

// Lookup finds an asset by its on-chain id, or by symbol when no id matches.
func Lookup(token string) (Descriptor, error) {
	d, ok := byToken[normalize(token)]
	if !ok {
		d, ok = bySymbol[normalize(token)]
	}
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", errors.ErrUnknownToken, token)
	}
	return d, nil
}

// All returns a copy of the table.
func All() []Descriptor {
	out := make([]Descriptor, len(table))
	copy(out, table)
	return out
}
