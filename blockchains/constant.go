package blockchains

import "fmt"

// Aptos networks
const (
	AptosMainnet = "mainnet"
	AptosTestnet = "testnet"
	AptosDevnet  = "devnet"
	AptosLocal   = "local"
)

type network struct {
	NodeURL string
	ChainID uint8
}

// Devnet is reset weekly, so its chain id is not pinned.
var networks = map[string]network{
	AptosMainnet: {NodeURL: "https://api.mainnet.aptoslabs.com/v1", ChainID: 1},
	AptosTestnet: {NodeURL: "https://api.testnet.aptoslabs.com/v1", ChainID: 2},
	AptosDevnet:  {NodeURL: "https://api.devnet.aptoslabs.com/v1"},
	AptosLocal:   {NodeURL: "http://127.0.0.1:8080/v1", ChainID: 4},
}

// NodeURL returns the public fullnode of a named network.
func NodeURL(name string) (string, error) {
	n, ok := networks[name]
	if !ok {
		return "", fmt.Errorf("unknown aptos network %q", name)
	}
	return n.NodeURL, nil
}

// ExpectedChainID reports the chain id a network must answer with; ok is false when it is not pinned.
func ExpectedChainID(name string) (id uint8, ok bool) {
	n, found := networks[name]
	if !found || n.ChainID == 0 {
		return 0, false
	}
	return n.ChainID, true
}
