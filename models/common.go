package models

import (
	"encoding/json"

	"aptosyield/custody/assets"

	"github.com/shopspring/decimal"
)

// Account identifies the sending wallet: either a raw private key or an identity to re-derive from.
type Account struct {
	Email      string `json:"email"`
	UserID     string `json:"userId"`
	PrivateKey string `json:"privateKey"`
}

type WalletRequest struct {
	Email  string `json:"email" binding:"required"`
	UserID string `json:"userId" binding:"required"`
}

type WalletResponse struct {
	Address string `json:"address"`
}

// TxOptions are shared by every transaction request.
type TxOptions struct {
	UseSponsor          *bool  `json:"useSponsor"`
	WaitForConfirmation bool   `json:"waitForConfirmation"`
	Rounding            string `json:"rounding" binding:"omitempty,oneof=half ceil floor"`
}

// TransferRequest moves an amount of token (APT when empty) to receiver.
type TransferRequest struct {
	Account
	TxOptions
	Receiver string      `json:"receiver" binding:"required,aptos_address"`
	Amount   json.Number `json:"amount"`
	Token    string      `json:"token"`
}

// ProtocolRequest drives one lending or swap action against a protocol.
type ProtocolRequest struct {
	Account
	TxOptions
	Protocol string            `json:"protocol" binding:"required"`
	Token    string            `json:"token" binding:"required"`
	Amount   json.Number       `json:"amount"`
	Receiver string            `json:"receiver" binding:"omitempty,aptos_address"`
	Params   map[string]string `json:"params"`
}

type BalanceResponse struct {
	Address string          `json:"address"`
	Token   string          `json:"token"`
	Balance decimal.Decimal `json:"balance"`
}

type AssetsResponse struct {
	Version string              `json:"version"`
	Assets  []assets.Descriptor `json:"assets"`
	Actions []string            `json:"actions"`
}
