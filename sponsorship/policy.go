// Package sponsorship decides whether a transaction gets a fee payer and which key pays.
package sponsorship

import (
	"context"
	"fmt"

	"aptosyield/custody/amounts"
	"aptosyield/custody/assets"
	"aptosyield/custody/blockchains/aptos"
	"aptosyield/custody/common"
	"aptosyield/custody/errors"
	"aptosyield/custody/wallet"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// DefaultMinGasThreshold is 0.01 of the gas token.
var DefaultMinGasThreshold = decimal.New(1, -2)

type BalanceReader interface {
	GasBalance(ctx context.Context, addr aptos.AccountAddress) (uint64, error)
}

type Decision struct {
	Required bool
	Sponsor  *wallet.KeyPair
}

// Signer returns the sponsor as an aptos.Signer, or a nil interface when there is none.
func (d Decision) Signer() aptos.Signer {
	if d.Sponsor == nil {
		return nil
	}
	return d.Sponsor
}

// Policy holds the threshold and the single shared sponsor account. It never changes after startup.
type Policy struct {
	minGas  decimal.Decimal
	sponsor *wallet.KeyPair
}

// NewPolicy accepts a nil sponsor; sponsored requests then fail with ErrSponsorKeyMissing.
func NewPolicy(minGas decimal.Decimal, sponsor *wallet.KeyPair) *Policy {
	return &Policy{minGas: minGas, sponsor: sponsor}
}

// FromConfig builds the policy from the startup configuration.
func FromConfig(cfg *common.Config) (*Policy, error) {
	minGas := DefaultMinGasThreshold
	if raw := cfg.L1.Sponsorship.MinGasThreshold; raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errors.BuildErrMsg(errors.ConfigError, fmt.Errorf("sponsorship.minGasThreshold %q: %w", raw, err))
		}
		minGas = parsed
	}

	var sponsor *wallet.KeyPair
	if cfg.Env.SponsorPrivateKey != "" {
		kp, err := wallet.FromPrivateKeyHex(cfg.Env.SponsorPrivateKey)
		if err != nil {
			return nil, errors.BuildErrMsg(errors.ConfigError, fmt.Errorf("%s: %w", common.SponsorPrivateKey, err))
		}
		sponsor = kp
		log.WithField("sponsor", kp.Address().String()).Info("fee payer configured")
	} else {
		log.Warnf("%s is not set, sponsored transactions will be refused", common.SponsorPrivateKey)
	}
	return NewPolicy(minGas, sponsor), nil
}

func (p *Policy) MinGasThreshold() decimal.Decimal { return p.minGas }

// SponsorAddress is empty when no sponsor is configured.
func (p *Policy) SponsorAddress() string {
	if p.sponsor == nil {
		return ""
	}
	return p.sponsor.Address().String()
}

// Decide honours an explicit preference exactly; otherwise sponsorship is required when the
// sender's gas balance is below the threshold.
func (p *Policy) Decide(sender aptos.AccountAddress, gasBalance decimal.Decimal, explicit *bool) (Decision, error) {
	required := gasBalance.LessThan(p.minGas)
	if explicit != nil {
		required = *explicit
	}
	if !required {
		return Decision{}, nil
	}
	if p.sponsor == nil {
		return Decision{Required: true}, errors.ErrSponsorKeyMissing
	}
	log.WithFields(log.Fields{
		"sender":   sender.String(),
		"explicit": explicit != nil,
	}).Debug("transaction will be sponsored")
	return Decision{Required: true, Sponsor: p.sponsor}, nil
}

// Resolve is Decide with the balance read from the ledger. The balance is not read when the
// caller already stated a preference.
func (p *Policy) Resolve(ctx context.Context, ledger BalanceReader, sender aptos.AccountAddress, explicit *bool) (Decision, error) {
	if explicit != nil {
		return p.Decide(sender, decimal.Zero, explicit)
	}
	balance, err := BalanceFor(ctx, ledger, sender)
	if err != nil {
		return Decision{}, err
	}
	return p.Decide(sender, balance, nil)
}

// BalanceFor returns the sender's gas-token balance in human units.
func BalanceFor(ctx context.Context, ledger BalanceReader, sender aptos.AccountAddress) (decimal.Decimal, error) {
	octas, err := ledger.GasBalance(ctx, sender)
	if err != nil {
		return decimal.Zero, errors.BuildErrMsg(errors.BalanceError, err)
	}
	gas, err := assets.Lookup(assets.AptosCoin)
	if err != nil {
		return decimal.Zero, err
	}
	return amounts.FromOnChain(octas, gas), nil
}
