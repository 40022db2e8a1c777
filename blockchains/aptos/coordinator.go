package aptos

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"time"

	"aptosyield/custody/common"
	"aptosyield/custody/errors"

	log "github.com/sirupsen/logrus"
)

// State is a step of the submission lifecycle.
type State string

const (
	StateBuilt          State = "built"
	StateSenderSigned   State = "senderSigned"
	StateFeePayerSigned State = "feePayerSigned"
	StateSubmitted      State = "submitted"
	StateConfirmed      State = "confirmed"
	StateFailed         State = "failed"
)

// Signer is an Ed25519 account able to sign signing messages.
type Signer interface {
	Address() AccountAddress
	PublicKey() ed25519.PublicKey
	Sign(message []byte) []byte
}

type Submitter interface {
	SubmitBCS(ctx context.Context, signedTx []byte) (string, error)
}

type StatusReader interface {
	TransactionByHash(ctx context.Context, hash string) (*TransactionStatus, error)
}

// Submitted is the result of a single submission attempt.
type Submitted struct {
	Hash     string
	FeePayer string
	// States is the path taken through the lifecycle.
	States []State
}

type Confirmation struct {
	Hash     string
	State    State
	Success  bool
	VMStatus string
	Version  string
}

// Coordinator signs envelopes with the sender and an optional fee payer and submits them once.
type Coordinator struct {
	submitter    Submitter
	status       StatusReader
	pollInterval time.Duration
}

func NewCoordinator(submitter Submitter, status StatusReader) *Coordinator {
	return &Coordinator{submitter: submitter, status: status, pollInterval: common.RetrySleep}
}

// Submit signs with the sender first and, only for fee-payer envelopes, with the sponsor.
// sponsor may be nil when the envelope does not request a fee payer.
func (c *Coordinator) Submit(ctx context.Context, env Envelope, sender Signer, sponsor Signer) (Submitted, error) {
	out := Submitted{States: []State{StateBuilt}}
	if sender == nil {
		return out, fmt.Errorf("%w: sender key is required", errors.ErrInvalidIdentity)
	}
	if sender.Address() != env.Sender {
		return out, fmt.Errorf("%w: signing key does not control %s", errors.ErrInvalidIdentity, env.Sender)
	}
	if env.FeePayerRequested && sponsor == nil {
		return out, errors.ErrSponsorUnavailable
	}

	raw := env.Raw()
	var (
		message []byte
		err     error
	)
	if env.FeePayerRequested {
		message, err = raw.FeePayerSigningMessage(sponsor.Address())
	} else {
		message, err = raw.SigningMessage()
	}
	if err != nil {
		return out, errors.BuildErrMsg(errors.TxSerializeError, err)
	}

	signed := SignedTransaction{
		Raw:    raw,
		Sender: Ed25519Authenticator{PublicKey: sender.PublicKey(), Signature: sender.Sign(message)},
	}
	out.States = append(out.States, StateSenderSigned)

	if env.FeePayerRequested {
		signed.FeePayer = &FeePayerAuthenticator{
			Address:              sponsor.Address(),
			Ed25519Authenticator: Ed25519Authenticator{PublicKey: sponsor.PublicKey(), Signature: sponsor.Sign(message)},
		}
		out.FeePayer = sponsor.Address().StringLong()
		out.States = append(out.States, StateFeePayerSigned)
	}

	body, err := signed.Bytes()
	if err != nil {
		return out, errors.BuildErrMsg(errors.TxSerializeError, err)
	}
	localHash, err := signed.Hash()
	if err != nil {
		return out, errors.BuildErrMsg(errors.TxSerializeError, err)
	}

	hash, err := c.submitter.SubmitBCS(ctx, body)
	if err != nil {
		out.States = append(out.States, StateFailed)
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return out, fmt.Errorf("%w: %s", errors.ErrSubmissionRejected, apiErr.Message)
		}
		return out, err
	}
	if hash == "" {
		hash = "0x" + hex.EncodeToString(localHash)
	}
	out.Hash = hash
	out.States = append(out.States, StateSubmitted)
	log.WithFields(log.Fields{
		"sender":   env.Sender.String(),
		"function": env.FunctionID,
		"feePayer": env.FeePayerRequested,
		"hash":     hash,
	}).Info("transaction submitted")
	return out, nil
}

// Confirm polls the ledger until the transaction leaves the pending state or timeout elapses.
// Any error, a timeout or a failed read alike, wraps ErrConfirmationUnknown and names the hash:
// the transaction was submitted but its outcome is not known.
func (c *Coordinator) Confirm(ctx context.Context, hash string, timeout time.Duration) (Confirmation, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.status.TransactionByHash(ctx, hash)
		if err != nil && ctx.Err() == nil {
			return Confirmation{Hash: hash, State: StateSubmitted}, fmt.Errorf("%w: %s: %v", errors.ErrConfirmationUnknown, hash, err)
		}
		if status != nil && !status.Pending() {
			conf := Confirmation{
				Hash:     hash,
				State:    StateConfirmed,
				Success:  status.Success,
				VMStatus: status.VMStatus,
				Version:  status.Version,
			}
			if !status.Success {
				conf.State = StateFailed
			}
			return conf, nil
		}

		select {
		case <-ctx.Done():
			return Confirmation{Hash: hash, State: StateSubmitted}, fmt.Errorf("%w: %s", errors.ErrConfirmationUnknown, hash)
		case <-ticker.C:
		}
	}
}
