package operations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"aptosyield/custody/amounts"
	"aptosyield/custody/assets"
	"aptosyield/custody/blockchains/aptos"
	"aptosyield/custody/common"
	"aptosyield/custody/errors"
	"aptosyield/custody/gateways"
	"aptosyield/custody/models"
	"aptosyield/custody/sponsorship"
	"aptosyield/custody/wallet"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Ledger is everything the handlers need from a fullnode.
type Ledger interface {
	aptos.LedgerReader
	aptos.Submitter
	aptos.StatusReader
	sponsorship.BalanceReader
	EstimateGasPrice(ctx context.Context) (aptos.GasEstimate, error)
}

// Service carries the startup configuration and clients shared by all handlers.
// None of it is mutated after NewService returns.
type Service struct {
	deriver        *wallet.Deriver
	ledger         Ledger
	builder        *aptos.Builder
	coordinator    *aptos.Coordinator
	policy         *sponsorship.Policy
	cache          gateways.GasCache
	journal        gateways.TxJournal
	network        string
	expiration     time.Duration
	confirmTimeout time.Duration
}

func NewService(cfg *common.Config, ledger Ledger, policy *sponsorship.Policy, gw *gateways.Gateways) *Service {
	expiration := time.Duration(cfg.L1.Aptos.TxExpirationSeconds) * time.Second
	if expiration <= 0 {
		expiration = aptos.DefaultExpiration
	}
	confirmTimeout := time.Duration(cfg.L1.Aptos.ConfirmationTimeoutSeconds) * time.Second
	if confirmTimeout <= 0 {
		confirmTimeout = 30 * time.Second
	}
	return &Service{
		deriver:        wallet.NewDeriver(cfg.Env.DerivationSalt),
		ledger:         ledger,
		builder:        aptos.NewBuilder(ledger, cfg.L1.Aptos.MaxGasAmount, expiration),
		coordinator:    aptos.NewCoordinator(ledger, ledger),
		policy:         policy,
		cache:          gw.Cache,
		journal:        gw.Journal,
		network:        cfg.L1.Aptos.Network,
		expiration:     expiration,
		confirmTimeout: confirmTimeout,
	}
}

// CreateWallet returns the address of the custodial wallet of an identity.
func (s *Service) CreateWallet(c *gin.Context) {
	input := common.GetInput[models.WalletRequest](c)

	address, err := s.deriver.Address(wallet.Identity{Email: input.Email, UserID: input.UserID})
	if err != nil {
		common.SendError(c, errors.DeriveWalletError, err)
		return
	}
	common.SendResponse(c, models.WalletResponse{Address: address.StringLong()})
}

// Transfer sends coins or fungible assets to another account.
func (s *Service) Transfer(c *gin.Context) {
	input := common.GetInput[models.TransferRequest](c)

	token := input.Token
	if token == "" {
		token = assets.AptosCoin
	}
	asset, err := assets.Lookup(token)
	if err != nil {
		common.SendError(c, errors.TxBuildError, err)
		return
	}
	onChain, err := toOnChain(input.Amount, asset, input.Rounding)
	if err != nil {
		common.SendError(c, errors.TxBuildError, err)
		return
	}
	signer, err := s.signer(input.Account)
	if err != nil {
		common.SendError(c, errors.DeriveWalletError, err)
		return
	}

	call, err := aptos.CallFor(aptos.ProtocolAptos, aptos.ActionTransfer, asset, aptos.CallInputs{
		Sender:   signer.Address(),
		Receiver: input.Receiver,
		Amount:   onChain,
	})
	if err != nil {
		common.SendError(c, errors.TxBuildError, err)
		return
	}
	s.execute(c, signer, call, input.TxOptions)
}

// ProtocolAction returns the handler of one lending or swap action.
func (s *Service) ProtocolAction(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		input := common.GetInput[models.ProtocolRequest](c)

		asset, err := assets.Lookup(input.Token)
		if err != nil {
			common.SendError(c, errors.TxBuildError, err)
			return
		}
		if _, err := aptos.Template(input.Protocol, action, asset.IsFungible); err != nil {
			common.SendError(c, errors.TxBuildError, err)
			return
		}
		onChain, err := toOnChain(input.Amount, asset, input.Rounding)
		if err != nil {
			common.SendError(c, errors.TxBuildError, err)
			return
		}
		signer, err := s.signer(input.Account)
		if err != nil {
			common.SendError(c, errors.DeriveWalletError, err)
			return
		}

		call, err := aptos.CallFor(input.Protocol, action, asset, aptos.CallInputs{
			Sender:   signer.Address(),
			Receiver: input.Receiver,
			Amount:   onChain,
			Deadline: uint64(time.Now().Add(s.expiration).Unix()),
			Params:   input.Params,
		})
		if err != nil {
			common.SendError(c, errors.TxBuildError, err)
			return
		}
		s.execute(c, signer, call, input.TxOptions)
	}
}

// execute runs sponsorship, build, sign and submit for one call, then optionally waits.
func (s *Service) execute(c *gin.Context, signer *wallet.KeyPair, call aptos.Call, opts models.TxOptions) {
	ctx := c.Request.Context()
	logger := common.Logger(c).WithFields(log.Fields{"sender": signer.Address().String(), "function": call.FunctionID})

	decision, err := s.policy.Resolve(ctx, s.ledger, signer.Address(), opts.UseSponsor)
	if err != nil {
		common.SendError(c, errors.SponsorError, err)
		return
	}

	env, err := s.builder.Build(ctx, signer.Address(), call, decision.Required)
	if err != nil {
		common.SendError(c, errors.TxBuildError, err)
		return
	}

	submitted, err := s.coordinator.Submit(ctx, env, signer, decision.Signer())
	if err != nil {
		common.SendError(c, errors.CommitTxError, err)
		return
	}
	logger.WithField("hash", submitted.Hash).Info("transaction accepted by node")

	record := gateways.TxRecord{
		TxHash:     submitted.Hash,
		Sender:     env.Sender.StringLong(),
		FunctionID: env.FunctionID,
		FeePayer:   submitted.FeePayer,
		Status:     common.TxSubmitted,
	}
	if err := s.journal.WriteTx(ctx, record); err != nil {
		logger.Warn("transaction submitted but not journaled: ", err)
	}

	resp := common.TxResponse{TransactionHash: submitted.Hash, FeePayer: submitted.FeePayer}
	if !opts.WaitForConfirmation {
		common.SendResponse(c, resp)
		return
	}

	conf, err := s.coordinator.Confirm(ctx, submitted.Hash, s.confirmTimeout)
	if err != nil {
		if !errors.Is(err, errors.ErrConfirmationUnknown) {
			err = fmt.Errorf("%w: %s: %v", errors.ErrConfirmationUnknown, submitted.Hash, err)
		}
		s.updateJournal(ctx, submitted.Hash, common.TxUnknown, "")
		common.SendSubmittedError(c, errors.ConfirmTxError, submitted.Hash, err)
		return
	}
	if !conf.Success {
		s.updateJournal(ctx, submitted.Hash, common.TxRejected, conf.VMStatus)
		common.SendSubmittedError(c, errors.CommitTxError, submitted.Hash, fmt.Errorf("%w: %s", errors.ErrSubmissionRejected, conf.VMStatus))
		return
	}
	s.updateJournal(ctx, submitted.Hash, common.TxComplete, conf.VMStatus)
	resp.Status = common.TxComplete
	resp.VMStatus = conf.VMStatus
	common.SendResponse(c, resp)
}

func (s *Service) updateJournal(ctx context.Context, hash, status, vmStatus string) {
	if err := s.journal.UpdateTxStatus(ctx, hash, status, vmStatus); err != nil {
		log.WithField("hash", hash).Warn("journal status not updated: ", err)
	}
}

// signer prefers an explicit private key over re-derivation.
func (s *Service) signer(account models.Account) (*wallet.KeyPair, error) {
	if account.PrivateKey != "" {
		return wallet.FromPrivateKeyHex(account.PrivateKey)
	}
	return s.deriver.Derive(wallet.Identity{Email: account.Email, UserID: account.UserID})
}

func toOnChain(raw json.Number, asset assets.Descriptor, rounding string) (uint64, error) {
	amount, err := amounts.ParseAmount(raw.String())
	if err != nil {
		return 0, err
	}
	mode := amounts.RoundHalf
	switch strings.ToLower(rounding) {
	case "ceil":
		mode = amounts.RoundCeil
	case "floor":
		mode = amounts.RoundFloor
	}
	return amounts.ToOnChainWith(amount, asset, mode)
}

// GetAssets lists the asset table and the supported protocol actions.
func (s *Service) GetAssets(c *gin.Context) {
	common.SendResponse(c, models.AssetsResponse{
		Version: assets.Version,
		Assets:  assets.All(),
		Actions: aptos.Supported(),
	})
}

// GetBalance returns the gas-token balance of an address.
func (s *Service) GetBalance(c *gin.Context) {
	address, err := aptos.ParseAddress(c.Param("address"))
	if err != nil {
		common.SendErrorResponse(c, common.Exception{Code: http.StatusBadRequest, Message: errors.BuildErrMsg(errors.AddressError, err).Error()})
		return
	}
	balance, err := sponsorship.BalanceFor(c.Request.Context(), s.ledger, address)
	if err != nil {
		common.SendError(c, errors.BalanceError, err)
		return
	}
	common.SendResponse(c, models.BalanceResponse{Address: address.StringLong(), Token: assets.AptosCoin, Balance: balance})
}

// GetGasEstimate serves the cached estimate, falling back to the node on a miss.
func (s *Service) GetGasEstimate(c *gin.Context) {
	fees, err := s.cache.GetGasEstimate(c.Request.Context(), s.network)
	if err == nil {
		common.SendResponse(c, fees)
		return
	}
	if !errors.Is(err, gateways.ErrCacheMiss) {
		common.Logger(c).Warn("gas cache read failed: ", err)
	}
	s.RefreshGasEstimate(c)
}

// RefreshGasEstimate is the cron hook: read the node estimate and cache it.
func (s *Service) RefreshGasEstimate(c *gin.Context) {
	ctx := c.Request.Context()
	estimate, err := s.ledger.EstimateGasPrice(ctx)
	if err != nil {
		common.SendError(c, errors.GasEstimateError, err)
		return
	}
	fees := gateways.NewGasFees(s.network, estimate, time.Now())
	if err := s.cache.StoreGasEstimate(ctx, fees); err != nil {
		common.Logger(c).Error("ERROR WRITING FEES: ", err)
	}
	common.SendResponse(c, fees)
}

// GetTransaction reads a journal entry.
func (s *Service) GetTransaction(c *gin.Context) {
	record, err := s.journal.ReadTx(c.Request.Context(), c.Param("hash"))
	if errors.Is(err, gateways.ErrTxNotFound) {
		common.SendErrorResponse(c, common.Exception{Code: http.StatusNotFound, Message: err.Error()})
		return
	}
	if err != nil {
		common.SendError(c, errors.ReadTxError, err)
		return
	}
	common.SendResponse(c, record)
}
