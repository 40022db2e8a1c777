package errors

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

func BuildErrMsg(errorType string, err error) error {
	return fmt.Errorf("%s : %w", errorType, err)
}

func BuildAndLogErrorMsg(errorType string, err error) error {
	er := BuildErrMsg(errorType, err)
	log.Error(er)
	return er
}

// Taxonomy. Every one of these is terminal for the request that produced it.
var (
	ErrInvalidIdentity     = errors.New("invalid identity")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrUnknownToken        = errors.New("unknown token")
	ErrUnknownFunction     = errors.New("unknown function")
	ErrUnknownProtocol     = errors.New("unknown protocol action")
	ErrSequenceFetchFailed = errors.New("sequence fetch failed")
	ErrSponsorUnavailable  = errors.New("sponsor unavailable")
	ErrSponsorKeyMissing   = errors.New("sponsor key missing")
	ErrSubmissionRejected  = errors.New("submission rejected")
	ErrDerivationFailure   = errors.New("derivation failure")
	ErrConfirmationUnknown = errors.New("submitted, confirmation unknown")
)

var validationErrors = []error{
	ErrInvalidIdentity,
	ErrInvalidAmount,
	ErrUnknownToken,
	ErrUnknownFunction,
	ErrUnknownProtocol,
}

// IsValidation reports whether err was caused by caller input rather than a downstream failure.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

const (
	UnmarshallError   = "Error unmarshalling structure into byte"
	HttpRequestError  = "Error executing http request"
	TxSerializeError  = "Error serializing tx"
	ConfigError       = "Error loading configuration"
	DeriveWalletError = "Error deriving custodial wallet"

	TxBuildError     = "Error building transaction"
	WriteTxError     = "Error writing Tx to DB"
	ReadTxError      = "Error reading Tx from DB"
	UpdateTxError    = "Error update Tx in DB"
	CommitTxError    = "Error commiting Tx to Blockchain"
	ConfirmTxError   = "Error waiting for Tx confirmation"
	BalanceError     = "Error getting account balance"
	AddressError     = "Error parsing address"
	SponsorError     = "Error resolving fee payer"
	GasEstimateError = "Error estimating gas price"

	DBConnectionError     = "Error connecting to DB"
	DBInitializationError = "Error initializing DB"
	DBConfigurationError  = "Error configuring DB"
	CacheError            = "Error reading or writing cache"
)

func New(message string) error {
	return errors.New(message)
}

// Is and As mirror the standard library so callers only import this package.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }
