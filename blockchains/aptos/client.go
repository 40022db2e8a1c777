package aptos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"aptosyield/custody/errors"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

const (
	bcsSignedTxContentType = "application/x.aptos.signed_transaction+bcs"
	accountNotFound        = "account_not_found"
	transactionNotFound    = "transaction_not_found"
	pendingTransaction     = "pending_transaction"

	// GasCoinType is the type argument used to read the gas-token balance.
	GasCoinType = "0x1::aptos_coin::AptosCoin"
)

// APIError is the error body returned by an Aptos fullnode.
type APIError struct {
	StatusCode  int    `json:"-"`
	Message     string `json:"message"`
	ErrorCode   string `json:"error_code"`
	VMErrorCode *int   `json:"vm_error_code,omitempty"`
}

func (e *APIError) Error() string {
	if e.ErrorCode == "" {
		return fmt.Sprintf("aptos node returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("aptos node returned %d (%s): %s", e.StatusCode, e.ErrorCode, e.Message)
}

type LedgerInfo struct {
	ChainID       uint8  `json:"chain_id"`
	LedgerVersion string `json:"ledger_version"`
	BlockHeight   string `json:"block_height"`
}

type GasEstimate struct {
	DeprioritizedGasEstimate uint64 `json:"deprioritized_gas_estimate"`
	GasEstimate              uint64 `json:"gas_estimate"`
	PrioritizedGasEstimate   uint64 `json:"prioritized_gas_estimate"`
}

type accountData struct {
	SequenceNumber    string `json:"sequence_number"`
	AuthenticationKey string `json:"authentication_key"`
}

// ViewRequest calls a Move view function.
type ViewRequest struct {
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []string `json:"arguments"`
}

// TransactionStatus is the subset of a committed or pending transaction the service reads.
type TransactionStatus struct {
	Type     string `json:"type"`
	Hash     string `json:"hash"`
	Success  bool   `json:"success"`
	VMStatus string `json:"vm_status"`
	Version  string `json:"version"`
}

func (t TransactionStatus) Pending() bool {
	return t.Type == pendingTransaction
}

// Client talks to a fullnode REST API.
type Client struct {
	http *resty.Client
}

func NewClient(nodeURL, apiKey string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(nodeURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &Client{http: client}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, contentType string, out interface{}) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", contentType).SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return errors.BuildErrMsg(errors.HttpRequestError, err)
	}
	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		if jsonErr := json.Unmarshal(resp.Body(), apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(resp.String())
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errors.BuildErrMsg(errors.UnmarshallError, err)
	}
	return nil
}

func (c *Client) LedgerInfo(ctx context.Context) (LedgerInfo, error) {
	var info LedgerInfo
	err := c.do(ctx, http.MethodGet, "/", nil, "", &info)
	return info, err
}

func (c *Client) ChainID(ctx context.Context) (uint8, error) {
	info, err := c.LedgerInfo(ctx)
	if err != nil {
		return 0, err
	}
	return info.ChainID, nil
}

// SequenceNumber treats an account the ledger has never seen as sequence 0; derived wallets
// are usually first used through a sponsored transaction that creates them.
func (c *Client) SequenceNumber(ctx context.Context, addr AccountAddress) (uint64, error) {
	var data accountData
	err := c.do(ctx, http.MethodGet, "/accounts/"+addr.StringLong(), nil, "", &data)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound && apiErr.ErrorCode == accountNotFound {
			return 0, nil
		}
		return 0, err
	}
	seq, err := strconv.ParseUint(data.SequenceNumber, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid sequence number %q: %w", data.SequenceNumber, err)
	}
	return seq, nil
}

func (c *Client) EstimateGasPrice(ctx context.Context) (GasEstimate, error) {
	var estimate GasEstimate
	err := c.do(ctx, http.MethodGet, "/estimate_gas_price", nil, "", &estimate)
	return estimate, err
}

func (c *Client) GasUnitPrice(ctx context.Context) (uint64, error) {
	estimate, err := c.EstimateGasPrice(ctx)
	if err != nil {
		return 0, err
	}
	return estimate.GasEstimate, nil
}

func (c *Client) View(ctx context.Context, req ViewRequest) ([]json.RawMessage, error) {
	if req.TypeArguments == nil {
		req.TypeArguments = []string{}
	}
	if req.Arguments == nil {
		req.Arguments = []string{}
	}
	var out []json.RawMessage
	err := c.do(ctx, http.MethodPost, "/view", req, "application/json", &out)
	return out, err
}

// GasBalance returns the gas-token balance in octas. Accounts that do not exist hold nothing.
func (c *Client) GasBalance(ctx context.Context, addr AccountAddress) (uint64, error) {
	values, err := c.View(ctx, ViewRequest{
		Function:      "0x1::coin::balance",
		TypeArguments: []string{GasCoinType},
		Arguments:     []string{addr.StringLong()},
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode == accountNotFound {
			return 0, nil
		}
		return 0, err
	}
	if len(values) != 1 {
		return 0, fmt.Errorf("unexpected view result length %d", len(values))
	}
	var raw string
	if err := json.Unmarshal(values[0], &raw); err != nil {
		return 0, errors.BuildErrMsg(errors.UnmarshallError, err)
	}
	return strconv.ParseUint(raw, 10, 64)
}

// SubmitBCS posts a signed transaction and returns the hash reported by the node.
func (c *Client) SubmitBCS(ctx context.Context, signedTx []byte) (string, error) {
	var pending TransactionStatus
	if err := c.do(ctx, http.MethodPost, "/transactions", signedTx, bcsSignedTxContentType, &pending); err != nil {
		return "", err
	}
	log.WithField("hash", pending.Hash).Info("aptos transaction submitted")
	return pending.Hash, nil
}

// TransactionByHash returns (nil, nil) while the node does not know the hash yet.
func (c *Client) TransactionByHash(ctx context.Context, hash string) (*TransactionStatus, error) {
	var status TransactionStatus
	err := c.do(ctx, http.MethodGet, "/transactions/by_hash/"+hash, nil, "", &status)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound && apiErr.ErrorCode == transactionNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}
