package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"aptosyield/custody/blockchains/aptos"
	"aptosyield/custody/common"
	"aptosyield/custody/errors"

	"github.com/go-redis/redis/v8"
	redisgo "github.com/gomodule/redigo/redis"
	"github.com/nitishm/go-rejson/v4"
	log "github.com/sirupsen/logrus"
)

// Application Constants
const (
	RedisDbPrefix    = "aptosyield:"
	RedisStoragePath = "$"
)

// DB Keys
const (
	GasFeesDBKey = RedisDbPrefix + "gasfees:"
)

var ErrCacheMiss = errors.New("gas estimate not cached")

// GasFees is the cached gas price estimate of one network.
type GasFees struct {
	Network       string    `json:"network"`
	Deprioritized uint64    `json:"deprioritizedGasEstimate"`
	Estimate      uint64    `json:"gasEstimate"`
	Prioritized   uint64    `json:"prioritizedGasEstimate"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func NewGasFees(network string, estimate aptos.GasEstimate, at time.Time) GasFees {
	return GasFees{
		Network:       network,
		Deprioritized: estimate.DeprioritizedGasEstimate,
		Estimate:      estimate.GasEstimate,
		Prioritized:   estimate.PrioritizedGasEstimate,
		UpdatedAt:     at.UTC(),
	}
}

type GasCache interface {
	StoreGasEstimate(ctx context.Context, fees GasFees) error
	GetGasEstimate(ctx context.Context, network string) (GasFees, error)
}

// RedisGasCache stores gas estimates as RedisJSON documents.
type RedisGasCache struct {
	client *redis.Client
	json   *rejson.Handler
}

// RedisClient connects to the redis database and returns the client wrapped with a json handler.
func RedisClient(ctx context.Context, env *common.ENVConfigs) (*RedisGasCache, error) {
	if env.RedisHost == "" {
		return nil, fmt.Errorf("missing environment variable: %s", common.RedisHost)
	}
	redisAddr := fmt.Sprintf("%s:%s", env.RedisHost, env.RedisPort)
	// TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12}
	op := &redis.Options{Addr: redisAddr, Password: env.RedisPassword, WriteTimeout: 5 * time.Second}
	redisClient := redis.NewClient(op)

	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, errors.BuildErrMsg(errors.CacheError, err)
	}
	return NewRedisGasCache(redisClient), nil
}

func NewRedisGasCache(client *redis.Client) *RedisGasCache {
	redisJson := rejson.NewReJSONHandler()
	redisJson.SetGoRedisClient(client)
	return &RedisGasCache{client: client, json: redisJson}
}

func (r *RedisGasCache) Close() error {
	return r.client.Close()
}

// StoreGasEstimate replaces the cached document of fees.Network.
func (r *RedisGasCache) StoreGasEstimate(_ context.Context, fees GasFees) error {
	if _, err := r.json.JSONSet(GasFeesDBKey+fees.Network, RedisStoragePath, fees); err != nil {
		return errors.BuildAndLogErrorMsg(errors.CacheError, err)
	}
	return nil
}

func (r *RedisGasCache) GetGasEstimate(_ context.Context, network string) (GasFees, error) {
	res, err := r.json.JSONGet(GasFeesDBKey+network, RedisStoragePath)
	if errors.Is(err, redis.Nil) || (err == nil && res == nil) {
		return GasFees{}, ErrCacheMiss
	}
	resBytes, err := redisgo.Bytes(res, err)
	if err != nil {
		return GasFees{}, errors.BuildErrMsg(errors.CacheError, err)
	}

	// A "$" path returns a one element array.
	var docs []GasFees
	if err := json.Unmarshal(resBytes, &docs); err == nil {
		if len(docs) == 0 {
			return GasFees{}, ErrCacheMiss
		}
		return docs[0], nil
	}
	var fees GasFees
	if err := json.Unmarshal(resBytes, &fees); err != nil {
		return GasFees{}, errors.BuildErrMsg(errors.UnmarshallError, err)
	}
	return fees, nil
}

// NoopGasCache is used when redis is not configured. Reads always miss.
type NoopGasCache struct{}

func (NoopGasCache) StoreGasEstimate(context.Context, GasFees) error {
	log.Debug("gas cache disabled, estimate not stored")
	return nil
}

func (NoopGasCache) GetGasEstimate(context.Context, string) (GasFees, error) {
	return GasFees{}, ErrCacheMiss
}
