package common

import (
	"time"
)

// Retry wait time for confirmation polling
const RetrySleep = 1 * time.Second

// Basic Transaction States
const (
	TxSubmitted = "submitted"
	TxComplete  = "complete"
	TxRejected  = "rejected"
	TxUnknown   = "unknown"
)

// Working environments
const (
	Development = "development"
	Production  = "production"
)

const (
	WorkingEnvironment      = "WORKING_ENVIRONMENT"
	GinMode                 = "GIN_MODE"
	ConfigPath              = "CONFIG_PATH"
	DerivationSalt          = "DERIVATION_SALT"
	SponsorPrivateKey       = "SPONSOR_PRIVATE_KEY"
	AptosNodeURL            = "APTOS_NODE_URL"
	AptosAPIKey             = "APTOS_API_KEY"
	MongoDbConnectionString = "MongoDbConnectionString"
	MongoDatabase           = "MONGODB_DATABASE"
	MongoTxCollection       = "MONGODB_TX_COLLECTION"
	RedisHost               = "REDIS_HOST"
	RedisPort               = "REDIS_PORT"
	RedisPassword           = "REDIS_PASSWORD"
	LambdaRuntimeAPI        = "AWS_LAMBDA_RUNTIME_API"
)

// DefaultDerivationSalt is used when DERIVATION_SALT is unset. Wallets derived with it are only
// as secret as this source file, so production deployments must set the variable.
const DefaultDerivationSalt = "aptos-yield-default-salt"
