package common

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Configurations exported
type Configurations struct {
	Server      ServerConfigurations
	Aptos       AptosConfigurations
	Sponsorship SponsorshipConfigurations
}

// ServerConfigurations exported
type ServerConfigurations struct {
	Port string
}

// AptosConfigurations exported
type AptosConfigurations struct {
	Network                    string
	NodeUrl                    string
	ApiKey                     string
	MaxGasAmount               uint64
	TxExpirationSeconds        int64
	ConfirmationTimeoutSeconds int64
	RequestTimeoutSeconds      int64
}

// SponsorshipConfigurations exported
type SponsorshipConfigurations struct {
	// MinGasThreshold is a human-decimal amount of the gas token.
	MinGasThreshold string
}

// ENVConfigs holds process environment read once at startup.
type ENVConfigs struct {
	WorkingEnvironment      string
	GinMode                 string
	ConfigPath              string
	DerivationSalt          string
	SponsorPrivateKey       string
	AptosNodeURL            string
	AptosAPIKey             string
	MongoDbConnectionString string
	MongoDatabase           string
	MongoTxCollection       string
	RedisHost               string
	RedisPort               string
	RedisPassword           string
}

// String never prints secrets.
func (e ENVConfigs) String() string {
	return fmt.Sprintf("{env:%s gin:%s node:%s mongo:%t redis:%t sponsor:%t salt:%t}",
		e.WorkingEnvironment, e.GinMode, e.AptosNodeURL,
		e.MongoDbConnectionString != "", e.RedisHost != "",
		e.SponsorPrivateKey != "", e.DerivationSalt != DefaultDerivationSalt)
}

// Config is the immutable-after-startup configuration handed to every component.
type Config struct {
	Env *ENVConfigs
	L1  Configurations
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("aptos.network", "testnet")
	v.SetDefault("aptos.maxgasamount", 200000)
	v.SetDefault("aptos.txexpirationseconds", 60)
	v.SetDefault("aptos.confirmationtimeoutseconds", 30)
	v.SetDefault("aptos.requesttimeoutseconds", 15)
	v.SetDefault("sponsorship.mingasthreshold", "0.01")
}

func LoadConfig(env *ENVConfigs) (Configurations, error) {
	var configName string
	switch env.WorkingEnvironment {
	case Development:
		configName = "dev"
	case Production:
		configName = "prod"
	default:
		return Configurations{}, fmt.Errorf("environment configuration not valid: %q", env.WorkingEnvironment)
	}

	v := viper.New()
	setDefaults(v)

	// Set the file name of the configurations file
	v.SetConfigName("config_" + configName)

	// Set the path to look for the configurations file
	v.AddConfigPath(env.ConfigPath)
	v.AddConfigPath(".")

	// Enable VIPER to read Environment Variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Configurations{}, err
		}
		log.Warnf("No config_%s.yaml found, using defaults", configName)
	}

	var configuration Configurations
	if err := v.Unmarshal(&configuration); err != nil {
		return Configurations{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if env.AptosNodeURL != "" {
		configuration.Aptos.NodeUrl = env.AptosNodeURL
	}
	if env.AptosAPIKey != "" {
		configuration.Aptos.ApiKey = env.AptosAPIKey
	}

	log.Infof("Configurations server=%s network=%s node=%s", configuration.Server.Port, configuration.Aptos.Network, configuration.Aptos.NodeUrl)

	return configuration, nil
}

// GetENVVars reads all env variables once. Only WORKING_ENVIRONMENT is mandatory.
func GetENVVars() (*ENVConfigs, error) {
	getOrDefault := func(envVarName, fallback string) string {
		if variable, ok := os.LookupEnv(envVarName); ok && variable != "" {
			return variable
		}
		return fallback
	}

	env := ENVConfigs{}
	env.WorkingEnvironment = getOrDefault(WorkingEnvironment, "")
	if env.WorkingEnvironment == "" {
		return nil, fmt.Errorf("missing environment variable: %s", WorkingEnvironment)
	}
	env.GinMode = getOrDefault(GinMode, "debug")
	env.ConfigPath = getOrDefault(ConfigPath, ".")
	env.DerivationSalt = getOrDefault(DerivationSalt, "")
	if env.DerivationSalt == "" {
		log.Warnf("%s is not set, falling back to the built-in default salt", DerivationSalt)
		env.DerivationSalt = DefaultDerivationSalt
	}
	env.SponsorPrivateKey = getOrDefault(SponsorPrivateKey, "")
	env.AptosNodeURL = getOrDefault(AptosNodeURL, "")
	env.AptosAPIKey = getOrDefault(AptosAPIKey, "")
	env.MongoDbConnectionString = getOrDefault(MongoDbConnectionString, "")
	env.MongoDatabase = getOrDefault(MongoDatabase, "aptosyield")
	env.MongoTxCollection = getOrDefault(MongoTxCollection, "transactions")
	env.RedisHost = getOrDefault(RedisHost, "")
	env.RedisPort = getOrDefault(RedisPort, "6379")
	env.RedisPassword = getOrDefault(RedisPassword, "")

	return &env, nil
}

// Load reads the environment and the yaml configuration in one step.
func Load() (*Config, error) {
	env, err := GetENVVars()
	if err != nil {
		return nil, err
	}
	l1, err := LoadConfig(env)
	if err != nil {
		return nil, err
	}
	return &Config{Env: env, L1: l1}, nil
}
