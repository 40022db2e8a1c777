package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"aptosyield/custody/blockchains"
	"aptosyield/custody/blockchains/aptos"
	"aptosyield/custody/common"
	"aptosyield/custody/gateways"
	"aptosyield/custody/operations"
	"aptosyield/custody/routes"
	"aptosyield/custody/sponsorship"
	"aptosyield/custody/wallet"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var ginLambda *ginadapter.GinLambda

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded: ", err)
	}

	root := &cobra.Command{
		Use:           "aptosyield",
		Short:         "Custodial Aptos wallet and sponsored transaction service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), addressCmd())

	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (or the Lambda handler in release mode)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := common.Load()
			if err != nil {
				return err
			}
			setupLogging(cfg.Env)
			log.Info("Environment ", cfg.Env)

			router, cleanup, err := setupRouter(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if cfg.Env.GinMode == gin.ReleaseMode && os.Getenv(common.LambdaRuntimeAPI) != "" {
				log.Info("running aws lambda in aws")
				ginLambda = ginadapter.New(router)
				lambda.Start(AWSHandler)
				return nil
			}

			listenAddress := ":" + cfg.L1.Server.Port
			log.Info(fmt.Sprintf("** Service Started on Port %s **", listenAddress))
			return http.ListenAndServe(listenAddress, router)
		},
	}
}

func addressCmd() *cobra.Command {
	var identity wallet.Identity
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Print the custodial address of an identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := common.GetENVVars()
			if err != nil {
				return err
			}
			address, err := wallet.NewDeriver(env.DerivationSalt).Address(identity)
			if err != nil {
				return err
			}
			fmt.Println(address.StringLong())
			return nil
		},
	}
	cmd.Flags().StringVar(&identity.Email, "email", "", "user email")
	cmd.Flags().StringVar(&identity.UserID, "user-id", "", "user id from the auth provider")
	return cmd
}

// setup complete app routers
func setupRouter(ctx context.Context, cfg *common.Config) (*gin.Engine, func(), error) {
	gin.SetMode(cfg.Env.GinMode)

	nodeURL := cfg.L1.Aptos.NodeUrl
	if nodeURL == "" {
		var err error
		if nodeURL, err = blockchains.NodeURL(cfg.L1.Aptos.Network); err != nil {
			return nil, nil, err
		}
	}
	timeout := time.Duration(cfg.L1.Aptos.RequestTimeoutSeconds) * time.Second
	ledger := aptos.NewClient(nodeURL, cfg.L1.Aptos.ApiKey, timeout)
	checkChainID(ctx, ledger, cfg.L1.Aptos.Network)

	policy, err := sponsorship.FromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	gw, err := gateways.Connect(ctx, cfg.Env)
	if err != nil {
		return nil, nil, err
	}

	svc := operations.NewService(cfg, ledger, policy, gw)
	return routes.NewRouter(svc), gw.Close, nil
}

// checkChainID only warns: the node may be unreachable at startup and every build re-reads the chain id.
func checkChainID(ctx context.Context, ledger *aptos.Client, network string) {
	expected, pinned := blockchains.ExpectedChainID(network)
	if !pinned {
		return
	}
	got, err := ledger.ChainID(ctx)
	if err != nil {
		log.Warn("could not read chain id at startup: ", err)
		return
	}
	if got != expected {
		log.Warnf("node reports chain id %d, %s expects %d", got, network, expected)
	}
}

func setupLogging(env *common.ENVConfigs) {
	if env.GinMode == gin.ReleaseMode {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.DebugLevel)
}

func AWSHandler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return ginLambda.ProxyWithContext(ctx, request)
}
