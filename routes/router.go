package routes

import (
	"aptosyield/custody/blockchains/aptos"
	"aptosyield/custody/common"
	"aptosyield/custody/models"
	"aptosyield/custody/operations"

	"github.com/gin-gonic/gin"
)

var protocolActions = []string{
	aptos.ActionLend,
	aptos.ActionWithdraw,
	aptos.ActionBorrow,
	aptos.ActionRepay,
	aptos.ActionSwap,
}

func RouteHandler(routeEngine *gin.Engine, svc *operations.Service) {

	// Helper route for cron job to refresh the cached gas estimate
	routeEngine.GET("/", svc.RefreshGasEstimate)

	router := routeEngine.Group("/api")

	// wallet returns the custodial address derived for an identity
	router.POST("/wallet", common.ValidateInput[models.WalletRequest](), svc.CreateWallet)

	// transfer moves APT, a coin or a fungible asset to a receiver, optionally fee-payer sponsored
	router.POST("/transfer", common.ValidateInput[models.TransferRequest](), HandleAsTx(svc.Transfer))

	// lending and swap actions, resolved through the protocol call table
	for _, action := range protocolActions {
		router.POST("/"+action, common.ValidateInput[models.ProtocolRequest](), HandleAsTx(svc.ProtocolAction(action)))
	}

	router.GET("/assets", svc.GetAssets)

	router.GET("/balance/:address", svc.GetBalance)

	router.GET("/gasEstimate", svc.GetGasEstimate)

	router.GET("/transactions/:hash", svc.GetTransaction)
}

// NewRouter builds the complete engine with middleware.
func NewRouter(svc *operations.Service) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(common.RequestLogger())
	router.Use(common.CORSMiddleware())

	common.SetupCustomValidators()

	RouteHandler(router, svc)
	return router
}
