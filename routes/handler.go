package routes

import (
	"aptosyield/custody/common"

	"github.com/gin-gonic/gin"
)

// HandleAsTx tags transaction requests in the request log before running f.
// Request bodies are never logged since they may carry private keys.
func HandleAsTx(f func(c *gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		common.Logger(c).WithField("path", c.FullPath()).Info("transaction request")
		f(c)
	}
}
