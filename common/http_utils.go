package common

import (
	"net/http"
	"time"

	"aptosyield/custody/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	inputKey     = "iEntity"
	requestIDKey = "requestId"
)

/*
ValidateInput binds the request into InputEntityType and stores it on the context.

	router.POST("/transfer", common.ValidateInput[models.TransferRequest](), operations.Transfer)

	input := common.GetInput[models.TransferRequest](c)

The list of built-in validators can found at
https://github.com/go-playground/validator
*/
func ValidateInput[InputEntityType any]() func(*gin.Context) {
	return func(c *gin.Context) {
		var input InputEntityType

		err := c.ShouldBindJSON(&input)
		if err != nil {
			SendErrorResponse(c, Exception{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		c.Set(inputKey, input)

		c.Next()
	}
}

func GetInput[BodyType any](c *gin.Context) BodyType {
	return c.MustGet(inputKey).(BodyType)
}

func SendErrorResponse(c *gin.Context, err Exception) {
	Logger(c).Errorf("Sending error response %d: %s", err.Code, err.Message)
	c.AbortWithStatusJSON(err.Code, ApiError{Error: err.Message, TransactionHash: err.TxHash})
}

// SendError maps err onto the 400/500 split: caller mistakes keep their message,
// downstream failures get a generic prefix plus the underlying text.
func SendError(c *gin.Context, message string, err error) {
	if errors.IsValidation(err) {
		SendErrorResponse(c, Exception{Code: http.StatusBadRequest, Message: err.Error()})
		return
	}
	SendErrorResponse(c, Exception{Code: http.StatusInternalServerError, Message: message + ": " + err.Error()})
}

// SendSubmittedError reports a failure that happened after the transaction reached the ledger.
// The hash is always part of the body so callers do not resubmit.
func SendSubmittedError(c *gin.Context, message, txHash string, err error) {
	SendErrorResponse(c, Exception{Code: http.StatusInternalServerError, Message: message + ": " + err.Error(), TxHash: txHash})
}

func SendResponse[OutputObjectType any](c *gin.Context, obj OutputObjectType) {
	c.JSON(http.StatusOK, obj)
}

// CORSMiddleware to apply server middleware for CORS
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestLogger tags each request with an id and logs its outcome. Bodies are never logged
// because they may carry private keys.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-Id", requestID)

		start := time.Now()
		c.Next()

		Logger(c).WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request handled")
	}
}

// Logger returns a logrus entry carrying the request id when one is set.
func Logger(c *gin.Context) *log.Entry {
	if id, ok := c.Get(requestIDKey); ok {
		return log.WithField(requestIDKey, id)
	}
	return log.NewEntry(log.StandardLogger())
}
