package common

import (
	"os"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

var aptosAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{1,64}$`)

func validateAptosAddress(fl validator.FieldLevel) bool {
	return aptosAddressPattern.MatchString(fl.Field().String())
}

func SetupCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("aptos_address", validateAptosAddress)
		if err != nil {
			ForceExit("Failed to init custom validator")
		}
	}
}

func ForceExit(v interface{}) {
	log.Error(v)
	os.Exit(1)
}
