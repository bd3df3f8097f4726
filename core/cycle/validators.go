package cycle

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/meeting"
)

var (
	activityTypeTag  = "activitytype"
	activityTypeText = "invalid activity type"

	pricingModeTag  = "pricingmode"
	pricingModeText = "invalid pricing mode"
)

// InitValidators registers this package's custom validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(activityTypeTag, activityTypeValidation)
	core.RegisterCustomTranslation(validate, translator, activityTypeTag, activityTypeText)

	_ = validate.RegisterValidation(pricingModeTag, pricingModeValidation)
	core.RegisterCustomTranslation(validate, translator, pricingModeTag, pricingModeText)
}

func (nc *NewCycle) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

func activityTypeValidation(fl validator.FieldLevel) bool {
	val := meeting.ActivityType(fl.Field().String())
	for _, at := range meeting.AllActivityTypes {
		if val == at {
			return true
		}
	}
	return false
}

func pricingModeValidation(fl validator.FieldLevel) bool {
	val := PricingMode(fl.Field().String())
	for _, pm := range AllPricingModes {
		if val == pm {
			return true
		}
	}
	return false
}
