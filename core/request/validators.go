package request

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/dates"
)

var (
	reqTypeTag  = "reqtype"
	reqTypeText = "must be one of: Absence, Authorized Absence, Early Leave, Late Arrival"

	isoDateTag  = "isodate"
	isoDateText = "must be an ISO-8601 date"

	alreadyDecidedText = "request has already been decided"
)

// InitValidators registers the request validators and their messages.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(reqTypeTag, reqTypeValidation)
	core.RegisterCustomTranslation(validate, translator, reqTypeTag, reqTypeText)

	_ = validate.RegisterValidation(isoDateTag, isoDateValidation)
	core.RegisterCustomTranslation(validate, translator, isoDateTag, isoDateText)
}

// Custom Validators

func reqTypeValidation(fl validator.FieldLevel) bool {
	if typ, ok := fl.Field().Interface().(Type); ok {
		return typ.IsValid()
	}
	return false
}

func isoDateValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		_, ok = dates.ParseISO(str, time.UTC)
		return ok
	}
	return false
}
