package leave

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/campus/core"
)

var (
	leaveTimeTag  = "leavetime"
	leaveTimeText = "expected a date (YYYY-MM-DD) or RFC 3339 timestamp"

	periodTag  = "period"
	periodText = "end cannot precede start"
)

// InitValidators registers the leave validation tags & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(leaveTimeTag, leaveTimeValidation)
	core.RegisterCustomTranslation(validate, translator, leaveTimeTag, leaveTimeText)

	validate.RegisterStructValidation(submitStructValidation, SubmitRequest{})
	core.RegisterCustomTranslation(validate, translator, periodTag, periodText)
}

func leaveTimeValidation(fl validator.FieldLevel) bool {
	_, err := parseTime(fl.Field().String())
	return err == nil
}

// submitStructValidation rejects leaves ending before they start.
func submitStructValidation(sl validator.StructLevel) {
	sr, ok := sl.Current().Interface().(SubmitRequest)
	if !ok {
		return
	}
	start, err := parseTime(sr.Start)
	if err != nil {
		return
	}
	end, err := parseTime(sr.End)
	if err != nil {
		return
	}
	if end.Before(start) {
		sl.ReportError(sr.End, "end", "End", periodTag, "")
	}
}
