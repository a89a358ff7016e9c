package insight

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kazi/core"
)

var (
	typeTag  = "insighttype"
	typeText = "{0} must be one of TASK_BREAKDOWN, PROGRESS_SUMMARY, STUDY_SUGGESTION or PERFORMANCE_ANALYSIS"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(typeTag, typeValidation)
	core.RegisterCustomTranslation(validate, translator, typeTag, typeText)
}

func typeValidation(fl validator.FieldLevel) bool {
	typ := Type(fl.Field().String())
	for _, valid := range Types {
		if typ == valid {
			return true
		}
	}
	return false
}
