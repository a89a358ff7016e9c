package task

import (
	"reflect"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kazi/core"
)

var (
	priorityTag  = "priority"
	priorityText = "{0} must be one of LOW, MEDIUM, HIGH or URGENT"

	statusTag  = "taskstatus"
	statusText = "{0} must be one of TODO, IN_PROGRESS, DONE or CANCELLED"

	difficultyTag  = "difficulty"
	difficultyText = "{0} must be one of BEGINNER, INTERMEDIATE or ADVANCED"
)

// InitValidators registers the task validators on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	// optional fields are validated through their inner value; nil means "not provided" or null
	validate.RegisterCustomTypeFunc(optionalValue, Optional[string]{}, Optional[time.Time]{})

	_ = validate.RegisterValidation(priorityTag, priorityValidation)
	core.RegisterCustomTranslation(validate, translator, priorityTag, priorityText)

	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)

	_ = validate.RegisterValidation(difficultyTag, difficultyValidation)
	core.RegisterCustomTranslation(validate, translator, difficultyTag, difficultyText)
}

func optionalValue(field reflect.Value) interface{} {
	switch v := field.Interface().(type) {
	case Optional[string]:
		if v.Valid {
			return v.V
		}
	case Optional[time.Time]:
		if v.Valid {
			return v.V
		}
	}
	return nil
}

func priorityValidation(fl validator.FieldLevel) bool {
	p := Priority(fl.Field().String())
	for _, valid := range Priorities {
		if p == valid {
			return true
		}
	}
	return false
}

func statusValidation(fl validator.FieldLevel) bool {
	s := Status(fl.Field().String())
	for _, valid := range Statuses {
		if s == valid {
			return true
		}
	}
	return false
}

func difficultyValidation(fl validator.FieldLevel) bool {
	d := Difficulty(fl.Field().String())
	for _, valid := range Difficulties {
		if d == valid {
			return true
		}
	}
	return false
}
