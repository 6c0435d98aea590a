package server

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var trans ut.Translator

func init() {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ = uni.GetTranslator("en")

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// report fields by their json names so details line up with the wire
		// shape
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = entranslations.RegisterDefaultTranslations(v, trans)
	}
}

// validationDetails flattens a binding error into per-field messages for 400
// responses.
func validationDetails(err error) map[string]string {
	details := make(map[string]string)
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			details[fieldErr.Field()] = fieldErr.Translate(trans)
		}
		return details
	}
	details["body"] = err.Error()
	return details
}
