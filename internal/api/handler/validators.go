package handler

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"ourcodingkiddos/backend/internal/service"
)

const (
	slugTag     = "slug"
	notBlankTag = "notblank"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags on gin's validator.
// Must run before the first request that binds a DTO using them.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// report JSON names in validation errors
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
		_ = v.RegisterValidation(slugTag, slugValidation)
		_ = v.RegisterValidation(notBlankTag, notBlankValidation)
	})
}

func slugValidation(fl validator.FieldLevel) bool {
	return service.IsSlug(fl.Field().String())
}

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
