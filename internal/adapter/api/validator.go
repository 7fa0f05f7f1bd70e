package api

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"rewear/internal/domain/entity"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports fields by their JSON names and knows the listing enumerations.
func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("item_category", func(fl validator.FieldLevel) bool {
		return entity.IsValidCategory(fl.Field().String())
	})
	v.RegisterValidation("item_size", func(fl validator.FieldLevel) bool {
		return entity.IsValidSize(fl.Field().String())
	})
	v.RegisterValidation("item_condition", func(fl validator.FieldLevel) bool {
		return entity.IsValidCondition(fl.Field().String())
	})
	v.RegisterValidation("swap_type", func(fl validator.FieldLevel) bool {
		return entity.SwapType(fl.Field().String()).IsValid()
	})

	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
