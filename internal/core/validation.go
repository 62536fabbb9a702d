package core

import (
	"errors"
	"resourcecatalog/pkg/domain"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Length limits, counted in Unicode code points.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
)

var payloadValidator = newPayloadValidator()

func newPayloadValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return domain.Category(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("utf8", func(fl validator.FieldLevel) bool {
		return utf8.ValidString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidatePayload checks title and description encoding and lengths, and the
// category. Text must be valid UTF-8 so it survives the JSON snapshot intact.
// It is applied identically on create and update.
func ValidatePayload(p domain.ResourcePayload) error {
	err := payloadValidator.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.InvalidInput(err.Error())
	}
	failed := verrs[0]
	if failed.Tag() == "utf8" {
		switch failed.Field() {
		case "Title":
			return domain.InvalidInput("Invalid title encoding")
		case "Description":
			return domain.InvalidInput("Invalid description encoding")
		}
	}
	switch failed.Field() {
	case "Title":
		return domain.InvalidInput("Invalid title length")
	case "Description":
		return domain.InvalidInput("Invalid description length")
	case "Category":
		return domain.InvalidInput("Invalid category")
	default:
		return domain.InvalidInput(failed.Error())
	}
}
