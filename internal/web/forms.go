package web

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance shared by all form handlers.
var validate = validator.New()

// LoginForm is the login card submission.
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// RegisterForm is the registration card submission.
type RegisterForm struct {
	Name     string `validate:"required,min=2"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Role     string `validate:"required,oneof=admin shopkeeper"`
}

// CategoryForm is the category create/update submission.
type CategoryForm struct {
	Name        string `validate:"required"`
	NameKannada string
	Description string
}

// ProductForm is the product create/update submission, before the numeric
// fields are parsed into decimals.
type ProductForm struct {
	Name          string `validate:"required"`
	NameKannada   string
	CategoryID    string `validate:"required"`
	BuyingPrice   string `validate:"required"`
	SellingPrice  string `validate:"required"`
	Stock         string `validate:"required"`
	MinStockLevel string `validate:"required"`
	Unit          string `validate:"required"`
	Description   string
}

// ValidateForm validates a form struct and returns the first violation as a
// user-facing message, or "".
func ValidateForm(v interface{}) string {
	err := validate.Struct(v)
	if err == nil {
		return ""
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return "Please check the form and try again"
	}

	e := validationErrors[0]
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("Please fill in the %s field", field)
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("The %s field is too short", field)
	case "max":
		return fmt.Sprintf("The %s field is too long", field)
	case "oneof":
		return fmt.Sprintf("Please pick a valid %s", field)
	default:
		return fmt.Sprintf("Invalid value for %s", field)
	}
}
