package handler

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct runs the request payload through its validate tags and
// returns a client-safe message describing every failed field.
func validateStruct(s interface{}) (string, bool) {
	err := validate.Struct(s)
	if err == nil {
		return "", true
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return "invalid request", false
	}

	var messages []string
	for _, fe := range fieldErrors {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		case "min":
			messages = append(messages, field+" must be at least "+fe.Param()+" characters")
		case "max":
			messages = append(messages, field+" must be at most "+fe.Param()+" characters")
		case "email":
			messages = append(messages, field+" must be a valid email")
		default:
			messages = append(messages, field+" is invalid")
		}
	}

	return strings.Join(messages, ", "), false
}
