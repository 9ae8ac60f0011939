package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CommentForm mirrors the public comment fields.
type CommentForm struct {
	Name  string `form:"name" binding:"required,max=80"`
	Email string `form:"email" binding:"required,email"`
	Body  string `form:"body" binding:"required"`
}

// ShareForm mirrors the email share fields. Comments is the only
// optional field.
type ShareForm struct {
	Name     string `form:"name" binding:"required,max=25"`
	Email    string `form:"email" binding:"required,email"`
	To       string `form:"to" binding:"required,email"`
	Comments string `form:"comments"`
}

// SearchForm validates the search query parameter.
type SearchForm struct {
	Query string `form:"query" binding:"required"`
}

// fieldErrors flattens validator errors into a field-to-message map
// that templates can annotate inputs with.
func fieldErrors(err error) map[string]string {
	out := make(map[string]string)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				out[field] = "This field is required."
			case "email":
				out[field] = "Enter a valid email address."
			case "max":
				out[field] = fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
			default:
				out[field] = "Enter a valid value."
			}
		}
		return out
	}

	if err != nil {
		out["__all__"] = "Invalid form submission."
	}
	return out
}
