package verification

import (
	"errors"
	"net/http"

	"ProjectKYC/pkg/response"
)

var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidPhoneNumber   = errors.New("phone number cannot be parsed")
	ErrUnreadableImage      = errors.New("uploaded image cannot be decoded")
	ErrInvalidImageFile     = errors.New("invalid image file")

	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "internal server error")
)
