package auth

import (
	"fileserver-lab/errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type RegisterRequest struct {
	Username  string `validate:"required"`
	Signature []byte `validate:"required,len=32"`
}

// ValidateRegister checks a registration before any credential is computed.
func ValidateRegister(req RegisterRequest) error {
	if err := validate.Var(req.Username, "required"); err != nil {
		return fmt.Errorf("%w: cannot register empty username", errors.ErrEmptyUsername)
	}
	if !utf8.ValidString(req.Username) || strings.ContainsFunc(req.Username, unicode.IsControl) {
		return fmt.Errorf("%w: cannot register username %q", errors.ErrInvalidUsername, req.Username)
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidSignature, err)
	}
	return nil
}
