package orchestrators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput wraps presence-check failures on orchestrator inputs.
var ErrInvalidInput = errors.New("invalid input")

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkInput runs the struct's validate tags.
// POST: Returns an error wrapping ErrInvalidInput naming the failing fields
func checkInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()[:1])+fe.Field()[1:])
	}
	return fmt.Errorf("%w: %s required", ErrInvalidInput, strings.Join(fields, ", "))
}
