package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a loaded Config against the struct tags declared on
// Config and its nested types, returning every violation joined into a
// single error.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msg string
		for _, fe := range verrs {
			msg += fmt.Sprintf("field %q failed constraint %q\n", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}
