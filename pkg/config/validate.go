package config

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	storeTypes = map[string]struct{}{"pem": {}}
)

// validatorInstance configures and returns the shared validator instance used across the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("tls_algorithm", func(fl validator.FieldLevel) bool {
			_, _, ok := TLSVersions(fl.Field().String())
			return ok
		})

		_ = v.RegisterValidation("store_type", func(fl validator.FieldLevel) bool {
			_, ok := storeTypes[strings.ToLower(strings.TrimSpace(fl.Field().String()))]
			return ok
		})

		_ = v.RegisterValidation("proxy_uri", func(fl validator.FieldLevel) bool {
			u, err := url.Parse(strings.TrimSpace(fl.Field().String()))
			return err == nil && u.Scheme != "" && u.Host != ""
		})

		validateInst = v
	})

	return validateInst
}

// Validate checks the set for values no client can be built from.
func (s *Set) Validate() error {
	if s == nil {
		return fmt.Errorf("config: nil set")
	}
	if err := validatorInstance().Struct(s); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}
