package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// newValidator returns a validator reporting fields by their configuration key,
// e.g. "model.temperature".
func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("file", isFileReadable); err != nil {
		return nil, nil, fmt.Errorf("failed to register file validation: %w", err)
	}
	if err := validate.RegisterTranslation("file", trans, func(ut ut.Translator) error {
		return ut.Add("file", "{0} must be an existing and readable file", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("file", configKey(fe))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register file translation: %w", err)
	}
	if err := validate.RegisterTranslation("oneof", trans, func(ut ut.Translator) error {
		return ut.Add("oneof", "{0} must be one of [{1}], got {2}", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("oneof", configKey(fe), fe.Param(), fmt.Sprint(fe.Value()))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register oneof translation: %w", err)
	}

	return validate, trans, nil
}

func configKey(fe validator.FieldError) string {
	return strings.TrimPrefix(fe.Namespace(), "Config.")
}

func isFileReadable(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}

	// Check if the owner has read permission
	return info.Mode().Perm()&(1<<(uint(7))) != 0
}
