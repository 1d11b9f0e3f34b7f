package util

import (
	"errors"
	"net/mail"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator devolve a instância compartilhada do validator, usando a tag `label` como nome de campo.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if label := fld.Tag.Get("label"); label != "" {
				return label
			}
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct valida payloads e traduz a primeira falha para português.
func ValidateStruct(payload any) error {
	err := Validator().Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return errors.New(translate(verrs[0]))
}

func translate(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " obrigatório"
	case "email":
		return field + " inválido"
	case "gt":
		return "Selecione " + field
	case "gte", "lte", "min", "max":
		return field + " fora do intervalo permitido"
	case "len":
		return field + " com tamanho inválido"
	case "numeric":
		return field + " deve conter apenas números"
	case "datetime":
		return field + " deve estar no formato AAAA-MM-DD"
	default:
		return field + " inválido"
	}
}

// ValidateEmail retorna erro para e-mails inválidos.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email obrigatório")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("email inválido")
	}
	return nil
}

// ValidatePassword verifica requisitos mínimos de senha.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("senha deve ter pelo menos 6 caracteres")
	}
	return nil
}
