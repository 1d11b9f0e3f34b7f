package ouvidoria

import (
	"strconv"
	"strings"
	"time"

	"github.com/gestaozabele/ouvidoria/internal/resource"
	"github.com/gestaozabele/ouvidoria/internal/util"
)

const dateLayout = "2006-01-02"

func requireText(form *resource.Form, field, msg string) (string, error) {
	value := form.Trimmed(field)
	if value == "" {
		return "", resource.Invalid(field, msg)
	}
	return value, nil
}

func optionalText(form *resource.Form, field string) *string {
	value := form.Trimmed(field)
	if value == "" {
		return nil
	}
	return &value
}

func positiveInt(form *resource.Form, field, msg string) (int, error) {
	id, err := strconv.Atoi(form.Trimmed(field))
	if err != nil || id <= 0 {
		return 0, resource.Invalid(field, msg)
	}
	return id, nil
}

func requireDate(form *resource.Form, field, msg string) (string, error) {
	value := DateOnly(form.Trimmed(field))
	if value == "" {
		return "", resource.Invalid(field, msg)
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return "", resource.Invalid(field, "Data inválida. Use o formato AAAA-MM-DD.")
	}
	return value, nil
}

func optionalDate(form *resource.Form, field string) (*string, error) {
	value := DateOnly(form.Trimmed(field))
	if value == "" {
		return nil, nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return nil, resource.Invalid(field, "Data inválida. Use o formato AAAA-MM-DD.")
	}
	return &value, nil
}

// DateOnly reduz datas ISO com horário para AAAA-MM-DD.
func DateOnly(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > len(dateLayout) && (value[len(dateLayout)] == 'T' || value[len(dateLayout)] == ' ') {
		return value[:len(dateLayout)]
	}
	return value
}

func requireCPF(form *resource.Form, field string) (string, error) {
	cpf := util.OnlyDigits(form.Get(field))
	if len(cpf) != 11 {
		return "", resource.Invalid(field, "Informe um CPF válido com 11 dígitos.")
	}
	return cpf, nil
}

func optionalEmail(form *resource.Form, field string) (*string, error) {
	email := form.Trimmed(field)
	if email == "" {
		return nil, nil
	}
	if err := util.ValidateEmail(email); err != nil {
		return nil, resource.Invalid(field, "Informe um email válido.")
	}
	return &email, nil
}

func requirePassword(form *resource.Form, field string) (string, error) {
	senha := form.Get(field)
	if strings.TrimSpace(senha) == "" {
		return "", resource.Invalid(field, "Informe uma senha.")
	}
	if err := util.ValidatePassword(senha); err != nil {
		return "", resource.Invalid(field, "A senha deve ter pelo menos 6 caracteres.")
	}
	return senha, nil
}

// checkPayload roda as regras declarativas do payload.
func checkPayload(payload any) error {
	if err := util.ValidateStruct(payload); err != nil {
		return resource.Invalid("", err.Error())
	}
	return nil
}

func blankToNil(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	return value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func setIf(form *resource.Form, field, value string) {
	_ = form.Set(field, value)
}
