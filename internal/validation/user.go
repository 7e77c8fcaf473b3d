package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLen минимальная длина пароля при регистрации
const MinPasswordLen = 8

var (
	passwordLetter  = regexp.MustCompile(`[A-Za-z]`)
	passwordDigit   = regexp.MustCompile(`\d`)
	passwordSpecial = regexp.MustCompile(`[@$!%*#?&]`)

	validate = validator.New()
)

// ErrPasswordMismatch возвращается, если подтверждение не совпало с паролем
var ErrPasswordMismatch = errors.New("passwords do not match")

// ValidateEmail проверяет, что email указан и корректен
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if err := validate.Var(email, "email"); err != nil {
		return fmt.Errorf("email is not valid")
	}
	return nil
}

// ValidateLoginPassword проверяет пароль на форме входа: только наличие,
// правила сложности применяются при регистрации
func ValidateLoginPassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	return nil
}

// ValidatePassword проверяет требования к новому паролю.
// Минимум 8 символов, хотя бы одна буква, цифра и спецсимвол из @$!%*#?&
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	if !passwordLetter.MatchString(password) ||
		!passwordDigit.MatchString(password) ||
		!passwordSpecial.MatchString(password) {
		return fmt.Errorf("password must contain a letter, a number and one of @$!%%*#?&")
	}

	return nil
}

// ValidateConfirmation проверяет повторный ввод пароля
func ValidateConfirmation(password, confirmation string) error {
	if confirmation == "" {
		return fmt.Errorf("password confirmation cannot be empty")
	}
	if password != confirmation {
		return ErrPasswordMismatch
	}
	return nil
}

// ValidateName проверяет отображаемое имя
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}
