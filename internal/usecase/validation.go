package usecase

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func required(errs []ValidationError, field, value string) []ValidationError {
	if strings.TrimSpace(value) == "" {
		return append(errs, ValidationError{field, "é obrigatório"})
	}
	return errs
}

func maxLength(errs []ValidationError, field, value string, limit int) []ValidationError {
	if len([]rune(value)) > limit {
		return append(errs, ValidationError{field, fmt.Sprintf("deve ter no máximo %d caracteres", limit)})
	}
	return errs
}

// validateCreateLeadArgs só exige o nome. E-mail e telefone são gravados como
// vieram: o modelo às vezes manda "não informado" e o lead não pode se perder.
func validateCreateLeadArgs(args CreateLeadArgs) []ValidationError {
	var errs []ValidationError

	errs = required(errs, "name", args.Name)
	errs = maxLength(errs, "name", args.Name, 200)

	return errs
}

// asValidationFailure transforma a lista em DomainError (nil se vazia).
func asValidationFailure(tool ToolName, errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}

	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+" ("+e.Message+")")
	}
	return &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("Parâmetros inválidos para %s: %s", tool, strings.Join(parts, ", ")),
	}
}
