package usecase

import "errors"

// DomainError é uma falha esperada (lookup sem resultado, validação, data
// não reconhecida). Vira {success:false} com a mensagem para o usuário.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError é uma falha de dependência (banco, gateway, publicação).
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func domainErr(code, message string) error {
	return &DomainError{Code: code, Message: message}
}

func technicalErr(code, message string, err error) error {
	if err != nil {
		message = message + ": " + err.Error()
	}
	return &TechnicalError{Code: code, Message: message, Err: err}
}
