package entity

import "errors"

var (
	ErrLeadNotFound      = errors.New("lead não encontrado")
	ErrPostNotFound      = errors.New("post não encontrado")
	ErrNoSchedulablePost = errors.New("nenhum post em rascunho ou com falha encontrado")
	ErrInvalidTransition = errors.New("transição de status inválida para o post")
	ErrProfileNotFound   = errors.New("perfil não encontrado")
)
