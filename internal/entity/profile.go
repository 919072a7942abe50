package entity

import "context"

// Profile é o dono da conta; usado só para entregar lembretes.
type Profile struct {
	ID       string  `json:"id"`
	FullName string  `json:"full_name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
}

type ProfileRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*Profile, error)
}
