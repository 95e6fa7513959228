package domain

import "time"

// User es el registro persistido de una cuenta.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserPatch describe los cambios de perfil; un campo nil no se modifica.
type UserPatch struct {
	FirstName *string
	LastName  *string
	UpdatedAt time.Time
}

// Empty reporta si el patch no cambia ningun campo visible.
func (p UserPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil
}
