package users

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Department   string    `json:"department"`
	Role         string    `json:"role"`
	Avatar       string    `json:"avatar,omitempty"`
	MFAEnabled   bool      `json:"mfaEnabled"`
	PasswordHash string    `json:"-"`
	MFASecret    []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type NewUser struct {
	Email        string
	PasswordHash string
	Name         string
	Department   string
	Role         string
}

// Patch carries the profile fields a caller may change. Nil means untouched.
type Patch struct {
	Email      *string
	Name       *string
	Department *string
	Avatar     *string
	Role       *string
}
