package models

import (
	"time"
)

// DefaultAvatar is assigned to accounts that never uploaded a profile picture.
const DefaultAvatar = "default.png"

// Account is the persisted record of a registered user.
type Account struct {
	ID        string    `json:"id"` // UUID, immutable. Used as the token subject.
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Avatar    string    `json:"avatar"`
	Bio       string    `json:"bio"`
	Salt      string    `json:"salt"`     // Hex encoded salt
	Verifier  string    `json:"verifier"` // Hex encoded PBKDF2 output
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Credential decodes the stored salt/verifier pair.
func (a *Account) Credential() (Credential, error) {
	return DecodeCredential(a.Salt, a.Verifier)
}

// SetCredential replaces the stored salt/verifier pair.
func (a *Account) SetCredential(cred Credential) {
	a.Salt, a.Verifier = cred.Encode()
}

// View returns the public projection of the account. Token is left empty.
func (a *Account) View() UserView {
	return UserView{
		Username: a.Username,
		Email:    a.Email,
		FullName: a.FullName,
		Avatar:   a.Avatar,
		Bio:      a.Bio,
	}
}

// AccountUpdate names every profile field a user may change. Nil fields are left untouched.
type AccountUpdate struct {
	Username *string `json:"username" validate:"omitempty,min=5,alphanum"`
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"fullName"`
	Avatar   *string `json:"avatar"`
	Bio      *string `json:"bio"`
}

// IsEmpty reports whether the update carries no field at all.
func (u AccountUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.FullName == nil && u.Avatar == nil && u.Bio == nil
}

// Apply copies the set fields onto the account.
func (u AccountUpdate) Apply(a *Account) {
	if u.Username != nil {
		a.Username = *u.Username
	}
	if u.Email != nil {
		a.Email = *u.Email
	}
	if u.FullName != nil {
		a.FullName = *u.FullName
	}
	if u.Avatar != nil {
		a.Avatar = *u.Avatar
	}
	if u.Bio != nil {
		a.Bio = *u.Bio
	}
}
