package models

import "strings"

// RegisterRequest is the input for account creation
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName"`
	Username string `json:"username" validate:"required,min=5,alphanum"`
	Password string `json:"password" validate:"required,min=5"`
}

// Normalize trims surrounding whitespace before validation and lower cases the email.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FullName = strings.TrimSpace(r.FullName)
	r.Username = strings.TrimSpace(r.Username)
	r.Password = strings.TrimSpace(r.Password)
}

// LoginRequest is the input for password login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=5"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Password = strings.TrimSpace(r.Password)
}

// UpdateAccountRequest is bound from PUT /user. Only AccountUpdate's fields are accepted.
type UpdateAccountRequest = AccountUpdate

// Normalize trims every field that is present. Emails are compared lower case.
func (u *AccountUpdate) Normalize() {
	for _, f := range []*string{u.Username, u.Email, u.FullName, u.Avatar, u.Bio} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if u.Email != nil {
		*u.Email = strings.ToLower(*u.Email)
	}
}

// ChangePasswordRequest replaces the credential of the authenticated account
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=5"`
}

func (r *ChangePasswordRequest) Normalize() {
	r.CurrentPassword = strings.TrimSpace(r.CurrentPassword)
	r.NewPassword = strings.TrimSpace(r.NewPassword)
}

// UserView is the account as returned to clients.
type UserView struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
	Bio      string `json:"bio"`
	Token    string `json:"token,omitempty"`
}

// AccountResponse wraps the user view as {"user": {...}}
type AccountResponse struct {
	User UserView `json:"user"`
}

// FieldError describes a single rejected input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse standard error format
type ErrorResponse struct {
	Error  string       `json:"error"`
	Errors []FieldError `json:"errors,omitempty"`
}
