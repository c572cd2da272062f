package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User Model with Pointers for Nullable Fields
type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password"`
	Role         string `json:"role" db:"role"`

	Gender    *string    `json:"gender,omitempty" db:"gender"`
	Birthdate *time.Time `json:"birthdate,omitempty" db:"birthdate"`
	Region    *string    `json:"region,omitempty" db:"region"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// --- API Input Structs ---

type RegisterInput struct {
	Username  string  `json:"username" binding:"required,min=3,max=64"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	Gender    *string `json:"gender"`
	Birthdate *string `json:"birthdate"` // YYYY-MM-DD
	Region    *string `json:"region" binding:"omitempty,max=8"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileInput struct {
	Username  *string `json:"username" binding:"omitempty,min=3,max=64"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Gender    *string `json:"gender"`
	Birthdate *string `json:"birthdate"`
	Region    *string `json:"region" binding:"omitempty,max=8"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type ChangeRoleInput struct {
	Role string `json:"role" binding:"required"`
}
