package entity

import (
	"encoding/json"

	"github.com/languelink/identity-core/internal/domain/repository"
	"github.com/languelink/identity-core/pkg/validation"
)

// UserInfo is the persisted account profile document. AccountID is
// immutable once set and equals the document's storage key; UpdatedAt
// strictly increases on every mutation. Timestamps are unix
// milliseconds.
type UserInfo struct {
	AccountID     validation.AccountID    `json:"accountId"`
	Username      string                  `json:"username"`
	Email         validation.Email        `json:"email"`
	EmailVerified bool                    `json:"email_verified"`
	UpdatedAt     int64                   `json:"updated_at"`
	RegisteredAt  int64                   `json:"registered_at"`
	PasswordHash  validation.PasswordHash `json:"passwordHash,omitempty"`
}

// Validate checks the branded fields of a profile loaded from the store.
func (u UserInfo) Validate() error {
	if _, err := validation.ParseAccountID(string(u.AccountID)); err != nil {
		return err
	}
	if _, err := validation.ParseEmail(string(u.Email)); err != nil {
		return err
	}
	if u.PasswordHash != "" {
		if _, err := validation.ParsePasswordHash(string(u.PasswordHash)); err != nil {
			return err
		}
	}
	return nil
}

// Document renders the profile as a storable document.
func (u UserInfo) Document() (repository.Document, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	var doc repository.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// UserInfoFromDocument decodes and validates a stored profile document.
func UserInfoFromDocument(doc repository.Document) (UserInfo, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return UserInfo{}, err
	}
	var u UserInfo
	if err := json.Unmarshal(b, &u); err != nil {
		return UserInfo{}, validation.Errorf("userInfo", "malformed profile document: %v", err)
	}
	if err := u.Validate(); err != nil {
		return UserInfo{}, err
	}
	return u, nil
}

// UserInfoPartial carries the fields of a profile update. Nil fields are
// left untouched by the merge.
type UserInfoPartial struct {
	Username      *string
	Email         *validation.Email
	EmailVerified *bool
	PasswordHash  *validation.PasswordHash
}

// Account is the in-memory aggregate for a stored profile.
type Account struct {
	UserInfo
}

func (a *Account) String() string {
	return "Account<" + a.Email.String() + ">"
}

// Credentials is the login input: an email handle plus a plaintext
// password. Used only to resolve and verify accounts, never persisted.
type Credentials struct {
	Email    validation.Email
	Username string
	Password validation.PasswordRaw
}

// ParseCredentials validates raw login input into typed credentials.
func ParseCredentials(email, password string) (Credentials, error) {
	e, err := validation.ParseEmail(email)
	if err != nil {
		return Credentials{}, err
	}
	p, err := validation.ParsePassword(password)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Email: e, Password: p}, nil
}
