package helpers

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// accountIDAlphabet is the 64-symbol URL-safe alphabet for account ids.
// Tilde replaces the dash of the default nanoid alphabet so ids stay
// friendly to path segments and cookie values.
const accountIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz~"

// accountIDLength is the fixed length of a generated account id.
const accountIDLength = 21

// NewAccountID generates a cryptographically random 21-character id
// matching [A-Za-z0-9_~]{21}.
func NewAccountID() (string, error) {
	return gonanoid.Generate(accountIDAlphabet, accountIDLength)
}
