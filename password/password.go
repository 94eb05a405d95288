// Package password hashes and checks the web app's upload password.
package password

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log" // all kids love log

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidPassword = errors.New("invalid password")

type private struct{}

// Hash returns a bcrypt hash of pw, base64 encoded for config files.
func Hash(pw string) string {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("can't hash password: %v", err)
	}
	return base64.RawStdEncoding.EncodeToString(bytes)
}

type Checker struct {
	private
	hash []byte
}

// NewChecker takes a hash made by Hash.
func NewChecker(encoded string) (*Checker, error) {
	bytes, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("can't decode hashed password: %w", err)
	}
	return &Checker{private: private{}, hash: bytes}, nil
}

func (ch *Checker) Validate(pw string) error {
	if err := bcrypt.CompareHashAndPassword(ch.hash, []byte(pw)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}
