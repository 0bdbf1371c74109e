package auth

import "time"

// Strategy issues and verifies admin session tokens.
type Strategy interface {
	IssueToken(userID int64) (string, error)
	ParseToken(token string) (int64, error)
	Name() string
}

type Options struct {
	TTL time.Duration
	// Scope is embedded in the token; tokens of another scope are rejected.
	Scope string
}
