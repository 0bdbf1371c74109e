package usecase

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var partnerIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,63}$`)

// ValidateOrderID checks that id is a canonical UUID.
func ValidateOrderID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == strings.ToLower(id)
}

// ValidateEmail accepts a bare address without display name.
func ValidateEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// ValidatePartnerID checks the partner slug used in referral links.
func ValidatePartnerID(id string) bool {
	return partnerIDPattern.MatchString(id)
}
