package valueobject

import (
	"strings"

	"github.com/knawat/mp-backend/internal/domain/shared"
)

// Address is a postal address as exchanged with storefronts and the OMS.
// It is a value object: compare by value, never mutate in place.
type Address struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Company    string `json:"company,omitempty"`
	Address1   string `json:"address_1"`
	Address2   string `json:"address_2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
}

// Validate checks the fields every order address must carry.
func (a Address) Validate() error {
	switch {
	case strings.TrimSpace(a.FirstName) == "":
		return shared.NewDomainError("INVALID_ADDRESS", "Address first_name is required")
	case strings.TrimSpace(a.LastName) == "":
		return shared.NewDomainError("INVALID_ADDRESS", "Address last_name is required")
	case strings.TrimSpace(a.Address1) == "":
		return shared.NewDomainError("INVALID_ADDRESS", "Address address_1 is required")
	case !a.HasCountry():
		return shared.NewDomainError("INVALID_ADDRESS", "Address country must be a 2-letter code")
	case strings.TrimSpace(a.Email) == "":
		return shared.NewDomainError("INVALID_ADDRESS", "Address email is required")
	}
	return nil
}

// HasCountry reports whether the address carries a usable ISO 3166-1 alpha-2
// country code.
func (a Address) HasCountry() bool {
	return len(strings.TrimSpace(a.Country)) == 2
}

// CountryCode returns the upper-cased country code.
func (a Address) CountryCode() string {
	return strings.ToUpper(strings.TrimSpace(a.Country))
}

// IsZero reports whether the address is entirely empty.
func (a Address) IsZero() bool {
	return a == Address{}
}
