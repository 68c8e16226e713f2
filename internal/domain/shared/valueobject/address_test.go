package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knawat/mp-backend/internal/domain/shared"
)

func validAddress() Address {
	return Address{
		FirstName: "Ada",
		LastName:  "Yilmaz",
		Address1:  "Bagdat Cad. 42",
		City:      "Istanbul",
		Country:   "TR",
		Email:     "ada@example.com",
	}
}

func TestAddressValidate(t *testing.T) {
	t.Run("complete address passes", func(t *testing.T) {
		assert.NoError(t, validAddress().Validate())
	})

	mutations := []struct {
		name    string
		mutate  func(*Address)
		wantMsg string
	}{
		{
			name:    "missing first name",
			mutate:  func(a *Address) { a.FirstName = " " },
			wantMsg: "first_name",
		},
		{
			name:    "missing last name",
			mutate:  func(a *Address) { a.LastName = "" },
			wantMsg: "last_name",
		},
		{
			name:    "missing street line",
			mutate:  func(a *Address) { a.Address1 = "" },
			wantMsg: "address_1",
		},
		{
			name:    "country not a 2-letter code",
			mutate:  func(a *Address) { a.Country = "Turkey" },
			wantMsg: "country",
		},
		{
			name:    "missing email",
			mutate:  func(a *Address) { a.Email = "" },
			wantMsg: "email",
		},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			addr := validAddress()
			tt.mutate(&addr)

			err := addr.Validate()
			require.Error(t, err)

			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "INVALID_ADDRESS", domainErr.Code)
			assert.Contains(t, domainErr.Message, tt.wantMsg)
		})
	}
}

func TestAddressHasCountry(t *testing.T) {
	tests := []struct {
		country string
		want    bool
	}{
		{"TR", true},
		{" de ", true},
		{"", false},
		{"D", false},
		{"DEU", false},
	}

	for _, tt := range tests {
		addr := Address{Country: tt.country}
		assert.Equal(t, tt.want, addr.HasCountry(), "country %q", tt.country)
	}
}

func TestAddressCountryCode(t *testing.T) {
	assert.Equal(t, "TR", Address{Country: " tr "}.CountryCode())
	assert.Equal(t, "DE", Address{Country: "DE"}.CountryCode())
}

func TestAddressIsZero(t *testing.T) {
	assert.True(t, Address{}.IsZero())
	assert.False(t, Address{Country: "TR"}.IsZero())
	assert.False(t, validAddress().IsZero())
}
