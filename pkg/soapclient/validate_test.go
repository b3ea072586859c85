package soapclient

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUser(t *testing.T) {
	cases := []struct {
		name string
		in   UserInput
		want FieldErrors
	}{
		{"valid", UserInput{Name: "Ann", Email: "ann@x.com"}, nil},
		{"valid with phone", UserInput{Name: "Ann", Email: "ann@x.com", Phone: "+1 (555) 010"}, nil},
		{"fifty characters", UserInput{Name: strings.Repeat("a", 50), Email: "ann@x.com"}, nil},
		{"missing name", UserInput{Email: "ann@x.com"}, FieldErrors{"name": "Name is required"}},
		{"long name", UserInput{Name: strings.Repeat("a", 51), Email: "ann@x.com"}, FieldErrors{"name": "Name must be at most 50 characters"}},
		{"control character", UserInput{Name: "Ann\x00", Email: "ann@x.com"}, FieldErrors{"name": "Name must contain printable characters only"}},
		{"bad email", UserInput{Name: "Ann", Email: "not-an-email"}, FieldErrors{"email": "Please enter a valid email address"}},
		{"display name form", UserInput{Name: "Ann", Email: "Ann <ann@x.com>"}, FieldErrors{"email": "Please enter a valid email address"}},
		{"both", UserInput{}, FieldErrors{"name": "Name is required", "email": "Please enter a valid email address"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidateUser(tc.in))
		})
	}
}
