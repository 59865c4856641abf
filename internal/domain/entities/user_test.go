package entities

import (
	"errors"
	"testing"
)

func TestUser_Validate(t *testing.T) {
	cases := []struct {
		email string
		want  error
	}{
		{"ana@example.com", nil},
		{"", ErrInvalidEmail},
		{"ana.example.com", ErrInvalidEmail},
	}

	for _, tc := range cases {
		u := NewUser(tc.email, nil, "hash")
		if err := u.Validate(); !errors.Is(err, tc.want) {
			t.Errorf("%q: got %v want %v", tc.email, err, tc.want)
		}
	}
}
