package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signup struct {
	Username string `validate:"required"`
	Password string `validate:"required,maxbytes=8"`
	Confirm  string `validate:"required,eqfield=Password"`
}

func TestStruct(t *testing.T) {
	cases := []struct {
		name string
		in   signup
		want error
	}{
		{"ok", signup{"bob", "pw", "pw"}, nil},
		{"missing username", signup{"", "pw", "pw"}, ErrMissingFields},
		{"missing confirm", signup{"bob", "pw", ""}, ErrMissingFields},
		{"missing beats mismatch", signup{"", "pw", "other"}, ErrMissingFields},
		{"mismatch", signup{"bob", "pw", "other"}, ErrPasswordMismatch},
		{"whitespace counts as present", signup{" ", "pw", "pw"}, nil},
		{"too long", signup{"bob", "123456789", "123456789"}, ErrTooLong},
		{"bytes not runes", signup{"bob", "ééééé", "ééééé"}, ErrTooLong},
		{"at the limit", signup{"bob", "12345678", "12345678"}, nil},
		{"mismatch beats too long", signup{"bob", "123456789", "x"}, ErrPasswordMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(tc.in)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestID(t *testing.T) {
	n, ok := ID("42")
	assert.True(t, ok)
	assert.EqualValues(t, 42, n)

	for _, bad := range []string{"", "abc", "0", "-3", "1.5"} {
		_, ok := ID(bad)
		assert.False(t, ok, bad)
	}
}
