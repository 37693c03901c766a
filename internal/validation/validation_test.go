package validation_test

import (
	"testing"

	"github.com/fawaidy/fawaidy/internal/testutils"
	"github.com/fawaidy/fawaidy/internal/validation"
	"github.com/stretchr/testify/assert"
)

func validInput() validation.RegistrationInput {
	return validation.RegistrationInput{
		FullName:        "علي محمد",
		Username:        "ali_99",
		Email:           "ali@example.com",
		Password:        "Sttrong@123",
		PasswordConfirm: "Sttrong@123",
		Gender:          "male",
		Country:         "السعودية",
	}
}

func TestValidateRegistration(t *testing.T) {
	db := testutils.TestDB(t)

	t.Run("valid input passes", func(t *testing.T) {
		errs := validation.ValidateRegistration(db, validInput())
		assert.Empty(t, errs)
	})

	t.Run("country may be left empty", func(t *testing.T) {
		in := validInput()
		in.Country = ""
		errs := validation.ValidateRegistration(db, in)
		assert.Empty(t, errs)
	})

	t.Run("stops at first failing field", func(t *testing.T) {
		in := validInput()
		in.FullName = "Ali Mohammed"
		in.Email = "not-an-email"

		errs := validation.ValidateRegistration(db, in)
		assert.Len(t, errs, 1)
		assert.Contains(t, errs, "fullname")
		assert.NotContains(t, errs, "email")
	})

	t.Run("duplicate username reported after fullname passes", func(t *testing.T) {
		testutils.CreateTestUser(t, db, "taken_user", "taken@example.com", "Sttrong@123")

		in := validInput()
		in.FullName = "سالم أحمد"
		in.Username = "Taken_User"
		errs := validation.ValidateRegistration(db, in)
		assert.Equal(t, "اسم المستخدم موجود بالفعل", errs["username"])
	})
}

func TestFullName(t *testing.T) {
	db := testutils.TestDB(t)

	cases := []struct {
		name  string
		input string
		valid bool
	}{
		{"arabic name", "علي محمد", true},
		{"latin letters rejected", "Ali Mohammed", false},
		{"mixed script rejected", "علي M", false},
		{"digits rejected", "علي 99", false},
		{"empty rejected", "", false},
		{"too short", "عل", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := validation.FullName(db, tc.input)
			if tc.valid {
				assert.Empty(t, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}

	t.Run("duplicate full name rejected", func(t *testing.T) {
		u := testutils.CreateTestUser(t, db, "dupname", "dupname@example.com", "Sttrong@123")
		assert.NotEmpty(t, validation.FullName(db, u.FullName))
	})
}

func TestUsername(t *testing.T) {
	db := testutils.TestDB(t)

	cases := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple", "ali", true},
		{"with separators", "ali_99.x-y", true},
		{"max length 30", "a123456789012345678901234567890"[:30], true},
		{"too short", "al", false},
		{"starts with digit", "9ali", false},
		{"starts with separator", "_ali", false},
		{"arabic rejected", "علي", false},
		{"space rejected", "ali 99", false},
		{"too long", "a1234567890123456789012345678901", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := validation.Username(db, tc.input)
			if tc.valid {
				assert.Empty(t, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	cases := []struct {
		name  string
		input string
		valid bool
	}{
		{"strong", "Sttrong@123", true},
		{"too short", "St@1a", false},
		{"no upper", "sttrong@123", false},
		{"no digit", "Sttrong@abc", false},
		{"no symbol", "Sttrong123", false},
		{"contains space", "Sttrong@ 123", false},
		{"contains arabic", "Sttrong@123م", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := validation.Password(tc.input)
			if tc.valid {
				assert.Empty(t, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestEmailFormat(t *testing.T) {
	assert.Empty(t, validation.EmailFormat("ali@example.com"))
	assert.NotEmpty(t, validation.EmailFormat("not-an-email"))
	assert.NotEmpty(t, validation.EmailFormat("Ali <ali@example.com>"))
	assert.NotEmpty(t, validation.EmailFormat(""))
}

func TestGenderAndCountry(t *testing.T) {
	assert.Empty(t, validation.Gender("male"))
	assert.Empty(t, validation.Gender("female"))
	assert.Empty(t, validation.Gender("unspecified"))
	assert.NotEmpty(t, validation.Gender("other"))

	assert.Empty(t, validation.Country("السعودية"))
	assert.Empty(t, validation.Country(""))
	assert.NotEmpty(t, validation.Country("Saudi Arabia"))
}
