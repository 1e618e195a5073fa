package dto

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/hongminglow/profile-auth/internal/models"
)

// ErrInvalidAge is returned when the age field is present but not an integer.
var ErrInvalidAge = errors.New("age must be a whole number")

type RegisterRequest struct {
	Name     string
	Surname  string
	Username string
	Password string
}

type LoginRequest struct {
	Username string
	Password string
}

// RegisterFromForm reads the registration form. Usernames are kept verbatim
// apart from surrounding whitespace since lookups are case-sensitive.
func RegisterFromForm(r *http.Request) RegisterRequest {
	return RegisterRequest{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Surname:  strings.TrimSpace(r.PostFormValue("surname")),
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
}

func LoginFromForm(r *http.Request) LoginRequest {
	return LoginRequest{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
}

// ProfileFromForm maps the profile form onto nullable fields. Missing or blank
// values become nil, which clears the stored column.
func ProfileFromForm(r *http.Request) (models.ProfileFields, error) {
	fields := models.ProfileFields{
		Phone:   optional(r.PostFormValue("phone")),
		Country: optional(r.PostFormValue("country")),
		City:    optional(r.PostFormValue("city")),
		Address: optional(r.PostFormValue("address")),
		ZipCode: optional(r.PostFormValue("zip_code")),
	}
	if raw := optional(r.PostFormValue("age")); raw != nil {
		age, err := strconv.Atoi(*raw)
		if err != nil {
			return models.ProfileFields{}, ErrInvalidAge
		}
		fields.Age = &age
	}
	return fields, nil
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
