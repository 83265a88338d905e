package model

import (
	"errors"
	"time"
)

// ErrRequiredField is the sentinel every ValidationError unwraps to.
var ErrRequiredField = errors.New("required field missing")

// ValidationError reports the first required field that was absent when a User was constructed.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string { return e.Field + " is required" }

func (e *ValidationError) Unwrap() error { return ErrRequiredField }

// User is the CRUD entity. It carries no persistence tags and can be shared across layers.
// Instances are built through NewUser so that required fields are always present.
type User struct {
	ID        int64      `json:"id"`
	Firstname string     `json:"firstname"`
	Lastname  string     `json:"lastname"`
	Nick      string     `json:"nick"`
	Pass      string     `json:"-"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// UserFields is the raw input for NewUser.
// Required strings are pointers: nil means absent, while "" is a present (empty) value.
type UserFields struct {
	ID        int64
	Firstname *string
	Lastname  *string
	Nick      *string
	Pass      string
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// NewUser validates fields and builds a User.
// Required fields are checked in the order firstname, lastname, nick and the first absent one is reported.
func NewUser(f UserFields) (*User, error) {
	firstname, err := required("firstname", f.Firstname)
	if err != nil {
		return nil, err
	}
	lastname, err := required("lastname", f.Lastname)
	if err != nil {
		return nil, err
	}
	nick, err := required("nick", f.Nick)
	if err != nil {
		return nil, err
	}
	return &User{
		ID:        f.ID,
		Firstname: firstname,
		Lastname:  lastname,
		Nick:      nick,
		Pass:      f.Pass,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}, nil
}

func required(field string, v *string) (string, error) {
	if v == nil {
		return "", &ValidationError{Field: field}
	}
	return *v, nil
}
