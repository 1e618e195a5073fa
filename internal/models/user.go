package models

import "time"

// User captures application-facing fields for an authenticated identity.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	Profile      *Profile  `json:"profile,omitempty"`
}

// Profile holds the optional attributes owned one-to-one by a User.
type Profile struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
	ProfileFields
}

// ProfileFields are the editable, nullable profile columns. A nil pointer is
// stored as NULL.
type ProfileFields struct {
	Phone   *string `json:"phone"`
	Age     *int    `json:"age"`
	Country *string `json:"country"`
	City    *string `json:"city"`
	Address *string `json:"address"`
	ZipCode *string `json:"zip_code"`
}
