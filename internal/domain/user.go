package domain

import "time"

type Role string

const (
	RoleTraveller Role = "traveller"
	RoleOperator  Role = "operator"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ActiveTraveller is one member of a fan-out audience: a user holding a
// live booking on a tour. Produced only by the travellers resolver.
type ActiveTraveller struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}
