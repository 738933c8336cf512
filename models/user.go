// models/user.go
package models

import "time"

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleTherapist Role = "therapist"
	RoleAdmin     Role = "admin"
)

type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

// User represents a platform account.
type User struct {
	ID          string     `json:"id" mapstructure:"id" csv:"id"`
	Name        string     `json:"name" mapstructure:"name" csv:"name"`
	Email       string     `json:"email" mapstructure:"email" csv:"email"`
	Phone       string     `json:"phone,omitempty" mapstructure:"phone" csv:"phone"`
	Role        Role       `json:"role" mapstructure:"role" csv:"role"`
	Status      UserStatus `json:"status" mapstructure:"status" csv:"status"`
	Nationality string     `json:"nationality,omitempty" mapstructure:"nationality" csv:"nationality"`
	CreatedAt   time.Time  `json:"createdAt" mapstructure:"createdAt" csv:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" mapstructure:"updatedAt" csv:"updated_at"`
}

// ProfileComplete reports whether the fields a booking needs are present.
func (u User) ProfileComplete() bool {
	return u.Name != "" && u.Email != "" && u.Phone != ""
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) Attributes() Attributes {
	return Attributes{
		Text:     []string{u.Name, u.Email, u.Phone},
		Category: string(u.Role),
		Status:   string(u.Status),
	}
}

func (u User) SortValue(field string) any {
	switch field {
	case "name":
		return u.Name
	case "email":
		return u.Email
	case "role":
		return string(u.Role)
	case "status":
		return string(u.Status)
	case "createdAt":
		return u.CreatedAt
	case "updatedAt":
		return u.UpdatedAt
	}
	return nil
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the body of PUT /auth/profile. Nil fields are left untouched.
type ProfileUpdate struct {
	Name        *string `json:"name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Nationality *string `json:"nationality,omitempty"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}
