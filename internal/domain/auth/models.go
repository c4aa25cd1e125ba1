package auth

import "time"

type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Resource struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Method string `json:"method"`
}

type User struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Enabled    bool       `json:"enabled"`
	EmployeeID *int64     `json:"employeeId,omitempty"`
	Roles      []string   `json:"roles"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
}

// Credentials is the login lookup row.
type Credentials struct {
	ID           int64
	Username     string
	PasswordHash string
	Enabled      bool
}

type RoleInput struct {
	Name        string `json:"name" validate:"required,startswith=ROLE_,max=50"`
	Description string `json:"description" validate:"max=200"`
}

type ResourceInput struct {
	Name   string `json:"name" validate:"required,max=100"`
	URL    string `json:"url" validate:"required,startswith=/,max=200"`
	Method string `json:"method" validate:"required,oneof=* GET POST PUT PATCH DELETE"`
}

type IDsInput struct {
	IDs []int64 `json:"ids" validate:"dive,gt=0"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}
