package models

import "time"

const RoleAdmin = "admin"

// User is an administrator account stored in the users file.
type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	Role      string     `json:"role"`
	Created   time.Time  `json:"created"`
	LastLogin *time.Time `json:"lastLogin"`
}

// PublicUser is the view of a User returned to clients.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required,min=4,max=30"`
	Password string `json:"password" binding:"required,min=6"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type CreateAdminRequest struct {
	Username  string `json:"username" binding:"required,min=4,max=30"`
	Password  string `json:"password" binding:"required,min=8"`
	Email     string `json:"email" binding:"required,email"`
	SecretKey string `json:"secretKey" binding:"required"`
}
