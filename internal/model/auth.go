package model

import "github.com/golang-jwt/jwt/v5"

// AdminClaims are JWT claims for the admin console surface
type AdminClaims struct {
	AdminID string `json:"adminId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for operator login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token   string `json:"token"`
	AdminID string `json:"adminId"`
}

// AdminCommand is the payload of an admin-command message: the shared secret
// plus the full command line ("allow bob", "deny bob", "kick bob").
type AdminCommand struct {
	Password string `json:"password"`
	Command  string `json:"command"`
}
