package service

import "errors"

var (
	ErrMessageRequired    = errors.New("no message provided")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
)
