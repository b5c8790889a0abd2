package storage

import "errors"

var (
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrSpeciesExists   = errors.New("species already exists")
	ErrSpeciesNotFound = errors.New("species not found")
	ErrCatchNotFound   = errors.New("caught record not found")
)
