package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrSessionNotFound = errors.New("session not found")
	ErrListNotFound    = errors.New("list not found")
	ErrTaskNotFound    = errors.New("task not found")

	// ErrStoreUnavailable wraps transport-level database failures. Unlike
	// every other error in this package it is retriable by the caller.
	ErrStoreUnavailable = errors.New("store unavailable")
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
