package services

import (
	"database/sql"
	"errors"
)

// ErrNotFound matches every NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError names the resource that does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound returns a NotFoundError for resource, e.g. "Product".
func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// queryOK treats an empty single-row result as a successful query for metrics.
func queryOK(err error) bool {
	return err == nil || errors.Is(err, sql.ErrNoRows)
}
