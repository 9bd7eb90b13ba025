// Package repositories holds the errors shared by every repository so the
// bridge layer can map them without knowing the store behind them.
package repositories

import "errors"

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)
