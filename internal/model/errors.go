package model

import "errors"

// Sentinel errors shared by every handler package. Wrap them with
// fmt.Errorf("%w: ...") to add the user-facing detail.
var (
	ErrValidation = errors.New("validation failed")
	ErrProtected  = errors.New("protected entity")
	ErrNotFound   = errors.New("not found")
)
