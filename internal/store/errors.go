package store

import (
	"errors"
	"fmt"
	"strings"

	"taskreward/internal/model"
)

var (
	ErrValidation = model.ErrValidation
	ErrProtected  = model.ErrProtected

	errDefaultProject = fmt.Errorf("%w: the main project cannot be deleted", ErrProtected)
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// errorTitle strips the sentinel prefix so notices read naturally.
func errorTitle(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{ErrValidation, ErrProtected} {
		if errors.Is(err, sentinel) {
			msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
		}
	}
	return msg
}
