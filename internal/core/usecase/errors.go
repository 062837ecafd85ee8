package usecase

import (
	"errors"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

func errorsIsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
