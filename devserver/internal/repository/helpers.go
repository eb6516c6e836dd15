package repository

import (
	"errors"

	"gorm.io/gorm"
)

// notFound reports a missing row as (nil, nil) the way callers expect.
func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
