package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Driver-specific unique violation markers. TranslateError covers the
// postgres driver, but mysql and the pure-go sqlite driver still leak
// their own messages.
var duplicateKeyMarkers = []string{
	"duplicate key value violates unique constraint", // postgres 23505
	"Error 1062",               // mysql
	"UNIQUE constraint failed", // sqlite 2067
}

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, marker := range duplicateKeyMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
