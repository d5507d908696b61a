// Package validator holds the stateless input checks shared by the handler and repository.
package validator

import "unicode/utf8"

// Name length bounds, inclusive.
const (
	MinNameLength = 2
	MaxNameLength = 20
)

// ValidName reports whether name has between MinNameLength and MaxNameLength characters.
func ValidName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= MinNameLength && n <= MaxNameLength
}
