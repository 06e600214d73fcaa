package ldap

import (
	"strings"
)

// EscapeDNValue escapes special characters in a DN attribute value
// according to RFC 4514.
//
// The escaping rules are:
// - Special characters that must always be escaped: , + " \ < > ;
// - A leading # must be escaped
// - Leading and trailing spaces must be escaped
// - NUL bytes are escaped as \00
func EscapeDNValue(value string) string {
	if value == "" {
		return value
	}

	var result strings.Builder
	result.Grow(len(value) + 10)

	for i, r := range value {
		switch r {
		case ',', '+', '"', '\\', '<', '>', ';':
			result.WriteRune('\\')
			result.WriteRune(r)
		case '#':
			if i == 0 {
				result.WriteRune('\\')
			}
			result.WriteRune(r)
		case ' ':
			if i == 0 || i == len(value)-1 {
				result.WriteRune('\\')
			}
			result.WriteRune(r)
		case 0:
			result.WriteString("\\00")
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// NeedsDNEscaping checks if a value contains characters that need DN
// escaping.
func NeedsDNEscaping(value string) bool {
	if value == "" {
		return false
	}

	if value[0] == ' ' || value[len(value)-1] == ' ' {
		return true
	}

	if value[0] == '#' {
		return true
	}

	for _, r := range value {
		switch r {
		case ',', '+', '"', '\\', '<', '>', ';', 0:
			return true
		}
	}

	return false
}

// ValidateRDNValue rejects values that cannot form a relative
// distinguished name even after escaping.
func ValidateRDNValue(value string) error {
	if value == "" {
		return NewCategorizedError("validate_rdn", ErrorCategoryMalformed, "RDN value cannot be empty")
	}
	if strings.ContainsRune(value, 0) {
		return NewCategorizedError("validate_rdn", ErrorCategoryMalformed, "RDN value cannot contain NUL")
	}
	return nil
}
