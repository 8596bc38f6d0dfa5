package secrets

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation failure for required secrets.
type ValidationError struct {
	Empty []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("empty values for required environment variables: %s", strings.Join(e.Empty, ", "))
}

// ValidateRequired checks that all required secrets are present and non-empty.
// Returns a ValidationError if any required secret is empty, nil otherwise.
func ValidateRequired(secrets map[string]string) error {
	var empty []string

	for key, value := range secrets {
		if value == "" {
			empty = append(empty, key)
		}
	}

	if len(empty) > 0 {
		return &ValidationError{Empty: empty}
	}

	return nil
}
