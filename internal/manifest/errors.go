package manifest

import "fmt"

// ValidationError describes one manifest violation. Required marks
// violations that make the whole manifest invalid; the rest are
// collected but tolerated.
type ValidationError struct {
	Field    string `json:"field"`
	Reason   string `json:"reason"`
	Required bool   `json:"required"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("manifest field %q: %s", e.Field, e.Reason)
}

// MissingField reports a required field that is absent or empty.
func MissingField(name string) ValidationError {
	return ValidationError{Field: name, Reason: "required field " + name + " is missing", Required: true}
}

// InvalidFormat reports a field whose value is malformed.
func InvalidFormat(field, reason string) ValidationError {
	return ValidationError{Field: field, Reason: reason, Required: isRequiredField(field)}
}

func isRequiredField(field string) bool {
	switch field {
	case "version", "name", "entrypoint", "manifest":
		return true
	}
	return false
}
