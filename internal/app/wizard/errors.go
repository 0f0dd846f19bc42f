package wizard

// Error is an application-layer error that can be mapped to an HTTP response.
// Validation failures carry the violated rule per field in Details, so the
// presentation layer can re-present the specific rule rather than a generic
// failure.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func validationError(field, rule string) *Error {
	return &Error{
		Status:  422,
		Code:    "VALIDATION_ERROR",
		Message: "invalid " + field,
		Details: map[string]any{field: rule},
	}
}
