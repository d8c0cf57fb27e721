package validator

// Kind classifies a validation failure by who has to fix it.
type Kind int

const (
	// ConfigMissing is an environment defect reported as 500.
	ConfigMissing Kind = iota + 1
	// InputInvalid is a client defect reported as 400.
	InputInvalid
)

func (k Kind) String() string {
	switch k {
	case ConfigMissing:
		return "config_missing"
	case InputInvalid:
		return "input_invalid"
	default:
		return "unknown"
	}
}

// ValidationError is returned by every check in this package. The message is
// stable and safe to return to callers.
type ValidationError struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrRegionNotSet = &ValidationError{
		Kind:    ConfigMissing,
		Field:   "region",
		Message: "validation failed: region is not configured (AWS_DEFAULT_REGION)",
	}
	ErrTableNotSet = &ValidationError{
		Kind:    ConfigMissing,
		Field:   "table",
		Message: "validation failed: storage table is not configured (DYNAMODB_TABLE)",
	}
	ErrBodyNotSet = &ValidationError{
		Kind:    InputInvalid,
		Field:   "body",
		Message: "validation failed: request body is missing",
	}
	ErrBodyNotJSON = &ValidationError{
		Kind:    InputInvalid,
		Field:   "body",
		Message: "validation failed: request body is not a JSON object",
	}
	ErrRequiredFieldsNotSet = &ValidationError{
		Kind:    InputInvalid,
		Field:   "body",
		Message: "validation failed: required properties (userId, notebook, text) not present in request body",
	}
	ErrPathIDNotSet = &ValidationError{
		Kind:    InputInvalid,
		Field:   "id",
		Message: "validation failed: path parameter 'id' is missing or empty",
	}
)
