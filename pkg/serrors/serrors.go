package serrors

import "fmt"

// BaseError is a coded error carried across the service boundary. Code is a
// stable machine-readable identifier; TemplateData holds structured details
// (for example the list of missing roles) for the API layer to surface.
type BaseError struct {
	Code         string
	Message      string
	TemplateData map[string]string
}

func NewError(code, message string) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
	}
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	return &BaseError{
		Code:         e.Code,
		Message:      e.Message,
		TemplateData: data,
	}
}

// Is matches two BaseErrors by code, so sentinel instances can be compared
// with errors.Is even after WithTemplateData produced a copy.
func (e *BaseError) Is(target error) bool {
	other, ok := target.(*BaseError)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

func NewFieldRequiredError(field string) *BaseError {
	return &BaseError{
		Code:    "FIELD_REQUIRED",
		Message: fmt.Sprintf("%s is required", field),
		TemplateData: map[string]string{
			"field": field,
		},
	}
}
