package validation

// Field names used for project and task names.
const (
	FieldProjectName = "project_name"
	FieldTaskName    = "task_name"
)

// NameValidator validates display names of projects and tasks
type NameValidator struct {
	validator *Validator
}

// NewNameValidator creates a new name validator
func NewNameValidator(v *Validator) *NameValidator {
	if v == nil {
		v = NewValidator()
	}
	return &NameValidator{validator: v}
}

// ValidateName validates a name for creation or rename
func (nv *NameValidator) ValidateName(field string, name string) error {
	validationError := NewValidationError()

	trimmed := nv.validator.TrimAndValidateString(name)
	if !nv.validator.IsNonEmptyString(trimmed) {
		validationError.AddRequiredError(field)
		return validationError
	}

	minLen, maxLen := nv.validator.NameLimits()
	if !nv.validator.IsValidStringLength(trimmed, minLen, maxLen) {
		validationError.AddInvalidLengthError(field, trimmed, minLen, maxLen)
	}

	if nv.validator.HasControlCharacters(trimmed) {
		validationError.AddInvalidCharacterError(field, trimmed)
	}

	if validationError.HasErrors() {
		return validationError
	}
	return nil
}

// CleanName returns the trimmed name if it is valid
func (nv *NameValidator) CleanName(field string, name string) (string, error) {
	if err := nv.ValidateName(field, name); err != nil {
		return "", err
	}
	return nv.validator.TrimAndValidateString(name), nil
}
