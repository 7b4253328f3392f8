package validator

// Validator is the request validation entrypoint used by services.
type Validator struct {
	business *BusinessValidator
}

// New creates a validator with all domain rules registered.
func New() *Validator {
	return &Validator{business: NewBusinessValidator()}
}

// Validate runs struct tag and custom rule validation. A nil return means
// the value passed every registered rule.
func (v *Validator) Validate(s interface{}) error {
	if errs := v.business.Validate(s); len(errs) > 0 {
		return errs
	}
	return nil
}

// Business exposes the underlying validator for rule-specific checks.
func (v *Validator) Business() *BusinessValidator {
	return v.business
}
