// Package validation provides input validation for prockit.
//
// It offers struct tag validation via go-playground/validator and a fluent
// field validator for imperative checks. Both report failures as
// errors.AppError values with field-level details.
package validation
