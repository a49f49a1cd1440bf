// Package errs provides standardized error types for the fulfillment engine.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError: a required value is missing (e.g. no order code before submit)
//   - ValueIsInvalidError: a value is malformed or not allowed
//   - ValueIsOutOfRangeError: a value falls outside its bounds
//   - ObjectNotFoundError: an order, detail or session cannot be found
//   - NetworkError: a backend call failed or returned a non-success status
//   - BusyError: a single-flight guard rejected a concurrent request
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel, so errors.Is works on every type
package errs
