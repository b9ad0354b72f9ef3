// Package errors provides the structured error type used by the mapper.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the type pair being mapped, the field path and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhasePlan, errors.KindContractViolation).
//		Pair("store.Order -> warehouse.Order").
//		Path("Customer").
//		Detail("target type %s cannot be constructed", "io.Reader").
//		Build()
//
// Or use the convenience constructors for the common cases:
//
//	err := errors.NotConfigured(pair)
//	err := errors.Unsupported(errors.PhasePlan, pair, "no conversion from int to string")
//
// All errors implement the standard error interface and support errors.Is/As.
// The sentinel values (ErrConfiguration, ErrUnsupportedConversion, ...) match
// any error of the same Kind regardless of its Phase.
package errors
