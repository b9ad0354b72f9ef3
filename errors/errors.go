package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseConfigure  Phase = "configure"  // configuration DSL and override files
	PhasePlan       Phase = "plan"       // strategy selection
	PhaseSynthesize Phase = "synthesize" // program emission and verification
	PhaseMap        Phase = "map"        // routine execution
)

// Kind categorizes the error
type Kind string

const (
	KindConfiguration         Kind = "configuration"
	KindNameResolution        Kind = "name_resolution"
	KindContractViolation     Kind = "contract_violation"
	KindUnsupportedConversion Kind = "unsupported_conversion"
	KindConversion            Kind = "conversion"
	KindDepthExceeded         Kind = "depth_exceeded"
	KindPanic                 Kind = "panic"
	KindInternal              Kind = "internal"
)

// Sentinels for errors.Is. They carry no Phase, so they match every phase.
var (
	ErrConfiguration         = &Error{Kind: KindConfiguration}
	ErrNameResolution        = &Error{Kind: KindNameResolution}
	ErrContractViolation     = &Error{Kind: KindContractViolation}
	ErrUnsupportedConversion = &Error{Kind: KindUnsupportedConversion}
	ErrConversion            = &Error{Kind: KindConversion}
	ErrDepthExceeded         = &Error{Kind: KindDepthExceeded}
	ErrPanic                 = &Error{Kind: KindPanic}
	ErrInternal              = &Error{Kind: KindInternal}
)

// Error is the structured error type used throughout the mapper
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Pair   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Pair != "" {
		b.WriteString(" (")
		b.WriteString(e.Pair)
		b.WriteByte(')')
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(JoinPath(e.Path))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. An empty Phase on the
// target matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}

	return e.Kind == t.Kind
}

// JoinPath renders a field path, gluing index segments like "[3]" to the
// preceding field name.
func JoinPath(path []string) string {
	var b strings.Builder
	for i, seg := range path {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}

	return b.String()
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Pair sets the type pair description
func (b *Builder) Pair(pair fmt.Stringer) *Builder {
	if pair != nil {
		b.err.Pair = pair.String()
	}
	return b
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// NotConfigured creates the error returned by Map for a pair that was never configured
func NotConfigured(pair fmt.Stringer) *Error {
	return New(PhaseMap, KindConfiguration).
		Pair(pair).
		Detail("type pair is not configured").
		Build()
}

// ConfigurationFailed creates the error returned by Map for a pair whose configuration failed
func ConfigurationFailed(pair fmt.Stringer, cause error) *Error {
	return New(PhaseMap, KindConfiguration).
		Pair(pair).
		Detail("type pair configuration failed").
		Cause(cause).
		Build()
}

// NameResolution creates a selector or member name resolution error
func NameResolution(pair fmt.Stringer, detail string, args ...any) *Error {
	return New(PhaseConfigure, KindNameResolution).
		Pair(pair).
		Detail(detail, args...).
		Build()
}

// ContractViolation creates an error for a target type that cannot be constructed
func ContractViolation(pair fmt.Stringer, path []string, typeName string) *Error {
	return New(PhasePlan, KindContractViolation).
		Pair(pair).
		Path(path...).
		Detail("target type %s cannot be constructed", typeName).
		Build()
}

// Unsupported creates an error for a source/target combination no strategy can handle
func Unsupported(phase Phase, pair fmt.Stringer, what string, args ...any) *Error {
	return New(phase, KindUnsupportedConversion).
		Pair(pair).
		Detail(what, args...).
		Build()
}

// Conversion creates a runtime conversion failure
func Conversion(cause error, detail string, args ...any) *Error {
	return New(PhaseMap, KindConversion).
		Detail(detail, args...).
		Cause(cause).
		Build()
}

// DepthExceeded creates the error raised when nested routine invocations go beyond the limit
func DepthExceeded(pair fmt.Stringer, limit int) *Error {
	return New(PhaseMap, KindDepthExceeded).
		Pair(pair).
		Detail("nesting depth exceeds %d, source graph is probably cyclic", limit).
		Value(limit).
		Build()
}

// WithPath returns err with seg prepended to its path. Errors that are not
// *Error are wrapped into a conversion error first.
func WithPath(err error, seg string) error {
	if err == nil {
		return nil
	}

	e, ok := err.(*Error)
	if !ok {
		e = Conversion(err, "")
	} else {
		clone := *e
		e = &clone
	}

	e.Path = append([]string{seg}, e.Path...)

	return e
}
