package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Op names the API operation during which the error occurred
type Op string

const (
	OpFieldGet       Op = "field.get"
	OpFieldSet       Op = "field.set"
	OpFieldGetBuffer Op = "field.get_buffer"
	OpFieldSetBuffer Op = "field.set_buffer"
	OpFieldAddTag    Op = "field.add_tag"
	OpDataSourceGet  Op = "datasource.get"
	OpFieldLookup    Op = "datasource.field"
	OpMapGet         Op = "map.get"
	OpMapNew         Op = "map.new"
	OpMapLookup      Op = "map.lookup"
	OpMapUpdate      Op = "map.update"
	OpMapDelete      Op = "map.delete"
	OpMapRelease     Op = "map.release"
	OpReaderNew      Op = "reader.new"
	OpReaderPause    Op = "reader.pause"
	OpReaderResume   Op = "reader.resume"
	OpReaderRead     Op = "reader.read"
	OpReaderClose    Op = "reader.close"
	OpSyscallName    Op = "syscall.name"
	OpSyscallID      Op = "syscall.id"
	OpSyscallDecl    Op = "syscall.declaration"
	OpParamValue     Op = "param.value"
	OpMemory         Op = "memory"
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindCreation        Kind = "creation"
	KindFieldAccess     Kind = "field_access"
	KindMapOperation    Kind = "map_operation"
	KindBufferAccess    Kind = "buffer_access"
	KindTypeMismatch    Kind = "type_mismatch"
	KindUnsupportedKind Kind = "unsupported_kind"
	KindInvalidState    Kind = "invalid_state"
	KindAllocation      Kind = "allocation"
)

// Sentinels for errors.Is. They match any Op.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrCreation        = &Error{Kind: KindCreation}
	ErrFieldAccess     = &Error{Kind: KindFieldAccess}
	ErrMapOperation    = &Error{Kind: KindMapOperation}
	ErrBufferAccess    = &Error{Kind: KindBufferAccess}
	ErrTypeMismatch    = &Error{Kind: KindTypeMismatch}
	ErrUnsupportedKind = &Error{Kind: KindUnsupportedKind}
	ErrInvalidState    = &Error{Kind: KindInvalidState}
	ErrAllocation      = &Error{Kind: KindAllocation}
)

// Error is the structured error type used throughout the API
type Error struct {
	Value  any
	Cause  error
	Op     Op
	Kind   Kind
	Name   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Op))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Name != "" {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprintf("%q", e.Name))
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

// Is reports whether target matches this error. The kinds must be equal;
// the operation only has to match when target names one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}

// Is is errors.Is from the standard library, re-exported so callers
// importing this package do not need both.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As from the standard library.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(op Op, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Op:   op,
			Kind: kind,
		},
	}
}

// Name sets the name of the resource involved
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
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

// Convenience constructors for common error patterns

// NotFound creates a not-found error for a named resource
func NotFound(op Op, name string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindNotFound,
		Name:   name,
		Detail: "not found",
	}
}

// Creation creates a resource creation error
func Creation(op Op, name string, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindCreation,
		Name:   name,
		Detail: detail,
	}
}

// FieldAccess creates an error for a field access rejected by the host
func FieldAccess(op Op, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindFieldAccess,
		Detail: detail,
	}
}

// MapOperation creates an error for a map operation rejected by the host
func MapOperation(op Op, name string, cause error) *Error {
	return &Error{
		Op:    op,
		Kind:  KindMapOperation,
		Name:  name,
		Cause: cause,
	}
}

// BufferAccess creates an error for a failed buffer read
func BufferAccess(op Op, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindBufferAccess,
		Detail: detail,
	}
}

// TypeMismatch creates an error for a value whose type does not match
// the declared kind
func TypeMismatch(op Op, want, got string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindTypeMismatch,
		Detail: fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// UnsupportedKind creates an error for a kind without defined handling
func UnsupportedKind(op Op, kind any, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindUnsupportedKind,
		Value:  kind,
		Detail: detail,
	}
}

// InvalidState creates an error for an operation not allowed in the
// current state
func InvalidState(op Op, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindInvalidState,
		Detail: detail,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(size, align uint32, cause error) *Error {
	return &Error{
		Op:     OpMemory,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(op Op, kind Kind, cause error, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
