package ports

import (
	"context"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
)

// HostRuntime is the calling convention of the managed runtime that executes
// the validation engine. It mirrors a native-interface environment: objects are
// referenced by opaque handles, entry points are resolved by name and signature,
// and faults are reported through a sticky exception state rather than return values.
//
// Implementations are not required to be safe for concurrent use.
type HostRuntime interface {
	// FindClass resolves a host class by name.
	FindClass(ctx context.Context, name string) (entities.ClassRef, error)

	// LookupMethod resolves an instance entry point by name and signature.
	// It reports false when no such entry point exists.
	LookupMethod(ctx context.Context, class entities.ClassRef, name string, sig entities.Signature) (entities.MethodRef, bool)

	// NewObject invokes a constructor. A null handle with a pending exception signals failure.
	NewObject(ctx context.Context, class entities.ClassRef, ctor entities.Signature, args ...entities.Handle) entities.Handle

	// NewString creates a host string.
	NewString(ctx context.Context, s string) entities.Handle

	// GetString copies the contents of a host string. It reports false for null
	// or non-string handles.
	GetString(ctx context.Context, h entities.Handle) (string, bool)

	// NewAtomic creates a host atomic value of the given XML Schema type from its lexical form.
	NewAtomic(ctx context.Context, typeName, lexical string) entities.Handle

	// NewArray allocates an array of the given array kind, filled with nulls.
	NewArray(ctx context.Context, kind entities.Kind, length int) entities.Handle

	// SetArrayElement stores value at index of array.
	SetArrayElement(ctx context.Context, array entities.Handle, index int, value entities.Handle)

	// Call invokes method on receiver. Void methods and null results return the null handle.
	Call(ctx context.Context, receiver entities.Handle, method entities.MethodRef, args ...entities.Handle) entities.Handle

	// DeleteRef releases a handle. Releasing the null handle is a no-op.
	DeleteRef(ctx context.Context, h entities.Handle)

	// ExceptionCheck reports whether an exception is pending.
	ExceptionCheck(ctx context.Context) bool

	// DescribeException returns the entries of the pending exception without clearing it.
	DescribeException(ctx context.Context) []entities.ExceptionEntry

	// ExceptionClear discards the pending exception.
	ExceptionClear(ctx context.Context)
}
