package errors

import (
	goerrors "errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Workflow errors surfaced to the acting user.
var (
	// ErrAuthorization the actor is not the participant allowed to perform the action
	ErrAuthorization = fmt.Errorf("action not allowed for this actor")
	// ErrInvalidState the derived sale state or the listing status forbids the action
	ErrInvalidState = fmt.Errorf("action not allowed in current state")
	// ErrConflict a concurrent write won the race (listing already sold, transaction aborted)
	ErrConflict = fmt.Errorf("conflicting concurrent update")
	// ErrPersistence the underlying store call failed
	ErrPersistence = fmt.Errorf("persistence failure")
)

var (
	ErrNotFound        = fmt.Errorf("not found")
	ErrAlreadyExists   = fmt.Errorf("already exists")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidPayload  = fmt.Errorf("invalid payload")
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrMissingIdentity = fmt.Errorf("missing actor identity")
)

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return goerrors.As(err, target)
}

// Persistence wraps a store failure so callers can match ErrPersistence
// while keeping the original cause.
func Persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// MapToGRPCError translates domain errors into gRPC status codes.
// Unknown errors become codes.Internal without leaking their message.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case Is(err, ErrAuthorization):
		return status.Error(codes.PermissionDenied, err.Error())
	case Is(err, ErrMissingIdentity):
		return status.Error(codes.Unauthenticated, err.Error())
	case Is(err, ErrInvalidState):
		return status.Error(codes.FailedPrecondition, err.Error())
	case Is(err, ErrConflict):
		return status.Error(codes.Aborted, err.Error())
	case Is(err, ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case Is(err, ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case Is(err, ErrPersistence):
		return status.Error(codes.Unavailable, ErrPersistence.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
