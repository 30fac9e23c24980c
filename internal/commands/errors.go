package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to wrapped command errors so transports can branch on
// the failure class without parsing messages.
const (
	codeCommandValidation = "ENGINE_COMMAND_VALIDATION"
	codeCommandCanceled   = "ENGINE_COMMAND_CANCELED"
	codeCommandTimeout    = "ENGINE_COMMAND_TIMEOUT"
	codeCommandContext    = "ENGINE_COMMAND_CONTEXT"
	codeCommandFailed     = "ENGINE_COMMAND_FAILED"
)

// wrapValidationError tags message validation failures so callers can route
// them separately from execution faults. Errors that already carry a category
// pass through untouched.
func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command message rejected").
		WithTextCode(codeCommandValidation)
}

// wrapContextError distinguishes cancellation from deadline expiry; both land
// in the command category under their own text code.
func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command canceled").
			WithTextCode(codeCommandCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command deadline exceeded").
			WithTextCode(codeCommandTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context failed").
			WithTextCode(codeCommandContext)
	}
}

// wrapExecuteError tags failures raised by the wrapped command function.
func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(codeCommandFailed)
}
