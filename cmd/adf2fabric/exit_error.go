package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fabric-tools/adf2fabric/internal/migration"
)

const (
	exitCodeFailure        = 1
	exitCodePartialFailure = 2
	exitCodeCanceled       = 130
)

type exitError struct {
	code   int
	err    error
	silent bool
}

func (e *exitError) Error() string {
	if e == nil {
		return ""
	}
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit %d", e.code)
}

func (e *exitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// commandError maps a run error onto the process exit code. Cancellation is
// silent because the signal already told the user what happened.
func commandError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return &exitError{code: exitCodeCanceled, err: err, silent: true}
	case migration.IsPartialFailure(err):
		return &exitError{code: exitCodePartialFailure, err: err}
	default:
		return &exitError{code: exitCodeFailure, err: err}
	}
}
