package solver

import "errors"

// Domain errors for the solver package.
var (
	// ErrNegativeBudget is returned when the device budget is below zero.
	ErrNegativeBudget = errors.New("solver: negative device budget")

	// ErrNilProblem is returned when New is called without a problem.
	ErrNilProblem = errors.New("solver: nil problem")

	// ErrNilRegistry is returned when New is called without a registry.
	ErrNilRegistry = errors.New("solver: nil device registry")

	// ErrUnknownRule is returned when a pruning rule name is not recognised.
	ErrUnknownRule = errors.New("solver: unknown pruning rule")
)
