package session

import (
	"fmt"
	"time"
)

// ExecutionError reports a command that ran but wrote to stderr.
type ExecutionError struct {
	Command string
	Stderr  string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("command failed: %s", e.Stderr)
}

// TimeoutError reports a command killed at its deadline.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command timed out after %s", e.Timeout)
}

// NoResultsError reports a search that parsed to zero rows.
type NoResultsError struct {
	Term string
}

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("no packages found matching %q", e.Term)
}

// NotFoundError reports a selection that matched no search result.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("package %q is not in the current results", e.Name)
}

// PolicyError reports a directive refused by execution policy.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string {
	return e.Reason
}
