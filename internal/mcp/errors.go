package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/rerx/internal/domain/project"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, project.ErrValidation):
		return &APIError{Code: "VALIDATION", Message: err.Error(), RecoveryHint: "Fix the input and retry"}
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for valid ids"}
	case errors.Is(err, project.ErrSnapshotNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "snapshot not found", RecoveryHint: "Call get_history for valid snapshot ids"}
	case errors.Is(err, project.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, project.ErrInvariant):
		return &APIError{Code: "INVARIANT", Message: err.Error(), RecoveryHint: "Create another project first"}
	case errors.Is(err, project.ErrPersistence):
		return &APIError{Code: "PERSISTENCE", Message: "change applied but not saved", RecoveryHint: "The change is kept for this session; retry later"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}

// withResult attaches the result of a mutation that was applied in memory
// but could not be persisted.
func withResult(err error, result any) error {
	apiErr := MapError(err)
	if apiErr == nil {
		return err
	}
	if errors.Is(err, project.ErrPersistence) {
		out := *apiErr
		out.Details = result
		return &out
	}
	return apiErr
}
