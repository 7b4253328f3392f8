package services

import (
	"errors"
	"fmt"
)

// Not-found sentinels, one per aggregate.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrSkillNotFound        = errors.New("skill not found")
	ErrSwapRequestNotFound  = errors.New("swap request not found")
	ErrFeedbackNotFound     = errors.New("feedback not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrReportNotFound       = errors.New("report not found")
)

// PermissionError carries enough context to audit a denied action.
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

// NewPermissionError creates a permission error with full context
func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is a permission denial.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// ConflictError marks a request that contradicts current state, such as a
// duplicate pending swap or an invalid status transition.
type ConflictError struct {
	Resource string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Reason)
}

func NewConflictError(resource, reason string) *ConflictError {
	return &ConflictError{Resource: resource, Reason: reason}
}

func IsConflictError(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFoundError reports whether err is one of the not-found sentinels.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrSkillNotFound) ||
		errors.Is(err, ErrSwapRequestNotFound) ||
		errors.Is(err, ErrFeedbackNotFound) ||
		errors.Is(err, ErrNotificationNotFound) ||
		errors.Is(err, ErrReportNotFound)
}
