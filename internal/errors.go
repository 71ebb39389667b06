package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
)

// ErrorCategory represents the type of error encountered
type ErrorCategory string

const (
	ErrorCategoryIO        ErrorCategory = "io_error"        // File system, permissions, disk space
	ErrorCategoryTimestamp ErrorCategory = "timestamp_error" // Neither metadata nor mtime readable
	ErrorCategoryConflict  ErrorCategory = "target_conflict" // Destination exists but is not a file
	ErrorCategoryUnknown   ErrorCategory = "unknown_error"   // Unexpected errors
)

// ErrorSeverity indicates how critical the error is
type ErrorSeverity string

const (
	ErrorSeverityCritical ErrorSeverity = "critical" // System-level issues (disk full, permissions)
	ErrorSeverityError    ErrorSeverity = "error"    // File-level issues (vanished, unreadable)
)

// ProcessError represents a categorized per-file failure. Even critical
// failures only fail their own file; the batch keeps going.
type ProcessError struct {
	FilePath    string
	Category    ErrorCategory
	Severity    ErrorSeverity
	OriginalErr error
	Suggestion  string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("[%s/%s] %s: %v", e.Severity, e.Category, e.FilePath, e.OriginalErr)
}

func (e *ProcessError) Unwrap() error { return e.OriginalErr }

type errorRule struct {
	errno      syscall.Errno
	text       string
	category   ErrorCategory
	severity   ErrorSeverity
	suggestion string
}

// Checked in order; errno first, message text for errors that lost their errno.
var errorRules = []errorRule{
	{syscall.ENOSPC, "no space left", ErrorCategoryIO, ErrorSeverityCritical,
		"Free up disk space on the target drive and run again"},
	{syscall.EACCES, "permission denied", ErrorCategoryIO, ErrorSeverityCritical,
		"Check file permissions on both source and target directories"},
	{syscall.EROFS, "read-only file system", ErrorCategoryIO, ErrorSeverityCritical,
		"Target filesystem is read-only - check mount options"},
	{syscall.EMFILE, "too many open files", ErrorCategoryIO, ErrorSeverityCritical,
		"System file descriptor limit reached - increase ulimit and run again"},
	{syscall.EIO, "input/output error", ErrorCategoryIO, ErrorSeverityError,
		"I/O error - check disk health with SMART tools"},
	{syscall.ENOENT, "no such file", ErrorCategoryIO, ErrorSeverityError,
		"Source file disappeared while sorting - check if an external drive was disconnected"},
}

// CategorizeError analyzes an error and returns a ProcessError with category and severity
func CategorizeError(filePath string, err error) *ProcessError {
	if err == nil {
		return nil
	}

	procErr := &ProcessError{
		FilePath:    filePath,
		OriginalErr: err,
	}

	var conflict *PathTypeConflictError
	if errors.As(err, &conflict) {
		procErr.Category = ErrorCategoryConflict
		procErr.Severity = ErrorSeverityError
		procErr.Suggestion = "Something other than a file occupies the target path - move it away and run again"
		return procErr
	}

	errStr := strings.ToLower(err.Error())
	for _, r := range errorRules {
		if errors.Is(err, r.errno) || strings.Contains(errStr, r.text) {
			procErr.Category = r.category
			procErr.Severity = r.severity
			procErr.Suggestion = r.suggestion
			break
		}
	}
	if errors.Is(err, fs.ErrPermission) && procErr.Category == "" {
		procErr.Category = ErrorCategoryIO
		procErr.Severity = ErrorSeverityCritical
		procErr.Suggestion = "Check file permissions on both source and target directories"
	}

	if errors.Is(err, ErrTimestampUnavailable) {
		// keep the io severity, but this file never got as far as copying
		procErr.Category = ErrorCategoryTimestamp
		if procErr.Severity == "" {
			procErr.Severity = ErrorSeverityError
			procErr.Suggestion = "File could not be dated - check that it is still readable"
		}
	}

	if procErr.Category == "" {
		procErr.Category = ErrorCategoryUnknown
		procErr.Severity = ErrorSeverityError
		procErr.Suggestion = "Unexpected error - check logs for details"
	}

	return procErr
}
