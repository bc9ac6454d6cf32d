package outcome

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

var (
	// ErrTransientIO marks files that vanished or were locked mid-operation;
	// a later pass retries them.
	ErrTransientIO = errors.New("transient io")
	// ErrPermission marks permission failures; these surface to the
	// collaborator and are not retried automatically.
	ErrPermission = errors.New("permission denied")
	// ErrIntegrity marks a fallback copy whose digest did not match the
	// source; the source is left untouched.
	ErrIntegrity = errors.New("integrity failure")
	// ErrUnstable marks a file whose size is still changing; the caller
	// defers and retries after it settles.
	ErrUnstable = errors.New("file still changing")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransientIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ActionForError maps a processing error to the action the organizer should
// record: transient and unstable conditions are skipped (retried later),
// everything else is failed.
func ActionForError(err error) Action {
	switch {
	case errors.Is(err, ErrUnstable), errors.Is(err, ErrTransientIO), errors.Is(err, fs.ErrNotExist):
		return ActionSkipped
	default:
		return ActionFailed
	}
}

// Classify tags err with the sentinel matching its underlying cause:
// not-exist becomes transient IO, permission errors become permission
// failures, anything else keeps its existing tag or falls back to transient.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTransientIO), errors.Is(err, ErrPermission),
		errors.Is(err, ErrIntegrity), errors.Is(err, ErrUnstable):
		return err
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrTransientIO, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermission, err)
	default:
		return fmt.Errorf("%w: %w", ErrTransientIO, err)
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "processing failure"
	}
	return strings.Join(parts, ": ")
}
