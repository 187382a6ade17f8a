package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/videocraft/videocraft-core/internal/backend"
)

var (
	ErrReferenceUnresolvable = errors.New("video reference has no backing file")
	ErrBackendUnreachable    = errors.New("backend unreachable")
	ErrBackendRejected       = errors.New("backend rejected the request")
	ErrArtifactNotFound      = errors.New("artifact not found")
	ErrRenderingFailure      = errors.New("rendering failed")
	ErrSaveFailure           = errors.New("saving the artifact failed")
)

// backendError classifies a backend client error. A 404 on a fetch becomes
// ErrArtifactNotFound when notFoundIsMissing is set.
func backendError(step string, err error, notFoundIsMissing bool) error {
	switch {
	case backend.IsRejected(err):
		return fmt.Errorf("%s: %w: %w", step, ErrBackendRejected, err)
	case notFoundIsMissing && backend.IsNotFound(err):
		return fmt.Errorf("%s: %w: %w", step, ErrArtifactNotFound, err)
	default:
		return fmt.Errorf("%s: %w: %w", step, ErrBackendUnreachable, err)
	}
}

// fallsBack reports whether err lets the next strategy run.
func fallsBack(err error) bool {
	return errors.Is(err, ErrBackendUnreachable) || errors.Is(err, ErrBackendRejected)
}

// reason turns a classified error into the message shown to the user.
func reason(kind Kind, err error) string {
	switch {
	case errors.Is(err, ErrReferenceUnresolvable):
		return "No video file available for export. Please upload a video first."
	case errors.Is(err, ErrArtifactNotFound):
		return "The video file was not found on the server."
	case errors.Is(err, ErrRenderingFailure):
		return fmt.Sprintf("Could not generate the %s document.", kind)
	case errors.Is(err, ErrSaveFailure):
		return fmt.Sprintf("The %s export could not be saved.", kind)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("The %s export was interrupted before the server answered.", kind)
	case errors.Is(err, ErrBackendRejected):
		var rejected *backend.RejectedError
		if errors.As(err, &rejected) && rejected.Message != "" {
			return fmt.Sprintf("The server could not complete the %s export: %s", kind, rejected.Message)
		}
		return fmt.Sprintf("The server could not complete the %s export.", kind)
	default:
		return fmt.Sprintf("The %s export failed: the server could not be reached.", kind)
	}
}
