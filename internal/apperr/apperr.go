// Package apperr holds the error kinds surfaced to the presentation layer.
// Every remote-boundary failure is converted to exactly one of them.
package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNoDataset         = errors.New("no dataset uploaded")
	ErrContainerCreation = errors.New("container creation failed")
	ErrContainerExpired  = errors.New("container expired")
	ErrRemoteCall        = errors.New("remote call failed")
	ErrArtifactFetch     = errors.New("artifact fetch failed")
)

type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string { return e.kind.Error() + ": " + e.err.Error() }

func (e *kindError) Unwrap() error { return e.err }

func (e *kindError) Is(target error) bool { return target == e.kind }

// Wrap tags err with kind. The result matches kind via errors.Is and keeps
// err reachable for errors.As.
func Wrap(kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: errors.Wrap(err, msg)}
}

// ArtifactFetchError reports a failed container file download.
type ArtifactFetchError struct {
	FileID     string
	StatusCode int
	Body       string
	Err        error
}

func (e *ArtifactFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to retrieve file %s: %v", e.FileID, e.Err)
	}
	return fmt.Sprintf("failed to retrieve file %s: %d, %s", e.FileID, e.StatusCode, e.Body)
}

func (e *ArtifactFetchError) Unwrap() error { return e.Err }

func (e *ArtifactFetchError) Is(target error) bool { return target == ErrArtifactFetch }

// Kind returns the taxonomy sentinel err belongs to, or nil.
func Kind(err error) error {
	for _, k := range []error{ErrNoDataset, ErrContainerCreation, ErrContainerExpired, ErrArtifactFetch, ErrRemoteCall} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
