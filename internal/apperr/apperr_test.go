package apperr

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapMatchesKindAndCause(t *testing.T) {
	cause := stderrors.New("dial tcp: timeout")
	err := Wrap(ErrRemoteCall, cause, "create response")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemoteCall)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrContainerExpired)
	assert.Contains(t, err.Error(), "create response")
	assert.Equal(t, ErrRemoteCall, Kind(err))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(ErrRemoteCall, nil, "noop"))
}

func TestArtifactFetchError(t *testing.T) {
	err := error(&ArtifactFetchError{FileID: "f-123", StatusCode: 404, Body: "not found"})

	assert.ErrorIs(t, err, ErrArtifactFetch)
	assert.Equal(t, ErrArtifactFetch, Kind(err))
	assert.Equal(t, "failed to retrieve file f-123: 404, not found", err.Error())

	var afe *ArtifactFetchError
	require.ErrorAs(t, Wrap(ErrArtifactFetch, err, "normalize"), &afe)
	assert.Equal(t, 404, afe.StatusCode)
}

func TestKindUnknown(t *testing.T) {
	assert.Nil(t, Kind(stderrors.New("other")))
}
