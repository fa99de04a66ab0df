package errno

import (
	"errors"
	"fmt"
	"testing"

	"VidTube.com/pkg/store"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestConvertErr(t *testing.T) {
	assert.Equal(t, Success, ConvertErr(nil))

	wrapped := pkgerrors.Wrapf(NotFoundErr.WithMessage("video not found"), "FindVideo failed")
	got := ConvertErr(wrapped)
	assert.Equal(t, int64(NotFoundCode), got.ErrCode)
	assert.Equal(t, "video not found", got.ErrMsg)
	assert.Equal(t, "NotFound", got.Kind())
	assert.Equal(t, 404, got.HTTPStatus())

	// unknown failures must never look like success
	plain := ConvertErr(errors.New("connection reset"))
	assert.Equal(t, "Internal", plain.Kind())
	assert.Equal(t, 500, plain.HTTPStatus())
	assert.NotContains(t, plain.ErrMsg, "connection reset")
}

func TestErrNoIs(t *testing.T) {
	err := fmt.Errorf("toggle: %w", ConflictErr.WithMessage("edge changed concurrently"))
	assert.True(t, errors.Is(err, ConflictErr))
	assert.False(t, errors.Is(err, NotFoundErr))
}

func TestKinds(t *testing.T) {
	cases := map[ErrNo]string{
		UnauthenticatedErr: "Unauthenticated",
		ForbiddenErr:       "Forbidden",
		ParamErr:           "InvalidArgument",
		InvalidOpErr:       "InvalidOperation",
		UpstreamErr:        "UpstreamFailure",
		InternalErr:        "Internal",
	}
	for e, kind := range cases {
		assert.Equal(t, kind, e.Kind())
	}
	assert.Equal(t, 401, UnauthenticatedErr.HTTPStatus())
	assert.Equal(t, 403, ForbiddenErr.HTTPStatus())
	assert.Equal(t, 409, ConflictErr.HTTPStatus())
	assert.Equal(t, 502, UpstreamErr.HTTPStatus())
}

func TestFromStore(t *testing.T) {
	assert.NoError(t, FromStore(nil, "x"))

	err := FromStore(pkgerrors.Wrap(store.ErrNotFound, "GetVideo"), "Video not found")
	assert.ErrorIs(t, err, NotFoundErr)
	assert.Equal(t, "Video not found", ConvertErr(err).ErrMsg)

	assert.ErrorIs(t, FromStore(store.ErrDuplicateKey, ""), ConflictErr)

	other := errors.New("boom")
	assert.Equal(t, other, FromStore(other, ""))
}
