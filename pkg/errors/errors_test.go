package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeCatalogMissing, "mission catalog not provided")
	require.NotNil(t, err)
	assert.Equal(t, CodeCatalogMissing, err.Code)
	assert.Equal(t, "[CAT_001] mission catalog not provided", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestNewf(t *testing.T) {
	err := Newf(CodeCatalogParseFailed, "bad record at index %d", 7)
	assert.Equal(t, "[CAT_003] bad record at index 7", err.Error())
}

func TestWithDetail(t *testing.T) {
	base := New(CodeStorageObjectMissing, "object not found")
	detailed := base.WithDetail("key=drone/missions_03/missions.geojson")

	assert.Empty(t, base.Detail, "receiver must not be mutated")
	assert.Contains(t, detailed.Error(), "key=drone/missions_03/missions.geojson")

	var nilErr *AppError
	assert.Nil(t, nilErr.WithDetail("x"))
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, CodeStorageUnavailable, "failed to reach object storage")

	require.NotNil(t, err)
	assert.Equal(t, CodeStorageUnavailable, err.Code)
	assert.ErrorIs(t, err, cause)
}

func TestWrap_NilCause(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestWrap_PreservesCodeOnUnknown(t *testing.T) {
	inner := New(CodeCatalogEmpty, "no mission records")
	outer := Wrap(inner, CodeUnknown, "pipeline aborted")

	assert.Equal(t, CodeCatalogEmpty, outer.Code)
}

func TestIsCode(t *testing.T) {
	inner := New(CodeCatalogParseFailed, "catalog is not valid GeoJSON")
	wrapped := Wrap(inner, CodeInternal, "stage failed")

	assert.True(t, IsCode(wrapped, CodeCatalogParseFailed))
	assert.True(t, IsCode(wrapped, CodeInternal))
	assert.False(t, IsCode(wrapped, CodeCatalogMissing))
	assert.False(t, IsCode(nil, CodeInternal))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeValidation, GetCode(Validation("bad input")))

	wrapped := fmt.Errorf("outer: %w", NotFound("missing"))
	assert.Equal(t, CodeNotFound, GetCode(wrapped))
}

func TestConvenienceFactories(t *testing.T) {
	assert.Equal(t, CodeValidation, Validation("v").Code)
	assert.Equal(t, CodeInvalidParam, InvalidParam("p").Code)
	assert.Equal(t, CodeNotFound, NotFound("n").Code)
	assert.Equal(t, CodeInternal, Internal("i").Code)
}
