package cverror_test

import (
	"net/http"
	"testing"

	"github.com/mdouchement/clipvault/internal/cverror"
	"github.com/stretchr/testify/assert"
)

func TestCVError(t *testing.T) {
	err := cverror.New("some message")

	assert.Equal(t, "some message", err.Error())
	assert.Equal(t, http.StatusInternalServerError, cverror.StatusCode(err))
}

func TestCVErrorKinds(t *testing.T) {
	err := cverror.NewGone("link expired")

	assert.Equal(t, http.StatusGone, cverror.StatusCode(err))
	assert.True(t, cverror.Is(err, cverror.TagGone))
	assert.False(t, cverror.Is(err, cverror.TagNotFound))

	assert.Equal(t, http.StatusBadRequest, cverror.StatusCode(cverror.NewValidation("nope")))
	assert.Equal(t, http.StatusNotFound, cverror.StatusCode(cverror.NewNotFound("nope")))
	assert.Equal(t, http.StatusForbidden, cverror.StatusCode(cverror.NewForbidden("nope")))
	assert.Equal(t, http.StatusConflict, cverror.StatusCode(cverror.NewConflict("nope")))
}
