package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIs_MatchesByKind(t *testing.T) {
	err := fmt.Errorf("respond: %w", StateConflict("request is not pending"))

	assert.True(t, stderrors.Is(err, ErrStateConflict))
	assert.False(t, stderrors.Is(err, ErrValidation))
	assert.False(t, stderrors.Is(err, ErrNotFound))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input", nil), http.StatusBadRequest},
		{Authorization("not yours"), http.StatusForbidden},
		{StateConflict("already started"), http.StatusConflict},
		{NotFound("session"), http.StatusNotFound},
		{stderrors.New("connection reset"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("request")), http.StatusNotFound},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestAs_KeepsFields(t *testing.T) {
	err := fmt.Errorf("create review: %w", Validation("invalid review", map[string]string{
		"review_text": "required for low ratings",
	}))

	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, e.Kind)
	assert.Equal(t, "required for low ratings", e.Fields["review_text"])
	assert.Equal(t, "session not found", NotFound("session").Error())
}
