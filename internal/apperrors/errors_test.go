package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("token missing: %w", ErrUnauthenticated), http.StatusUnauthorized, "UNAUTHENTICATED"},
		{fmt.Errorf("role student: %w", ErrUnauthorized), http.StatusForbidden, "UNAUTHORIZED"},
		{fmt.Errorf("medical request abc: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("pending -> approved_by_dept: %w", ErrInvalidTransition), http.StatusUnprocessableEntity, "INVALID_TRANSITION"},
		{fmt.Errorf("reason is required: %w", ErrValidation), http.StatusBadRequest, "VALIDATION_ERROR"},
		{fmt.Errorf("status changed: %w", ErrConflict), http.StatusConflict, "CONFLICT"},
		{errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		k := Classify(tc.err)
		assert.Equal(t, tc.status, k.Status, tc.err.Error())
		assert.Equal(t, tc.code, k.Code, tc.err.Error())
	}
}
