package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/oguzk/campusclub/internal/pkg/apperrors"
)

func TestHandleAPIErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"club not found", apperrors.ErrClubNotFound, http.StatusNotFound},
		{"membership not found", apperrors.ErrMembershipNotFound, http.StatusNotFound},
		{"activity not found", apperrors.ErrActivityNotFound, http.StatusNotFound},
		{"duplicate member", apperrors.ErrDuplicateMember, http.StatusConflict},
		{"leader exists", apperrors.ErrLeaderExists, http.StatusConflict},
		{"already enrolled", apperrors.ErrAlreadyEnrolled, http.StatusConflict},
		{"capacity exceeded", apperrors.ErrCapacityExceeded, http.StatusConflict},
		{"demotion failed", apperrors.ErrDemotionFailed, http.StatusConflict},
		{"activity not open", apperrors.ErrActivityNotOpen, http.StatusUnprocessableEntity},
		{"not enrolled", apperrors.ErrNotEnrolled, http.StatusUnprocessableEntity},
		{"cannot remove leader", apperrors.ErrCannotRemoveLeader, http.StatusUnprocessableEntity},
		{"invalid transition", apperrors.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{"insufficient points", apperrors.ErrInsufficientPoints, http.StatusUnprocessableEntity},
		{"busy", apperrors.ErrBusy, http.StatusServiceUnavailable},
		{"bad request", apperrors.ErrBadRequest, http.StatusBadRequest},
		{"invalid credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{"permission denied", apperrors.ErrPermissionDenied, http.StatusForbidden},
		{"email exists", apperrors.ErrEmailAlreadyExists, http.StatusConflict},
		{"unknown", http.ErrBodyNotAllowed, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tc.err)
			require.Equal(t, tc.wantStatus, recorder.Code)
		})
	}
}

func TestHandleAPIErrorUnwrapsCustomErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	err := apperrors.NewCustomError(apperrors.ErrBusy, "row lock acquisition timed out")
	HandleAPIError(c, err)

	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	require.Equal(t, "1", recorder.Header().Get("Retry-After"))
}
