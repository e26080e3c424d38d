package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dailyrewards/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbortRewardStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrAlreadyClaimed, http.StatusConflict, "ALREADY_CLAIMED"},
		{services.ErrNotClaimable, http.StatusUnprocessableEntity, "NOT_CLAIMABLE"},
		{services.ErrNotRecoverable, http.StatusUnprocessableEntity, "NOT_RECOVERABLE"},
		{services.ErrInsufficientBalance, http.StatusPaymentRequired, "INSUFFICIENT_BALANCE"},
		{services.ErrNoWeekConfiguration, http.StatusNotFound, "NO_WEEK_CONFIGURATION"},
		{services.ErrRewardLock, http.StatusConflict, "OPERATION_IN_PROGRESS"},
	}

	e := echo.New()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.code, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			require.NoError(t, abortReward(c, tt.err))
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.code)
		})
	}
}

func TestDispatchTargetDate(t *testing.T) {
	today := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)

	recovery, err := dispatchTargetDate(today, today)
	require.NoError(t, err)
	assert.False(t, recovery, "today goes down the claim path")

	recovery, err = dispatchTargetDate(today.AddDate(0, 0, -2), today)
	require.NoError(t, err)
	assert.True(t, recovery, "a past day goes down the recovery path")

	_, err = dispatchTargetDate(today.AddDate(0, 0, 1), today)
	assert.ErrorIs(t, err, services.ErrNotClaimable, "a future day is rejected before dispatch")
}
