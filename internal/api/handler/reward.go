package handler

import (
	"errors"
	"net/http"
	"time"

	"dailyrewards/internal/interfaces"
	"dailyrewards/internal/models"
	"dailyrewards/internal/services"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupReward struct {
	container *do.Injector
}

type claimRequest struct {
	// optional; omitted or equal to today claims today's reward, a past
	// missed date goes down the recovery path
	TargetDate string `json:"target_date"`
}

type claimResponse struct {
	Success             bool                     `json:"success"`
	RevealedReward      models.RewardDefinition  `json:"revealed_reward"`
	NewStreak           int                      `json:"new_streak"`
	NewXPBalance        int                      `json:"new_xp_balance"`
	WeekCompletionBonus *models.RewardDefinition `json:"week_completion_bonus,omitempty"`
}

func (gr *groupReward) GetState(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	state, err := serviceReward.State(ctx, user)
	if err != nil {
		return abortReward(c, err)
	}

	return httpx.RestAbort(c, state, nil)
}

func (gr *groupReward) Claim(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	if err := gr.allowClaim(c, user); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var req claimRequest
	if err := c.Bind(&req); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	var result *models.ClaimResult
	if req.TargetDate == "" {
		result, err = serviceReward.ClaimToday(ctx, user)
	} else {
		target, parseErr := time.ParseInLocation("2006-01-02", req.TargetDate, time.UTC)
		if parseErr != nil {
			return httpx.RestAbort(c, nil, errorx.Wrap(parseErr, errorx.Validation))
		}

		recovery, dispatchErr := dispatchTargetDate(target, services.DateUTC(time.Now()))
		if dispatchErr != nil {
			return abortReward(c, dispatchErr)
		}

		if recovery {
			result, err = serviceReward.RecoverDay(ctx, user, target)
		} else {
			result, err = serviceReward.ClaimToday(ctx, user)
		}
	}
	if err != nil {
		return abortReward(c, err)
	}

	return httpx.RestAbort(c, claimResponse{
		Success:             true,
		RevealedReward:      result.Reward,
		NewStreak:           result.NewStreak,
		NewXPBalance:        result.NewBalance,
		WeekCompletionBonus: result.WeekCompletionBonus,
	}, nil)
}

func (gr *groupReward) allowClaim(c echo.Context, user *models.User) error {
	ctx := c.Request().Context()

	limiter, err := do.Invoke[interfaces.Limiter](gr.container)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	serviceConfig, err := do.Invoke[*services.ServiceConfig](gr.container)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	limit, _ := serviceConfig.GetIntConfig(ctx, services.CONFIG_CLAIM_RATE_LIMIT_PER_MINUTE, services.DEFAULT_CLAIM_RATE_LIMIT_PER_MINUTE)
	return limiter.Allow(ctx, services.LimitKeyUserClaim(user.ID), redis_rate.PerMinute(limit))
}

// dispatchTargetDate decides which engine operation a target date maps to.
// Future days are not claimable yet and are rejected here, before the
// recovery path gets a chance to misreport them as unrecoverable.
func dispatchTargetDate(target, today time.Time) (recovery bool, err error) {
	switch {
	case target.Equal(today):
		return false, nil
	case target.After(today):
		return false, services.ErrNotClaimable
	default:
		return true, nil
	}
}

// abortReward maps the engine's typed outcomes onto their contract status
// codes; anything untyped falls back to the shared error envelope.
func abortReward(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrAlreadyClaimed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "ALREADY_CLAIMED"})
	case errors.Is(err, services.ErrNotClaimable):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "NOT_CLAIMABLE"})
	case errors.Is(err, services.ErrNotRecoverable):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "NOT_RECOVERABLE"})
	case errors.Is(err, services.ErrInsufficientBalance):
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "INSUFFICIENT_BALANCE"})
	case errors.Is(err, services.ErrNoWeekConfiguration):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "NO_WEEK_CONFIGURATION"})
	case errors.Is(err, services.ErrRewardLock):
		return c.JSON(http.StatusConflict, echo.Map{"error": "OPERATION_IN_PROGRESS"})
	default:
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}
}
