package services

import (
	"time"

	"dailyrewards/internal/models"
)

// ServiceStreak owns every transition of UserRewardProfile. All methods are
// pure against the profile; persistence happens in the reward service's
// transaction.
type ServiceStreak struct{}

func NewServiceStreak() *ServiceStreak {
	return &ServiceStreak{}
}

// ApplyClaim advances the profile for a claim or forward recovery on day.
// Freeze rule: when one or more days were missed since the last claim, one
// freeze is consumed per missed day, all-or-nothing. If the remaining
// allotment cannot cover the whole gap the streak resets to 1 and no freeze
// is consumed. Recovered days fill their gap and never touch freezes.
func (service *ServiceStreak) ApplyClaim(profile *models.UserRewardProfile, day time.Time, method string, freezeAllotment int) error {
	day = DateUTC(day)
	service.rolloverFreezes(profile, day, freezeAllotment)

	last := profile.LastClaimDate
	switch {
	case last == nil:
		profile.CurrentStreak = 1
	case day.Equal(DateUTC(*last)):
		// unreachable behind the unique (user_id, day) index
		return ErrDuplicateClaimDay
	case day.Before(DateUTC(*last)):
		return ErrOutOfOrderClaim
	default:
		missed := daysBetween(DateUTC(*last), day) - 1
		switch {
		case missed == 0:
			profile.CurrentStreak++
		case method == models.METHOD_RECOVERED:
			// the recovered day conceptually fills the gap
			profile.CurrentStreak++
		case missed <= profile.FreezesLeft:
			profile.FreezesLeft -= missed
			profile.CurrentStreak++
		default:
			profile.CurrentStreak = 1
		}
	}

	profile.LastClaimDate = &day
	if profile.CurrentStreak > profile.LongestStreak {
		profile.LongestStreak = profile.CurrentStreak
	}

	return nil
}

// ApplyBackfillRecovery handles a recovery that lands before the latest
// claim: the recovered day re-joins the runs on both of its sides, so the
// streak becomes the contiguous claimed run ending at the latest claim,
// counted through the recovered day. claimDays is the user's recent claim
// history (any order). The result is floored at current+1 so segments older
// than the fetched history, or bridged by a past freeze, are never shrunk.
func (service *ServiceStreak) ApplyBackfillRecovery(profile *models.UserRewardProfile, day time.Time, claimDays []time.Time, freezeAllotment int) error {
	day = DateUTC(day)
	if profile.LastClaimDate == nil || !day.Before(DateUTC(*profile.LastClaimDate)) {
		return ErrOutOfOrderClaim
	}
	service.rolloverFreezes(profile, day, freezeAllotment)

	set := make(map[time.Time]bool, len(claimDays)+1)
	for _, d := range claimDays {
		set[DateUTC(d)] = true
	}
	set[day] = true

	run := 0
	for d := DateUTC(*profile.LastClaimDate); set[d]; d = d.AddDate(0, 0, -1) {
		run++
	}
	if run < profile.CurrentStreak+1 {
		run = profile.CurrentStreak + 1
	}

	profile.CurrentStreak = run
	if profile.CurrentStreak > profile.LongestStreak {
		profile.LongestStreak = profile.CurrentStreak
	}

	return nil
}

// FreezesView returns freezes_left as of now, applying the week rollover
// without mutating the stored profile. Used by read paths.
func (service *ServiceStreak) FreezesView(profile *models.UserRewardProfile, now time.Time, freezeAllotment int) int {
	week := WeekStart(now)
	if profile.FreezeWeekStart == nil || DateUTC(*profile.FreezeWeekStart).Before(week) {
		return freezeAllotment
	}

	return profile.FreezesLeft
}

// Validate guards the monotonic invariants. A failure here is a bug, not a
// user condition; callers must abort the transaction and log it, never
// auto-correct.
func (service *ServiceStreak) Validate(profile *models.UserRewardProfile) error {
	if profile.CurrentStreak < 0 || profile.LongestStreak < 0 || profile.FreezesLeft < 0 {
		return ErrStreakInvariant
	}
	if profile.LongestStreak < profile.CurrentStreak {
		return ErrStreakInvariant
	}

	return nil
}

func (service *ServiceStreak) rolloverFreezes(profile *models.UserRewardProfile, day time.Time, freezeAllotment int) {
	week := WeekStart(day)
	if profile.FreezeWeekStart == nil || DateUTC(*profile.FreezeWeekStart).Before(week) {
		profile.FreezesLeft = freezeAllotment
		profile.FreezeWeekStart = &week
	}
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
