package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"dailyrewards/internal/datastore"
	"dailyrewards/internal/models"

	"github.com/go-redsync/redsync/v4"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

// claimHistoryDepth bounds the history fetched to rebuild a contiguous run
// when a recovery lands before the latest claim. A year of daily claims is
// far beyond any realistic unbroken run.
const claimHistoryDepth = 400

// ServiceReward executes the state-changing reward operations. Same-user
// requests are serialized by a redsync mutex; the unique (user_id, day)
// index on claim_record converts anything that slips past the lock into an
// idempotent ErrAlreadyClaimed instead of a double payout.
type ServiceReward struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	rs                 *redsync.Redsync

	serviceConfig     *ServiceConfig
	serviceWeekConfig *ServiceWeekConfig
	serviceCalendar   *ServiceCalendar
	serviceStreak     *ServiceStreak
	serviceRandomizer *ServiceRandomizer
	serviceUser       *ServiceUser
}

func NewServiceReward(container *do.Injector) (*ServiceReward, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	serviceWeekConfig, err := do.Invoke[*ServiceWeekConfig](container)
	if err != nil {
		return nil, err
	}

	serviceCalendar, err := do.Invoke[*ServiceCalendar](container)
	if err != nil {
		return nil, err
	}

	serviceStreak, err := do.Invoke[*ServiceStreak](container)
	if err != nil {
		return nil, err
	}

	serviceRandomizer, err := do.Invoke[*ServiceRandomizer](container)
	if err != nil {
		return nil, err
	}

	serviceUser, err := do.Invoke[*ServiceUser](container)
	if err != nil {
		return nil, err
	}

	return &ServiceReward{
		container:          container,
		postgresDB:         postgresDB,
		readonlyPostgresDB: readonlyPostgresDB,
		rs:                 rs,
		serviceConfig:      serviceConfig,
		serviceWeekConfig:  serviceWeekConfig,
		serviceCalendar:    serviceCalendar,
		serviceStreak:      serviceStreak,
		serviceRandomizer:  serviceRandomizer,
		serviceUser:        serviceUser,
	}, nil
}

// State rebuilds the full calendar view from the authoritative records.
// Read-only; nothing from a prior response is trusted.
func (service *ServiceReward) State(ctx context.Context, user *models.User) (*models.RewardState, error) {
	now := time.Now().UTC()

	week, err := service.serviceWeekConfig.CurrentWeek(ctx, now)
	if err != nil {
		return nil, err
	}

	profile, err := datastore.GetOrCreateUserRewardProfile(ctx, service.postgresDB, user.ID)
	if err != nil {
		return nil, err
	}

	claims, err := datastore.GetWeekClaims(ctx, service.readonlyPostgresDB, user.ID, DateUTC(week.StartDate))
	if err != nil {
		return nil, err
	}

	balance, err := service.serviceUser.GetUserXPBalance(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	allotment, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_FREEZES_PER_WEEK, DEFAULT_FREEZES_PER_WEEK)

	slots := service.serviceCalendar.ResolveWeek(week, now, claims)

	return &models.RewardState{
		StreakInfo: models.StreakInfo{
			CurrentStreak: profile.CurrentStreak,
			LongestStreak: profile.LongestStreak,
			FreezesLeft:   service.serviceStreak.FreezesView(profile, now, allotment),
		},
		CalendarSlots: slots,
		WeekInfo: models.WeekInfo{
			StartDate:      DateUTC(week.StartDate),
			RecoveryXPCost: week.RecoveryCost,
			AllDaysClaimed: service.serviceCalendar.AllDaysClaimed(slots),
		},
		UserXPBalance: balance,
	}, nil
}

// ClaimToday claims the hidden reward of the current UTC day.
func (service *ServiceReward) ClaimToday(ctx context.Context, user *models.User) (*models.ClaimResult, error) {
	mutex := service.rs.NewMutex(LockKeyUserReward(user.ID))
	if err := mutex.TryLock(); err != nil {
		return nil, ErrRewardLock
	}
	//nolint:errcheck
	defer mutex.Unlock()

	now := time.Now().UTC()
	today := DateUTC(now)

	week, err := service.serviceWeekConfig.CurrentWeek(ctx, now)
	if err != nil {
		return nil, err
	}

	claims, err := datastore.GetWeekClaims(ctx, service.postgresDB, user.ID, DateUTC(week.StartDate))
	if err != nil {
		return nil, err
	}

	slots := service.serviceCalendar.ResolveWeek(week, now, claims)
	slot := service.serviceCalendar.SlotFor(slots, today)
	if slot == nil {
		return nil, ErrNotClaimable
	}

	switch slot.Status {
	case models.SLOT_STATUS_CLAIMED:
		return nil, ErrAlreadyClaimed
	case models.SLOT_STATUS_CLAIMABLE:
	default:
		return nil, ErrNotClaimable
	}

	reward, err := service.serviceRandomizer.Resolve(user.ID, today, week.Slots[slot.Day-1])
	if err != nil {
		return nil, err
	}

	allotment, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_FREEZES_PER_WEEK, DEFAULT_FREEZES_PER_WEEK)
	bonusXP, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_WEEK_BONUS_XP, DEFAULT_WEEK_BONUS_XP)

	var result *models.ClaimResult
	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		r, err := service.processClaim(ctx, &bunRewardStore{tx}, user.ID, today, now, reward, week, allotment, bonusXP)
		if err != nil {
			return err
		}

		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	//nolint:errcheck
	service.serviceUser.ClearBalanceCache(ctx, user.ID)
	return result, nil
}

// RecoverDay retroactively claims a missed day for the week's recovery
// cost. Only the oldest unrecovered gap of the current week is accepted;
// requests naming any other day fail with ErrNotRecoverable.
func (service *ServiceReward) RecoverDay(ctx context.Context, user *models.User, day time.Time) (*models.ClaimResult, error) {
	mutex := service.rs.NewMutex(LockKeyUserReward(user.ID))
	if err := mutex.TryLock(); err != nil {
		return nil, ErrRewardLock
	}
	//nolint:errcheck
	defer mutex.Unlock()

	now := time.Now().UTC()
	day = DateUTC(day)

	week, err := service.serviceWeekConfig.CurrentWeek(ctx, now)
	if err != nil {
		return nil, err
	}

	claims, err := datastore.GetWeekClaims(ctx, service.postgresDB, user.ID, DateUTC(week.StartDate))
	if err != nil {
		return nil, err
	}

	slots := service.serviceCalendar.ResolveWeek(week, now, claims)
	slot := service.serviceCalendar.SlotFor(slots, day)
	if slot == nil {
		return nil, ErrNotRecoverable
	}

	switch {
	case slot.Status == models.SLOT_STATUS_CLAIMED:
		return nil, ErrAlreadyClaimed
	case slot.Status != models.SLOT_STATUS_MISSED || !slot.CanRecover:
		return nil, ErrNotRecoverable
	}

	reward, err := service.serviceRandomizer.Resolve(user.ID, day, week.Slots[slot.Day-1])
	if err != nil {
		return nil, err
	}

	allotment, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_FREEZES_PER_WEEK, DEFAULT_FREEZES_PER_WEEK)
	bonusXP, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_WEEK_BONUS_XP, DEFAULT_WEEK_BONUS_XP)

	var result *models.ClaimResult
	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		r, err := service.processRecovery(ctx, &bunRewardStore{tx}, user.ID, day, now, reward, week, allotment, bonusXP)
		if err != nil {
			return err
		}

		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	//nolint:errcheck
	service.serviceUser.ClearBalanceCache(ctx, user.ID)
	return result, nil
}

// processClaim is the body of the claim transaction. The unique
// (user_id, day) insert is the authoritative duplicate guard; the XP credit
// and profile update only happen when that insert lands.
func (service *ServiceReward) processClaim(ctx context.Context, store rewardStore, userID int64, day time.Time, now time.Time, reward models.RewardDefinition, week *models.WeekConfiguration, allotment, bonusXP int) (*models.ClaimResult, error) {
	profile, err := store.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	record := &models.ClaimRecord{
		UserID:    userID,
		Day:       day,
		Reward:    reward,
		Method:    models.METHOD_CLAIMED,
		ClaimedAt: now,
	}
	inserted, err := store.InsertClaimRecord(ctx, record)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrAlreadyClaimed
	}

	if err := service.serviceStreak.ApplyClaim(profile, day, models.METHOD_CLAIMED, allotment); err != nil {
		return nil, err
	}
	if err := service.serviceStreak.Validate(profile); err != nil {
		log.Printf("streak invariant violated for user %d on %s: %v", userID, day.Format("2006-01-02"), err)
		return nil, err
	}

	if err := service.creditReward(ctx, store, userID, reward, fmt.Sprintf("daily_claim:%s", day.Format("2006-01-02"))); err != nil {
		return nil, err
	}

	if err := store.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}

	bonus, err := service.checkWeekCompletion(ctx, store, userID, week, bonusXP, now)
	if err != nil {
		return nil, err
	}

	balance, err := store.GetUserXPBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.ClaimResult{
		Reward:              reward,
		NewStreak:           profile.CurrentStreak,
		NewBalance:          balance,
		WeekCompletionBonus: bonus,
	}, nil
}

// processRecovery is the body of the recovery transaction. The balance check
// precedes every write, so an underfunded request leaves no trace.
func (service *ServiceReward) processRecovery(ctx context.Context, store rewardStore, userID int64, day time.Time, now time.Time, reward models.RewardDefinition, week *models.WeekConfiguration, allotment, bonusXP int) (*models.ClaimResult, error) {
	profile, err := store.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	balance, err := store.GetUserXPBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance < week.RecoveryCost {
		return nil, ErrInsufficientBalance
	}

	record := &models.ClaimRecord{
		UserID:    userID,
		Day:       day,
		Reward:    reward,
		Method:    models.METHOD_RECOVERED,
		ClaimedAt: now,
	}
	inserted, err := store.InsertClaimRecord(ctx, record)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrAlreadyClaimed
	}

	fee := &models.XPEntry{
		UserID: userID,
		Amount: -week.RecoveryCost,
		Action: fmt.Sprintf("recovery_fee:%s", day.Format("2006-01-02")),
	}
	if _, err := store.InsertXPEntry(ctx, fee); err != nil {
		return nil, err
	}

	if profile.LastClaimDate != nil && day.Before(DateUTC(*profile.LastClaimDate)) {
		claimDays, err := store.GetClaimDaysDesc(ctx, userID, claimHistoryDepth)
		if err != nil {
			return nil, err
		}
		if err := service.serviceStreak.ApplyBackfillRecovery(profile, day, claimDays, allotment); err != nil {
			return nil, err
		}
	} else {
		if err := service.serviceStreak.ApplyClaim(profile, day, models.METHOD_RECOVERED, allotment); err != nil {
			return nil, err
		}
	}
	if err := service.serviceStreak.Validate(profile); err != nil {
		log.Printf("streak invariant violated for user %d on %s: %v", userID, day.Format("2006-01-02"), err)
		return nil, err
	}

	if err := service.creditReward(ctx, store, userID, reward, fmt.Sprintf("daily_claim:%s", day.Format("2006-01-02"))); err != nil {
		return nil, err
	}

	if err := store.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}

	bonus, err := service.checkWeekCompletion(ctx, store, userID, week, bonusXP, now)
	if err != nil {
		return nil, err
	}

	newBalance, err := store.GetUserXPBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.ClaimResult{
		Reward:              reward,
		NewStreak:           profile.CurrentStreak,
		NewBalance:          newBalance,
		WeekCompletionBonus: bonus,
	}, nil
}

func (service *ServiceReward) creditReward(ctx context.Context, store rewardStore, userID int64, reward models.RewardDefinition, action string) error {
	if reward.Type != models.REWARD_TYPE_XP || reward.XPAmount <= 0 {
		// raffle entries are fulfilled by the raffle service off the
		// claim record; nothing to credit here
		return nil
	}

	entry := &models.XPEntry{
		UserID: userID,
		Amount: reward.XPAmount,
		Action: action,
	}
	_, err := store.InsertXPEntry(ctx, entry)
	return err
}

// checkWeekCompletion grants the one-time bonus once all 7 days of the week
// hold a record. The unique (user_id, week_start) insert is the idempotency
// guard; the XP credit only happens when that insert lands, so redundant
// evaluation never double-grants.
func (service *ServiceReward) checkWeekCompletion(ctx context.Context, store rewardStore, userID int64, week *models.WeekConfiguration, bonusXP int, now time.Time) (*models.RewardDefinition, error) {
	count, err := store.CountWeekClaims(ctx, userID, DateUTC(week.StartDate))
	if err != nil {
		return nil, err
	}
	if count < DAYS_PER_WEEK {
		return nil, nil
	}

	bonus := models.RewardDefinition{
		Type:     models.REWARD_TYPE_XP,
		XPAmount: bonusXP,
	}
	granted, err := store.InsertWeekBonus(ctx, &models.WeekBonus{
		UserID:    userID,
		WeekStart: DateUTC(week.StartDate),
		Reward:    bonus,
		GrantedAt: now,
	})
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, nil
	}

	entry := &models.XPEntry{
		UserID: userID,
		Amount: bonusXP,
		Action: fmt.Sprintf("week_bonus:%s", DateUTC(week.StartDate).Format("2006-01-02")),
	}
	if _, err := store.InsertXPEntry(ctx, entry); err != nil {
		return nil, err
	}

	return &bonus, nil
}
