package services

import (
	"time"

	"dailyrewards/internal/models"
)

// DateUTC normalizes a timestamp to its UTC calendar day. Every day
// comparison in the engine goes through this; the client's local time never
// participates.
func DateUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of t's week, UTC-normalized.
func WeekStart(t time.Time) time.Time {
	day := DateUTC(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// ServiceCalendar derives the 7 slot states for a week. Pure and
// side-effect free; safe to call repeatedly and concurrently.
type ServiceCalendar struct{}

func NewServiceCalendar() *ServiceCalendar {
	return &ServiceCalendar{}
}

// ResolveWeek computes the status of each of the week's 7 days relative to
// today and the user's claim records. Only the oldest unrecovered missed
// day is flagged recoverable: recovering it never requires recovering an
// earlier day first, which keeps streak semantics well-defined.
func (service *ServiceCalendar) ResolveWeek(week *models.WeekConfiguration, today time.Time, claims []*models.ClaimRecord) []models.CalendarSlot {
	today = DateUTC(today)
	start := DateUTC(week.StartDate)

	claimed := make(map[time.Time]*models.ClaimRecord, len(claims))
	for _, record := range claims {
		claimed[DateUTC(record.Day)] = record
	}

	slots := make([]models.CalendarSlot, 0, DAYS_PER_WEEK)
	recoverableSeen := false
	for i := 0; i < DAYS_PER_WEEK; i++ {
		date := start.AddDate(0, 0, i)
		slot := models.CalendarSlot{Day: i + 1, Date: date}

		record := claimed[date]
		switch {
		case record != nil:
			slot.Status = models.SLOT_STATUS_CLAIMED
			reward := record.Reward
			slot.Reward = &reward
		case date.After(today):
			slot.Status = models.SLOT_STATUS_FUTURE
		case date.Equal(today):
			slot.Status = models.SLOT_STATUS_CLAIMABLE
		default:
			slot.Status = models.SLOT_STATUS_MISSED
			if !recoverableSeen {
				slot.CanRecover = true
				recoverableSeen = true
			}
		}

		slots = append(slots, slot)
	}

	return slots
}

// SlotFor returns the slot holding date, or nil when the date falls outside
// the resolved week.
func (service *ServiceCalendar) SlotFor(slots []models.CalendarSlot, date time.Time) *models.CalendarSlot {
	date = DateUTC(date)
	for i := range slots {
		if slots[i].Date.Equal(date) {
			return &slots[i]
		}
	}

	return nil
}

func (service *ServiceCalendar) AllDaysClaimed(slots []models.CalendarSlot) bool {
	for _, slot := range slots {
		if slot.Status != models.SLOT_STATUS_CLAIMED {
			return false
		}
	}

	return len(slots) == DAYS_PER_WEEK
}
