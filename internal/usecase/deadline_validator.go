package usecase

import (
	"fmt"
	"time"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/pkg/clock"
)

// Hours past the minimum lead time within which a booking is still valid
// but the passenger should be urged to book immediately.
const warningWindowHours = 12

// DeadlineValidator computes booking feasibility for a segment against the
// operator's lead-time rules.
type DeadlineValidator struct {
	rules *LeadTimeTable
	clock clock.Clock
}

// NewDeadlineValidator creates a new deadline validator.
func NewDeadlineValidator(rules *LeadTimeTable, clk clock.Clock) *DeadlineValidator {
	return &DeadlineValidator{
		rules: rules,
		clock: clk,
	}
}

// Validate checks whether assistance can still be booked for a departure.
// Weekend vs weekday selection uses the departure date's day of week, not
// the booking date. The result always carries the numeric hours remaining
// and the effective required hours.
func (v *DeadlineValidator) Validate(departure time.Time, operator, mode string) *entity.DeadlineCheck {
	now := v.clock.Now()

	if !departure.After(now) {
		return &entity.DeadlineCheck{
			Kind:           entity.DeadlineTooLate,
			Valid:          false,
			HoursRemaining: 0,
			RequiredHours:  0,
			Message:        "departure has already passed, assistance can no longer be booked",
		}
	}

	rule, source := v.rules.Resolve(operator, mode)
	requiredHours := rule.WeekdayHours
	if wd := departure.Weekday(); wd == time.Saturday || wd == time.Sunday {
		requiredHours = rule.WeekendHours
	}

	hoursRemaining := departure.Sub(now).Hours()

	check := &entity.DeadlineCheck{
		HoursRemaining: hoursRemaining,
		RequiredHours:  requiredHours,
		RuleSource:     source,
	}

	switch {
	case hoursRemaining < requiredHours:
		check.Kind = entity.DeadlineTooLate
		check.Valid = false
		check.Message = fmt.Sprintf("operator %s requires %.0fh notice, only %.1fh remain before departure",
			operator, requiredHours, hoursRemaining)
	case hoursRemaining < requiredHours+warningWindowHours:
		check.Kind = entity.DeadlineWarning
		check.Valid = true
		check.Message = fmt.Sprintf("%.1fh remain of a %.0fh minimum, book immediately",
			hoursRemaining, requiredHours)
	default:
		check.Kind = entity.DeadlineConfirmed
		check.Valid = true
		check.Message = fmt.Sprintf("%.1fh remain before departure, %.0fh notice required",
			hoursRemaining, requiredHours)
	}

	return check
}
