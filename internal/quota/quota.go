package quota

import "github.com/promptloom/backend/internal/models"

// Allowance is the number of generations a non-pro user gets per UTC day.
const Allowance = 5

// DateLayout is the stored calendar-date format.
const DateLayout = "2006-01-02"

// RemainingToday returns how many generations the user has left for the
// given date. The counter lazily resets: a stored date other than today
// means the count no longer applies.
func RemainingToday(u *models.User, today string) int {
	if u.LastGenerationDate != today {
		return Allowance
	}
	remaining := Allowance - u.DailyGenerationCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanGenerate decides admission. Pro members bypass the allowance entirely.
func CanGenerate(u *models.User, today string) bool {
	return u.IsProMember || RemainingToday(u, today) > 0
}

// RecordGeneration computes the post-generation counter state. It is a pure
// computation; persisting the result is the caller's job.
func RecordGeneration(u *models.User, today string) (newCount int, newDate string) {
	if u.LastGenerationDate != today {
		return 1, today
	}
	return u.DailyGenerationCount + 1, today
}
