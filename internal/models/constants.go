package models

const (
	// BusinessStartHour первый час рабочего дня, доступный для записи (включительно)
	BusinessStartHour = 8

	// BusinessLimitHour последний час рабочего дня, доступный для записи (включительно)
	BusinessLimitHour = 17

	// DailySlotCapacity дневная квота записей для месячного календаря
	DailySlotCapacity = 10

	// DefaultCacheTTL время жизни кэша доступности в Redis (в секундах)
	DefaultCacheTTL = 24 * 60 * 60

	// DefaultNotificationPageSize размер страницы списка уведомлений
	DefaultNotificationPageSize = 10
)

// AppointmentTypes is the closed set of bookable service types.
var AppointmentTypes = []string{"haircut", "shave", "treatment"}

// BusinessCalendar holds the process-wide booking rules. It is built once
// at startup from config and treated as immutable afterwards.
type BusinessCalendar struct {
	StartHour     int
	LimitHour     int
	DailyCapacity int
	Types         []string
}

// DefaultBusinessCalendar returns the calendar used when config leaves the
// business section empty.
func DefaultBusinessCalendar() BusinessCalendar {
	return BusinessCalendar{
		StartHour:     BusinessStartHour,
		LimitHour:     BusinessLimitHour,
		DailyCapacity: DailySlotCapacity,
		Types:         append([]string(nil), AppointmentTypes...),
	}
}

// ValidType reports whether t belongs to the calendar's type enumeration.
func (c BusinessCalendar) ValidType(t string) bool {
	for _, known := range c.Types {
		if known == t {
			return true
		}
	}
	return false
}

// InsideBusinessHours reports whether the hour is bookable. Both bounds are
// inclusive.
func (c BusinessCalendar) InsideBusinessHours(hour int) bool {
	return hour >= c.StartHour && hour <= c.LimitHour
}
