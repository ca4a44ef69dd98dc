package domain

import (
	"strconv"
	"strings"
	"time"
)

// UnknownSign is returned when a birth date cannot be resolved.
const UnknownSign = "Неизвестно"

type zodiacRange struct {
	name                 string
	startMonth, startDay int
	endMonth, endDay     int
}

var zodiacSigns = []zodiacRange{
	{"Козерог", 12, 22, 1, 19},
	{"Водолей", 1, 20, 2, 18},
	{"Рыбы", 2, 19, 3, 20},
	{"Овен", 3, 21, 4, 19},
	{"Телец", 4, 20, 5, 20},
	{"Близнецы", 5, 21, 6, 20},
	{"Рак", 6, 21, 7, 22},
	{"Лев", 7, 23, 8, 22},
	{"Дева", 8, 23, 9, 22},
	{"Весы", 9, 23, 10, 22},
	{"Скорпион", 10, 23, 11, 21},
	{"Стрелец", 11, 22, 12, 21},
}

// ZodiacSign resolves a DD.MM.YYYY or YYYY-MM-DD birth date to a sign name.
func ZodiacSign(birthDate string) string {
	day, month, ok := dayMonth(birthDate)
	if !ok {
		return UnknownSign
	}
	for _, s := range zodiacSigns {
		if month == s.startMonth && day >= s.startDay || month == s.endMonth && day <= s.endDay {
			return s.name
		}
		if s.startMonth < s.endMonth && month > s.startMonth && month < s.endMonth {
			return s.name
		}
	}
	return UnknownSign
}

// ParseBirthDate validates a birth date in either supported format.
func ParseBirthDate(s string) (time.Time, error) {
	for _, layout := range []string{"02.01.2006", "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidBirthDate
}

func dayMonth(s string) (day, month int, ok bool) {
	var parts []string
	var di, mi int
	switch {
	case strings.Contains(s, "."):
		parts, di, mi = strings.Split(s, "."), 0, 1
	case strings.Contains(s, "-"):
		parts, di, mi = strings.Split(s, "-"), 2, 1
	default:
		return 0, 0, false
	}
	if len(parts) < 3 {
		return 0, 0, false
	}
	d, err1 := strconv.Atoi(strings.TrimSpace(parts[di]))
	m, err2 := strconv.Atoi(strings.TrimSpace(parts[mi]))
	if err1 != nil || err2 != nil || m < 1 || m > 12 || d < 1 || d > 31 {
		return 0, 0, false
	}
	return d, m, true
}
