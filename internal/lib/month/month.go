// Package month считает даты продления подписки по календарным месяцам.
package month

import (
	"time"
)

// Add прибавляет к t n календарных месяцев. Если в целевом месяце нет такого
// дня, берется последний день месяца: 31 января + 1 месяц = 28 (29) февраля.
func Add(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, n, 0)
	lastDay := target.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// NextRenewal возвращает первую дату продления строго после now для подписки,
// начатой в start и оплачиваемой каждые periodMonths месяцев.
// Даты отсчитываются от start, поэтому день месяца не «уплывает» после февраля.
func NextRenewal(start time.Time, periodMonths int, now time.Time) time.Time {
	if periodMonths <= 0 {
		periodMonths = 1
	}
	if now.Before(start) {
		return Add(start, periodMonths)
	}

	// Разница в полных месяцах дает близкую к ответу оценку.
	months := (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month())
	k := months / periodMonths
	if k < 1 {
		k = 1
	}
	for {
		next := Add(start, k*periodMonths)
		if next.After(now) {
			prev := Add(start, (k-1)*periodMonths)
			if k > 1 && prev.After(now) {
				k--
				continue
			}
			return next
		}
		k++
	}
}
