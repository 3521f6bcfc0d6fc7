package unlock

import (
	"fmt"
	"sort"
	"time"

	"github.com/magabrotheeeer/coaching-courses/internal/models"
)

// Build собирает статус всех опубликованных курсов и сводку.
// Курсы упорядочиваются по Position, пропуски в позициях не учитываются:
// номер курса равен его индексу после сортировки.
// При ошибке оценки любого курса отчёт не возвращается целиком.
func Build(p *Policy, sub *models.Subscription, courses []models.Course, now time.Time) (*models.UnlockReport, error) {
	const op = "unlock.Build"

	published := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if c.Published {
			published = append(published, c)
		}
	}
	sort.SliceStable(published, func(i, j int) bool {
		return published[i].Position < published[j].Position
	})

	report := &models.UnlockReport{
		Courses: make([]models.CourseUnlock, 0, len(published)),
		Summary: models.UnlockSummary{TotalCount: len(published)},
	}

	for rank, c := range published {
		d, err := p.Evaluate(sub, now, rank)
		if err != nil {
			return nil, fmt.Errorf("%s: course %d: %w", op, c.ID, err)
		}

		report.Courses = append(report.Courses, models.CourseUnlock{
			CourseID:   c.ID,
			Title:      c.Title,
			Position:   c.Position,
			Locked:     d.Locked,
			UnlockDate: d.UnlockDate,
		})

		if !d.Locked {
			report.Summary.UnlockedCount++
			continue
		}
		if d.UnlockDate != nil {
			next := report.Summary.NextUnlockDate
			if next == nil || d.UnlockDate.Before(*next) {
				report.Summary.NextUnlockDate = d.UnlockDate
			}
		}
	}

	return report, nil
}

// UnlockedBetween возвращает курсы, которые открываются в полуинтервале (from, to].
// UnlockDate у найденных курсов равен моменту открытия.
// Курсы, открытые в момент начала подписки, не возвращаются.
func UnlockedBetween(p *Policy, sub *models.Subscription, courses []models.Course, from, to time.Time) ([]models.CourseUnlock, error) {
	if !sub.IsActive() || sub.StartedAt.After(to) {
		return nil, nil
	}
	if sub.StartedAt.After(from) {
		from = sub.StartedAt
	}

	before, err := Build(p, sub, courses, from)
	if err != nil {
		return nil, err
	}
	after, err := Build(p, sub, courses, to)
	if err != nil {
		return nil, err
	}

	var res []models.CourseUnlock
	for i := range after.Courses {
		if before.Courses[i].Locked && !after.Courses[i].Locked {
			c := after.Courses[i]
			c.UnlockDate = before.Courses[i].UnlockDate
			res = append(res, c)
		}
	}
	return res, nil
}
