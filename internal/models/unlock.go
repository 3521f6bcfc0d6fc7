package models

import "time"

// CourseUnlock — производный статус доступности курса для пользователя.
// UnlockDate равен nil, если курс уже открыт или дата открытия не определена.
type CourseUnlock struct {
	CourseID   int64      `json:"courseId"`
	Title      string     `json:"title"`
	Position   int        `json:"position"`
	Locked     bool       `json:"locked"`
	UnlockDate *time.Time `json:"unlockDate"`
}

// UnlockSummary — сводка по разблокировке курсов.
type UnlockSummary struct {
	UnlockedCount  int        `json:"unlockedCount"`
	TotalCount     int        `json:"totalCount"`
	NextUnlockDate *time.Time `json:"nextUnlockDate"`
}

// UnlockReport — полный ответ о статусе курсов пользователя.
type UnlockReport struct {
	Courses []CourseUnlock `json:"courses"`
	Summary UnlockSummary  `json:"summary"`
}
