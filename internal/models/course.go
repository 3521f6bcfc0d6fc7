package models

// Course — курс из каталога. Position задаёт порядок разблокировки,
// в расчёте участвуют только опубликованные курсы.
type Course struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Position  int    `json:"position"`
	Published bool   `json:"published"`
}
