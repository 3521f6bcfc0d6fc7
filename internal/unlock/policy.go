// Package unlock вычисляет доступность курсов по уровню подписки.
//
// Каждый уровень задаёт темп открытия: курс с порядковым номером k
// (номер считается по позиции среди опубликованных курсов, начиная с нуля)
// открывается в момент start + k*cadence. Безлимитные уровни открывают всё сразу,
// неактивная или отсутствующая подписка не открывает ничего.
// Расчёт детерминирован и не зависит ни от чего, кроме входных данных.
package unlock

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/magabrotheeeer/coaching-courses/internal/config"
	"github.com/magabrotheeeer/coaching-courses/internal/models"
)

var (
	// ErrUnknownTier — уровень подписки отсутствует в таблице политики.
	ErrUnknownTier = errors.New("tier is not configured")
	// ErrStartInFuture — дата начала подписки позже текущего момента.
	ErrStartInFuture = errors.New("subscription start is in the future")
	// ErrNegativeRank — отрицательный порядковый номер курса.
	ErrNegativeRank = errors.New("course rank must not be negative")
)

// TierRule — темп открытия курсов для одного уровня.
type TierRule struct {
	Unlimited bool
	Cadence   time.Duration
	Limit     int
}

// Decision — результат проверки одного курса.
type Decision struct {
	Locked     bool
	UnlockDate *time.Time
}

// Policy хранит проверенную таблицу темпов открытия по уровням.
type Policy struct {
	rules map[models.Tier]TierRule
}

// NewPolicy строит политику из секции unlock_policy конфига.
// Таблица должна содержать все уровни подписки и только их.
func NewPolicy(table map[string]config.TierPolicy) (*Policy, error) {
	const op = "unlock.NewPolicy"

	cfg := config.Config{UnlockPolicy: table}
	if err := cfg.ValidateUnlockPolicy(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rules := make(map[models.Tier]TierRule, len(table))
	for name, p := range table {
		tier, err := models.ParseTier(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rules[tier] = TierRule{
			Unlimited: p.Unlimited,
			Cadence:   p.Cadence,
			Limit:     p.Limit,
		}
	}
	return &Policy{rules: rules}, nil
}

// Evaluate решает, открыт ли курс с порядковым номером rank для подписки sub в момент now.
func (p *Policy) Evaluate(sub *models.Subscription, now time.Time, rank int) (Decision, error) {
	const op = "unlock.Evaluate"

	if rank < 0 {
		return Decision{}, fmt.Errorf("%s: %w: %d", op, ErrNegativeRank, rank)
	}
	if !sub.IsActive() {
		return Decision{Locked: true}, nil
	}
	if sub.StartedAt.After(now) {
		return Decision{}, fmt.Errorf("%s: %w: %s", op, ErrStartInFuture, sub.StartedAt.Format(time.RFC3339))
	}

	rule, ok := p.rules[sub.Tier]
	if !ok {
		return Decision{}, fmt.Errorf("%s: %w: %q", op, ErrUnknownTier, sub.Tier)
	}

	if rule.Unlimited {
		return Decision{Locked: false}, nil
	}
	if rule.Limit > 0 && rank >= rule.Limit {
		return Decision{Locked: true}, nil
	}

	// Дата открытия за пределами time.Duration не наступит: курс закрыт без даты.
	if rank > 0 && rule.Cadence > 0 && rule.Cadence > time.Duration(math.MaxInt64)/time.Duration(rank) {
		return Decision{Locked: true}, nil
	}
	unlockAt := sub.StartedAt.Add(time.Duration(rank) * rule.Cadence)
	if !now.Before(unlockAt) {
		return Decision{Locked: false}, nil
	}
	return Decision{Locked: true, UnlockDate: &unlockAt}, nil
}
