// Package models содержит доменные структуры сервиса: пользователя,
// его подписку, курсы и производный статус разблокировки курсов.
// Строковые значения из базы данных и JSON-запросов переводятся в типизированные
// значения через функции Parse*, неизвестные значения отклоняются.
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tier — уровень пакета подписки.
type Tier string

// Допустимые уровни подписки в порядке возрастания.
const (
	TierFree    Tier = "free"
	TierSocial  Tier = "social"
	TierCore    Tier = "core"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
)

// BillingPeriod — период оплаты подписки.
type BillingPeriod string

// Допустимые периоды оплаты.
const (
	BillingMonthly BillingPeriod = "monthly"
	BillingYearly  BillingPeriod = "yearly"
)

// SubscriptionStatus — статус оплаты подписки.
type SubscriptionStatus string

// Допустимые статусы подписки.
const (
	StatusActive    SubscriptionStatus = "active"
	StatusInactive  SubscriptionStatus = "inactive"
	StatusCancelled SubscriptionStatus = "cancelled"
)

var (
	// ErrUnknownTier возвращается при разборе неизвестного уровня подписки.
	ErrUnknownTier = errors.New("unknown subscription tier")
	// ErrUnknownBillingPeriod возвращается при разборе неизвестного периода оплаты.
	ErrUnknownBillingPeriod = errors.New("unknown billing period")
	// ErrUnknownStatus возвращается при разборе неизвестного статуса подписки.
	ErrUnknownStatus = errors.New("unknown subscription status")
)

// Tiers перечисляет все уровни подписки в порядке возрастания.
func Tiers() []Tier {
	return []Tier{TierFree, TierSocial, TierCore, TierPro, TierPremium}
}

// ParseTier переводит строку в Tier.
func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// Rank возвращает порядковый номер уровня, -1 для неизвестного.
func (t Tier) Rank() int {
	for i, known := range Tiers() {
		if known == t {
			return i
		}
	}
	return -1
}

// ParseBillingPeriod переводит строку в BillingPeriod.
func ParseBillingPeriod(s string) (BillingPeriod, error) {
	switch BillingPeriod(s) {
	case BillingMonthly, BillingYearly:
		return BillingPeriod(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBillingPeriod, s)
}

// Months — длина периода оплаты в месяцах.
func (p BillingPeriod) Months() int {
	if p == BillingYearly {
		return 12
	}
	return 1
}

// ParseSubscriptionStatus переводит строку в SubscriptionStatus.
func ParseSubscriptionStatus(s string) (SubscriptionStatus, error) {
	switch SubscriptionStatus(s) {
	case StatusActive, StatusInactive, StatusCancelled:
		return SubscriptionStatus(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Subscription — подписка пользователя. У пользователя не больше одной записи,
// она хранится в колонках таблицы users и никогда не удаляется.
type Subscription struct {
	UserUID       uuid.UUID          `json:"user_uid"`
	Tier          Tier               `json:"tier"`
	BillingPeriod BillingPeriod      `json:"billing_period"`
	Status        SubscriptionStatus `json:"status"`
	StartedAt     time.Time          `json:"started_at"`
}

// IsActive сообщает, открывает ли подписка доступ к курсам.
func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == StatusActive
}

// SubscriberInfo — активная подписка вместе с контактами владельца.
// Используется планировщиком уведомлений.
type SubscriberInfo struct {
	Subscription
	Email    string
	Username string
}
