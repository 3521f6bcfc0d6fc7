package models

import (
	"time"

	"github.com/google/uuid"
)

// EventKind — тип изменения подписки в журнале.
type EventKind string

// Типы событий журнала подписок.
const (
	EventActivated     EventKind = "activated"
	EventRenewed       EventKind = "renewed"
	EventUpgraded      EventKind = "upgraded"
	EventDowngraded    EventKind = "downgraded"
	EventPeriodChanged EventKind = "period_changed"
	EventCancelled     EventKind = "cancelled"
)

// SubscriptionEvent — запись журнала изменений подписки.
type SubscriptionEvent struct {
	ID            int64              `json:"id"`
	UserUID       uuid.UUID          `json:"user_uid"`
	Kind          EventKind          `json:"kind"`
	Tier          Tier               `json:"tier"`
	BillingPeriod BillingPeriod      `json:"billing_period"`
	Status        SubscriptionStatus `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
}

// CourseUnlockedMessage — сообщение в очередь уведомлений об открытии курса.
type CourseUnlockedMessage struct {
	UserUID    uuid.UUID `json:"user_uid"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	CourseID   int64     `json:"course_id"`
	Title      string    `json:"title"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
