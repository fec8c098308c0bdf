// Package models содержит доменные модели приложения: записи подписки,
// профиль пользователя, роли, питомцев и записи дневника.
package models

import "time"

// PlanType тип тарифного плана пользователя.
type PlanType string

const (
	// PlanFree бесплатный план.
	PlanFree PlanType = "free"
	// PlanPremium оплаченный план.
	PlanPremium PlanType = "premium"
	// PlanTrial пробный период.
	PlanTrial PlanType = "trial"
)

// StatusTrialing статус подписки во время пробного периода.
const StatusTrialing = "trialing"

// EntitlementRecord запись о подписке пользователя, принадлежит бэкенду.
type EntitlementRecord struct {
	UserID             string     `json:"user_id"`
	PlanType           PlanType   `json:"plan_type"`
	PlanSource         *string    `json:"plan_source,omitempty"`
	SubscriptionStatus string     `json:"subscription_status"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
}

// TrialReminder сообщение для функции push-уведомлений об окончании пробного периода.
type TrialReminder struct {
	UserID      string    `json:"user_id"`
	TrialEndsAt time.Time `json:"trial_ends_at"`
}

// SubscriptionUpdated событие об изменении подписки вне приложения (покупка в магазине приложений).
type SubscriptionUpdated struct {
	UserID string `json:"user_id"`
}
