// Package metrics описывает prometheus-метрики сервиса.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор счётчиков сервиса. Нулевой указатель допустим и ничего не считает.
type Metrics struct {
	entitlementRefreshes *prometheus.CounterVec
	gateDecisions        *prometheus.CounterVec
	onboardingWrites     *prometheus.CounterVec
	remindersPublished   prometheus.Counter
}

// New создаёт метрики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		entitlementRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pawlog",
			Name:      "entitlement_refreshes_total",
			Help:      "Entitlement refreshes by trigger and result.",
		}, []string{"trigger", "result"}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pawlog",
			Name:      "feature_gate_decisions_total",
			Help:      "Feature gate decisions by feature and outcome.",
		}, []string{"feature", "allowed"}),
		onboardingWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pawlog",
			Name:      "onboarding_remote_writes_total",
			Help:      "Remote onboarding flag writes by result.",
		}, []string{"result"}),
		remindersPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pawlog",
			Name:      "trial_reminders_published_total",
			Help:      "Trial expiry reminders published to the broker.",
		}),
	}
	reg.MustRegister(m.entitlementRefreshes, m.gateDecisions, m.onboardingWrites, m.remindersPublished)
	return m
}

// EntitlementRefresh учитывает обновление состояния подписки.
func (m *Metrics) EntitlementRefresh(trigger, result string) {
	if m == nil {
		return
	}
	m.entitlementRefreshes.WithLabelValues(trigger, result).Inc()
}

// GateDecision учитывает решение по доступу к функции.
func (m *Metrics) GateDecision(feature string, allowed bool) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(feature, strconv.FormatBool(allowed)).Inc()
}

// OnboardingWrite учитывает запись флага онбординга в удалённый профиль.
func (m *Metrics) OnboardingWrite(result string) {
	if m == nil {
		return
	}
	m.onboardingWrites.WithLabelValues(result).Inc()
}

// ReminderPublished учитывает опубликованное напоминание.
func (m *Metrics) ReminderPublished() {
	if m == nil {
		return
	}
	m.remindersPublished.Inc()
}
