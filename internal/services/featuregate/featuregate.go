// Package featuregate решает, доступна ли функция пользователю с данным планом.
package featuregate

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/magabrotheeeer/pawlog/internal/metrics"
)

// Feature идентификатор функции приложения.
type Feature string

// Функции, доступные только с премиум-планом.
const (
	MultiPet        Feature = "multi_pet"
	HistoryCharts   Feature = "history_charts"
	AIInsights      Feature = "ai_insights"
	PDFExport       Feature = "pdf_export"
	VetSharing      Feature = "vet_sharing"
	CustomReminders Feature = "custom_reminders"
	UnlimitedPhotos Feature = "unlimited_photos"
)

var premiumFeatures = map[Feature]struct{}{
	MultiPet:        {},
	HistoryCharts:   {},
	AIInsights:      {},
	PDFExport:       {},
	VetSharing:      {},
	CustomReminders: {},
	UnlimitedPhotos: {},
}

// Режимы отображения защищённой области.
const (
	ModeRender        = "render"
	ModePreviewUpsell = "preview_upsell"
)

// Decision решение по функции. При отказе содержимое всё равно показывается,
// а взаимодействие перехватывается предложением оформить подписку.
type Decision struct {
	Feature Feature `json:"feature"`
	Allowed bool    `json:"allowed"`
	Mode    string  `json:"mode"`
}

// IsPremiumFeature проверяет, входит ли функция в премиум-набор.
func IsPremiumFeature(f Feature) bool {
	_, ok := premiumFeatures[f]
	return ok
}

// PremiumFeatures возвращает отсортированный список премиум-функций.
func PremiumFeatures() []Feature {
	out := make([]Feature, 0, len(premiumFeatures))
	for f := range premiumFeatures {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CanAccess доступна ли функция. Премиум открывает всё, бесплатный план
// закрывает только премиум-набор; неизвестные функции открыты.
func CanAccess(f Feature, isPremium bool) bool {
	if isPremium {
		return true
	}
	return !IsPremiumFeature(f)
}

// Entitlements источник признака премиум-доступа пользователя.
type Entitlements interface {
	IsPremium(ctx context.Context, userID string) bool
}

// Gate принимает решения по доступу и учитывает их в метриках.
type Gate struct {
	entitlements Entitlements
	metrics      *metrics.Metrics
}

// New создает Gate.
func New(entitlements Entitlements, m *metrics.Metrics) *Gate {
	return &Gate{entitlements: entitlements, metrics: m}
}

// Decide возвращает решение по функции для пользователя.
func (g *Gate) Decide(ctx context.Context, userID string, f Feature) Decision {
	allowed := CanAccess(f, g.entitlements.IsPremium(ctx, userID))
	g.metrics.GateDecision(string(f), allowed)
	d := Decision{Feature: f, Allowed: allowed, Mode: ModeRender}
	if !allowed {
		d.Mode = ModePreviewUpsell
	}
	return d
}

// ErrLocked функция требует премиум-план.
var ErrLocked = errors.New("feature requires premium plan")

// LockedError отказ в доступе к конкретной функции.
type LockedError struct {
	Feature Feature
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("feature %s requires premium plan", e.Feature)
}

func (e *LockedError) Unwrap() error {
	return ErrLocked
}

// Require возвращает *LockedError, если функция недоступна пользователю.
func (g *Gate) Require(ctx context.Context, userID string, f Feature) error {
	if d := g.Decide(ctx, userID, f); !d.Allowed {
		return &LockedError{Feature: f}
	}
	return nil
}
