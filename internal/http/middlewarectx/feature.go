package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/pawlog/internal/http/response"
	"github.com/magabrotheeeer/pawlog/internal/lib/sl"
	"github.com/magabrotheeeer/pawlog/internal/services/featuregate"
)

// RequireFeature пропускает запрос, только если функция доступна пользователю.
// Иначе отвечает 402 Payment Required с данными для предложения подписки.
func RequireFeature(log *slog.Logger, gate FeatureGate, f featuregate.Feature) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			d := gate.Decide(r.Context(), userID, f)
			if !d.Allowed {
				log.Info("premium feature blocked",
					sl.UserID(userID),
					slog.String("feature", string(f)),
				)
				render.Status(r, http.StatusPaymentRequired)
				render.JSON(w, r, response.Upsell(string(d.Feature), d.Mode))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
