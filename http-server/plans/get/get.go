package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"delivery-planner/internal/planner"
	"delivery-planner/internal/storage"
)

type PlanGetter interface {
	GetPlan(ctx context.Context, id string) (*storage.Plan, error)
}

type Response struct {
	Plan   *storage.Plan          `json:"plan,omitempty"`
	Orders []planner.VehicleOrder `json:"orders,omitempty"`
	Status string                 `json:"status"`
	Error  string                 `json:"error,omitempty"`
}

// GetPlan returns a stored plan; the aggregated vehicle orders are derived
// from the manifest on the fly.
func GetPlan(log *slog.Logger, getter PlanGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.plans.get.GetPlan"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Missing plan id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		plan, err := getter.GetPlan(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, Response{Status: "error", Error: "plan not found"})
				return
			}

			log.Error("failed to get plan", slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, Response{
			Plan:   plan,
			Orders: planner.AggregateLoads(plan.Loads),
			Status: "ok",
		})
	}
}
