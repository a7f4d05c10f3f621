package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"delivery-planner/internal/storage"
)

type Lister interface {
	ListDatasets(ctx context.Context) ([]*storage.Dataset, error)
	ListPlans(ctx context.Context) ([]*storage.Plan, error)
}

type DatasetsResponse struct {
	Datasets []*storage.Dataset `json:"datasets"`
	Status   string             `json:"status"`
	Error    string             `json:"error,omitempty"`
}

type PlansResponse struct {
	Plans  []*storage.Plan `json:"plans"`
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
}

func ListDatasetsAdmin(log *slog.Logger, lister Lister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.admin.get.ListDatasetsAdmin"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		datasets, err := lister.ListDatasets(ctx)
		if err != nil {
			log.Error("failed to list datasets", slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, DatasetsResponse{Datasets: datasets, Status: "ok"})
	}
}

func ListPlansAdmin(log *slog.Logger, lister Lister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.admin.get.ListPlansAdmin"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		plans, err := lister.ListPlans(ctx)
		if err != nil {
			log.Error("failed to list plans", slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, PlansResponse{Plans: plans, Status: "ok"})
	}
}
