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

	"delivery-planner/internal/storage"
)

type DatasetGetter interface {
	GetDataset(ctx context.Context, id string) (*storage.Dataset, error)
}

type Response struct {
	Dataset *storage.Dataset `json:"dataset,omitempty"`
	Status  string           `json:"status"`
	Error   string           `json:"error,omitempty"`
}

func GetDataset(log *slog.Logger, getter DatasetGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.datasets.get.GetDataset"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Missing dataset id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		ds, err := getter.GetDataset(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, Response{Status: "error", Error: "dataset not found"})
				return
			}

			log.Error("failed to get dataset", slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, Response{Dataset: ds, Status: "ok"})
	}
}
