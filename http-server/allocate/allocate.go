package allocate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"delivery-planner/internal/planner"
	"delivery-planner/internal/service/delivery"
	"delivery-planner/internal/storage"
)

type Allocator interface {
	AllocateDataset(ctx context.Context, datasetID string, params delivery.AllocationParams) (*delivery.AllocationResult, error)
}

type Request struct {
	TargetDate         string `json:"target_date"`
	NumVehicles        int    `json:"num_vehicles"`
	CapacityPerVehicle int    `json:"capacity_per_vehicle"`
}

type Response struct {
	Result *delivery.AllocationResult `json:"result,omitempty"`
	Status string                     `json:"status"`
	Error  string                     `json:"error,omitempty"`
}

// AllocateDataset runs the allocation engine against a stored dataset and
// returns the persisted plan with its aggregated manifest and summary.
func AllocateDataset(log *slog.Logger, allocator Allocator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.allocate.AllocateDataset"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		datasetID := chi.URLParam(r, "id")
		if datasetID == "" {
			http.Error(w, "Missing dataset id", http.StatusBadRequest)
			return
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		targetDate, err := time.Parse("2006-01-02", req.TargetDate)
		if err != nil {
			http.Error(w, "Invalid target_date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		params := delivery.AllocationParams{
			TargetDate:         targetDate,
			NumVehicles:        req.NumVehicles,
			CapacityPerVehicle: req.CapacityPerVehicle,
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		result, err := allocator.AllocateDataset(ctx, datasetID, params)
		if err != nil {
			var invalid *delivery.InvalidParamsError
			var noCap *planner.NoCapacityError
			var conv *planner.InvalidConversionError
			switch {
			case errors.Is(err, storage.ErrNotFound):
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, Response{Status: "error", Error: "dataset not found"})
			case errors.As(err, &invalid), errors.As(err, &noCap), errors.As(err, &conv):
				log.Error("rejected allocation request", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, Response{Status: "error", Error: err.Error()})
			default:
				log.Error("failed to allocate", slog.String("error", err.Error()))
				http.Error(w, "Internal error", http.StatusInternalServerError)
			}
			return
		}

		log.Info("plan created",
			slog.String("plan_id", result.Plan.ID),
			slog.String("dataset_id", datasetID),
			slog.Int("allocated_cartons", result.Summary.AllocatedCartons),
		)

		render.JSON(w, r, Response{Result: result, Status: "ok"})
	}
}
