package generate_excel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"delivery-planner/internal/storage"
)

type ReportGenerator interface {
	ExcelReport(ctx context.Context, planID string) ([]byte, error)
	CSVReport(ctx context.Context, planID string) ([]byte, error)
}

// GenerateReportExcel streams the plan workbook as an attachment.
func GenerateReportExcel(log *slog.Logger, gen ReportGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.GenerateReportExcel"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		planID := chi.URLParam(r, "id")
		if planID == "" {
			http.Error(w, "Missing plan id", http.StatusBadRequest)
			return
		}

		// Excel generation gets a longer budget than the JSON handlers.
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		data, err := gen.ExcelReport(ctx, planID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "Plan not found", http.StatusNotFound)
				return
			}
			log.Error("failed to generate excel", slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		fileName := fmt.Sprintf("allocation_%s.xlsx", time.Now().Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Write(data)
	}
}

// GenerateReportCSV streams the aggregated vehicle orders as CSV.
func GenerateReportCSV(log *slog.Logger, gen ReportGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.GenerateReportCSV"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		planID := chi.URLParam(r, "id")
		if planID == "" {
			http.Error(w, "Missing plan id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		data, err := gen.CSVReport(ctx, planID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "Plan not found", http.StatusNotFound)
				return
			}
			log.Error("failed to generate csv", slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		fileName := fmt.Sprintf("vehicle_orders_%s.csv", time.Now().Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Write(data)
	}
}
