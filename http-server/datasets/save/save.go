package save

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"delivery-planner/internal/planner"
	"delivery-planner/internal/service/delivery"
)

// Uploads are two workbooks; keep a sane bound on the request body.
const maxUploadBytes = 32 << 20

type Uploader interface {
	ProcessUpload(ctx context.Context, name string, demandFile, transitFile io.Reader) (*delivery.UploadResult, error)
}

type Response struct {
	Result *delivery.UploadResult `json:"result,omitempty"`
	Status string                 `json:"status"`
	Error  string                 `json:"error,omitempty"`
}

// UploadDataset accepts a multipart form with the demand and in-transit
// workbooks and returns the processed dataset with its summary.
func UploadDataset(log *slog.Logger, uploader Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.datasets.save.UploadDataset"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			log.Error("failed to parse multipart form", slog.String("error", err.Error()))
			http.Error(w, "Invalid multipart form", http.StatusBadRequest)
			return
		}

		demandFile, _, err := r.FormFile("demand")
		if err != nil {
			http.Error(w, "Missing 'demand' file", http.StatusBadRequest)
			return
		}
		defer demandFile.Close()

		transitFile, _, err := r.FormFile("transit")
		if err != nil {
			http.Error(w, "Missing 'transit' file", http.StatusBadRequest)
			return
		}
		defer transitFile.Close()

		name := r.FormValue("name")

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		result, err := uploader.ProcessUpload(ctx, name, demandFile, transitFile)
		if err != nil {
			var shape *planner.DataShapeError
			var conv *planner.InvalidConversionError
			if errors.As(err, &shape) || errors.As(err, &conv) {
				log.Error("rejected upload", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, Response{Status: "error", Error: err.Error()})
				return
			}

			log.Error("failed to process upload", slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		log.Info("dataset uploaded",
			slog.String("dataset_id", result.Dataset.ID),
			slog.Int("rows", len(result.Dataset.Rows)),
		)

		render.JSON(w, r, Response{Result: result, Status: "ok"})
	}
}
