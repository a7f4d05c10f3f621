package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	deladmin "delivery-planner/http-server/admin/delete"
	getadmin "delivery-planner/http-server/admin/get"
	"delivery-planner/http-server/allocate"
	getdataset "delivery-planner/http-server/datasets/get"
	savedataset "delivery-planner/http-server/datasets/save"
	generate_excel "delivery-planner/http-server/generate-report/generate-excel"
	getplan "delivery-planner/http-server/plans/get"
	"delivery-planner/internal/config"
	"delivery-planner/internal/middleware/auth"
	"delivery-planner/internal/service/delivery"
	"delivery-planner/internal/service/report"
	"delivery-planner/internal/storage/mysql"
)

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage,
	deliveryService *delivery.Service, reportService *report.Service) *chi.Mux {

	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8081", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// Upload of the two source workbooks.
	router.Post("/api/datasets", savedataset.UploadDataset(log, deliveryService))
	router.Get("/api/datasets/{id}", getdataset.GetDataset(log, storage))

	// Allocation over a stored dataset.
	router.Post("/api/datasets/{id}/allocate", allocate.AllocateDataset(log, deliveryService))
	router.Get("/api/plans/{id}", getplan.GetPlan(log, storage))

	// Report downloads.
	router.Get("/api/plans/{id}/report/excel", generate_excel.GenerateReportExcel(log, reportService))
	router.Get("/api/plans/{id}/report/csv", generate_excel.GenerateReportCSV(log, reportService))

	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))

	adminRouter.Get("/datasets", getadmin.ListDatasetsAdmin(log, storage))
	adminRouter.Delete("/datasets/{id}", deladmin.DeleteDatasetAdmin(log, storage))
	adminRouter.Get("/plans", getadmin.ListPlansAdmin(log, storage))
	adminRouter.Delete("/plans/{id}", deladmin.DeletePlanAdmin(log, storage))

	router.Mount("/api/admin", adminRouter)

	return router
}
