package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/devicetoken"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/events"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/handler"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/repository"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/service"
	"github.com/shiftflow/shiftflow-backend/pkg/config"
	"github.com/shiftflow/shiftflow-backend/pkg/database"
	"github.com/shiftflow/shiftflow-backend/pkg/httputil"
	"github.com/shiftflow/shiftflow-backend/pkg/i18n"
	"github.com/shiftflow/shiftflow-backend/pkg/logger"
	"github.com/shiftflow/shiftflow-backend/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("timekeeping-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("timekeeping-service", cfg.Server.Environment)
	log.Info().Msg("starting Timekeeping Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := events.NewTimekeepingEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Initialize repositories
	employeeRepo := repository.NewEmployeeRepository(db)
	baseRepo := repository.NewBaseScheduleRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	exceptionRepo := repository.NewExceptionRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)

	// Initialize services
	tokens := devicetoken.NewManager(&cfg.Device)
	resolver := service.NewScheduleResolver(exceptionRepo, assignmentRepo, templateRepo, baseRepo)
	employeeService := service.NewEmployeeService(employeeRepo, publisher, log)
	scheduleService := service.NewScheduleService(
		employeeRepo, baseRepo, templateRepo, assignmentRepo, exceptionRepo,
		resolver, publisher, log,
	)
	hoursService := service.NewHoursService(resolver, attendanceRepo, employeeRepo, log)
	attendanceService := service.NewAttendanceService(
		employeeRepo, attendanceRepo, deviceRepo, tokens, publisher, log,
	)

	// Initialize handlers
	employeeHandler := handler.NewEmployeeHandler(employeeService, log)
	scheduleHandler := handler.NewScheduleHandler(scheduleService, log)
	hoursHandler := handler.NewHoursHandler(hoursService, log)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, log)
	deviceHandler := handler.NewDeviceHandler(attendanceService, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Tenant-ID", "X-User-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(i18n.Middleware)
	r.Use(httputil.TenantMiddleware) // Tenant middleware with /health exception

	// Health check (no tenant required - handled by middleware)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "timekeeping-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes (tenant required)
	r.Route("/api/v1/timekeeping", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", employeeHandler.List)
			r.Post("/", employeeHandler.Create)
			r.Get("/by-number/{number}", employeeHandler.GetByNumber)
			r.Get("/{id}", employeeHandler.Get)
			r.Put("/{id}", employeeHandler.Update)
			r.Delete("/{id}", employeeHandler.Delete)

			// Base schedules
			r.Get("/{id}/base-schedules", scheduleHandler.ListBaseSchedules)
			r.Put("/{id}/base-schedules/{weekday}", scheduleHandler.SetBaseSchedule)
			r.Delete("/{id}/base-schedules/{weekday}", scheduleHandler.ClearBaseSchedule)

			// Weekly template assignments
			r.Get("/{id}/weeks", scheduleHandler.ListWeekAssignments)
			r.Get("/{id}/weeks/{year}/{week}", scheduleHandler.GetWeekAssignment)
			r.Put("/{id}/weeks/{year}/{week}", scheduleHandler.AssignWeek)
			r.Delete("/{id}/weeks/{year}/{week}", scheduleHandler.UnassignWeek)

			// Daily exceptions
			r.Get("/{id}/exceptions", scheduleHandler.ListExceptions)
			r.Post("/{id}/exceptions", scheduleHandler.CreateException)

			// Effective schedule resolution
			r.Get("/{id}/effective-schedule", scheduleHandler.GetEffectiveSchedule)
			r.Get("/{id}/effective-week", scheduleHandler.GetEffectiveWeek)

			// Worked hours
			r.Get("/{id}/hours", hoursHandler.GetSummary)

			// Attendance punches
			r.Post("/{id}/check-in", attendanceHandler.CheckIn)
			r.Post("/{id}/check-out", attendanceHandler.CheckOut)
			r.Get("/{id}/attendance", attendanceHandler.ListRecords)
			r.Get("/{id}/attendance/status", attendanceHandler.GetStatus)
		})

		// Schedule templates
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", scheduleHandler.ListTemplates)
			r.Post("/", scheduleHandler.CreateTemplate)
			r.Get("/{id}", scheduleHandler.GetTemplate)
			r.Put("/{id}", scheduleHandler.UpdateTemplate)
			r.Delete("/{id}", scheduleHandler.DeleteTemplate)
		})

		// Daily exceptions by ID
		r.Route("/exceptions", func(r chi.Router) {
			r.Get("/{id}", scheduleHandler.GetException)
			r.Put("/{id}", scheduleHandler.UpdateException)
			r.Delete("/{id}", scheduleHandler.DeleteException)
		})

		// Attendance terminals
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", deviceHandler.List)
			r.Post("/", deviceHandler.Register)
			r.Get("/{id}", deviceHandler.Get)
			r.Delete("/{id}", deviceHandler.Deactivate)
			r.Post("/{id}/token", deviceHandler.Authenticate)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
