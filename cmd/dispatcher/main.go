package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"agendanotify/internal/config"
	"agendanotify/internal/handler"
	"agendanotify/internal/logger"
	"agendanotify/internal/middleware"
	"agendanotify/internal/models"
	"agendanotify/internal/queue"
	"agendanotify/internal/repository"
	"agendanotify/internal/service"
)

const version = "1.2.0"

const reminderQueue = "reminder_events"

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("production")
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.Env)

	// Connect to database
	db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	log.Info().Msg("connected to database")

	// Repositories
	intentRepo := repository.NewIntentRepository(db)
	contactRepo := repository.NewContactRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	ruleRepo := repository.NewReminderRuleRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)

	// Services
	sender := service.NewChannelClient(cfg.Channel, log)
	resolver := service.NewRecipientResolver(contactRepo)
	scheduler := service.NewScheduler(intentRepo, channelRepo, deliveryRepo, resolver, sender, cfg.Scheduler, log)
	reminders := service.NewReminderDispatcher(appointmentRepo, ruleRepo, channelRepo, deliveryRepo, sender, log)
	checker := service.NewHealthChecker(db, cfg.GetRabbitMQURL(), version)

	// Campaign scheduler
	scheduler.Start()
	defer scheduler.Stop()

	// Reminder event consumer
	conn, err := queue.NewConnection(cfg.GetRabbitMQURL(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer conn.Close()

	consumer, err := queue.NewConsumer(conn, reminderQueue, reminderEventHandler(reminders, log), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create reminder consumer")
	}
	if err := consumer.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start reminder consumer")
	}
	defer consumer.Stop()

	// HTTP surface
	reminderHandler := handler.NewReminderHandler(reminders)
	healthHandler := handler.NewHealthHandler(checker)

	router := mux.NewRouter()
	router.Use(middleware.Recovery(log))
	router.HandleFunc("/api/reminders/dispatch", reminderHandler.Dispatch).Methods("POST")
	router.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	addr := ":" + cfg.Server.Port
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("dispatcher listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down")
	server.Close()
}

// reminderEventHandler adapts the reminder dispatcher to the queue
// consumer contract
func reminderEventHandler(dispatcher *service.ReminderDispatcher, log zerolog.Logger) queue.EventHandler {
	return func(event *queue.ReminderEvent) error {
		if !models.ValidReminderType(event.Type) {
			// Drop unknown types; requeueing cannot fix a bad payload
			log.Warn().Str("type", event.Type).Int("appointment_id", event.AppointmentID).Msg("unknown reminder type in event")
			return nil
		}

		result, err := dispatcher.Dispatch(context.Background(), event.AppointmentID, models.ReminderType(event.Type))
		if err != nil {
			return err
		}

		log.Info().
			Int("appointment_id", event.AppointmentID).
			Str("type", event.Type).
			Bool("dispatched", result.Dispatched).
			Str("skip_reason", result.SkipReason).
			Msg("reminder event processed")
		return nil
	}
}
