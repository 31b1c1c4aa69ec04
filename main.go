// File: doctordash/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"

	"doctordash/config"
	"doctordash/cron"
	"doctordash/database"
	appointmentRepo "doctordash/database/repository/appointment"
	doctorRepo "doctordash/database/repository/doctor"
	reminderRepo "doctordash/database/repository/reminder"
	userRepo "doctordash/database/repository/user"
	"doctordash/handlers"
	"doctordash/routes"
	"doctordash/services/booking"
	"doctordash/services/notification"
	"doctordash/services/reminder"
	"doctordash/services/tasks"
	"doctordash/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitLockClient()
	utils.FirebaseInit()

	clock := utils.SystemClock{}
	location := config.ReferenceLocation()
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	doctors := doctorRepo.NewMongoDoctorRepo()
	cachedDoctors := doctorRepo.NewCachedDoctorRepo(doctors, utils.GetCacheClient(), doctorRepo.DefaultProfileCacheTTL)
	appointments := appointmentRepo.NewMongoAppointmentRepo()
	reminders := reminderRepo.NewMongoReminderRepo()
	users := userRepo.NewMongoUserRepo()
	for name, ensure := range map[string]func() error{
		"doctors":      doctors.EnsureIndexes,
		"appointments": appointments.EnsureIndexes,
		"reminders":    reminders.EnsureIndexes,
	} {
		if err := ensure(); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure %s indexes: %v", name, err)
		}
	}

	// notification channels and the async delivery worker.
	registry := notification.NewRegistry(
		notification.NewEmailChannel(),
		notification.NewWhatsAppChannel(),
		notification.NewPushChannel(utils.FCMClient),
	)
	asynqRedis := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisNotifyQueueDB,
	}
	asynqClient := asynq.NewClient(asynqRedis)
	defer asynqClient.Close()
	cron.InitNotificationWorker(registry, logger)

	// booking services.
	ledger := &booking.SlotLedger{
		Repo:    doctors,
		Locker:  booking.NewRedisSlotLocker(utils.GetLockClient(), utils.SlotLockTTL),
		Clock:   clock,
		HoldTTL: time.Duration(config.AppConfig.SlotHoldMinutes) * time.Minute,
		Logger:  logger,
	}
	workflow := &booking.ReservationWorkflow{
		Ledger:       ledger,
		Doctors:      cachedDoctors,
		Appointments: appointments,
		Users:        users,
		Payments:     booking.NewStripeGateway(),
		Notifier:     tasks.NewAsynqEnqueuer(asynqClient),
		Clock:        clock,
		Location:     location,
		Currency:     config.AppConfig.Currency,
		Logger:       logger,
	}

	// reminder services.
	reminderService := &reminder.ReminderService{
		Repo:     reminders,
		Clock:    clock,
		Location: location,
		Logger:   logger,
	}
	dispatchEngine := &reminder.DispatchEngine{
		Reminders: reminders,
		Users:     users,
		Channels:  registry,
		Clock:     clock,
		Location:  location,
		BatchSize: config.AppConfig.ReminderBatchSize,
		Logger:    logger,
	}
	appointmentSweep := &reminder.AppointmentSweep{
		Appointments: appointments,
		Users:        users,
		Channels:     registry,
		Clock:        clock,
		Location:     location,
		BatchSize:    config.AppConfig.ReminderBatchSize,
		Logger:       logger,
	}

	// periodic sweeps.
	scheduler := cron.NewScheduler(clock, logger)
	scheduler.Register("reminder-dispatch", time.Minute, dispatchEngine.RunSweep)
	scheduler.Register("appointment-alerts", time.Minute, appointmentSweep.RunSweep)
	if err := scheduler.Start(); err != nil {
		logger.Sugar().Fatalf("main: failed to start sweep scheduler: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	handlerBundle := &handlers.HandlerBundle{
		Booking: &handlers.BookingHandler{
			Workflow:     workflow,
			Appointments: appointments,
		},
		Reminder: &handlers.ReminderHandler{
			Service: reminderService,
			Engine:  dispatchEngine,
		},
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
