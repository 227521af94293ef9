package main

import (
	"context"

	bookinghandler "dormwash/internal/bookings/handler"
	bookingrepo "dormwash/internal/bookings/repository"
	bookingservice "dormwash/internal/bookings/service"
	bookingvalidator "dormwash/internal/bookings/validator"
	machinehandler "dormwash/internal/machines/handler"
	machinerepo "dormwash/internal/machines/repository"
	machineservice "dormwash/internal/machines/service"
	machinevalidator "dormwash/internal/machines/validator"
	"dormwash/pkg/app"
	"dormwash/pkg/config"
	"dormwash/pkg/events"
)

const ServiceName = "dormwash"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting laundry service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	publisher := initPublisher(cfg)
	if publisher != nil {
		defer func() {
			if err := publisher.Close(); err != nil {
				cfg.Log.Error("Failed to close event producer", "error", err)
			}
		}()
	}

	machineService, bookingService := initServices(cfg, publisher)

	if err := machineService.EnsureSeedData(context.Background()); err != nil {
		cfg.Log.Fatal("Failed to seed machine data", "error", err)
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		machinehandler.NewMachineHandler(machineService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return nil
	}

	producer, err := events.NewProducer(cfg.KafkaBrokers, cfg.BookingEventsTopic, ServiceName, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create event producer", "error", err)
	}

	cfg.Log.Info("Booking event producer initialized", "topic", cfg.BookingEventsTopic)
	return producer
}

func initServices(cfg *config.Config, publisher events.Publisher) (machineservice.MachineService, bookingservice.BookingService) {
	machineRepo := machinerepo.NewMongoMachineRepository(cfg)
	machineService := machineservice.NewMachineService(
		machineRepo,
		machinevalidator.NewMachineValidator(cfg.Log),
		cfg,
	)

	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		machineRepo,
		bookingvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)
	return machineService, bookingService
}
