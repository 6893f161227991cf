package main

import (
	"campus-market/auth"
	"campus-market/contract"
	pb "campus-market/grpc/market"
	"campus-market/grpc/server"
	"campus-market/internal"
	"campus-market/moderation"
	"campus-market/observability"
	"campus-market/repositories"
	"campus-market/repositories/mysql"
	"campus-market/runtime/workers"
	"campus-market/search"
	"campus-market/services"
	"campus-market/sink"
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Every defer runs before main exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Store (BadgerDB or MySQL)
	store, closeStore, err := openStore(ctx, config, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// 3. Search index & moderation
	writer, err := search.OpenWriter(config.BlugeFilepath)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = writer.Close()
	}()
	index := search.NewListingIndex(writer, log)

	replacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	moderator, err := moderation.NewModerator(config.Words(), replacement, log)
	if err != nil {
		return fmt.Errorf("moderator setup failed: %w", err)
	}

	// 4. Notification pipeline under supervision
	monitoring, err := observability.NewMonitoringManager(log)
	if err != nil {
		return fmt.Errorf("monitoring setup failed: %w", err)
	}
	sinks := []contract.NotificationSink{sink.NewLogSink(log)}
	if config.NotificationWebhookURL != "" {
		sinks = append(sinks, sink.NewWebhookSink(log, config.NotificationWebhookURL,
			config.NotificationTriggerSecret, config.NotificationRatePerSecond, 1))
	}
	dispatcher := workers.NewNotificationDispatcher(log, config.NotificationBufferSize,
		config.NotificationTimeout, monitoring, sinks...)
	supervisor := workers.NewSupervisor(log, config.RestartInterval).
		Add(dispatcher, workers.NewHealthMonitoringWorker(log, monitoring, dispatcher, config.MetricInterval))

	// 5. Services & gRPC server
	tokens, err := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	marketServer := server.NewMarketServer(log, server.Services{
		Sales:         services.NewSaleService(log, store, index, dispatcher),
		Reviews:       services.NewReviewService(log, store, dispatcher),
		Conversations: services.NewConversationService(log, store, moderator, dispatcher, config.MaxContentLength),
		Listings:      services.NewListingService(log, store, index, dispatcher),
		Reports:       services.NewReportService(log, store),
	}, monitoring)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	s := grpc.NewServer(grpc.UnaryInterceptor(auth.AuthInterceptor(tokens, server.MethodPolicy())))
	pb.RegisterMarketServiceServer(s, marketServer)

	// 6. Run until a signal or a server failure
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		supervisor.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("Starting gRPC server", "address", address, "store", config.StoreDriver, "at", time.Now().UTC())
		if err := s.Serve(listener); err != nil && err != grpc.ErrServerStopped {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down gracefully...")
		s.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Program stopped cleanly")
	return nil
}

func openStore(ctx context.Context, config internal.Config, log *slog.Logger) (repositories.IMarketStore, func(), error) {
	switch config.StoreDriver {
	case internal.StoreMySQL:
		db, err := mysql.Open(ctx, config.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		store := mysql.NewStore(db, log)
		if err := store.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("database migration failed: %w", err)
		}
		return store, func() {
			log.Info("Closing MySQL...")
			_ = db.Close()
		}, nil
	default:
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
			WithLoggingLevel(badger.INFO))
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		return repositories.NewBadgerStore(db, log), func() {
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		}, nil
	}
}
