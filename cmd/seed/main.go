package main

import (
	"campus-market/domain"
	"campus-market/repositories"
	"campus-market/repositories/mysql"
	"campus-market/runtime/workers"
	"campus-market/search"
	"campus-market/services"
	"campus-market/sink"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Fixture is the YAML document loaded by the seed command.
type Fixture struct {
	Listings []ListingFixture `yaml:"listings"`
}

type ListingFixture struct {
	Seller      string `yaml:"seller"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	PriceCents  int64  `yaml:"price_cents"`
	Category    string `yaml:"category"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	file := flagSet.String("file", "cmd/seed/listings.yaml", "YAML fixture")
	driver := flagSet.String("driver", "badger", "store driver (badger or mysql)")
	badgerPath := flagSet.String("badger", "./data/badger", "badger directory")
	dsn := flagSet.String("dsn", "", "MySQL DSN")
	blugePath := flagSet.String("bluge", "./data/bluge", "search index directory")
	logLevel := flagSet.String("log-level", "INFO", "log level")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}
	log := logs.GetLoggerFromString(*logLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	raw, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	var fixture Fixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return fmt.Errorf("invalid fixture %s: %w", *file, err)
	}

	var store repositories.IMarketStore
	switch *driver {
	case "mysql":
		db, err := mysql.Open(ctx, *dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		mysqlStore := mysql.NewStore(db, log)
		if err := mysqlStore.Migrate(ctx); err != nil {
			return err
		}
		store = mysqlStore
	default:
		db, err := badger.Open(badger.DefaultOptions(*badgerPath).WithLoggingLevel(badger.WARNING))
		if err != nil {
			return err
		}
		defer db.Close()
		store = repositories.NewBadgerStore(db, log)
	}

	writer, err := search.OpenWriter(*blugePath)
	if err != nil {
		return err
	}
	defer writer.Close()

	dispatcher := workers.NewNotificationDispatcher(log, len(fixture.Listings)+1, time.Second, nil, sink.NewLogSink(log))
	listings := services.NewListingService(log, store, search.NewListingIndex(writer, log), dispatcher)

	for _, l := range fixture.Listings {
		listing, err := listings.CreateListing(ctx, domain.CreateListingCommand{
			SellerID:    l.Seller,
			Title:       l.Title,
			Description: l.Description,
			PriceCents:  l.PriceCents,
			Category:    domain.Category(l.Category),
		})
		if err != nil {
			return fmt.Errorf("listing %q: %w", l.Title, err)
		}
		fmt.Printf("%s\t%s\t%s\n", listing.ID, listing.Category, listing.Title)
	}
	// Deliver the new_listing notifications queued above
	for len(dispatcher.Queue()) > 0 {
		dispatcher.Fanout(ctx, <-dispatcher.Queue())
	}
	return nil
}
