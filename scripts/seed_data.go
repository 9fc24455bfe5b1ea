//go:build ignore

// Seeds demo documents through the lifecycle service so every bucket of
// the reviewer console has something in it. Uses the configured STORAGE_DRIVER.
//
//	go run scripts/seed_data.go [author]
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/zlovtnik/docgov/internal/config"
	"github.com/zlovtnik/docgov/internal/database"
	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/internal/governance/repository"
	"github.com/zlovtnik/docgov/internal/governance/service"
	"github.com/zlovtnik/docgov/pkg/fp"
)

type seedDoc struct {
	title          string
	classification domain.Classification
	expiresIn      time.Duration
	approvals      int // levels to approve after submission
	rejectAt       domain.Level
}

var seedDocs = []seedDoc{
	{"Forklift operator induction", domain.ClassificationTraining, 365 * 24 * time.Hour, 0, 0},
	{"Chemical spill drill", domain.ClassificationTraining, 180 * 24 * time.Hour, 1, 0},
	{"Working at height refresher", domain.ClassificationTraining, 90 * 24 * time.Hour, 2, 0},
	{"First aid basics", domain.ClassificationTraining, 20 * 24 * time.Hour, 3, 0},
	{"Travel expense policy", domain.ClassificationCompany, 400 * 24 * time.Hour, 2, 0},
	{"Remote work guidelines", domain.ClassificationCompany, 0, 1, domain.Level2},
	{"Visitor badge procedure", domain.ClassificationCompany, 0, 0, domain.Level1},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := config.SetupLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var (
		db      *sql.DB
		dialect repository.Dialect
		closeDB = func() {}
	)
	switch cfg.Storage.Driver {
	case config.DriverOracle:
		db, err = config.NewOracleDB(ctx, cfg.Storage.Oracle)
		dialect = repository.DialectOracle
		if db != nil {
			closeDB = func() { db.Close() }
		}
	case config.DriverPostgres:
		if err := database.Migrate(cfg.Storage.Postgres, logger); err != nil {
			log.Fatalf("Failed to migrate: %v", err)
		}
		db, closeDB, err = config.NewPostgresDB(ctx, cfg.Storage.Postgres)
		dialect = repository.DialectPostgres
	default:
		log.Fatalf("Seeding needs a database driver, got STORAGE_DRIVER=%q", cfg.Storage.Driver)
	}
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer closeDB()
	fmt.Printf("Connected to %s database\n", cfg.Storage.Driver)

	author := "seed_script"
	if len(os.Args) > 1 {
		author = os.Args[1]
	}

	dispatcher := service.NewDispatcher(service.DispatcherConfig{}, logger,
		service.NewAuditSubscriber(repository.NewAuditRepository(db, dialect)))
	dispatcher.Start(context.Background())

	store := repository.NewSQLStore(db, dialect)
	svc := service.NewDocumentService(store, service.Options{
		NearExpiryDays: cfg.Governance.NearExpiryDays,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})

	for i, s := range seedDocs {
		if err := seed(ctx, svc, author, i, s); err != nil {
			log.Fatalf("Failed to seed %q: %v", s.title, err)
		}
		fmt.Printf("  Seeded: %s\n", s.title)
	}
	dispatcher.Stop()

	fmt.Println("\n✓ Seed data inserted successfully!")
	printCounts(ctx, svc)
}

func seed(ctx context.Context, svc *service.DocumentService, author string, i int, s seedDoc) error {
	req := service.SubmitRequest{
		Title:          s.title,
		ContentRef:     fmt.Sprintf("blob://seed/%02d.pdf", i),
		Classification: s.classification,
		ChangeLog:      "initial draft",
	}
	if s.expiresIn > 0 {
		expiry := svc.Now().Add(s.expiresIn)
		req.ExpiryDate = &expiry
	}

	doc, err := fp.Unwrap(svc.Submit(ctx, author, req))
	if err != nil {
		return err
	}
	for l := domain.Level1; int(l) <= s.approvals; l++ {
		if doc, err = fp.Unwrap(svc.ApproveLevel(ctx, doc.ID, l, fmt.Sprintf("reviewer-%d", l))); err != nil {
			return err
		}
	}
	if s.rejectAt != 0 {
		_, err = fp.Unwrap(svc.RejectLevel(ctx, doc.ID, s.rejectAt, fmt.Sprintf("reviewer-%d", s.rejectAt),
			service.RejectRequest{Reason: "needs an owner section"}))
	}
	return err
}

func printCounts(ctx context.Context, svc *service.DocumentService) {
	fmt.Println("\nDocuments by status:")
	for _, status := range domain.AllStatuses {
		docs, err := fp.Unwrap(svc.ListByStatus(ctx, status))
		if err != nil {
			fmt.Printf("  %s: error (%v)\n", status, err)
			continue
		}
		fmt.Printf("  %s: %d\n", status, len(docs))
	}
}
