// auditcheck prints the most recent rows of the audit mirror, for quick
// operational inspection without a SQL client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/application/factories/infrastructure"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/config"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/infrastructure/postgres"
)

func main() {
	limit := flag.Int("limit", 20, "number of audit rows to print")
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to connect to database: %v\n", err)
		os.Exit(1)
	}

	repo := postgres.NewAuditRepository(pgPool)
	entries, err := repo.Recent(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("--- Audit events ---")
	for _, e := range entries {
		line := fmt.Sprintf("%s | %-14s | group %d | %s", e.OccurredAt.Format("2006-01-02 15:04:05"), e.Outcome, e.GroupID, e.EventType)
		if e.Detail != "" {
			line += " | " + e.Detail
		}
		fmt.Println(line)
	}
	fmt.Printf("\n%d rows\n", len(entries))
}
