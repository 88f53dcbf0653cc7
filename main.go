package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"beantrace/internal/db"
	"beantrace/internal/domain"
	"beantrace/internal/service/tracing"
)

func printNode(n *domain.LineageNode, indent int) {
	prefix := strings.Repeat("  ", indent)
	label := n.LotNo
	if n.Relation != "" {
		label = fmt.Sprintf("%s [%s]", n.LotNo, n.Relation)
	}
	if n.IsOrigin {
		label += " (origin)"
	}
	if n.Warning != "" {
		label += fmt.Sprintf(" (%s)", n.Warning)
	}
	fmt.Println(prefix + label)

	for _, s := range n.Sources {
		printNode(s, indent+1)
	}
	for _, d := range n.Destinations {
		printNode(d, indent+1)
	}
}

func main() {
	ctx := context.Background()

	// Determine ledger path
	ledgerPath := "beantrace.sqlite"
	if v := os.Getenv("BEANTRACE_SQLITE"); v != "" {
		ledgerPath = v
	}

	conn, err := db.OpenSQLite(ledgerPath, db.ModeWrite, 0)
	if err != nil {
		log.Fatalf("failed to open ledger: %v", err)
	}
	defer conn.Close()

	fmt.Println("Running ledger migrations...")
	if err := db.RunMigrations(conn); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	// Seed demo data (no-op when the ledger already has rows)
	if err := db.Seed(ctx, conn); err != nil {
		log.Fatalf("seed ledger: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc := tracing.NewService(db.NewSQLiteSource(conn, nil), 10, 100, logger)

	stats, err := svc.Reindex(ctx)
	if err != nil {
		log.Fatalf("reindex failed: %v", err)
	}
	fmt.Printf("Index ready: %d records, %d lots, %d contracts\n",
		stats.Records, stats.Lots, stats.Contracts)

	// Demo lots
	lots := []string{"ROAST-300", "GREEN-100"}
	if len(os.Args) > 1 {
		lots = os.Args[1:]
	}

	for _, lot := range lots {
		fmt.Printf("\n=== Lot: %s ===\n\n", lot)

		res, err := svc.Trace(ctx, lot, 0)
		if err != nil {
			fmt.Printf("ERROR: %v\n", err)
			continue
		}
		printNode(res.Tree, 0)
		fmt.Printf("\n(%d lots traced)\n", res.TotalNodesTraced)
	}

	// Demo contract resolution
	fmt.Println("\n=== Sale Contract Demo ===")
	fmt.Println("Resolving: SC-ALPHA")
	contractLots, err := svc.ResolveContract(ctx, "SC-ALPHA")
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}
	fmt.Printf("Consumption lots: %s\n", strings.Join(contractLots, ", "))
}
