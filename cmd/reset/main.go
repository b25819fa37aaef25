// Command reset wipes the paper portfolio from the shell, for when the
// bot is down or the Telegram /reset path is unreachable.
package main

import (
	"flag"
	"fmt"
	"os"

	"moonshot/internal/ledger"
)

func main() {
	dbPath := flag.String("db", "data/moonshot.db", "path to SQLite database")
	cash := flag.Float64("cash", 10000, "initial cash after reset")
	dryRun := flag.Bool("dry-run", false, "show current state without resetting")
	flag.Parse()

	db, err := ledger.NewDatabase(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database error: %v\n", err)
		os.Exit(1)
	}

	store, err := ledger.NewStore(db, *cash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledger error: %v\n", err)
		os.Exit(1)
	}

	balance, err := store.Balance()
	if err != nil {
		fmt.Fprintf(os.Stderr, "read balance: %v\n", err)
		os.Exit(1)
	}
	holdings, err := store.Holdings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "read holdings: %v\n", err)
		os.Exit(1)
	}
	orders, err := store.OpenOrders()
	if err != nil {
		fmt.Fprintf(os.Stderr, "read orders: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Cash: $%.2f\n", balance)
	fmt.Printf("Positions: %d\n", len(holdings))
	for _, h := range holdings {
		fmt.Printf("  %s: %.4f @ $%.2f\n", h.Ticker, h.Quantity, h.AvgCost)
	}
	fmt.Printf("Open orders: %d\n\n", len(orders))

	if *dryRun {
		fmt.Println("Dry run — nothing reset.")
		return
	}

	result, err := store.ResetPortfolio(*cash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reset failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(result)
}
