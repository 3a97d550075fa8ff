package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jpariona/cartera/internal/app"
	"github.com/jpariona/cartera/internal/importer"
)

func main() {
	var (
		kind = flag.String("kind", "transactions", "what to import: transactions, dividends, or prices")
		file = flag.String("file", "", "path to the CSV file")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: cartera-import -kind transactions -file events.csv")
		os.Exit(2)
	}

	a, err := app.NewApp(os.Getenv("CARTERA_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", *file, err)
		os.Exit(1)
	}
	defer f.Close()

	im := importer.New(a.Storage, a.Logger)
	ctx := context.Background()

	var result *importer.Result
	switch *kind {
	case "transactions":
		result, err = im.ImportTransactions(ctx, f)
	case "dividends":
		result, err = im.ImportDividends(ctx, f)
	case "prices":
		result, err = im.ImportPrices(ctx, f)
	default:
		fmt.Fprintf(os.Stderr, "Unknown kind %q; must be transactions, dividends, or prices\n", *kind)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Imported %d of %d rows\n", result.Imported, result.Total)
	for _, skip := range result.Skipped {
		fmt.Printf("  line %d skipped: %s\n", skip.Line, skip.Message)
	}
	if len(result.Skipped) > 0 {
		os.Exit(1)
	}
}
