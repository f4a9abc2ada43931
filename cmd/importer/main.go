package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"retail-backend/internal/config"
	"retail-backend/internal/db"
	"retail-backend/internal/importer"
	"retail-backend/internal/repository/inventory"
	"retail-backend/internal/repository/product"
	"retail-backend/internal/repository/warehouse"
)

func main() {
	var (
		filePath string
		actorID  int64
	)
	flag.StringVar(&filePath, "file", "", "Path to supplier receipt CSV (sku,warehouse,quantity,notes)")
	flag.Int64Var(&actorID, "actor", 0, "User id recorded on the resulting stock movements")
	flag.Parse()

	if filePath == "" || actorID <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(
		f,
		product.NewPostgres(pool, nil),
		warehouse.NewPostgres(pool),
		inventory.NewPostgres(pool, nil),
		actorID,
	)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed after %d receipts: %v", count, err)
	}

	fmt.Printf("Booked %d stock receipts in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
