package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"retail-backend/internal/config"
	"retail-backend/internal/db"
	"retail-backend/internal/httpserver"
	auditrepo "retail-backend/internal/repository/audit"
	cartrepo "retail-backend/internal/repository/cart"
	inventoryrepo "retail-backend/internal/repository/inventory"
	orderrepo "retail-backend/internal/repository/order"
	productrepo "retail-backend/internal/repository/product"
	cartsvc "retail-backend/internal/service/cart"
	inventorysvc "retail-backend/internal/service/inventory"
	ordersvc "retail-backend/internal/service/order"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	inventoryRepo := inventoryrepo.NewPostgres(dbpool, logger)
	auditRepo := auditrepo.NewPostgres(dbpool, logger)

	cartService := cartsvc.New(cartRepo, productRepo, cfg.TaxRateBps)
	orderService := ordersvc.New(orderRepo, auditRepo, cfg.TaxRateBps, logger)
	inventoryService := inventorysvc.New(inventoryRepo, auditRepo, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:      cartService,
		OrderSvc:     orderService,
		InventorySvc: inventoryService,
	}, cfg.CORSOrigins)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
