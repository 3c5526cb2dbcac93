package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pharmacy-storefront/internal/config"
	"pharmacy-storefront/internal/replica/db"
	"pharmacy-storefront/internal/replica/httpserver"
	cartrepo "pharmacy-storefront/internal/replica/repository/cart"
	categoryrepo "pharmacy-storefront/internal/replica/repository/category"
	customerrepo "pharmacy-storefront/internal/replica/repository/customer"
	orderrepo "pharmacy-storefront/internal/replica/repository/order"
	productrepo "pharmacy-storefront/internal/replica/repository/product"
	promorepo "pharmacy-storefront/internal/replica/repository/promo"
	tokenrepo "pharmacy-storefront/internal/replica/repository/token"
	customersvc "pharmacy-storefront/internal/replica/service/customer"
	ordersvc "pharmacy-storefront/internal/replica/service/order"
	promosvc "pharmacy-storefront/internal/replica/service/promo"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[replica] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	categoryRepo := categoryrepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool)
	promoService := promosvc.New(promorepo.NewPostgres(dbpool))
	customerService := customersvc.New(customerrepo.NewPostgres(dbpool), tokenrepo.NewPostgres(dbpool))
	orderService := ordersvc.New(cartRepo, orderrepo.NewPostgres(dbpool, logger), promoService, logger)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Products:   productRepo,
		Categories: categoryRepo,
		Carts:      cartRepo,
		Customers:  customerService,
		Orders:     orderService,
		Promos:     promoService,
	}, cfg.CORSOrigins)

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
