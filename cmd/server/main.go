package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/atelier-moda/fashion-shop/internal/config"
	"github.com/atelier-moda/fashion-shop/internal/es"
	"github.com/atelier-moda/fashion-shop/internal/httpserver"
	"github.com/atelier-moda/fashion-shop/internal/logging"
	authmw "github.com/atelier-moda/fashion-shop/internal/middleware/auth"
	loggingmw "github.com/atelier-moda/fashion-shop/internal/middleware/logging"
	"github.com/atelier-moda/fashion-shop/internal/mykafka"
	"github.com/atelier-moda/fashion-shop/internal/repo"
	authsvc "github.com/atelier-moda/fashion-shop/internal/service/auth"
	cartsvc "github.com/atelier-moda/fashion-shop/internal/service/cart"
	"github.com/atelier-moda/fashion-shop/internal/service/catalog"
	ordersvc "github.com/atelier-moda/fashion-shop/internal/service/order"
	"github.com/atelier-moda/fashion-shop/internal/storage"
)

const productIndex = "products"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LOG_LEVEL).With("service", "fashion-shop")
	slog.SetDefault(logger)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db: %v", err)
	}

	r := repo.New(db)
	catalogSvc := catalog.New(r)
	cartSvc := cartsvc.New(r)
	orderSvc := ordersvc.New(r, cartSvc)
	auth := authsvc.New(r, []byte(cfg.JWT_SECRET))

	var producer *mykafka.Producer
	if cfg.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer(strings.Split(cfg.KAFKA_ADDRESS, ","))
		defer producer.Close()
	} else {
		logger.Warn("kafka disabled, KAFKA_ADDRESS not set")
	}

	var searchHandler httpserver.SearchHTTP
	searchHandler.Index = productIndex
	if cfg.ES_URL != "" {
		client, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		searchHandler.ES = client
	} else {
		logger.Warn("elasticsearch disabled, ES_URL not set")
	}

	var uploadHandler httpserver.UploadHTTP
	if cfg.CLOUDINARY_URL != "" {
		uploader, err := storage.NewCloudinaryUploader(cfg.CLOUDINARY_URL)
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
		uploadHandler.Uploader = uploader
	} else {
		logger.Warn("uploads disabled, CLOUDINARY_URL not set")
	}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		Auth:     &httpserver.AuthHTTP{Svc: auth},
		Products: &httpserver.ProductHTTP{Svc: catalogSvc, Producer: producer},
		Cart:     &httpserver.CartHTTP{Svc: cartSvc},
		Orders:   &httpserver.OrderHTTP{Svc: orderSvc, Producer: producer},
		Search:   &searchHandler,
		Uploads:  &uploadHandler,
		AuthMW:   authmw.NewMiddleware(auth),
	})

	srv := &http.Server{
		Addr:              cfg.HTTP_ADDR,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		log.Printf("fashion-shop listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("fashion-shop stopped")
}
