package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-engrave-orders.git/internal/catalog"
	"github.com/ariefcatur/go-engrave-orders.git/internal/chat"
	"github.com/ariefcatur/go-engrave-orders.git/internal/config"
	"github.com/ariefcatur/go-engrave-orders.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-engrave-orders.git/internal/kafka"
	"github.com/ariefcatur/go-engrave-orders.git/internal/live"
	"github.com/ariefcatur/go-engrave-orders.git/internal/metrics"
	"github.com/ariefcatur/go-engrave-orders.git/internal/mongodb"
	"github.com/ariefcatur/go-engrave-orders.git/internal/orders"
	"github.com/ariefcatur/go-engrave-orders.git/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mongo
	client, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.MongoDB)

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Metrics
	m, shutdownMetrics, err := metrics.Init(ctx, cfg.ServiceName, cfg.MetricsAddr)
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	// Kafka producers, one per topic
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	pPlaced.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024)
	pStatus.Start(ctx)
	pCancel := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024)
	pCancel.Start(ctx)

	// Repos & handlers
	orderRepo := &orders.Repo{Col: db.Collection("orders"), Redis: rdb}
	products := &catalog.Products{Col: db.Collection("products"), Redis: rdb}
	wishlist := &catalog.Wishlist{Col: db.Collection("wishlist"), Products: products, Redis: rdb}
	users := &catalog.Users{Col: db.Collection("users")}
	chatRepo := &chat.Repo{Col: db.Collection("chats"), Orders: orderRepo, Redis: rdb}
	hub := live.NewHub(rdb)

	router := httpx.NewRouter(m)
	(&httpx.OrdersHandler{
		Orders:         orderRepo,
		Catalog:        products,
		Users:          users,
		Hub:            hub,
		Metrics:        m,
		PlacedProducer: pPlaced,
		StatusProducer: pStatus,
		CancelProducer: pCancel,
		Service:        cfg.ServiceName,
	}).Register(router)
	(&httpx.ChatHandler{Chat: chatRepo, Hub: hub, Metrics: m}).Register(router)
	(&httpx.CatalogHandler{Products: products, Wishlist: wishlist, Users: users, Hub: hub, Metrics: m}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	_ = shutdownMetrics(ctx2)

	pPlaced.Close()
	pStatus.Close()
	pCancel.Close()
	cancel()
	pPlaced.WaitClosed()
	pStatus.WaitClosed()
	pCancel.WaitClosed()
}
