package main

import (
	"context"
	"log"
	"time"

	"github.com/ariefcatur/go-engrave-orders.git/internal/catalog"
	"github.com/ariefcatur/go-engrave-orders.git/internal/config"
	"github.com/ariefcatur/go-engrave-orders.git/internal/mongodb"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
)

// One-shot catalog seeder for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	col := client.Database(cfg.MongoDB).Collection("products")
	n, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Fatalf("count products: %v", err)
	}
	if n > 0 {
		log.Printf("catalog already has %d products, nothing to do", n)
		return
	}

	now := time.Now().UTC()
	seed := []interface{}{
		catalog.Product{Name: "Engraved Oak Plaque", Description: "Solid oak, laser engraved", PriceCents: 4500, Stock: 20, ImageURL: "/img/oak-plaque.jpg", CreatedAt: now, UpdatedAt: now},
		catalog.Product{Name: "Personalized Steel Tumbler", Description: "500ml, custom text", PriceCents: 2900, Stock: 35, ImageURL: "/img/tumbler.jpg", CreatedAt: now, UpdatedAt: now},
		catalog.Product{Name: "Custom Pet Tag", Description: "Brass, up to 30 characters", PriceCents: 900, Stock: 120, ImageURL: "/img/pet-tag.jpg", CreatedAt: now, UpdatedAt: now},
		catalog.Product{Name: "Engraved Glass Award", Description: "Crystal glass trophy", PriceCents: 7800, Stock: 8, ImageURL: "/img/glass-award.jpg", CreatedAt: now, UpdatedAt: now},
		catalog.Product{Name: "Wooden Phone Stand", Description: "Walnut, monogrammed", PriceCents: 1900, Stock: 0, ImageURL: "/img/phone-stand.jpg", CreatedAt: now, UpdatedAt: now},
	}

	res, err := col.InsertMany(ctx, seed)
	if err != nil {
		log.Fatalf("seed products: %v", err)
	}
	log.Printf("seeded %d products", len(res.InsertedIDs))
}
