package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/SigNoz/store-api-go/internal/models"
	"github.com/SigNoz/store-api-go/internal/seed"
)

func main() {
	var (
		target    = flag.String("target", "http://127.0.0.1:8080", "store API receiving the products")
		source    = flag.String("source", "dummyjson", "product source: dummyjson or store")
		sourceURL = flag.String("url", "https://dummyjson.com/products?limit=100", "source URL; for -source=store the base URL of the other API")
		favorites = flag.Int("favorites", 0, "mark the first N created products as favorites")
		timeout   = flag.Duration("timeout", 30*time.Second, "per-request timeout")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := seed.NewClient(&http.Client{Timeout: *timeout}, *target)

	var (
		products []models.ProductInput
		err      error
	)
	switch *source {
	case "dummyjson":
		log.Printf("Fetching products from %s...", *sourceURL)
		products, err = client.FetchDummyJSON(ctx, *sourceURL)
	case "store":
		log.Printf("Fetching products from store API %s...", *sourceURL)
		products, err = client.FetchStore(ctx, *sourceURL)
	default:
		log.Fatalf("Unknown source %q", *source)
	}
	if err != nil {
		log.Fatalf("Failed to fetch products: %v", err)
	}
	if len(products) == 0 {
		log.Println("No products found to import.")
		return
	}

	log.Printf("Fetched %d products, posting to %s/products ...", len(products), *target)
	res := client.Import(ctx, products)

	if n := min(*favorites, len(res.Created)); n > 0 {
		ids := make([]int64, 0, n)
		for _, p := range res.Created[:n] {
			ids = append(ids, p.ID)
		}
		log.Printf("Favorited %d of %d products", client.Favorite(ctx, ids), n)
	}

	log.Printf("Done! Successfully created %d products, skipped %d.", len(res.Created), res.Skipped)
}
