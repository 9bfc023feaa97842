package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/money"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/find-product/main.go <title>")
		fmt.Println("Example: go run cmd/find-product/main.go \"brass lamp\"")
		os.Exit(1)
	}

	term := strings.Join(os.Args[1:], " ")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Create backend client
	catalog := backend.NewCatalog(backend.NewClient(cfg.Backend, nil, logger))

	fmt.Printf("🔍 Searching for: %s\n\n", term)

	products, err := catalog.Search(context.Background(), term)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query backend: %v\n", err)
		os.Exit(1)
	}

	if len(products) == 0 {
		fmt.Printf("❌ No product matching '%s' in the catalog.\n", term)
		os.Exit(1)
	}

	fmt.Printf("✅ Found %d product(s)\n\n", len(products))
	for _, p := range products {
		fmt.Printf("ID: %s\n", p.ID)
		fmt.Printf("  Title: %s\n", p.Title)
		fmt.Printf("  Category: %s\n", p.Category)
		fmt.Printf("  Price: %s\n", money.Format(p.Price))
		if p.InStock() {
			fmt.Printf("  Stock: %s\n", p.Stock)
		} else {
			fmt.Printf("  Stock: out of stock\n")
		}
		fmt.Println()
	}

	fmt.Printf("To add one to a guest cart, run:\n")
	fmt.Printf("curl -X POST -H 'X-Device-ID: <uuid>' -d '{\"productId\":\"%s\",\"quantity\":\"1\"}' http://localhost:%s/v1/cart/items\n",
		products[0].ID, cfg.Port)
}
