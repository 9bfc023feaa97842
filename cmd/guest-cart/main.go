package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/localcart"
	"github.com/jafarshop/storefront/internal/storage"
	"github.com/jafarshop/storefront/internal/money"
)

func main() {
	app := &cli.App{
		Name:  "guest-cart",
		Usage: "inspect or reset the guest cart stored for a device",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "device",
				Aliases: []string{"d"},
				Usage:   "device id the cart is stored under (defaults to DEVICE_ID)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "print the cart priced against the live catalog",
				Action: withStore(show),
			},
			{
				Name:   "count",
				Usage:  "print the total item count",
				Action: withStore(count),
			},
			{
				Name:   "clear",
				Usage:  "delete the stored cart",
				Action: withStore(clearCart),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

type env struct {
	cfg    *config.Config
	store  *localcart.Store
	device string
	logger *zap.Logger
}

func withStore(fn func(ctx context.Context, e env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		// Load configuration
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// Initialize logger
		logger, _ := zap.NewDevelopment()
		defer logger.Sync()

		device := c.String("device")
		if device == "" {
			device = cfg.DeviceID
		}

		kv, err := storage.Open(c.Context, cfg.Storage, cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
		}
		defer kv.Close()

		return fn(c.Context, env{
			cfg:    cfg,
			store:  localcart.NewStore(kv, localcart.KeyFor(device), logger),
			device: device,
			logger: logger,
		})
	}
}

func show(ctx context.Context, e env) error {
	lines, err := e.store.Read(ctx)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		fmt.Printf("🛒 Cart for device %q is empty\n", e.device)
		return nil
	}

	products, err := backend.NewCatalog(backend.NewClient(e.cfg.Backend, nil, e.logger)).AllProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	view := cart.BuildView(lines, cart.NewCatalog(products))

	fmt.Printf("🛒 Cart for device %q\n\n", e.device)
	for _, item := range view.Items {
		fmt.Printf("  %s x %s  %s\n", item.Quantity, item.Product.Title, money.Format(item.LineTotal))
	}
	if hidden := len(lines) - len(view.Items); hidden > 0 {
		fmt.Printf("\n⚠️  %d line(s) reference products no longer in the catalog\n", hidden)
	}
	fmt.Printf("\nSubtotal: %s\n", money.Format(view.Subtotal))
	return nil
}

func count(ctx context.Context, e env) error {
	n, err := e.store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func clearCart(ctx context.Context, e env) error {
	if err := e.store.Clear(ctx); err != nil {
		return err
	}
	fmt.Printf("✅ Cleared cart for device %q\n", e.device)
	return nil
}
