// Command storefront is a thin CLI over the client data layer, mainly for
// poking at a running API during development.
//
// Usage:
//
//	storefront products [-search q] [-category slug] [-page n]
//	storefront product <slug>
//	storefront categories
//	storefront flash-sale
//	storefront cart
//	storefront cart-add <product-id> [qty]
//	storefront orders
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"pharmacy-storefront/internal/config"
	"pharmacy-storefront/internal/domain"
	"pharmacy-storefront/internal/notify"
	"pharmacy-storefront/internal/rest"
	cartstore "pharmacy-storefront/internal/store/cart"
	catalogstore "pharmacy-storefront/internal/store/catalog"
	orderstore "pharmacy-storefront/internal/store/order"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stderr, "[storefront] ", log.LstdFlags)

	var tokens rest.TokenSource
	if cfg.CredentialsFile != "" {
		tokens = rest.NewFileTokenSource(cfg.CredentialsFile)
	}
	client := rest.New(cfg.APIBaseURL, cfg.HTTPTimeout, tokens, logger)
	notifier := notify.NewLogNotifier(logger)

	catalog := catalogstore.New(client, notifier, logger)
	cart := cartstore.New(client, notifier, logger)
	orders := orderstore.New(client, cart, notifier, logger)

	ctx := context.Background()
	switch cmd := os.Args[1]; cmd {
	case "products":
		fs := flag.NewFlagSet("products", flag.ExitOnError)
		search := fs.String("search", "", "search term")
		category := fs.String("category", "", "category slug")
		page := fs.Int("page", 1, "page number")
		fs.Parse(os.Args[2:])

		if !catalog.Load(ctx, catalogstore.ListParams{Search: *search, Category: *category, Page: *page}) {
			os.Exit(1)
		}
		listing := catalog.Page()
		fmt.Printf("%d products (showing %d)\n", listing.Count, len(listing.Results))
		for _, p := range listing.Results {
			printProduct(p)
		}

	case "product":
		p, err := catalog.ProductBySlug(ctx, arg(2, "slug"))
		if err != nil {
			fail(err)
		}
		printProduct(p)
		fmt.Printf("  stock=%d prescription=%v\n", p.StockQuantity, p.RequiresPrescription)

	case "categories":
		tree, err := catalog.CategoryTree(ctx)
		if err != nil {
			fail(err)
		}
		for _, c := range tree {
			fmt.Printf("%s (%d)\n", c.Name, c.ProductCount)
			for _, child := range c.Children {
				fmt.Printf("  %s (%d)\n", child.Name, child.ProductCount)
			}
		}

	case "flash-sale":
		session, err := catalog.FlashSale(ctx)
		if err != nil {
			fail(err)
		}
		if session == nil {
			fmt.Println("no active flash sale")
			return
		}
		fmt.Printf("%s (until %s)\n", session.Name, session.EndsAt.Format("15:04"))
		for _, item := range session.Items {
			fmt.Printf("  %s %.0f -> %.0f (%d left)\n", item.Product.Name, item.Product.Price, item.SalePrice, item.RemainingQuantity)
		}

	case "cart":
		cart.Fetch(ctx)
		printCart(cart.Cart())

	case "cart-add":
		qty := 1
		if len(os.Args) > 3 {
			qty, _ = strconv.Atoi(os.Args[3])
		}
		if !cart.Add(ctx, arg(2, "product-id"), qty) {
			os.Exit(1)
		}
		printCart(cart.Cart())

	case "orders":
		for _, o := range orders.MyOrders(ctx) {
			info := domain.StatusInfo(o.Status)
			fmt.Printf("%s  %-12s %10.0f  %s\n", o.CreatedAt.Format("2006-01-02"), info.Label, o.TotalAmount, o.OrderNumber)
		}

	default:
		usage()
	}
}

func printProduct(p domain.Product) {
	if badge := p.DiscountPercent(); badge > 0 {
		fmt.Printf("%-40s %10.0f (-%d%%)\n", p.Name, p.EffectivePrice(), badge)
		return
	}
	fmt.Printf("%-40s %10.0f\n", p.Name, p.EffectivePrice())
}

func printCart(c *domain.Cart) {
	if c == nil || len(c.Items) == 0 {
		fmt.Println("cart is empty")
		return
	}
	for _, item := range c.Items {
		fmt.Printf("%-40s x%d %10.0f\n", item.Name, item.Quantity, item.TotalPrice)
	}
	fmt.Printf("total: %.0f (%d items)\n", c.TotalPrice, c.TotalItems)
}

func arg(i int, name string) string {
	if len(os.Args) <= i {
		fmt.Fprintf(os.Stderr, "missing argument: %s\n", name)
		os.Exit(2)
	}
	return os.Args[i]
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: storefront <products|product|categories|flash-sale|cart|cart-add|orders> [args]")
	os.Exit(2)
}
