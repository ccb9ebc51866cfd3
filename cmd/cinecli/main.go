package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-cinema-client/internal/application/cart"
	"github.com/go-cinema-client/internal/application/favorites"
	"github.com/go-cinema-client/internal/application/session"
	"github.com/go-cinema-client/internal/config"
	"github.com/go-cinema-client/internal/domain"
	"github.com/go-cinema-client/internal/infrastructure/api"
	"github.com/go-cinema-client/internal/infrastructure/store"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const usage = `cinecli - movie-ticket storefront client

usage:
  cinecli register <name> <email> <password>
  cinecli login <email> <password>
  cinecli logout
  cinecli status
  cinecli cart add <product-id> <name> <unit-price-cents> <quantity>
  cinecli cart remove <product-id>
  cinecli cart list
  cinecli cart sync
  cinecli fav add <product-id> <name> <unit-price-cents>
  cinecli fav remove <product-id>
  cinecli fav list
  cinecli bookings
`

type engine struct {
	api  *api.Client
	auth session.Service
	cart cart.Service
	favs favorites.Service
}

// newEngine wires the whole client: dual-tier store, REST client,
// session authority and both collection caches, then restores identity.
func newEngine(cfg *config.Config) *engine {
	var long store.Tier
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		long = store.NewRedisTier(client, "cinecli:")
	} else {
		long = store.NewFileTier(cfg.StatePath)
	}

	st := store.New(store.NewMemoryTier(), long, 24*time.Duration(cfg.RetentionDays)*time.Hour, nil)
	client := api.New(cfg.APIBaseURL, cfg.RequestTimeout, st, nil)

	e := &engine{api: client}
	e.auth = session.NewService(st, client, cfg.RefreshWindow, nil)
	e.cart = cart.NewService(st, client, nil)
	e.favs = favorites.NewService(st, client, nil)
	e.cart.Bind(e.auth)
	e.favs.Bind(e.auth)
	e.auth.Restore(context.Background())
	return e
}

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}
	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Print(usage)
		os.Exit(2)
	}

	e := newEngine(config.Load())
	ctx := context.Background()

	var err error
	switch args[0] {
	case "register":
		err = e.register(ctx, args[1:])
	case "login":
		err = e.login(ctx, args[1:])
	case "logout":
		e.auth.Logout(ctx)
		fmt.Println("logged out")
	case "status":
		e.status()
	case "cart":
		err = e.cartCmd(ctx, args[1:])
	case "fav":
		err = e.favCmd(ctx, args[1:])
	case "bookings":
		err = e.bookings(ctx)
	default:
		fmt.Print(usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", args[0], err)
	}
}

func (e *engine) register(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: register <name> <email> <password>")
	}
	u, err := e.auth.Register(ctx, domain.RegisterRequest{Name: args[0], Email: args[1], Password: args[2]})
	if err != nil {
		return err
	}
	fmt.Printf("registered and signed in as %s <%s>\n", u.Name, u.Email)
	return nil
}

func (e *engine) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <email> <password>")
	}
	u, err := e.auth.Login(ctx, domain.SignInRequest{Email: args[0], Password: args[1]})
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s <%s>\n", u.Name, u.Email)
	e.cart.MergeOnLogin(ctx)
	e.favs.MergeOnLogin(ctx)
	return nil
}

func (e *engine) status() {
	cred, ok := e.auth.CurrentUser()
	if !ok {
		fmt.Println("anonymous")
		return
	}
	fmt.Printf("signed in as %s <%s>, state=%s, expiring soon=%v\n",
		cred.DisplayName, cred.Email, e.auth.State(), e.auth.ExpiresSoon())
}

func (e *engine) cartCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: cart add|remove|list|sync")
	}
	switch args[0] {
	case "add":
		if len(args) != 5 {
			return fmt.Errorf("usage: cart add <product-id> <name> <unit-price-cents> <quantity>")
		}
		price, err := strconv.ParseInt(args[3], 10, 64)
		if err != nil {
			return fmt.Errorf("bad price: %w", err)
		}
		qty, err := strconv.Atoi(args[4])
		if err != nil {
			return fmt.Errorf("bad quantity: %w", err)
		}
		return e.cart.Add(ctx, domain.AddCartItemRequest{
			ProductID: args[1], Name: args[2], UnitPrice: price, Quantity: qty,
		})
	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("usage: cart remove <product-id>")
		}
		return e.cart.Remove(ctx, args[1])
	case "list":
		for _, it := range e.cart.Items() {
			fmt.Printf("%s  x%d  %d¢  %s\n", it.ProductID, it.Quantity, it.UnitPrice, it.Name)
		}
		fmt.Printf("total: %d¢ across %d lines\n", e.cart.Total(), e.cart.Count())
		return nil
	case "sync":
		items := e.cart.SyncWithBackend(ctx)
		fmt.Printf("synced, server holds %d lines\n", len(items))
		return nil
	}
	return fmt.Errorf("unknown cart command %q", args[0])
}

func (e *engine) favCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: fav add|remove|list")
	}
	switch args[0] {
	case "add":
		if len(args) != 4 {
			return fmt.Errorf("usage: fav add <product-id> <name> <unit-price-cents>")
		}
		price, err := strconv.ParseInt(args[3], 10, 64)
		if err != nil {
			return fmt.Errorf("bad price: %w", err)
		}
		return e.favs.Add(ctx, domain.AddFavoriteRequest{
			ProductID: args[1], Name: args[2], UnitPrice: price,
		})
	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("usage: fav remove <product-id>")
		}
		return e.favs.Remove(ctx, args[1])
	case "list":
		for _, it := range e.favs.SortedByRecency() {
			fmt.Printf("%s  %d¢  %s\n", it.ProductID, it.UnitPrice, it.Name)
		}
		return nil
	}
	return fmt.Errorf("unknown fav command %q", args[0])
}

func (e *engine) bookings(ctx context.Context) error {
	if _, ok := e.auth.CurrentUser(); !ok {
		return fmt.Errorf("sign in first")
	}
	bookings, err := e.api.MyBookings(ctx)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		fmt.Printf("%s  %s  %d¢  %d items  %s\n",
			b.BookingID, b.Status, b.Total, len(b.Items), b.CreatedAt.Format(time.RFC3339))
	}
	fmt.Printf("%d bookings\n", len(bookings))
	return nil
}
