package main

import (
	"context"
	"log"
	"time"

	"pouchstore/internal/core/cache"
	"pouchstore/internal/core/config"
	"pouchstore/internal/core/logger"
	"pouchstore/internal/core/server"
	addressadapter "pouchstore/internal/features/address/adapters"
	addresshandler "pouchstore/internal/features/address/handler"
	addressservice "pouchstore/internal/features/address/service"
	cartadapter "pouchstore/internal/features/cart/adapters"
	carthandler "pouchstore/internal/features/cart/handler"
	cartservice "pouchstore/internal/features/cart/service"
	checkoutadapter "pouchstore/internal/features/checkout/adapters"
	checkouthandler "pouchstore/internal/features/checkout/handler"
	checkoutservice "pouchstore/internal/features/checkout/service"
	orderadapter "pouchstore/internal/features/orders/adapters"
	orderhandler "pouchstore/internal/features/orders/handler"
	orderservice "pouchstore/internal/features/orders/service"
	"pouchstore/internal/features/pricing"

	"go.uber.org/zap"
)

// @title Pouchstore API
// @version 1.0
// @description Checkout and order lifecycle API for the Pouchstore storefront.
// @contact.name API Support
// @contact.email support@pouchstore.ie
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	// Initialize Redis and run Health Check
	redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Failed to create Redis adapter", zap.Error(err))
	}
	defer redisCache.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		l.Fatal("Redis Health Check Failed", zap.Error(err))
	}
	l.Info("Redis connection verified")

	pricingCfg, err := loadPricing(cfg.Pricing)
	if err != nil {
		l.Fatal("Invalid pricing configuration", zap.Error(err))
	}
	taxRate, err := cfg.Pricing.Tax()
	if err != nil {
		l.Fatal("Invalid pricing configuration", zap.Error(err))
	}

	// Cart
	cartStore := cartadapter.NewRedisCartStore(redisCache)
	cartSvc := cartservice.NewCartService(cartStore, pricingCfg)
	cartHdl := carthandler.NewCartHandler(cartSvc)

	// Orders
	orderRepo := orderadapter.NewRedisOrderRepository(redisCache.Client())
	notifier := orderadapter.NewWebhookNotifier(cfg.Notifications.WebhookURL)
	orderSvc := orderservice.NewOrderService(orderRepo, notifier, pricingCfg, taxRate)
	orderHdl := orderhandler.NewOrderHandler(orderSvc)

	// Checkout
	checkoutStore := checkoutadapter.NewRedisCheckoutStore(redisCache)
	gateway := checkoutadapter.NewHTTPPaymentGateway(cfg.Payment.URL, cfg.Payment.APIKey)
	checkoutSvc := checkoutservice.NewCheckoutService(
		checkoutStore, cartStore, gateway, orderSvc, pricingCfg, taxRate, cfg.Payment.Currency)
	checkoutHdl := checkouthandler.NewCheckoutHandler(checkoutSvc)

	// Addresses
	addressRepo := addressadapter.NewRedisAddressRepository(redisCache.Client())
	addressSvc := addressservice.NewAddressService(addressRepo)
	addressHdl := addresshandler.NewAddressHandler(addressSvc)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Get("/cart", cartHdl.GetCart)
	srv.App.Post("/cart/items", cartHdl.AddItem)
	srv.App.Put("/cart/items", cartHdl.UpdateQuantity)
	srv.App.Delete("/cart/items", cartHdl.RemoveItem)
	srv.App.Delete("/cart", cartHdl.ClearCart)

	srv.App.Get("/checkout", checkoutHdl.GetCheckout)
	srv.App.Post("/checkout/step", checkoutHdl.GoToStep)
	srv.App.Post("/checkout/customer", checkoutHdl.SubmitCustomerInfo)
	srv.App.Post("/checkout/address", checkoutHdl.SubmitShippingAddress)
	srv.App.Post("/checkout/shipping-method", checkoutHdl.SubmitShippingMethod)
	srv.App.Post("/checkout/coupon", checkoutHdl.ApplyCoupon)
	srv.App.Post("/checkout/pay", checkoutHdl.Pay)
	srv.App.Post("/checkout/reset", checkoutHdl.Reset)

	srv.App.Get("/orders", orderHdl.ListOrders)
	srv.App.Get("/orders/:id", orderHdl.GetOrder)
	srv.App.Get("/orders/:id/timeline", orderHdl.GetTimeline)
	srv.App.Patch("/admin/orders/:id/status", orderHdl.UpdateStatus)

	srv.App.Get("/addresses", addressHdl.ListAddresses)
	srv.App.Post("/addresses", addressHdl.CreateAddress)
	srv.App.Get("/addresses/:id", addressHdl.GetAddress)
	srv.App.Put("/addresses/:id", addressHdl.UpdateAddress)
	srv.App.Post("/addresses/:id/default", addressHdl.SetDefault)
	srv.App.Delete("/addresses/:id", addressHdl.DeleteAddress)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}

// loadPricing parses the configured pricing strings into the exact-decimal
// rules shared by cart, checkout and orders.
func loadPricing(p config.PricingConfig) (pricing.Config, error) {
	flat, err := p.FlatShipping()
	if err != nil {
		return pricing.Config{}, err
	}
	threshold, err := p.FreeShippingAt()
	if err != nil {
		return pricing.Config{}, err
	}
	return pricing.Config{
		FlatShippingCost:      flat,
		FreeShippingThreshold: threshold,
		MinimumOrderItems:     p.MinimumOrderItems,
	}, nil
}
