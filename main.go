package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "arc-backend/docs"
	"arc-backend/internal/contractitems"
	"arc-backend/internal/contracts"
	"arc-backend/internal/customers"
	"arc-backend/internal/employees"
	"arc-backend/internal/events"
	"arc-backend/internal/notifications"
	"arc-backend/internal/payments"
	"arc-backend/internal/platform/audit"
	"arc-backend/internal/platform/auth"
	"arc-backend/internal/platform/db"
	"arc-backend/internal/products"
)

// @title        ARC Rental API
// @version      1.0
// @description  Clothing rental management backend.
// @BasePath     /api/v1
func main() {
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if cfg.Mode != "dev" && cfg.Mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS is only needed while the frontend runs on its own dev server
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	secret := []byte(cfg.Auth.JWTSecret)
	authSvc := auth.NewService(conn, auth.Options{
		JWTSecret:     secret,
		TokenTTL:      time.Duration(cfg.Auth.TokenTTLHours) * time.Hour,
		MaxLoginFails: cfg.Auth.MaxLoginFails,
		LockoutPeriod: time.Duration(cfg.Auth.LockoutMinutes) * time.Minute,
	})
	auditSvc := audit.NewService(conn)

	open := r.Group("/api/v1")

	// everything below requires a bearer token; mutations are audited
	api := r.Group("/api/v1")
	api.Use(auth.RequireAuth(secret), audit.Middleware(auditSvc))

	mgr := api.Group("")
	mgr.Use(auth.RequireRole(auth.RoleAdmin, auth.RoleManager))

	admin := api.Group("")
	admin.Use(auth.RequireRole(auth.RoleAdmin))

	auth.RegisterRoutes(open, api, admin, authSvc)
	audit.RegisterRoutes(admin, auditSvc)

	notifSvc := notifications.NewService(conn)
	notifications.RegisterRoutes(api, notifSvc)

	customers.RegisterRoutes(api, admin, customers.NewService(conn))
	employees.RegisterRoutes(api, admin, employees.NewService(conn))
	products.RegisterRoutes(api, admin, products.NewService(conn))
	events.RegisterRoutes(api, admin, events.NewService(conn))
	contracts.RegisterRoutes(mgr, api, admin, contracts.NewService(conn, notifSvc))
	contractitems.RegisterRoutes(mgr, api, admin, contractitems.NewService(conn))
	payments.RegisterRoutes(mgr, api, admin, payments.NewService(conn, notifSvc))

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	var certFile, keyFile string
	if mode == "dev" {
		certFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Key)
	} else {
		certFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Key)
	}

	go func() {
		if cfg.Certificate.Cert == "" {
			log.Printf("[INFO] listening on http://0.0.0.0%s", cfg.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal(err)
			}
			return
		}
		log.Printf("[INFO] listening on https://0.0.0.0%s", cfg.Addr)
		if err := srv.ListenAndServeTLS(certFile, keyFile); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
