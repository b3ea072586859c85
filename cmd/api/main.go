package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-user-soap/internal/config"
	"github.com/ovaphlow/pitchfork/service-user-soap/internal/router"
	"github.com/ovaphlow/pitchfork/service-user-soap/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-user-soap/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-user-soap/pkg/database"
	"github.com/ovaphlow/pitchfork/service-user-soap/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting SOAP user service")

	svcCfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("service config: %v", err)
	}

	// init db; the listener never starts without a verified connection
	dbCfg, err := database.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("%v", err)
	}
	sugar.Infow("connecting to database", "dsn", dbCfg.Redacted(), "max_conns", dbCfg.MaxConns)
	sqlDB, err := database.Connect(dbCfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	if dbCfg.Migrate {
		if err := database.Migrate(context.Background(), sqlDB, sugar); err != nil {
			sugar.Fatalf("db migrate: %v", err)
		}
	}

	// wrap with sqlx for the repository
	sqlxDB := sqlx.NewDb(sqlDB, "postgres")

	store := user.NewUserService(userrepo.NewUserRepo(sqlxDB), sugar, svcCfg.OperationTimeout)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := router.RegisterRoutes(sugar, store, router.Options{
		PublicURL:      svcCfg.PublicURL,
		AllowedOrigins: svcCfg.AllowedOrigins,
		RateLimitRPS:   svcCfg.RateLimitRPS,
		RateLimitBurst: svcCfg.RateLimitBurst,
	})
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(svcCfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("service is running; press Ctrl+C to stop", "addr", srv.Addr)

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), svcCfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
