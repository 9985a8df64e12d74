package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-results-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-results-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-results-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-results-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-results-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-results-go/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-results-go")

	dbCfg := database.ConfigFromEnv()
	db, err := database.Connect(dbCfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	setupCtx, cancelSetup := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSetup()

	repo := userrepo.NewUserRepo(db)
	if err := repo.EnsureTable(setupCtx); err != nil {
		sugar.Fatalf("ensure users table: %v", err)
	}

	hasher, err := user.NewHasher(user.ConfigFromEnv().Digest)
	if err != nil {
		sugar.Fatalf("password digest: %v", err)
	}
	if hasher.Name() == "md5" {
		sugar.Warn("passwords are stored as unsalted md5 digests for compatibility with existing accounts")
	}
	users := user.NewUserService(db, repo, hasher)

	sessCfg := session.ConfigFromEnv()
	store, err := session.NewStore(setupCtx, sessCfg, db)
	if err != nil {
		sugar.Fatalf("session store: %v", err)
	}
	issuer, err := session.NewIssuer(sessCfg, store, nil)
	if err != nil {
		sugar.Fatalf("session issuer: %v", err)
	}
	sugar.Infow("session issuer ready", "store", sessCfg.Store, "style", sessCfg.Style, "token_name", sessCfg.TokenName)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpCfg := router.ConfigFromEnv()
	handler := router.RegisterRoutes(sugar, httpCfg, users, issuer)
	srv := &http.Server{
		Addr:              httpCfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("http server listening", "addr", httpCfg.Addr, "prefix", httpCfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
