package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "github.com/uzochukwuV/lendcore/internal/adapter/http"
	idemp "github.com/uzochukwuV/lendcore/internal/adapter/middleware"
	"github.com/uzochukwuV/lendcore/internal/adapter/oracle"
	"github.com/uzochukwuV/lendcore/internal/adapter/registry"
	"github.com/uzochukwuV/lendcore/internal/adapter/repository/mysql"
	"github.com/uzochukwuV/lendcore/internal/config"
	"github.com/uzochukwuV/lendcore/internal/infrastructure/cache"
	"github.com/uzochukwuV/lendcore/internal/infrastructure/db"
	"github.com/uzochukwuV/lendcore/internal/usecase/breaker"
	loanuc "github.com/uzochukwuV/lendcore/internal/usecase/loan"
	offeruc "github.com/uzochukwuV/lendcore/internal/usecase/offer"
	"github.com/uzochukwuV/lendcore/internal/usecase/scanner"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal(err)
	}
	if err := mysql.Migrate(gdb); err != nil {
		log.Fatal(err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}

	loans := mysql.NewLoanRepository(gdb)
	offers := mysql.NewOfferRepository(gdb)
	states := mysql.NewStateRepository(gdb)
	uow := mysql.NewGormUoW(gdb)

	oracleTimeout := time.Duration(cfg.OracleTimeoutSecs) * time.Second
	valuation := oracle.NewClient(cfg.OracleBaseURL, oracleTimeout)
	transfers := registry.NewClient(cfg.RegistryBaseURL, oracleTimeout)

	brk := breaker.New(states)
	offerSvc := offeruc.NewUsecase(offers, brk)
	loanSvc := loanuc.NewUsecase(loans, offers, uow, valuation, transfers, brk)
	sweep := scanner.New(loans, loanSvc, valuation, states, brk,
		time.Duration(cfg.ScanIntervalSecs)*time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go sweep.Start(ctx)

	h := httpadp.NewHandler()
	oh := httpadp.NewOfferHandler(offerSvc)
	lh := httpadp.NewLoanHandler(loanSvc)
	ah := httpadp.NewAdminHandler(brk, sweep, cfg.AdminToken)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	e.GET("/health", h.Health)

	// Client-facing mutations go through the idempotency guard; admin
	// operations are idempotent by construction and authorized by token, so
	// they skip it.
	api := e.Group("", idemp.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	api.POST("/offers", oh.CreateOffer)
	api.GET("/offers", oh.ListOffers)
	api.GET("/offers/:offer_id", oh.GetOffer)
	api.DELETE("/offers/:offer_id", oh.DeactivateOffer)

	api.POST("/loans", lh.RequestLoan)
	api.POST("/loans/:loan_id/fund", lh.FundLoan)
	api.POST("/loans/:loan_id/repay", lh.RepayLoan)
	api.POST("/loans/:loan_id/liquidate", lh.LiquidateLoan)
	api.GET("/loans/:loan_id", lh.GetLoan)
	api.GET("/users/:principal/loans", lh.ListUserLoans)
	api.GET("/stats", lh.GetStats)

	admin := e.Group("/admin")
	admin.POST("/scan", ah.RunScan)
	admin.POST("/pause", ah.Pause)
	admin.POST("/unpause", ah.Unpause)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Println(err)
	}
}
