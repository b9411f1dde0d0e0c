package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"rentflow/internal/archive"
	"rentflow/internal/config"
	"rentflow/internal/handlers"
	"rentflow/internal/lock"
	"rentflow/internal/repositories"
	"rentflow/internal/services"
	"rentflow/internal/timeutil"
	"rentflow/internal/txid"
	"rentflow/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	db       *sql.DB
	rdb      *redis.Client
	tokens   *utils.Manager

	offerHandler       *handlers.OfferHandler
	transactionHandler *handlers.TransactionHandler
	agreementHandler   *handlers.AgreementHandler
}

// logAdapter exposes the log.Logger pair through the Infof/Errorf interface
// used by the services.
type logAdapter struct {
	info *log.Logger
	err  *log.Logger
}

func (l logAdapter) Infof(format string, args ...interface{}) {
	l.info.Output(2, fmt.Sprintf(format, args...))
}

func (l logAdapter) Errorf(format string, args ...interface{}) {
	l.err.Output(2, fmt.Sprintf(format, args...))
}

func initializeApp(cfg config.Config, db *sql.DB, errorLog, infoLog *log.Logger) (*application, error) {
	logger := logAdapter{info: infoLog, err: errorLog}
	clock := timeutil.NewClock(timeutil.LoadLocation(cfg.Business.Timezone))
	dialect := repositories.Dialect{Driver: cfg.Database.Driver}

	tokens, err := utils.NewManager(cfg.Auth.JWTSecret)
	if err != nil {
		return nil, err
	}

	// Repositories
	offerRepo := repositories.NewOfferRepository(db, dialect)
	propertyRepo := repositories.NewPropertyRepository(db, dialect)
	transactionRepo := repositories.NewPaymentTransactionRepository(db, dialect)
	rentMonthRepo := repositories.NewRentMonthRepository(db, dialect)
	agreementRepo := repositories.NewAgreementRepository(db, dialect)

	app := &application{errorLog: errorLog, infoLog: infoLog, db: db, tokens: tokens}

	var locker services.Locker = lock.NewMutex()
	if cfg.Redis.Addr != "" {
		app.rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := app.rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		locker = lock.NewRedis(app.rdb, "rentflow:lock:", cfg.Redis.LockTTL).WithLogger(logger)
		infoLog.Printf("Using redis locks at %s", cfg.Redis.Addr)
	}

	var ids services.IDGenerator = txid.Random{Now: clock.Now}
	if cfg.Business.TxIDSeed != 0 {
		ids = txid.NewSeeded(cfg.Business.TxIDSeed, clock.Now)
		infoLog.Printf("Using seeded transaction ids")
	}

	var archiver services.Archiver
	if cfg.Archive.Bucket != "" {
		a, err := archive.NewS3Archive(archive.Config{
			Bucket:    cfg.Archive.Bucket,
			Region:    cfg.Archive.Region,
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Prefix:    cfg.Archive.Prefix,
		})
		if err != nil {
			return nil, err
		}
		archiver = a
	}

	// Services
	offerService := &services.OfferService{Offers: offerRepo, Properties: propertyRepo, Clock: clock, Logger: logger}
	cascade := &services.VerificationCascade{Offers: offerRepo, RentMonths: rentMonthRepo, Clock: clock, Logger: logger}
	ledger := &services.PaymentTransactionService{
		Offers:       offerRepo,
		Transactions: transactionRepo,
		Cascade:      cascade,
		Locker:       locker,
		IDs:          ids,
		Clock:        clock,
		Logger:       logger,
	}
	agreementService := &services.AgreementService{
		Offers:       offerRepo,
		Transactions: transactionRepo,
		Agreements:   agreementRepo,
		Archive:      archiver,
		Clock:        clock,
		Logger:       logger,
	}

	// Handlers
	app.offerHandler = &handlers.OfferHandler{Service: offerService, Ledger: ledger, RentMonths: cascade, Logger: logger}
	app.transactionHandler = &handlers.TransactionHandler{Service: ledger, Logger: logger}
	app.agreementHandler = &handlers.AgreementHandler{Service: agreementService, Logger: logger}

	return app, nil
}

func (app *application) close() {
	if app.rdb != nil {
		app.rdb.Close()
	}
}
