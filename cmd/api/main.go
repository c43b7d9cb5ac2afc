package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	"storefront/internal/infra/event"
	"storefront/internal/infra/idgen"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logger"
	"storefront/internal/server"
	"storefront/internal/usecase"
	"storefront/internal/validator"
	"storefront/internal/worker"

	"go.uber.org/zap"
)

type publisher interface {
	usecase.EventPublisher
	Close() error
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.Init(cfg.App)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg.Postgres)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	txm := infraRepo.NewTxManagerGorm(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	ids, err := idgen.New(cfg.IDGen.Node)
	if err != nil {
		return err
	}

	//Redisが無ければイベントは捨てる
	var pub publisher = event.NopPublisher{}
	if cfg.Redis.Addr != "" {
		rp, err := event.NewRedisPublisher(cfg.Redis)
		if err != nil {
			return err
		}
		pub = rp
	}
	defer func() { _ = pub.Close() }()

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg.JWT, userRepo, validator.NewAuthValidator(userRepo))
	cartUC := usecase.NewCartUsecase(txm, cartRepo)
	addressUC := usecase.NewAddressUsecase(txm, addressRepo, validator.NewAddressValidator())
	orderUC := usecase.NewOrderUsecase(txm, ids, pub)
	paymentUC := usecase.NewPaymentUsecase(txm, ids, pub)
	reviewUC := usecase.NewReviewUsecase(txm)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, pub)
	inventoryUC := usecase.NewInventoryUsecase(txm)
	auditUC := usecase.NewAuditUsecase(auditRepo)

	//未払い注文の自動取消
	expiry := worker.NewOrderExpiry(orderUC, worker.OrderExpiryConfig{
		Timeout:  cfg.Order.UnpaidTimeout,
		Interval: cfg.Order.ScanInterval,
		Batch:    cfg.Order.ScanBatch,
	})
	go expiry.Run(ctx)

	e := server.New(server.Deps{
		JWT:            cfg.JWT,
		Users:          userRepo,
		Auth:           handler.NewAuthHandler(authUC),
		Cart:           handler.NewCartHandler(cartUC),
		Address:        handler.NewAddressHandler(addressUC),
		Order:          handler.NewOrderHandler(orderUC, paymentUC),
		Review:         handler.NewReviewHandler(reviewUC),
		AdminOrder:     handler.NewAdminOrderHandler(adminOrderUC),
		AdminInventory: handler.NewAdminInventoryHandler(inventoryUC),
		AdminAudit:     handler.NewAdminAuditHandler(auditUC),
	})

	err = server.Start(ctx, e, cfg.Addr())
	stats := expiry.Stats()
	zap.L().Info("stopped",
		zap.Int64("expiry_scans", stats.Scans),
		zap.Int64("expired_orders", stats.Expired),
	)
	return err
}
