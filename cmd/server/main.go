package main

import (
	"context"
	"log"
	"time"

	"ecommerce-backend/internal/config"
	"ecommerce-backend/internal/controllers/http"
	"ecommerce-backend/internal/infra/mailer"
	mmysql "ecommerce-backend/internal/infra/mysql"
	"ecommerce-backend/internal/infra/rabbitmq"
	mysqlrepo "ecommerce-backend/internal/repository/mysql"
	"ecommerce-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := mmysql.New(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	tx := mysqlrepo.NewTransactor(db)
	orderRepo := mysqlrepo.NewOrderRepository(db)
	productRepo := mysqlrepo.NewProductRepository(db)
	userRepo := mysqlrepo.NewUserRepository(db)
	activityRepo := mysqlrepo.NewActivityRepository(db)
	addressRepo := mysqlrepo.NewAddressRepository(db)
	tokenRepo := mysqlrepo.NewTokenRepository(db)

	publisher, err := rabbitmq.NewPublisher(cfg.AMQPURL, "order.events")
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	smtp := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		SenderName: cfg.SMTPSenderName,
		Email:      cfg.SMTPEmail,
		Password:   cfg.SMTPPassword,
	})

	orderService := services.NewOrderService(tx, orderRepo, productRepo, publisher)
	tokenService := services.NewTokenService(tokenRepo, userRepo, cfg.VerificationTTL, cfg.ResetTTL)
	accountService := services.NewAccountService(tx, userRepo, activityRepo, addressRepo, tokenService, smtp, cfg.FrontendURL)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		DB:           0,
		PoolSize:     100,
		MinIdleConns: 10,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	orderService.SetRedisClient(redisClient)

	go func() {
		time.Sleep(5 * time.Second)
		if err := orderService.WarmupProductCache(context.Background(), []uint64{1, 2}); err != nil {
			log.Printf("Failed to warm up cache: %v", err)
		}
	}()

	handler := http.NewHandler(orderService, accountService, redisClient)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r)

	log.Printf("Starting server on port %s", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
