package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"mocktest-service/internal/config"
	"mocktest-service/internal/event"
	"mocktest-service/internal/gateway"
	"mocktest-service/internal/handlers"
	"mocktest-service/internal/logger"
	"mocktest-service/internal/ratelimit"
	"mocktest-service/internal/service"
	"mocktest-service/pkg/discovery"
)

func main() {
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.LLMAPIKey == "" {
		log.Warn("LLM_API_KEY is empty, generation requests will be unauthenticated", "provider", cfg.LLMProvider)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher, err := event.NewEventPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange, log.With("component", "events"))
	if err != nil {
		log.Error("Failed to connect to RabbitMQ, events disabled", "error", err)
		publisher = event.Disabled(log)
	}
	defer publisher.Close()

	redisClient, err := ratelimit.NewRedisClient(ctx, cfg.RedisURI, log)
	if err != nil {
		log.Fatal("Invalid Redis configuration", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	limiter := ratelimit.New(redisClient, cfg.GenerationRateLimit, cfg.GenerationWindow, log.With("component", "ratelimit"))

	llm := gateway.NewLLMClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout, log)
	registry := service.NewRegistry(service.Deps{
		Questions:       gateway.NewQuestionGateway(llm, cfg.QuestionModel, cfg.QuestionCount),
		Tips:            gateway.NewTipGateway(llm, cfg.TipModel),
		Events:          publisher,
		Log:             log,
		DurationSeconds: cfg.ExamDurationSeconds,
		TickInterval:    cfg.TickInterval,
		Context:         ctx,
	}, cfg.AttemptIdleTTL)
	defer registry.Close()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[MOCKTEST] %v | %3d | %13v | %15s | %-7s %#v\n%s",
			param.TimeStamp.Format("2006/01/02 - 15:04:05"),
			param.StatusCode,
			param.Latency,
			param.ClientIP,
			param.Method,
			param.Path,
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	handlers.NewRouter(registry, limiter, cfg.ServiceName, cfg.ServiceVersion).Register(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	consul, err := discovery.NewServiceRegistry(cfg, log)
	if err != nil {
		log.Error("Service discovery init failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting mocktest service", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return registry.Run(gctx, time.Minute)
	})
	g.Go(func() error {
		if err := consul.Register(); err != nil {
			log.Error("Consul registration failed", "error", err)
		}
		<-gctx.Done()
		if err := consul.Deregister(); err != nil {
			log.Warn("Consul deregistration failed", "error", err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Service stopped with error", "error", err)
		return
	}
	log.Info("Service stopped")
}
