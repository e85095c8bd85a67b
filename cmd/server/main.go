package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/courtside/scorekeeper/internal/config"
	"github.com/courtside/scorekeeper/internal/database"
	"github.com/courtside/scorekeeper/internal/handler"
	"github.com/courtside/scorekeeper/internal/hub"
	"github.com/courtside/scorekeeper/internal/middleware"
	"github.com/courtside/scorekeeper/internal/queue"
	"github.com/courtside/scorekeeper/internal/repository"
	"github.com/courtside/scorekeeper/internal/router"
	"github.com/courtside/scorekeeper/internal/service"
	"github.com/courtside/scorekeeper/internal/session"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	games := repository.NewGameRepo(db)
	events := repository.NewEventRepo(db)
	stats := repository.NewStatRepo(db)

	// Redis backs the live fan-out and the rate limiter; both degrade
	// gracefully when it is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: live feed and rate limiting disabled")
	}

	var live service.LivePublisher
	liveHub := hub.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go liveHub.Run(ctx)
	if rdb != nil {
		live = hub.NewStreamPublisher(rdb)
		go hub.ConsumeStream(ctx, rdb, liveHub)
	}

	pub := queue.NewPublisher(cfg.AMQPURL)
	defer pub.Close()
	go func() {
		if err := queue.StartPlayByPlayConsumer(); err != nil {
			log.Printf("play-by-play consumer stopped: %v", err)
		}
	}()

	svc := service.NewScoring(games, events, stats, pub, live)
	sessions := session.NewRegistry()

	h := router.Handlers{
		Game:    handler.NewGameHandler(svc),
		Score:   handler.NewScoreHandler(svc, sessions),
		Clock:   handler.NewClockHandler(svc, sessions),
		Phase:   handler.NewPhaseHandler(svc),
		Session: handler.NewSessionHandler(svc, sessions),
		Live:    handler.NewLiveHandler(liveHub, svc),
	}

	e := echo.New()
	var limiter echo.MiddlewareFunc
	if rdb != nil {
		limiter = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	}
	router.RegisterRoutes(e, h)
	router.RegisterScorekeeper(e, h, cfg.JWTSecret, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
