package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/blazex/seat-allocation/internal/config"
	"github.com/blazex/seat-allocation/internal/database"
	"github.com/blazex/seat-allocation/internal/handler"
	"github.com/blazex/seat-allocation/internal/queue"
	"github.com/blazex/seat-allocation/internal/repository"
	"github.com/blazex/seat-allocation/internal/router"
	"github.com/blazex/seat-allocation/internal/snapshot"
)

func main() {
	// Local development reads a .env file; in deployment the variables
	// come from the environment and the missing file is fine.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; seating snapshots disabled, plans will be recomputed")
	}
	snapshots := snapshot.New(rdb, time.Duration(cfg.SnapshotTTLMin)*time.Minute)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	classrooms := repository.NewClassroomRepo(db)
	sessions := repository.NewSessionRepo(db)
	students := repository.NewStudentRepo(db)
	allocations := repository.NewAllocationRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	seatingHandler := handler.NewSeatingHandler(classrooms, sessions, students, allocations, snapshots)

	// Background consumer appends allocation.saved events to
	// logs/allocation.log and reconnects on broker failure.
	go func() {
		if err := queue.StartAllocationConsumer(); err != nil {
			log.Printf("allocation consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterSeating(e, seatingHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
