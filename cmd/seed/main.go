package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/artifactng/wheelspin-backend/internal/config"
	mongorepo "github.com/artifactng/wheelspin-backend/internal/repositories/mongodb"
	"github.com/artifactng/wheelspin-backend/pkg/mongodb"
)

// testTicketCodes are registered alongside the promotion data when
// -test-tickets is set, for smoke testing the deployed spin endpoint.
var testTicketCodes = []string{
	"TEST123", "DEMO456", "SPIN789",
	"BETA001", "BETA002", "BETA003", "BETA004", "BETA005",
	"TESTER01", "TESTER02", "TESTER03", "TESTER04", "TESTER05",
	"QA0001", "QA0002", "QA0003", "QA0004", "QA0005",
	"TRIAL01", "TRIAL02", "TRIAL03", "TRIAL04", "TRIAL05",
}

func main() {
	clearTickets := flag.Bool("clear-tickets", false, "also delete all registered tickets")
	withTestTickets := flag.Bool("test-tickets", false, "register a batch of smoke-test ticket codes")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)
	seeder := mongorepo.NewPromotionSeeder(db)

	log.Println("Seeding promotion counters and prize inventory...")
	if err := seeder.Seed(ctx, cfg.Promotion, *clearTickets); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	if *withTestTickets {
		created, err := seeder.SeedTickets(ctx, testTicketCodes)
		if err != nil {
			log.Fatalf("Failed to register test tickets: %v", err)
		}
		log.Printf("Registered %d test tickets (%d already existed)", created, len(testTicketCodes)-created)
	}

	log.Printf("Seed completed: %d ranges, %d prize names, %d max spins",
		len(cfg.Promotion.Ranges), len(cfg.Promotion.PrizeNames), cfg.Promotion.MaxSpins)
}
