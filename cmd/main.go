package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/DrvDispatch/Foodly-sub000/config"
	"github.com/DrvDispatch/Foodly-sub000/services"
)

// Prints one user's analytics bundle as JSON. Handy for eyeballing the
// engines against a live database without the app in front of them.
func main() {
	userID := flag.Uint("user", 0, "user id (required)")
	days := flag.Int("days", 7, "trailing window in days")
	flag.Parse()
	if *userID == 0 {
		log.Fatal("usage: report -user <id> [-days n]")
	}

	config.InitDB()
	ctx := context.Background()
	db := config.DB

	agg := services.NewAggregationService(db)
	window, _, err := agg.TrailingTotals(ctx, *userID, *days)
	if err != nil {
		log.Fatalf("aggregate: %v", err)
	}

	trends, err := services.NewTrendService(db).RangeTrends(ctx, *userID,
		time.Now().AddDate(0, 0, -(*days-1)), time.Now())
	if err != nil {
		log.Fatalf("trends: %v", err)
	}

	momentum, err := services.NewMomentumService(db).CurrentMomentum(ctx, *userID)
	if err != nil {
		log.Fatalf("momentum: %v", err)
	}

	daily, err := services.NewSignalService(db).DailySignal(ctx, *userID)
	if err != nil {
		log.Fatalf("daily signal: %v", err)
	}

	out := map[string]any{
		"window":       window,
		"trends":       trends,
		"momentum":     momentum,
		"daily_signal": daily,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode: %v", err)
	}
}
