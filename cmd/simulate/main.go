package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/conquest-table/internal/model"
	"github.com/freeeve/conquest-table/internal/repository/postgres"
	"github.com/freeeve/conquest-table/internal/sim"
	"github.com/freeeve/conquest-table/pkg/conquest"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var (
		numGames  int
		players   int
		workers   int
		seed      uint64
		maxRounds int
		mapFile   string
		dbURL     string
		archive   bool
		jsonOut   bool
	)

	flag.IntVar(&numGames, "n", 100, "Number of matches to run")
	flag.IntVar(&players, "players", 3, "Players per match")
	flag.IntVar(&workers, "workers", 4, "Concurrency (parallel matches)")
	flag.Uint64Var(&seed, "seed", 0, "Base seed (0 = time based)")
	flag.IntVar(&maxRounds, "max-rounds", sim.DefaultMaxRounds, "Rounds before a match counts as stalled")
	flag.StringVar(&mapFile, "map", "", "JSON map catalog (default: built-in map)")
	flag.StringVar(&dbURL, "db", "", "Database URL (or use DATABASE_URL env)")
	flag.BoolVar(&archive, "archive", false, "Save finished matches to the result archive")
	flag.BoolVar(&jsonOut, "json", false, "Output results as JSON")

	flag.Parse()

	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	m := conquest.StandardMap()
	if mapFile != "" {
		f, err := os.Open(mapFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open map file")
		}
		m, err = conquest.LoadMap(f)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid map file")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	var resultRepo *postgres.ResultRepo
	if archive {
		if dbURL == "" {
			dbURL = os.Getenv("DATABASE_URL")
		}
		db, err := postgres.Connect(ctx, dbURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer db.Close()
		resultRepo = postgres.NewResultRepo(db)
	}

	results := make([]*sim.Result, numGames)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, max(workers, 1))
	errCount := 0
	start := time.Now()

	for i := 0; i < numGames; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			started := time.Now()
			res, err := sim.RunMatch(ctx, sim.Config{
				Map:       m,
				Players:   players,
				Seed:      seed + uint64(idx),
				MaxRounds: maxRounds,
			})
			if err != nil {
				log.Error().Err(err).Int("match", idx+1).Msg("Match failed")
				mu.Lock()
				errCount++
				mu.Unlock()
				return
			}

			mu.Lock()
			results[idx] = res
			mu.Unlock()

			log.Debug().Int("match", idx+1).Str("winner", res.WinnerID).Int("rounds", res.Rounds).Int("attacks", res.Attacks).Msg("Match completed")

			if resultRepo != nil && !res.Stalled {
				rec := &model.MatchResult{
					WinnerID:   res.WinnerID,
					WinnerName: res.WinnerName,
					Players:    res.Players,
					Rounds:     res.Rounds,
					Attacks:    res.Attacks,
					Trades:     res.Trades,
					StartedAt:  started,
					FinishedAt: time.Now(),
				}
				if err := resultRepo.Save(ctx, rec); err != nil {
					log.Error().Err(err).Int("match", idx+1).Msg("Failed to archive result")
				}
			}
		}(i)
	}

	wg.Wait()

	if jsonOut {
		printJSON(results, numGames, errCount)
	} else {
		printSummary(results, players, seed, errCount, time.Since(start))
	}
}

func printSummary(results []*sim.Result, players int, seed uint64, errCount int, elapsed time.Duration) {
	wins := make(map[string]int)
	var completed, stalled, rounds, attacks, trades int
	for _, r := range results {
		if r == nil {
			continue
		}
		completed++
		if r.Stalled {
			stalled++
		} else {
			wins[r.WinnerID]++
		}
		rounds += r.Rounds
		attacks += r.Attacks
		trades += r.Trades
	}

	fmt.Printf("\nResults (%d matches, %d players, base seed %d, %s):\n", completed, players, seed, elapsed.Round(time.Millisecond))
	if errCount > 0 {
		fmt.Printf("  (%d matches failed)\n", errCount)
	}
	if completed == 0 {
		return
	}

	seats := make([]string, 0, players)
	for i := 1; i <= players; i++ {
		seats = append(seats, fmt.Sprintf("bot-%d", i))
	}
	sort.Strings(seats)
	for _, id := range seats {
		fmt.Printf("  %-8s %4d wins  (%.1f%%)\n", id, wins[id], 100*float64(wins[id])/float64(completed))
	}
	fmt.Printf("  stalled  %4d\n", stalled)
	fmt.Printf("\n  mean rounds:  %.1f\n", float64(rounds)/float64(completed))
	fmt.Printf("  mean attacks: %.1f\n", float64(attacks)/float64(completed))
	fmt.Printf("  mean trades:  %.1f\n", float64(trades)/float64(completed))
}

func printJSON(results []*sim.Result, total, errCount int) {
	out := struct {
		Total   int           `json:"total"`
		Errors  int           `json:"errors"`
		Results []*sim.Result `json:"results"`
	}{
		Total:   total,
		Errors:  errCount,
		Results: results,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}
