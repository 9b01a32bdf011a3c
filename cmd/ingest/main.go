package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ivfit-app/internal/domain"
)

type ingestOptions struct {
	url        string
	resistance float64
	offset     float64
	noise      float64
	points     int
	maxCurrent float64
	clear      bool
}

// generateReadings sweeps the current from maxCurrent/points up to
// maxCurrent and adds gaussian noise to the ideal V = I*R + offset.
func generateReadings(rng *rand.Rand, opts ingestOptions) []domain.Reading {
	readings := make([]domain.Reading, 0, opts.points)
	step := opts.maxCurrent / float64(opts.points)

	for i := 1; i <= opts.points; i++ {
		current := step * float64(i)
		voltage := current*opts.resistance + opts.offset + rng.NormFloat64()*opts.noise
		readings = append(readings, domain.NewReading(current, voltage))
	}
	return readings
}

func post(client *http.Client, url string, body interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %s", url, resp.Status)
	}
	return nil
}

func ingest(client *http.Client, opts ingestOptions) error {
	base := strings.TrimRight(opts.url, "/")

	if opts.clear {
		if err := post(client, base+"/clearReadings", nil); err != nil {
			return fmt.Errorf("clear readings: %w", err)
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	readings := generateReadings(rng, opts)

	log.Printf("Posting %d readings for R = %.2f ohm to %s...", len(readings), opts.resistance, base)

	var failed int
	for _, r := range readings {
		err := post(client, base+"/storeReading", map[string]float64{
			"voltage": r.Voltage,
			"current": r.Current,
		})
		if err != nil {
			log.Printf("Error posting reading current=%.4f voltage=%.4f: %v", r.Current, r.Voltage, err)
			failed++
			continue
		}
	}

	if failed == len(readings) {
		return fmt.Errorf("all %d readings failed", failed)
	}
	log.Println("Data ingestion complete.")
	return nil
}

func main() {
	var opts ingestOptions

	rootCmd := &cobra.Command{
		Use:          "ivfit-ingest",
		Short:        "Post synthetic resistor readings to a running ivfit service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.points < 2 {
				return fmt.Errorf("points must be >= 2, got %d", opts.points)
			}
			client := &http.Client{Timeout: 10 * time.Second}
			return ingest(client, opts)
		},
	}
	rootCmd.Flags().StringVarP(&opts.url, "url", "u", "http://localhost:5000", "Base URL of the service")
	rootCmd.Flags().Float64VarP(&opts.resistance, "resistance", "r", 100, "Simulated resistance in ohms")
	rootCmd.Flags().Float64Var(&opts.offset, "offset", 0, "Voltage offset in volts")
	rootCmd.Flags().Float64Var(&opts.noise, "noise", 0.05, "Standard deviation of voltage noise in volts")
	rootCmd.Flags().IntVarP(&opts.points, "points", "n", 20, "Number of readings")
	rootCmd.Flags().Float64Var(&opts.maxCurrent, "max-current", 0.1, "Largest current in amperes")
	rootCmd.Flags().BoolVar(&opts.clear, "clear", false, "Clear stored readings first")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
