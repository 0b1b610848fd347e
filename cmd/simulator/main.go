package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/litterbox/internal/config"
	"example.com/litterbox/internal/events"
	"example.com/litterbox/internal/simulator"
)

func main() {
	cfg := config.Load()

	devices := cfg.SimulatorDevices
	if len(devices) == 0 {
		devices = []string{"12345678-1234-5678-9012-123456789abc"}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	producer := events.NewVisitWriter(cfg.KafkaBrokers)
	defer producer.Close()

	registry := events.NewSchemaRegistry(cfg.SchemaRegistryURL)
	publisher := simulator.NewPublisher(producer, registry)

	generators := make([]*simulator.Generator, 0, len(devices))
	for i, device := range devices {
		seed := cfg.SimulatorSeed
		if seed != 0 {
			seed += int64(i)
		}
		generators = append(generators, simulator.NewGenerator(device, seed))
	}

	runBatch := func(start time.Time) {
		for _, gen := range generators {
			visits := gen.GenerateBatch(start, cfg.SimulatorDays)
			if err := publisher.Publish(ctx, visits); err != nil {
				log.Printf("publish failed: %v", err)
			}
		}
	}

	// First batch covers the window ending today.
	batchStart := time.Now().UTC().AddDate(0, 0, -cfg.SimulatorDays)
	log.Printf("simulating %d device(s), %d day batches from %s",
		len(devices), cfg.SimulatorDays, batchStart.Format("2006-01-02"))
	runBatch(batchStart)

	if cfg.SimulatorInterval <= 0 {
		log.Println("one-shot run complete")
		return
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.SimulatorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			batchStart = batchStart.AddDate(0, 0, cfg.SimulatorDays)
			runBatch(batchStart)
		case <-stop:
			log.Println("simulator stopped")
			return
		}
	}
}
