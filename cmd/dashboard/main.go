// Command dashboard renders litterbox usage analytics for one cat in the
// terminal. It drives the same fetch/aggregate pipeline the web dashboard
// uses, pointed at a running API instance.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"example.com/litterbox/internal/client"
	"example.com/litterbox/internal/config"
	"example.com/litterbox/internal/pipeline"
)

func main() {
	cfg := config.Load()

	if cfg.DashboardCatID == "" {
		log.Fatal("DASHBOARD_CAT_ID is required")
	}
	if cfg.APIToken == "" {
		log.Fatal("API_TOKEN is required (log in against the API first)")
	}

	start, end, err := parseRange(cfg.DashboardStart, cfg.DashboardEnd)
	if err != nil {
		log.Fatalf("invalid date range: %v", err)
	}

	usage := client.NewUsageClient(cfg.APIBaseURL, func(context.Context) (string, error) {
		return cfg.APIToken, nil
	})

	ctrl := pipeline.NewController(usage,
		pipeline.WithDebounce(cfg.DebounceDelay),
		pipeline.WithFetchLimit(cfg.FetchLimit),
		pipeline.WithPageSize(cfg.PageSize),
	)
	defer ctrl.Close()

	ctrl.SetSubject(cfg.DashboardCatID)
	ctrl.SetDateRange(start, end)

	snap := waitForResult(ctrl, cfg.DebounceDelay)
	if snap.Err != "" {
		log.Fatalf("fetch failed: %s", snap.Err)
	}

	render(snap, start, end)

	for page := 1; page < snap.Page.TotalPages; page++ {
		ctrl.GoToPage(page)
		snap = ctrl.Snapshot()
		renderPage(snap.Page)
	}
}

func parseRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -7)

	var err error
	if startRaw != "" {
		if start, err = time.Parse("2006-01-02", startRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if endRaw != "" {
		if end, err = time.Parse("2006-01-02", endRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

// waitForResult sleeps past the debounce window, then polls until the fetch
// settles.
func waitForResult(ctrl *pipeline.Controller, debounce time.Duration) pipeline.Snapshot {
	time.Sleep(debounce + 50*time.Millisecond)

	deadline := time.Now().Add(30 * time.Second)
	for {
		snap := ctrl.Snapshot()
		if !snap.Loading {
			return snap
		}
		if time.Now().After(deadline) {
			fmt.Fprintln(os.Stderr, "timed out waiting for data")
			return snap
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func render(snap pipeline.Snapshot, start, end time.Time) {
	fmt.Printf("Litterbox usage %s to %s\n\n", start.Format("2006-01-02"), end.Format("2006-01-02"))

	fmt.Println("Daily visits:")
	for _, bucket := range snap.Daily {
		fmt.Printf("  %s %s (%d)\n", bucket.Date.Format("01-02"), strings.Repeat("#", bucket.VisitCount), bucket.VisitCount)
	}

	fmt.Println("\nHourly distribution:")
	for hour, count := range snap.Hourly {
		if count == 0 {
			continue
		}
		fmt.Printf("  %02d:00 %s (%d)\n", hour, strings.Repeat("#", count), count)
	}

	fmt.Printf("\nTotal visits:    %d\n", snap.Stats.TotalVisits)
	fmt.Printf("Avg duration:    %.1f min\n", snap.Stats.AvgDurationMinutes)
	fmt.Printf("Avg cat weight:  %.1f lbs\n", snap.Stats.AvgWeight)
	fmt.Printf("Visits per day:  %.2f\n\n", snap.Stats.VisitsPerDay)

	renderPage(snap.Page)
}

func renderPage(page pipeline.Page) {
	fmt.Printf("Page %d of %d:\n", page.Index+1, page.TotalPages)
	for _, rec := range page.Items {
		fmt.Printf("  %s  %5.1f min  %5.1f lbs  %s / %s\n",
			rec.EnterTime.Format("2006-01-02 15:04"),
			rec.DurationMinutes,
			rec.CatWeight,
			rec.LitterboxName,
			rec.DeviceName,
		)
	}
	fmt.Println()
}
