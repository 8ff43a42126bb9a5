// Command tapsim replays a roster of card taps against a running API
// instance. It is the manual smoke tool for the ingestion path: point it
// at an environment, give it a roster file, and it posts arrival and exit
// events with realistic jitter, then reports per-tap outcomes.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type tap struct {
	CourseID     string `json:"course_id"`
	UID          string `json:"uid"`
	Event        string `json:"event"`
	OffsetSec    int    `json:"offset_sec"`
	TotalSeconds *int64 `json:"total_seconds,omitempty"`
}

type roster struct {
	Taps []tap `json:"taps"`
}

type outcome struct {
	Tap      tap
	Status   int
	Error    error
	Duration time.Duration
}

func main() {
	var (
		base       string
		rosterPath string
		timeout    time.Duration
		jitter     time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&rosterPath, "roster", filepath.Join("scripts", "tapsim", "roster.json"), "Path to JSON roster file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.DurationVar(&jitter, "jitter", 200*time.Millisecond, "Max random delay between taps")
	flag.Parse()

	taps, err := loadRoster(rosterPath)
	if err != nil {
		log.Fatalf("failed to load roster: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	start := time.Now()
	var (
		outcomes []outcome
		rejected int
	)

	for _, t := range taps {
		if jitter > 0 {
			time.Sleep(time.Duration(rand.Int63n(int64(jitter))))
		}
		out := sendTap(client, base, start, t)
		if out.Error != nil || out.Status >= http.StatusBadRequest {
			rejected++
		}
		outcomes = append(outcomes, out)
	}

	printReport(outcomes)

	fmt.Printf("Taps sent: %d, rejected: %d\n", len(outcomes), rejected)
	if rejected > 0 {
		os.Exit(1)
	}
}

func loadRoster(path string) ([]tap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r roster
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if len(r.Taps) == 0 {
		return nil, fmt.Errorf("no taps defined in %s", path)
	}
	return r.Taps, nil
}

func sendTap(client *http.Client, base string, start time.Time, t tap) outcome {
	out := outcome{Tap: t}

	payload := map[string]any{
		"course_id": t.CourseID,
		"uid":       t.UID,
		"event":     t.Event,
		"timestamp": start.Add(time.Duration(t.OffsetSec) * time.Second).UTC().Format(time.RFC3339),
	}
	if t.TotalSeconds != nil {
		payload["total_seconds"] = *t.TotalSeconds
	}
	body, err := json.Marshal(payload)
	if err != nil {
		out.Error = fmt.Errorf("marshal tap: %w", err)
		return out
	}

	url := strings.TrimRight(base, "/") + "/api/v1/events"
	began := time.Now()
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	out.Duration = time.Since(began)
	if err != nil {
		out.Error = fmt.Errorf("post tap: %w", err)
		return out
	}
	defer resp.Body.Close()

	out.Status = resp.StatusCode
	return out
}

func printReport(outcomes []outcome) {
	for _, out := range outcomes {
		label := fmt.Sprintf("%-8s %s", out.Tap.Event, out.Tap.UID)
		if out.Error != nil {
			fmt.Printf("FAIL %s error=%v\n", label, out.Error)
			continue
		}
		mark := "ok"
		if out.Status >= http.StatusBadRequest {
			mark = "REJECTED"
		}
		fmt.Printf("%-8s %s status=%d in %s\n", mark, label, out.Status, out.Duration)
	}
}
