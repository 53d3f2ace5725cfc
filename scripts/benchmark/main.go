// Benchmark suite for a running pagepix instance. Hits /api/v1/images for
// a fixed set of site types, averages the timings and candidate counts over
// several runs and writes a JSON report.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "pagepix API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per URL for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Test URLs covering 5 site types.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Static", "https://example.com"},
	{"Blog", "https://go.dev/blog/go1.21"},
	{"News", "https://www.bbc.com/news"},
	{"Gallery", "https://unsplash.com"},
	{"Shop", "https://www.etsy.com"},
}

// --- Request / Response types (mirrors models package) ---

type extractRequest struct {
	URL     string `json:"url"`
	Timeout int    `json:"timeout"`
}

type extractResponse struct {
	Success bool `json:"success"`
	Images  []struct {
		URL             string `json:"url"`
		FromCrossOrigin bool   `json:"from_cross_origin"`
	} `json:"images"`
	Stats struct {
		Collected      int  `json:"collected"`
		Deduplicated   int  `json:"deduplicated"`
		NetworkIdle    bool `json:"network_idle"`
		ConsentClicked bool `json:"consent_clicked"`
	} `json:"stats"`
	Timing struct {
		TotalMs      int64 `json:"total_ms"`
		ReadinessMs  int64 `json:"readiness_ms"`
		CollectionMs int64 `json:"collection_ms"`
	} `json:"timing"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// --- Benchmark result types ---

type runResult struct {
	Run          int    `json:"run"`
	TotalMs      int64  `json:"total_ms"`
	ReadinessMs  int64  `json:"readiness_ms"`
	CollectionMs int64  `json:"collection_ms"`
	Collected    int    `json:"collected"`
	Deduplicated int    `json:"deduplicated"`
	NetworkIdle  bool   `json:"network_idle"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

type urlAverages struct {
	TotalMs      float64 `json:"total_ms"`
	ReadinessMs  float64 `json:"readiness_ms"`
	CollectionMs float64 `json:"collection_ms"`
	Collected    float64 `json:"collected"`
	Deduplicated float64 `json:"deduplicated"`
}

type urlResult struct {
	URL      string       `json:"url"`
	Label    string       `json:"label"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== pagepix Benchmark Suite ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure pagepix is running\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		RunsPerURL: *runs,
	}

	for _, t := range testURLs {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Label, t.URL)
		ur := urlResult{URL: t.URL, Label: t.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(t.URL, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %d→%d images\n", rr.TotalMs, rr.Collected, rr.Deduplicated)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkURL(url string, run int) runResult {
	rr := runResult{Run: run}

	bodyBytes, err := json.Marshal(extractRequest{URL: url, Timeout: 60})
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest("POST", *apiURL+"/api/v1/images", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	client := &http.Client{Timeout: 90 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var er extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = er.Success
	rr.TotalMs = er.Timing.TotalMs
	rr.ReadinessMs = er.Timing.ReadinessMs
	rr.CollectionMs = er.Timing.CollectionMs
	rr.Collected = er.Stats.Collected
	rr.Deduplicated = er.Stats.Deduplicated
	rr.NetworkIdle = er.Stats.NetworkIdle

	if er.Error != nil {
		rr.Error = er.Error.Message
	}

	return rr
}

func computeAverages(runs []runResult) *urlAverages {
	var successCount int
	var avg urlAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.TotalMs += float64(r.TotalMs)
		avg.ReadinessMs += float64(r.ReadinessMs)
		avg.CollectionMs += float64(r.CollectionMs)
		avg.Collected += float64(r.Collected)
		avg.Deduplicated += float64(r.Deduplicated)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.TotalMs /= n
	avg.ReadinessMs /= n
	avg.CollectionMs /= n
	avg.Collected /= n
	avg.Deduplicated /= n
	return &avg
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tAvg Latency\tReadiness\tCollected\tImages\n")
	fmt.Fprintf(w, "───\t───────────\t─────────\t─────────\t──────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\n", truncateURL(r.URL, 40))
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%dms\t%.0f\t%.0f\n",
			truncateURL(r.URL, 40),
			int64(r.Averages.TotalMs),
			int64(r.Averages.ReadinessMs),
			r.Averages.Collected,
			r.Averages.Deduplicated,
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
