// Load-генератор для эндпоинта статистики набора: сеет тестовые проекты
// и кандидатов в PostgreSQL, после чего обстреливает GET /statistics/recruitment
// с заданным RPS и пишет структурированный отчёт о латентности.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type runConfig struct {
	BaseURL        string
	ProjectCount   int
	CandidateCount int
	RPS            float64
	Duration       time.Duration
	RequestTimeout time.Duration
	HealthTimeout  time.Duration
	ReportPath     string
	DatasetPrefix  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
}

type datasetInfo struct {
	Prefix         string `json:"prefix"`
	ProjectCount   int    `json:"project_count"`
	CandidateCount int    `json:"candidate_count"`
}

type latencySummary struct {
	Samples   int     `json:"samples"`
	AverageMs float64 `json:"average_ms"`
	P95Ms     float64 `json:"p95_ms"`
	MaxMs     float64 `json:"max_ms"`
}

type totalsSummary struct {
	Requested int `json:"requested"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type loadSummary struct {
	GeneratedAt time.Time      `json:"generated_at"`
	BaseURL     string         `json:"base_url"`
	DurationSec float64        `json:"duration_sec"`
	TargetRPS   float64        `json:"target_rps"`
	ActualRPS   float64        `json:"actual_rps"`
	Dataset     datasetInfo    `json:"dataset"`
	Totals      totalsSummary  `json:"totals"`
	Latency     latencySummary `json:"statistics_latency_ms"`
	UniqueETags int            `json:"unique_etags"`
	Errors      []string       `json:"errors,omitempty"`
}

type metricRecorder struct {
	mu        sync.Mutex
	total     int
	success   int
	failures  int
	durations []time.Duration
	etags     map[string]struct{}
	errors    []string
}

func newMetricRecorder() *metricRecorder {
	return &metricRecorder{etags: make(map[string]struct{})}
}

func (m *metricRecorder) record(duration time.Duration, etag string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total++
	if err != nil {
		m.failures++
		if len(m.errors) < 10 {
			m.errors = append(m.errors, err.Error())
		}
		return
	}
	m.success++
	m.durations = append(m.durations, duration)
	m.etags[etag] = struct{}{}
}

func (m *metricRecorder) toSummary(elapsed time.Duration, cfg runConfig, data datasetInfo) loadSummary {
	summary := loadSummary{
		GeneratedAt: time.Now(),
		BaseURL:     cfg.BaseURL,
		DurationSec: elapsed.Seconds(),
		TargetRPS:   cfg.RPS,
		Dataset:     data,
		Totals: totalsSummary{
			Requested: m.total,
			Succeeded: m.success,
			Failed:    m.failures,
		},
		UniqueETags: len(m.etags),
		Errors:      append([]string(nil), m.errors...),
	}
	if elapsed > 0 {
		summary.ActualRPS = float64(m.success) / elapsed.Seconds()
	}
	summary.Latency = calcLatency(m.durations)
	return summary
}

func calcLatency(data []time.Duration) latencySummary {
	if len(data) == 0 {
		return latencySummary{}
	}
	samples := append([]time.Duration(nil), data...)
	sort.Slice(samples, func(i, j int) bool {
		return samples[i] < samples[j]
	})

	var total time.Duration
	for _, d := range samples {
		total += d
	}
	avg := float64(total.Microseconds()) / float64(len(samples))
	maxDur := samples[len(samples)-1]
	p95 := samples[int(math.Ceil(0.95*float64(len(samples))))-1]
	return latencySummary{
		Samples:   len(samples),
		AverageMs: avg / 1000.0,
		P95Ms:     float64(p95.Microseconds()) / 1000.0,
		MaxMs:     float64(maxDur.Microseconds()) / 1000.0,
	}
}

func main() {
	cfg := parseFlags()
	if err := run(cfg); err != nil {
		log.Fatalf("load test failed: %v", err)
	}
}

func parseFlags() runConfig {
	var cfg runConfig
	flag.StringVar(&cfg.BaseURL, "base-url", "http://localhost:8080", "base URL of the running service")
	flag.IntVar(&cfg.ProjectCount, "projects", 5, "number of projects to seed")
	flag.IntVar(&cfg.CandidateCount, "candidates", 500, "number of candidates to seed")
	flag.Float64Var(&cfg.RPS, "rps", 10, "target requests per second")
	flag.DurationVar(&cfg.Duration, "duration", 30*time.Second, "load duration (e.g. 45s, 1m)")
	flag.DurationVar(&cfg.RequestTimeout, "request-timeout", 2*time.Second, "HTTP request timeout")
	flag.DurationVar(&cfg.HealthTimeout, "health-timeout", 30*time.Second, "maximum wait for /health readiness")
	flag.StringVar(&cfg.ReportPath, "report", "tests/load/results/latest.json", "path to store structured results")
	flag.StringVar(&cfg.DatasetPrefix, "dataset-prefix", "load", "prefix for generated project names")

	flag.StringVar(&cfg.DBHost, "db-host", "localhost", "PostgreSQL host")
	flag.StringVar(&cfg.DBPort, "db-port", "5432", "PostgreSQL port")
	flag.StringVar(&cfg.DBUser, "db-user", "postgres", "PostgreSQL user")
	flag.StringVar(&cfg.DBPassword, "db-password", "postgres", "PostgreSQL password")
	flag.StringVar(&cfg.DBName, "db-name", "recruitment", "PostgreSQL database name")
	flag.Parse()
	return cfg
}

func run(cfg runConfig) error {
	ctx := context.Background()

	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	data, err := seedDataset(ctx, pool, cfg)
	if err != nil {
		return fmt.Errorf("seed dataset: %w", err)
	}
	log.Printf("seeded %d projects and %d candidates", data.ProjectCount, data.CandidateCount)

	client := &http.Client{Timeout: cfg.RequestTimeout}
	if err := waitForHealth(client, cfg); err != nil {
		return err
	}

	recorder := newMetricRecorder()
	started := time.Now()
	fireRequests(client, cfg, recorder)
	elapsed := time.Since(started)

	summary := recorder.toSummary(elapsed, cfg, data)
	if err := writeReport(cfg.ReportPath, summary); err != nil {
		return err
	}

	log.Printf("done: %d requested, %d succeeded, %d failed, actual rps %.1f, p95 %.1fms",
		summary.Totals.Requested, summary.Totals.Succeeded, summary.Totals.Failed,
		summary.ActualRPS, summary.Latency.P95Ms)
	return nil
}

func connect(ctx context.Context, cfg runConfig) (*pgxpool.Pool, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// seedDataset наполняет таблицы projects, config_settings и candidates.
// Кандидаты распределяются по проектам случайно; часть попадает в исключённый
// центр (id 1) и не должна учитываться сервисом.
func seedDataset(ctx context.Context, pool *pgxpool.Pool, cfg runConfig) (datasetInfo, error) {
	data := datasetInfo{
		Prefix:         cfg.DatasetPrefix,
		ProjectCount:   cfg.ProjectCount,
		CandidateCount: cfg.CandidateCount,
	}

	const upsertSetting = `
	INSERT INTO config_settings (name, value)
	VALUES ($1, $2)
	ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := pool.Exec(ctx, upsertSetting, "recruitmentTarget", fmt.Sprintf("%d", cfg.CandidateCount)); err != nil {
		return data, fmt.Errorf("upsert recruitmentTarget: %w", err)
	}

	const upsertProject = `
	INSERT INTO projects (project_id, name, recruitment_target)
	VALUES ($1, $2, $3)
	ON CONFLICT (project_id) DO UPDATE
	SET name = EXCLUDED.name,
		recruitment_target = EXCLUDED.recruitment_target
	`
	for i := 1; i <= cfg.ProjectCount; i++ {
		name := fmt.Sprintf("%s-project-%d", cfg.DatasetPrefix, i)
		var target *int
		// У каждого второго проекта задан целевой набор.
		if i%2 == 0 {
			t := cfg.CandidateCount / cfg.ProjectCount
			target = &t
		}
		if _, err := pool.Exec(ctx, upsertProject, i, name, target); err != nil {
			return data, fmt.Errorf("upsert project %d: %w", i, err)
		}
	}

	const insertCandidate = `
	INSERT INTO candidates (candidate_id, sex, active, entity_type, registration_center_id, registration_project_id)
	VALUES ($1, $2, TRUE, 'human', $3, $4)
	ON CONFLICT (candidate_id) DO NOTHING
	`
	sexes := []string{"Female", "Male"}
	for i := 0; i < cfg.CandidateCount; i++ {
		candidateID := fmt.Sprintf("%s-cand-%06d", cfg.DatasetPrefix, i)
		sex := sexes[rand.Intn(len(sexes))]
		centerID := 2 + rand.Intn(3)
		if i%20 == 0 {
			centerID = 1 // исключённый центр
		}
		projectID := 1 + rand.Intn(cfg.ProjectCount)
		if _, err := pool.Exec(ctx, insertCandidate, candidateID, sex, centerID, projectID); err != nil {
			return data, fmt.Errorf("insert candidate %s: %w", candidateID, err)
		}
	}

	return data, nil
}

func waitForHealth(client *http.Client, cfg runConfig) error {
	deadline := time.Now().Add(cfg.HealthTimeout)
	for time.Now().Before(deadline) {
		resp, err := client.Get(cfg.BaseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("service at %s did not become healthy within %s", cfg.BaseURL, cfg.HealthTimeout)
}

// fireRequests шлёт GET-запросы статистики с заданной частотой до конца окна.
func fireRequests(client *http.Client, cfg runConfig, recorder *metricRecorder) {
	interval := time.Duration(float64(time.Second) / cfg.RPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	deadline := time.Now().Add(cfg.Duration)
	var wg sync.WaitGroup
	for time.Now().Before(deadline) {
		<-ticker.C
		wg.Add(1)
		go func() {
			defer wg.Done()
			started := time.Now()
			etag, err := fetchStatistics(client, cfg)
			recorder.record(time.Since(started), etag, err)
		}()
	}
	wg.Wait()
}

func fetchStatistics(client *http.Client, cfg runConfig) (string, error) {
	resp, err := client.Get(cfg.BaseURL + "/statistics/recruitment")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	etag := resp.Header.Get("ETag")
	if etag == "" {
		return "", fmt.Errorf("response without ETag header")
	}
	return etag, nil
}

func writeReport(path string, summary loadSummary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
