package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// DBCheckReport is the output of the check-db command.
type DBCheckReport struct {
	Driver    string    `json:"driver"`
	Database  string    `json:"database,omitempty"`
	Host      string    `json:"host,omitempty"`
	Port      int       `json:"port,omitempty"`
	Connected bool      `json:"connected"`
	Migrated  bool      `json:"migrated"`
	LatencyMS float64   `json:"latency_ms"`
	Users     *int64    `json:"users,omitempty"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// CheckDatabase connects to the configured user store, applies migrations
// and counts users, writing a JSON report to out. It returns an error when
// any step fails; the report is written either way.
func CheckDatabase(ctx context.Context, cfg Config, out io.Writer) error {
	target := userStoreTarget(cfg)
	report := DBCheckReport{
		Driver:    target.Driver,
		Database:  target.Database,
		Host:      target.Host,
		Port:      target.Port,
		CheckedAt: time.Now().UTC(),
	}

	err := checkDatabase(ctx, cfg, &report)
	if err != nil {
		report.Error = err.Error()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(report); encErr != nil {
		return fmt.Errorf("write report: %w", encErr)
	}
	return err
}

func checkDatabase(ctx context.Context, cfg Config, report *DBCheckReport) error {
	start := time.Now()
	st, err := openUserStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer st.Close()

	report.Connected = true
	report.LatencyMS = float64(time.Since(start).Microseconds()) / 1000

	if err := st.ApplyMigrations(); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	report.Migrated = true

	ctx, cancel := context.WithTimeout(ctx, connectTimeout(cfg))
	defer cancel()

	n, err := st.Users().CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	report.Users = &n
	return nil
}
