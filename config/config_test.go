package config

import (
	"os"
	"testing"
)

func TestValidateAndAddDefaults(t *testing.T) {
	cnf := Configuration{
		ProjectName: "",
		DataSource: DataSourceConfig{
			Dns: "",
		},
		Redis: RedisConfig{
			Dns: "localhost:6379",
		},
	}

	err := cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "data source DNS is required" {
		t.Errorf("Expected data source DNS required error, got %v", err)
	}

	cnf = Configuration{
		ProjectName: "",
		DataSource: DataSourceConfig{
			Dns: "postgres://localhost:5432",
		},
		Redis: RedisConfig{
			Dns: "",
		},
	}

	err = cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "redis DNS is required" {
		t.Errorf("Expected redis DNS required error, got %v", err)
	}

	cnf = Configuration{
		ProjectName: "Test Project",
		DataSource: DataSourceConfig{
			Dns: "some-dns",
		},
		Redis: RedisConfig{
			Dns: "localhost:6379",
		},
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Matching defaults must match the legacy constants.
	if *cnf.Matching.Threshold != 0.3 {
		t.Errorf("Expected default threshold 0.3, got %v", *cnf.Matching.Threshold)
	}
	if *cnf.Matching.FormBonus != 0.2 || *cnf.Matching.DosageBonus != 0.2 || *cnf.Matching.ManufacturerBonus != 0.2 {
		t.Errorf("Expected default bonuses of 0.2")
	}
	if *cnf.Matching.MaxSuggestions != 5 {
		t.Errorf("Expected default max suggestions 5, got %d", *cnf.Matching.MaxSuggestions)
	}
	if cnf.Matching.Metric != "dice" {
		t.Errorf("Expected default metric dice, got %s", cnf.Matching.Metric)
	}
	if *cnf.Matching.Workers < 1 {
		t.Errorf("Expected at least one worker, got %d", *cnf.Matching.Workers)
	}

	// Test default port setting
	cnf.Server.Port = ""
	err = cnf.validateAndAddDefaults()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if cnf.Server.Port != DEFAULT_PORT {
		t.Errorf("Expected default port %s, got %s", DEFAULT_PORT, cnf.Server.Port)
	}
}

func TestValidateMatchingBounds(t *testing.T) {
	badThreshold := 1.5
	cnf := Configuration{
		DataSource: DataSourceConfig{Dns: "some-dns"},
		Redis:      RedisConfig{Dns: "localhost:6379"},
		Matching:   MatchingConfig{Threshold: &badThreshold},
	}
	if err := cnf.validateAndAddDefaults(); err == nil {
		t.Error("Expected error for threshold outside [0, 1)")
	}

	cnf = Configuration{
		DataSource: DataSourceConfig{Dns: "some-dns"},
		Redis:      RedisConfig{Dns: "localhost:6379"},
		Matching:   MatchingConfig{Metric: "soundex"},
	}
	if err := cnf.validateAndAddDefaults(); err == nil {
		t.Error("Expected error for unknown metric")
	}
}

func TestInitConfigFromEnv(t *testing.T) {
	os.Setenv("RECON_DATA_SOURCE_DNS", "postgres://localhost:5432/recon")
	os.Setenv("RECON_REDIS_DNS", "localhost:6379")
	os.Setenv("RECON_MATCHING_THRESHOLD", "0.5")
	defer func() {
		os.Unsetenv("RECON_DATA_SOURCE_DNS")
		os.Unsetenv("RECON_REDIS_DNS")
		os.Unsetenv("RECON_MATCHING_THRESHOLD")
	}()

	if err := InitConfig("nonexistent.json"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	cnf, err := Fetch()
	if err != nil {
		t.Fatalf("Expected config to be loaded, got %v", err)
	}
	if cnf.DataSource.Dns != "postgres://localhost:5432/recon" {
		t.Errorf("Expected env override for data source DNS, got %s", cnf.DataSource.Dns)
	}
	if *cnf.Matching.Threshold != 0.5 {
		t.Errorf("Expected env override for threshold, got %v", *cnf.Matching.Threshold)
	}
}
