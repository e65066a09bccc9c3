/*
Copyright 2025 PharmaRecon Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5401"

	// Matching defaults mirror the constants the legacy import handler
	// hard-coded, so a migration keeps identical behaviour unless tuned.
	DefaultThreshold         = 0.3
	DefaultFormBonus         = 0.2
	DefaultDosageBonus       = 0.2
	DefaultManufacturerBonus = 0.2
	DefaultMaxSuggestions    = 5
	DefaultMetric            = "dice"
	DefaultCatalogCacheTTL   = 300 // seconds
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SecretKey string `json:"secret_key" envconfig:"RECON_SERVER_SECRET_KEY"`
	Secure    bool   `json:"secure" envconfig:"RECON_SERVER_SECURE"`
	Port      string `json:"port" envconfig:"RECON_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"RECON_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"RECON_REDIS_DNS"`
}

// MatchingConfig exposes the fuzzy-matching knobs as tunable configuration.
// Threshold is an exclusive lower bound: candidates scoring at or below it
// are discarded. Metric selects the base string-similarity metric, either
// "dice" (Sorensen-Dice bigram overlap) or "levenshtein" (normalized edit
// distance). Both return values in [0, 1].
type MatchingConfig struct {
	Threshold         *float64 `json:"threshold" envconfig:"RECON_MATCHING_THRESHOLD"`
	FormBonus         *float64 `json:"form_bonus" envconfig:"RECON_MATCHING_FORM_BONUS"`
	DosageBonus       *float64 `json:"dosage_bonus" envconfig:"RECON_MATCHING_DOSAGE_BONUS"`
	ManufacturerBonus *float64 `json:"manufacturer_bonus" envconfig:"RECON_MATCHING_MANUFACTURER_BONUS"`
	MaxSuggestions    *int     `json:"max_suggestions" envconfig:"RECON_MATCHING_MAX_SUGGESTIONS"`
	Metric            string   `json:"metric" envconfig:"RECON_MATCHING_METRIC"`
	EnableBlocking    bool     `json:"enable_blocking" envconfig:"RECON_MATCHING_ENABLE_BLOCKING"`
	Workers           *int     `json:"workers" envconfig:"RECON_MATCHING_WORKERS"`
}

type CatalogConfig struct {
	CacheTTLSec *int `json:"cache_ttl_sec" envconfig:"RECON_CATALOG_CACHE_TTL_SEC"`
}

type Configuration struct {
	ProjectName string           `json:"project_name" envconfig:"RECON_PROJECT_NAME"`
	Server      ServerConfig     `json:"server"`
	DataSource  DataSourceConfig `json:"data_source"`
	Redis       RedisConfig      `json:"redis"`
	Matching    MatchingConfig   `json:"matching"`
	Catalog     CatalogConfig    `json:"catalog"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("recon", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called pharmarecon.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "PharmaRecon Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	return cnf.Matching.validateAndAddDefaults(&cnf.Catalog)
}

func (m *MatchingConfig) validateAndAddDefaults(catalog *CatalogConfig) error {
	if m.Threshold == nil {
		threshold := DefaultThreshold
		m.Threshold = &threshold
	}
	if *m.Threshold < 0 || *m.Threshold >= 1 {
		return errors.New("matching threshold must be in [0, 1)")
	}

	if m.FormBonus == nil {
		bonus := DefaultFormBonus
		m.FormBonus = &bonus
	}
	if m.DosageBonus == nil {
		bonus := DefaultDosageBonus
		m.DosageBonus = &bonus
	}
	if m.ManufacturerBonus == nil {
		bonus := DefaultManufacturerBonus
		m.ManufacturerBonus = &bonus
	}
	if *m.FormBonus < 0 || *m.DosageBonus < 0 || *m.ManufacturerBonus < 0 {
		return errors.New("matching bonuses must be non-negative")
	}

	if m.MaxSuggestions == nil {
		maxSuggestions := DefaultMaxSuggestions
		m.MaxSuggestions = &maxSuggestions
	}
	if *m.MaxSuggestions < 1 {
		return errors.New("max suggestions must be at least 1")
	}

	if m.Metric == "" {
		m.Metric = DefaultMetric
	}
	if m.Metric != "dice" && m.Metric != "levenshtein" {
		return errors.New("matching metric must be 'dice' or 'levenshtein'")
	}

	if m.Workers == nil {
		workers := runtime.NumCPU()
		m.Workers = &workers
	}
	if *m.Workers < 1 {
		return errors.New("matching workers must be at least 1")
	}

	if catalog.CacheTTLSec == nil {
		ttl := DefaultCatalogCacheTTL
		catalog.CacheTTLSec = &ttl
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	if err := mockConfig.validateAndAddDefaults(); err != nil {
		log.Printf("Warning: mock config validation failed: %v", err)
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
