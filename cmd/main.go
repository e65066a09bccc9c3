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

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	pharmarecon "github.com/Djamyahia/pharmarecon"
	"github.com/Djamyahia/pharmarecon/config"
	"github.com/Djamyahia/pharmarecon/database"
	"github.com/Djamyahia/pharmarecon/internal/cache"
)

// appInstance holds the engine and configuration shared by subcommands.
type appInstance struct {
	engine *pharmarecon.Reconciler
	cnf    *config.Configuration
}

type cli struct {
	cmd *cobra.Command
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads configuration and wires the engine before any subcommand runs.
func preRun(app *appInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		configFile, err := cmd.Flags().GetString("config")
		if err != nil {
			configFile = "pharmarecon.json"
		}

		if err := config.InitConfig(configFile); err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		engine, err := setupEngine(cnf)
		if err != nil {
			log.Fatal(err)
		}

		app.engine = engine
		app.cnf = cnf
		return nil
	}
}

// setupEngine wires the datasource and the catalog cache into a Reconciler.
// The cache is optional; startup proceeds without it.
func setupEngine(cfg *config.Configuration) (*pharmarecon.Reconciler, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	catalogCache, err := cache.NewCatalogCache()
	if err != nil {
		logrus.WithError(err).Warn("catalog cache unavailable, sessions will fetch the catalog from the datasource")
		catalogCache = nil
	}

	engine, err := pharmarecon.NewReconciler(db, catalogCache)
	if err != nil {
		return nil, fmt.Errorf("error creating reconciler: %v", err)
	}
	return engine, nil
}

func newCLI() *cli {
	var configFile string
	app := &appInstance{}

	var rootCmd = &cobra.Command{
		Use:   "pharmarecon",
		Short: "Supplier stock import reconciliation engine",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./pharmarecon.json", "Configuration file for the reconciliation server")
	rootCmd.PersistentPreRunE = preRun(app)

	rootCmd.AddCommand(serverCommands(app))

	return &cli{cmd: rootCmd}
}

func (c cli) executeCLI() {
	if err := c.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	newCLI().executeCLI()
}
