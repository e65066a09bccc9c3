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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Djamyahia/pharmarecon/api"
	"github.com/Djamyahia/pharmarecon/config"
)

// serveHTTP starts the reconciliation HTTP server on the configured port.
func serveHTTP(r *gin.Engine, conf config.ServerConfig) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", conf.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Starting server on http://localhost:%s", conf.Port)
	return server.ListenAndServe()
}

// serverCommands returns the command that runs the API server.
func serverCommands(app *appInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start the reconciliation server",
		Run: func(cmd *cobra.Command, args []string) {
			router := api.NewAPI(app.engine).Router()

			cfg, err := config.Fetch()
			if err != nil {
				log.Fatal(err)
			}

			if err := serveHTTP(router, cfg.Server); err != nil {
				log.Fatalf("Error starting server: %v", err)
			}
		},
	}

	return cmd
}
