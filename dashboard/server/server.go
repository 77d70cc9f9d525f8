/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ilhamster/litviz/dashboard/config"
	datasource "github.com/ilhamster/litviz/dashboard/data_source"
	"github.com/ilhamster/litviz/dashboard/logger"
	"github.com/ilhamster/litviz/dashboard/service"
)

const shutdownTimeout = 10 * time.Second

var (
	cfgFile  string
	port     int
	dataRoot string
	baseURL  string
)

var rootCmd = &cobra.Command{
	Use:   "litviz",
	Short: "Serves the Canadian literature dashboard",
	Long: `litviz serves animated charts of a corpus of Canadian literature
(1769-1964): data queries, SVG renderings and ranking playback streams.`,
	SilenceUsage: true,
}

// loadConfig loads .env files, then the configuration file, then applies
// flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("data-root") {
		cfg.DataRoot = dataRoot
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = baseURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
		svc, err := service.New(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to create litviz service: %w", err)
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           svc.Router(),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		errs := make(chan error, 1)
		go func() {
			errs <- srv.ListenAndServe()
		}()
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "localhost"
		}
		// Provide OSC 8 (https://en.wikipedia.org/wiki/ANSI_escape_code#OSC) link for
		// compatible terminals.
		fmt.Printf("Serving litviz at \x1B]8;;http://%[1]s:%[2]d\x07http://%[1]s:%[2]d\x1B]8;;\x07\n", hostname, cfg.Port)
		log.Info("serving", "port", cfg.Port, "data_root", cfg.DataRoot, "base_url", cfg.BaseURL)
		select {
		case err := <-errs:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

var (
	renderOut  string
	renderOpts datasource.Options
	renderAt   time.Duration
)

var renderCmd = &cobra.Command{
	Use:   "render <chart-id>",
	Short: "Render a chart as SVG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
		fetcher, err := service.NewFetcher(cfg)
		if err != nil {
			return err
		}
		ds, err := datasource.New(cfg.CacheSize, fetcher,
			datasource.WithLogger(log),
			datasource.WithRegions(cfg.TopologyObject, cfg.ExcludedRegions),
		)
		if err != nil {
			return err
		}
		chart, err := ds.Chart(cmd.Context(), args[0], renderOpts)
		if err != nil {
			return err
		}
		defer chart.Unmount()
		for _, st := range ds.Statuses() {
			if !st.Loaded {
				return fmt.Errorf("failed to load %s: %s", st.Path, st.Err)
			}
		}
		sc := chart.Scene()
		at := sc.Duration()
		if cmd.Flags().Changed("at") {
			at = renderAt
		}
		var w io.Writer = os.Stdout
		if renderOut != "" {
			f, err := os.Create(renderOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return sc.WriteSVG(w, at)
	},
}

var configCmd = &cobra.Command{
	Use:   "config <path>",
	Short: "Write the effective configuration as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Save(args[0]); err != nil {
			return err
		}
		slog.Info("wrote configuration", "path", args[0])
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "litviz.yaml", "config file path")
	pf.IntVar(&port, "port", 7410, "port to serve litviz clients on")
	pf.StringVar(&dataRoot, "data-root", "", "directory datasets are read from")
	pf.StringVar(&baseURL, "base-url", "", "URL datasets are fetched from, overriding --data-root")

	rf := renderCmd.Flags()
	rf.StringVarP(&renderOut, "out", "o", "", "output file; stdout if unset")
	rf.IntVar(&renderOpts.Size.Width, "width", 0, "container width")
	rf.IntVar(&renderOpts.Size.Height, "height", 0, "container height")
	rf.StringVar(&renderOpts.Mode, "mode", "", "bar/pie chart mode, bar or pie")
	rf.StringVar(&renderOpts.Region, "region", "", "bar/pie chart region")
	rf.IntVar(&renderOpts.Snapshot, "snapshot", 0, "ranking chart snapshot")
	rf.Float64Var(&renderOpts.Zoom, "zoom", 0, "zoom factor")
	rf.BoolVar(&renderOpts.Accumulate, "accumulate", false, "rank running totals in a ranking chart")
	rf.DurationVar(&renderAt, "at", 0, "animation time to render; the end of all animations if unset")

	rootCmd.AddCommand(serveCmd, renderCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
