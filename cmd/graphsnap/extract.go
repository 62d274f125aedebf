package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ironsheep/graphsnap/internal/config"
	"github.com/ironsheep/graphsnap/internal/export"
	"github.com/ironsheep/graphsnap/internal/extractor"
	"github.com/ironsheep/graphsnap/internal/graph"
	"github.com/ironsheep/graphsnap/internal/logging"
	"github.com/ironsheep/graphsnap/internal/metrics"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

func newExtractCmd() *cobra.Command {
	var (
		flagOutput      string
		flagFormat      string
		flagNoCache     bool
		flagNoOCR       bool
		flagMetricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "extract [image or directory]...",
		Short: "Extract graphs from images",
		Long: "extract runs the detection pipeline on each image argument.\n" +
			"Directory arguments are scanned (non-recursively) for image files.\n" +
			"Results are written to the output directory as\n" +
			"<id>_<image-name>.<format>, or to stdout with --output -.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New("cli")

			cfg := config.Default()
			if flagConfig != "" {
				var err error
				if cfg, err = config.Load(flagConfig); err != nil {
					return err
				}
			}
			cfg.ApplyEnv()
			if flagNoCache {
				cfg.CachingEnabled = false
			}
			if flagNoOCR {
				cfg.OCREnabled = false
			}

			var m *metrics.Metrics
			if flagMetricsAddr != "" {
				reg := prometheus.NewRegistry()
				m = metrics.New(reg)
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
				go func() {
					if err := http.ListenAndServe(flagMetricsAddr, mux); err != nil {
						log.Error("metrics server failed", "error", err)
					}
				}()
			}

			ctx := cmd.Context()
			det, err := extractor.New(ctx, cfg, m)
			if err != nil {
				return err
			}
			defer det.Close()

			paths, err := collectImages(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no image files found")
			}

			var failed int
			for _, path := range paths {
				result, err := det.Detect(ctx, path)
				if err != nil {
					log.Error("extraction failed", "path", path, "error", err)
					failed++
					continue
				}
				if err := writeResult(flagOutput, flagFormat, path, result); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d images failed", failed, len(paths))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagOutput, "output", "o", ".", "output directory, or - for stdout")
	cmd.Flags().StringVarP(&flagFormat, "format", "f", "json", "output format (json, dot)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "disable result caching")
	cmd.Flags().BoolVar(&flagNoOCR, "no-ocr", false, "disable text recognition")
	cmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

// collectImages expands directory arguments into their image files and
// passes file arguments through unchanged.
func collectImages(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	return paths, nil
}

func writeResult(outDir, format, imagePath string, result *graph.DetectionResult) error {
	if outDir == "-" {
		return export.Write(os.Stdout, result, format)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	name := fmt.Sprintf("%s_%s.%s", uuid.NewString(), base, format)
	f, err := os.Create(filepath.Join(outDir, name))
	if err != nil {
		return err
	}
	if err := export.Write(f, result, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
