// Command render renders a single Bokeh chart JSON document to PNG.
//
// The chart JSON is the output of bokeh.embed.json_item. By default the
// PNG data URL is printed to stdout; -out writes decoded PNG bytes to a
// file instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dgnsrekt/bokeh_render/internal/bokeh"
	"github.com/dgnsrekt/bokeh_render/internal/browser"
	"github.com/dgnsrekt/bokeh_render/internal/config"
	"github.com/dgnsrekt/bokeh_render/internal/dataurl"
	"github.com/dgnsrekt/bokeh_render/internal/render"
)

func main() {
	input := flag.String("in", "-", "chart JSON file, or - for stdin")
	output := flag.String("out", "", "output PNG file; empty prints the data URL to stdout")
	dpi := flag.Int("dpi", 0, "target DPI, 0 selects the 96 DPI default")
	resourceKind := flag.String("resource", "cdn", "BokehJS source: cdn|local_folder|local_file")
	version := flag.String("bokeh-version", "", "BokehJS version for CDN resources")
	path := flag.String("resource-path", "", "directory or file path for local resources")
	timeout := flag.Duration("timeout", 0, "render timeout, 0 uses the configured default")
	noLaunch := flag.Bool("no-launch", false, "do not launch a browser, attach to a running one")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*input, *output, *dpi, *resourceKind, *version, *path, *timeout, *noLaunch); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}
}

func run(input, output string, dpi int, resourceKind, version, path string, timeout time.Duration, noLaunch bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if timeout == 0 {
		timeout = time.Duration(cfg.RenderTimeoutMS) * time.Millisecond
	}

	chartJSON, err := readChart(input)
	if err != nil {
		return err
	}

	if !noLaunch && cfg.LaunchBrowser {
		launcher := browser.NewLauncher(browser.Config{
			CDPAddress: cfg.CDPAddress,
			CDPPort:    cfg.CDPPort,
			ProfileDir: cfg.ProfileDir,
			WindowSize: cfg.WindowSize,
		})
		if err := launcher.Launch(context.Background()); err != nil {
			return err
		}
		defer launcher.Stop()
	}

	renderer := render.NewRenderer(cfg.CDPURL(), timeout)
	defer renderer.Close()

	result, err := renderer.Render(context.Background(), render.Request{
		ChartJSON: string(chartJSON),
		DPI:       dpi,
		Resource: bokeh.Resource{
			Kind:    bokeh.ResourceKind(resourceKind),
			Version: version,
			Path:    path,
		},
	})
	if err != nil {
		return err
	}

	if output == "" {
		_, err = fmt.Println(result.DataURL)
		return err
	}

	data, _, _, err := dataurl.DecodePNG(result.DataURL)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}
	slog.Info("wrote render", "file", output, "width", result.Width, "height", result.Height, "dpi", result.DPI)
	return nil
}

func readChart(input string) ([]byte, error) {
	if input == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(input)
}
