package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"contour2dxf/internal/batch"
	"contour2dxf/internal/config"
	"contour2dxf/internal/opencv/memory"
	"contour2dxf/internal/processing"
)

var (
	outDir    = flag.String("out", "", "directory for .dxf output (default: next to each input)")
	stagesDir = flag.String("stages", "", "also write the four preview stages as PNG into this directory")
	jobs      = flag.Int("jobs", runtime.NumCPU(), "files processed concurrently")
	watch     = flag.Bool("watch", false, "after the first pass, re-export whenever an input changes")
	preset    = flag.String("preset", "", "TOML or YAML preset (default: $"+config.EnvPreset+")")
	envFile   = flag.String("env", ".env", "dotenv file loaded before anything else")

	blurKernel = flag.Int("blur-kernel", 0, "Gaussian kernel size, odd")
	blurSigma  = flag.Float64("blur-sigma", 0, "Gaussian sigma, 0 derives it from the kernel")
	canny1     = flag.Int("canny1", 0, "Canny lower threshold")
	canny2     = flag.Int("canny2", 0, "Canny upper threshold")
	closing1   = flag.Int("closing1", 0, "first closing kernel size")
	closing2   = flag.Int("closing2", 0, "second closing kernel size")
	window     = flag.Int("window", 0, "smoothing window size")
	color      = flag.String("color", "", "overlay colour for stage dumps, e.g. #00ff00")
	thickness  = flag.Int("thickness", 0, "overlay thickness for stage dumps")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] image...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := config.LoadEnv(*envFile); err != nil {
		log.Fatalf("failed to load %s: %v", *envFile, err)
	}
	appLogger := config.NewLoggerFromEnv(os.Stderr)

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	p, err := resolvePreset()
	if err != nil {
		log.Fatal(err)
	}

	tracker := memory.NewTracker()
	runner, err := batch.NewRunner(processing.NewOpenCVBackend(tracker), batch.Options{
		OutDir:     *outDir,
		StagesDir:  *stagesDir,
		Jobs:       *jobs,
		Parameters: p.Parameters,
		Style:      p.Style,
	}, appLogger)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	summary, err := runner.Run(ctx, paths)
	if err != nil {
		log.Fatal(err)
	}
	for _, res := range summary.Results {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s\n", res.Err)
			continue
		}
		fmt.Printf("%s -> %s (%d points, area %.0f px)\n", res.Input, res.Output, res.Points, res.Area)
	}

	if *watch {
		if err := runner.Watch(ctx, paths); err != nil {
			log.Fatal(err)
		}
		return
	}

	if stats := tracker.GetStats(); stats.ActiveMats != 0 {
		appLogger.Warning("Batch", "native Mats not released", map[string]interface{}{"active": stats.ActiveMats})
	}
	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// resolvePreset layers the preset file and then any explicitly set flags
// over the defaults.
func resolvePreset() (*config.Preset, error) {
	p := config.DefaultPreset()
	path := *preset
	if path == "" {
		path = config.PresetPathFromEnv()
	}
	if path != "" {
		loaded, err := config.LoadPreset(path)
		if err != nil {
			return nil, err
		}
		p = *loaded
	}

	var colorErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "blur-kernel":
			p.Parameters.BlurKernelSize = *blurKernel
		case "blur-sigma":
			p.Parameters.BlurSigma = *blurSigma
		case "canny1":
			p.Parameters.CannyThreshold1 = *canny1
		case "canny2":
			p.Parameters.CannyThreshold2 = *canny2
		case "closing1":
			p.Parameters.Closing1Kernel = *closing1
		case "closing2":
			p.Parameters.Closing2Kernel = *closing2
		case "window":
			p.Parameters.SmoothWindowSize = *window
		case "thickness":
			p.Style.Thickness = *thickness
		case "color":
			p.Style.Color, colorErr = config.ParseColor(*color)
		}
	})
	if colorErr != nil {
		return nil, colorErr
	}
	if err := p.Parameters.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
