package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/esimov/dxhost"
	"github.com/esimov/dxhost/gfx/d3d11"
	"github.com/esimov/dxhost/utils"
	"golang.org/x/term"
)

const HelpBanner = `
┌┬┐─┐ ┬┬ ┬┌─┐┌─┐┌┬┐
 │││┌┴┬┘├─┤│ │└─┐ │
─┴┘┴ └─┴ ┴└─┘└─┘ ┴

Direct3D 11 rendering host.
    Version: %s

`

// defaultConfig is read when present, but unlike an explicit -conf it may
// be missing.
const defaultConfig = "dxhost.toml"

// Version indicates the current build version.
var Version string

var (
	// Flags
	confPath    = flag.String("conf", defaultConfig, "TOML configuration file")
	title       = flag.String("title", "", "Window title")
	width       = flag.Int("width", 0, "Client area width")
	height      = flag.Int("height", 0, "Client area height")
	debug       = flag.Bool("debug", false, "Enable the debug layer and per frame diagnostics")
	shaderDir   = flag.String("shaders", "", "Shader directory, relative to the executable")
	snapshotDir = flag.String("snapshots", "", "Directory where F12 snapshots are saved")
	scale       = flag.Float64("scale", 0, "Snapshot scale factor")
	format      = flag.String("format", "", "Snapshot format: png, jpg or bmp")
)

// The window, its message queue and the device context all belong to the
// main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf(utils.DecorateText("Invalid configuration: %v", utils.ErrorMessage), err)
	}
	os.Exit(run(cfg))
}

// loadConfig reads the configuration file and applies the flags set on the
// command line over it.
func loadConfig() (dxhost.Config, error) {
	cfg, err := dxhost.LoadConfig(*confPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || isFlagSet("conf") {
			return cfg, err
		}
		cfg = dxhost.DefaultConfig()
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			cfg.Title = *title
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "debug":
			cfg.Debug = *debug
		case "shaders":
			cfg.ShaderDir = *shaderDir
		case "snapshots":
			cfg.SnapshotDir = *snapshotDir
		case "scale":
			cfg.SnapshotScale = *scale
		case "format":
			cfg.SnapshotFormat = *format
		}
	})
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if !filepath.IsAbs(cfg.ShaderDir) {
		exe, err := os.Executable()
		if err != nil {
			return cfg, fmt.Errorf("unable to locate the executable: %w", err)
		}
		cfg.ShaderDir = filepath.Join(filepath.Dir(exe), cfg.ShaderDir)
	}
	return cfg, nil
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// run creates the window and the device, drives the frame loop and returns
// the process exit code.
func run(cfg dxhost.Config) int {
	reporter := &dxhost.Reporter{Dialog: dxhost.NewDialog()}

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ DXHOST", utils.StatusMessage),
		utils.DecorateText("is creating the device...", utils.DefaultMessage))
	spinner := utils.NewSpinner(os.Stderr, spinnerText, 100*time.Millisecond)
	spinner.StopMsg = fmt.Sprintf("%s %s\n",
		utils.DecorateText("⚡ DXHOST", utils.StatusMessage),
		utils.DecorateText("is creating the device... ✔", utils.DefaultMessage))
	if term.IsTerminal(int(os.Stderr.Fd())) {
		spinner.Start()
	}

	// Stop the progress indicator if the setup is interrupted.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		spinner.Stop()
		os.Exit(1)
	}()

	app, err := setup(cfg)
	signal.Stop(signalChan)
	spinner.Stop()
	if err != nil {
		return reporter.Report(err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Println(utils.DecorateText(err.Error(), utils.ErrorMessage))
		}
	}()

	code, err := app.Run()
	if err != nil {
		reporter.Diagnostics = app.Graphics().Diagnostics()
		return reporter.Report(err)
	}
	return code
}

func setup(cfg dxhost.Config) (*dxhost.App, error) {
	driver, err := d3d11.NewDriver()
	if err != nil {
		return nil, err
	}
	win, err := dxhost.NewWindow(cfg)
	if err != nil {
		return nil, err
	}
	app, err := dxhost.New(cfg, win, driver, nil)
	if err != nil {
		win.Close()
		return nil, err
	}
	return app, nil
}
