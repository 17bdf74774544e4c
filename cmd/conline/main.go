// Package main is a small interactive demo of the conline session.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/dshills/conline"
	"github.com/dshills/conline/internal/config"
	"github.com/dshills/conline/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: conline requires a terminal")
		return 1
	}

	logger, cleanup, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log file: %v\n", err)
		return 1
	}
	defer cleanup()

	session, err := conline.Start(
		conline.WithPrompt(cfg.Prompt),
		conline.WithBusCapacity(cfg.BusCapacity),
		conline.WithCommittedEcho(cfg.EchoCommitted),
		conline.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to start session: %v\n", err)
		return 1
	}
	defer session.Close()

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		session.Close()
	}()

	ctx := context.Background()

	// A background writer running alongside the input loop, to show
	// that the input row survives concurrent scrollback writes.
	go heartbeat(ctx, session)

	_ = session.WriteLine(ctx, "conline demo. Type a line and press Enter; \"quit\" exits.")

	for {
		line, err := session.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, conline.ErrClosed) {
				return 0
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if line == "quit" {
			session.Close()
			session.Wait()
			return 0
		}
		if err := session.WriteLine(ctx, "Line: "+line); err != nil {
			if errors.Is(err, conline.ErrClosed) {
				return 0
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
}

// heartbeat writes a timestamped line every few seconds until the
// session shuts down.
func heartbeat(ctx context.Context, session *conline.Session) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-session.Done():
			return
		case t := <-ticker.C:
			msg := fmt.Sprintf("[heartbeat] %s", t.Format("15:04:05"))
			if err := session.WriteLine(ctx, msg); err != nil {
				return
			}
		}
	}
}

func newLogger(cfg config.Config) (*logging.Logger, func(), error) {
	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.LogFile == "" {
		// Logging to the terminal would fight the session for the
		// screen, so stay quiet unless a file is given.
		return logging.Nop(), func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(logging.Config{Level: level, Output: f})
	return logger, func() { f.Close() }, nil
}

func parseFlags() (config.Config, error) {
	var configPath string
	var prompt string
	var logLevel string
	var logFile string
	var showVersion bool
	var showHelp bool

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&prompt, "prompt", "", "Input prompt override")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&logFile, "log-file", "", "Write logs to this file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "conline - concurrent console session demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: conline [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("conline %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if prompt != "" {
		cfg.Prompt = prompt
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	return cfg, nil
}
