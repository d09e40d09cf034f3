// Package main is the entry point for the xedit line-mode editor.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/xedit/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, loop := parseFlags()

	session, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Unblock a pending read when interrupted.
	go func() {
		<-ctx.Done()
		_ = os.Stdin.Close()
	}()

	if err := session.Run(ctx, os.Stdin, os.Stdout, loop); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "Interrupted")
			return 130
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (app.Options, app.LoopOptions) {
	opts := app.Options{
		Environ:   os.Environ,
		Output:    os.Stdout,
		Overrides: make(map[string]any),
	}
	var profile string
	var noProfile, showVersion, showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&profile, "profile", "", "Profile macro run for each file opened")
	flag.BoolVar(&noProfile, "noprofile", false, "Do not run a profile macro")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "xedit - XEDIT-style line editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: xedit [options] [fn ft [fm]]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  xedit PROFILE XEDIT A      Edit profile.xedit on disk A\n")
		fmt.Fprintf(os.Stderr, "  xedit -noprofile NOTES TXT  Edit without running the profile\n")
		fmt.Fprintf(os.Stderr, "  xedit < script.txt         Run commands from a file\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("xedit %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	switch {
	case noProfile:
		opts.Overrides["macro.profile"] = ""
	case profile != "":
		opts.Overrides["macro.profile"] = profile
	}

	// The operands name one file, as on the XEDIT command.
	if flag.NArg() > 0 {
		opts.Files = []string{strings.Join(flag.Args(), " ")}
	}

	var loop app.LoopOptions
	if term.IsTerminal(int(os.Stdin.Fd())) {
		loop = app.LoopOptions{Prompt: "====> ", Verify: true}
	}
	return opts, loop
}
