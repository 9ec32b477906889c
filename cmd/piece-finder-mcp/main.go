package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/piece-finder-mcp/internal/config"
	"github.com/ironsheep/piece-finder-mcp/internal/matcher"
	"github.com/ironsheep/piece-finder-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("piece-finder-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if cfg.Debug() {
		log.Printf("Piece Finder MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("scale=%g threshold=%g resample=%s workers=%d max_search_cost=%d max_file_bytes=%d",
			cfg.ScaleFactor, cfg.ConfidenceThreshold, cfg.Resample, cfg.Workers,
			cfg.MaxSearchCost, cfg.MaxFileBytes)
	}

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printHelp() {
	fmt.Println("piece-finder-mcp - MCP server that finds where a puzzle piece fits")
	fmt.Println()
	fmt.Println("Usage: piece-finder-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables (also read from .env):")
	env := []struct{ setting, help string }{
		{config.EnvScaleFactor + "=0.5", "Downscale factor in (0,1]"},
		{config.EnvThreshold + "=0.5", "Minimum score for a confident match"},
		{config.EnvResample + "=" + matcher.DefaultFilter, fmt.Sprintf("Resampling filter, one of %v", matcher.FilterNames())},
		{config.EnvWorkers + "=0", "Search goroutines, 0 for one per CPU"},
		{config.EnvMaxSearchCost + "=0", "Pixel comparison limit, 0 for none"},
		{config.EnvMaxFileBytes + "=20971520", "Largest accepted image file"},
		{config.EnvLogLevel + "=debug", "Enable debug logging"},
		{config.EnvDotenvFile + "=.env", "Path of the .env file"},
	}
	for _, e := range env {
		fmt.Printf("  %-40s %s\n", e.setting, e.help)
	}
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
