// OICAgentOps entry point.
//
// Usage:
//
//	agentops serve                        # start the agent fleet
//	agentops serve --config config.yaml   # with a config file
//	agentops run discover                 # run one stage and exit
//	agentops run resubmit --instances I1,I2
//	agentops run check-status --job J9
//	agentops health                       # probe the monitor service
//	agentops version                      # show version information
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nareshsaladi2024/OICAgentOps/agent"
	"github.com/nareshsaladi2024/OICAgentOps/config"
	"github.com/nareshsaladi2024/OICAgentOps/mcp"
	"github.com/nareshsaladi2024/OICAgentOps/stages"
	"github.com/nareshsaladi2024/OICAgentOps/state"
	"github.com/nareshsaladi2024/OICAgentOps/types"
)

// Build-time injected version info.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "run":
		runStage(os.Args[2:])
	case "health":
		runHealthCheck(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func loadConfig(configPath string) *config.Config {
	loader := config.NewLoader()
	if configPath != "" {
		loader = loader.WithConfigPath(configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting OICAgentOps",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("monitor_url", cfg.MCP.BaseURL),
	)

	fleet, err := agent.NewFleet(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build agent fleet", zap.Error(err))
	}

	if err := fleet.Run(context.Background()); err != nil {
		logger.Fatal("Agent fleet failed", zap.Error(err))
	}

	logger.Info("OICAgentOps stopped")
}

// runStage executes one workflow stage from the command line and prints
// the result as JSON.
func runStage(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: agentops run <stage> [options]")
		os.Exit(1)
	}
	stage := args[0]

	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	instances := fs.String("instances", "", "Comma-separated instance ids for resubmit")
	jobID := fs.String("job", "", "Recovery job id for check-status")
	fs.Parse(args[1:])

	cfg := loadConfig(*configPath)

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	store, err := state.NewStore(cfg.State)
	if err != nil {
		logger.Fatal("Failed to create state store", zap.Error(err))
	}
	defer store.Close()

	client := mcp.NewClient(cfg.MCP.BaseURL,
		mcp.WithCallTimeout(cfg.MCP.CallTimeout),
		mcp.WithHealthTimeout(cfg.MCP.HealthTimeout),
		mcp.WithLogger(logger),
	)
	service := stages.NewService(client, store, logger)

	params := stages.Params{JobID: *jobID}
	if *instances != "" {
		for _, id := range strings.Split(*instances, ",") {
			if id = strings.TrimSpace(id); id != "" {
				params.InstanceIDs = append(params.InstanceIDs, id)
			}
		}
	}

	result := service.Run(context.Background(), stage, params)

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))

	if !result.OK {
		if result.Error != nil && result.Error.Remediation != "" {
			fmt.Fprintln(os.Stderr, result.Error.Remediation)
		}
		os.Exit(1)
	}
}

func runHealthCheck(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)

	client := mcp.NewClient(cfg.MCP.BaseURL,
		mcp.WithHealthTimeout(cfg.MCP.HealthTimeout))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status := client.Health(ctx)
	out, _ := json.MarshalIndent(status, "", "  ")
	fmt.Println(string(out))

	if status.Status != "healthy" {
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("OICAgentOps %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Printf(`OICAgentOps - OIC monitoring and recovery agents

Usage:
  agentops <command> [options]

Commands:
  serve     Start the agent fleet
  run       Run one workflow stage and exit
  health    Probe the monitor service
  version   Show version information
  help      Show this help message

Options for 'serve':
  --config <path>     Path to configuration file (YAML)

Options for 'run':
  --config <path>     Path to configuration file (YAML)
  --instances <ids>   Comma-separated instance ids (resubmit)
  --job <id>          Recovery job id (check-status)

Stages:
  %s

Examples:
  agentops serve --config /etc/agentops/config.yaml
  agentops run discover
  agentops run resubmit --instances I1,I2
  agentops run check-status
  agentops health
`, strings.Join([]string{
		types.StageDiscover,
		types.StageResubmit,
		types.StageCheckStatus,
		types.StageMonitorQueue,
	}, ", "))
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if cfg.Format == "console" {
		zapConfig.Encoding = "console"
	}

	logger, err := zapConfig.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return logger
}
