package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"obot-go/internal/config"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	reader := bufio.NewReader(os.Stdin)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	for {
		fmt.Println("\n=== Obot Control ===")
		fmt.Println("1) Show configuration summary")
		fmt.Println("2) Edit bankroll and risk knobs")
		fmt.Println("3) Edit session and pairs")
		fmt.Println("4) Save config")
		fmt.Println("5) Launch paper bot")
		fmt.Println("6) Reload config from disk")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		input, _ := reader.ReadString('\n')
		choice := strings.TrimSpace(input)

		switch choice {
		case "1":
			printSummary(cfg)
		case "2":
			editRisk(reader, cfg)
		case "3":
			editSession(reader, cfg)
		case "4":
			if err := saveConfig(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				fmt.Println("config saved")
			}
		case "5":
			launchPaper(reader)
		case "6":
			reloaded, err := loadConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			} else {
				cfg = reloaded
				fmt.Println("config reloaded")
			}
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func printSummary(cfg *config.Config) {
	fmt.Println("\n--- Configuration Summary ---")
	fmt.Println("Pairs:", strings.Join(cfg.Pairs, ", "))
	fmt.Printf("Session window: %s-%s UTC\n", cfg.Session.Start, cfg.Session.End)
	fmt.Printf("Strategy: %s | timeframe %s x %d candles\n", cfg.Strategy.Mode, cfg.Data.Timeframe, cfg.Data.CandleCount)
	fmt.Printf("Starting cash: $%.2f\n", cfg.Paper.StartingCash)
	fmt.Printf("Risk per trade: %.2f%%\n", cfg.Risk.RiskPercentPerTrade*100)
	fmt.Printf("Max concurrent per pair: %d\n", cfg.Risk.MaxConcurrentPerPair)
	fmt.Printf("Per-trade notional cap: $%.2f\n", cfg.Risk.MaxNotionalPerTrade)
	fmt.Printf("Portfolio notional cap: $%.2f\n", cfg.Risk.MaxPortfolioNotional)
	fmt.Printf("Daily loss limit: $%.2f\n", cfg.Risk.MaxDailyLoss)
	fmt.Printf("Kill switch drawdown: %.2f%%\n", cfg.Risk.KillSwitchDrawdown*100)
}

func editRisk(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Risk / Bankroll ---")
	cfg.Paper.StartingCash = promptFloat(reader, "Starting cash", cfg.Paper.StartingCash)
	cfg.Risk.RiskPercentPerTrade = promptPercent(reader, "Risk per trade (%)", cfg.Risk.RiskPercentPerTrade)
	cfg.Risk.MaxConcurrentPerPair = int(promptFloat(reader, "Max concurrent per pair", float64(cfg.Risk.MaxConcurrentPerPair)))
	cfg.Risk.MaxNotionalPerTrade = promptFloat(reader, "Max notional per trade (USD)", cfg.Risk.MaxNotionalPerTrade)
	cfg.Risk.MaxPortfolioNotional = promptFloat(reader, "Max portfolio notional (USD)", cfg.Risk.MaxPortfolioNotional)
	cfg.Risk.MaxDailyLoss = promptFloat(reader, "Max daily loss (USD)", cfg.Risk.MaxDailyLoss)
	cfg.Risk.KillSwitchDrawdown = promptPercent(reader, "Kill switch drawdown (%)", cfg.Risk.KillSwitchDrawdown)
}

func editSession(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Session / Pairs ---")
	cfg.Session.Start = promptString(reader, "Session start (HH:MM UTC)", cfg.Session.Start)
	cfg.Session.End = promptString(reader, "Session end (HH:MM UTC)", cfg.Session.End)
	fmt.Printf("Current pairs: %s\n", strings.Join(cfg.Pairs, ", "))
	fmt.Print("Enter pairs comma-separated (blank to keep): ")
	if line, _ := reader.ReadString('\n'); strings.TrimSpace(line) != "" {
		parts := strings.Split(strings.TrimSpace(line), ",")
		cfg.Pairs = nil
		for _, p := range parts {
			if trimmed := strings.ToUpper(strings.TrimSpace(p)); trimmed != "" {
				cfg.Pairs = append(cfg.Pairs, trimmed)
			}
		}
	}
}

func launchPaper(reader *bufio.Reader) {
	fmt.Println("Launching paper bot (Ctrl+C to stop)...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", "run", "./cmd/obot")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start bot: %v\n", err)
		return
	}

	go func() {
		_ = cmd.Wait()
		cancel()
	}()

	fmt.Print("\nPress ENTER to stop the bot and return to menu...")
	_, _ = reader.ReadString('\n')
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func promptFloat(reader *bufio.Reader, label string, current float64) float64 {
	fmt.Printf("%s [%.2f]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		fmt.Printf("invalid number, keeping %.2f\n", current)
		return current
	}
	return val
}

func promptPercent(reader *bufio.Reader, label string, current float64) float64 {
	pct := promptFloat(reader, label, current*100)
	return pct / 100
}

func promptString(reader *bufio.Reader, label, current string) string {
	fmt.Printf("%s [%s]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	return line
}

func loadConfig() (*config.Config, error) {
	return config.Load(locateConfig())
}

func saveConfig(cfg *config.Config) error {
	return config.Save(locateConfig(), cfg)
}

func locateConfig() string {
	if filepath.IsAbs(defaultConfigPath) {
		return defaultConfigPath
	}
	return filepath.Clean(defaultConfigPath)
}
