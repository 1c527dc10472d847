package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is the application version, set via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "anatomize",
	Short: "Pack a repository into an LLM-ready bundle",
	Long: `anatomize walks a directory or git repository, applies gitignore-style
rules, and emits each selected file as full content, a structural summary,
or metadata only, with token counts.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/anatomize/config.toml, then ./anatomize.toml)")
	pf.StringVar(&envFile, "env-file", "", "dotenv file to load before reading ANATOMIZE_* variables (default .env)")
	pf.String("log-level", "warn", "Log level: debug, info, warn or error")
	pf.String("log-format", "console", "Log format: console or json")
	_ = viper.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log_format", pf.Lookup("log-format"))

	registerPackFlags(pf)

	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
