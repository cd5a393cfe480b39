package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/pathwayhq/pathway/cmd/pathway/admin"
	"github.com/pathwayhq/pathway/cmd/pathway/school"
	"github.com/pathwayhq/pathway/cmd/pathway/serve"
	"github.com/pathwayhq/pathway/cmd/pathway/settings"
	"github.com/pathwayhq/pathway/cmd/pathway/user"
	"github.com/pathwayhq/pathway/pkg/config"
	logr "github.com/pathwayhq/pathway/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""

	// envFile is loaded before the configuration is parsed.
	envFile string

	rootCmd = &cobra.Command{
		Use:          "pathway",
		Short:        "Track school activities and volunteering",
		Long:         "Pathway tracks student activities, volunteering hours and opportunities for schools.",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to a dotenv file to load")
	rootCmd.AddCommand(
		manCmd,
		popularityCmd,
		serve.Command,
		admin.Command,
		user.Command,
		school.Command,
		settings.Command,
	)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
			Version = info.Main.Version
		} else {
			Version = "unknown (built from source)"
		}
	}
	rootCmd.Version = Version
}

// loadEnv loads the dotenv file. A missing default file is not an error.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) && path == ".env" {
		return nil
	}
	return err
}

// envFileFlag returns the value of --env-file in args.
func envFileFlag(args []string) string {
	for i, arg := range args {
		if v, ok := strings.CutPrefix(arg, "--env-file="); ok {
			return v
		}
		if arg == "--env-file" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ".env"
}

func run() int {
	// The env file may set PATHWAY_DATA_PATH, so it is loaded before the
	// defaults are computed and before cobra parses flags.
	if err := loadEnv(envFileFlag(os.Args[1:])); err != nil {
		fmt.Fprintf(os.Stderr, "load env file: %v\n", err)
		return 1
	}

	ctx := context.Background()
	cfg := config.DefaultConfig()
	if cfg.Exist() {
		if err := cfg.ParseFile(); err != nil {
			fmt.Fprintf(os.Stderr, "parse config file: %v\n", err)
			return 1
		}
	}
	if err := cfg.ParseEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "parse environment variables: %v\n", err)
		return 1
	}
	ctx = config.WithContext(ctx, cfg)

	logger, f, err := logr.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		return 1
	}
	if f != nil {
		defer f.Close() //nolint:errcheck
	}
	ctx = log.WithContext(ctx, logger)

	// Set the max number of processes to the number of CPUs.
	// This is useful when running in a container.
	if _, err := maxprocs.Set(maxprocs.Logger(logger.Debugf)); err != nil {
		logger.Warn("couldn't set automaxprocs", "error", err)
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(run())
}
