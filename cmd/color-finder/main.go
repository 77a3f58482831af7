package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/menta2k/color-finder/internal/config"
	"github.com/menta2k/color-finder/internal/utils"
	"github.com/menta2k/color-finder/pkg/colorspec"
	"github.com/menta2k/color-finder/pkg/walker"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	destDir   string
	collision string

	cfg    = config.Default()
	logger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "color-finder",
	Short: "Find images with a given share of a named color",
	Long: "color-finder scans a directory tree of images, measures the percentage of\n" +
		"pixels inside a named color's RGB bounding box, and reports files whose\n" +
		"percentage falls strictly between a lower and upper bound. Matches can be\n" +
		"copied into a destination folder.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// setup loads configuration, applies environment and flag overrides,
// and configures the process logger exactly once.
func setup(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if cmd.Flags().Changed("collision") {
		cfg.Scan.Collision = collision
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger.SetOutput(os.Stdout)
	logger.SetLevel(level)
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return nil
}

// walkerOptions assembles the walker configuration shared by both
// subcommands, validating the percentage window.
func walkerOptions(color string, lower, upper int, dest string) (walker.Options, error) {
	if lower < 0 || upper > 100 {
		return walker.Options{}, fmt.Errorf("bounds must lie within 0-100, got %d and %d", lower, upper)
	}
	if lower >= upper {
		return walker.Options{}, fmt.Errorf("lower bound %d must be less than upper bound %d", lower, upper)
	}
	if _, ok := colorspec.Default().Lookup(color); !ok {
		return walker.Options{}, fmt.Errorf("unsupported color %q (known: %v)", color, colorspec.Default().Names())
	}

	policy, err := walker.ParseCollisionPolicy(cfg.Scan.Collision)
	if err != nil {
		return walker.Options{}, err
	}

	if dest != "" {
		if err := utils.EnsureDir(dest); err != nil {
			return walker.Options{}, fmt.Errorf("failed to create destination directory: %w", err)
		}
	}

	return walker.Options{
		Color:      color,
		LowerBound: float64(lower),
		UpperBound: float64(upper),
		DestDir:    dest,
		Collision:  policy,
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().StringVarP(&destDir, "dest", "d", "", "destination folder for matched images")
	rootCmd.PersistentFlags().StringVar(&collision, "collision", "rename", "destination name collision policy: rename, overwrite, or skip")
}
