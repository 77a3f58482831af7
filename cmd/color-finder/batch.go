package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/menta2k/color-finder/internal/config"
	"github.com/menta2k/color-finder/pkg/classifier"
	"github.com/menta2k/color-finder/pkg/walker"
)

var (
	batchColor string
	batchLower int
	batchUpper int
	batchStart string
	batchEnd   string
)

var batchCmd = &cobra.Command{
	Use:   "batch [base_dir]",
	Short: "Scan dated batch folders for cover TIFFs",
	Long: "batch inspects the immediate child folders of base_dir, selects those whose\n" +
		"names encode a YYYYMMDD date inside the requested range, and classifies the\n" +
		"cover TIFFs in their undatabased/databased subfolders. base_dir and --dest\n" +
		"default to the batch settings in the config file or the COLORFINDER_BASE_DIR\n" +
		"and COLORFINDER_DEST_DIR environment variables.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cfg.Batch.BaseDir
		if len(args) == 1 {
			root = args[0]
		}
		if root == "" {
			return fmt.Errorf("no base directory: pass one as an argument or set %s", config.EnvBaseDir)
		}

		dest := destDir
		if dest == "" {
			dest = cfg.Batch.DestDir
		}

		start, err := time.Parse("20060102", batchStart)
		if err != nil {
			return fmt.Errorf("invalid start date %q: want YYYYMMDD", batchStart)
		}
		end, err := time.Parse("20060102", batchEnd)
		if err != nil {
			return fmt.Errorf("invalid end date %q: want YYYYMMDD", batchEnd)
		}
		if end.Before(start) {
			return fmt.Errorf("start date %s is after end date %s", batchStart, batchEnd)
		}

		opts, err := walkerOptions(batchColor, batchLower, batchUpper, dest)
		if err != nil {
			return err
		}

		w := walker.New(classifier.New(), logger, opts)
		_, err = w.ScanBatches(context.Background(), root, start, end)
		return err
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchColor, "color", "c", "", "color to find (e.g. pink, orange)")
	batchCmd.Flags().IntVarP(&batchLower, "lower", "l", 0, "minimum % of color to detect (exclusive)")
	batchCmd.Flags().IntVarP(&batchUpper, "upper", "u", 100, "maximum % of color to detect (exclusive)")
	batchCmd.Flags().StringVar(&batchStart, "start", "", "start of date range (YYYYMMDD, inclusive)")
	batchCmd.Flags().StringVar(&batchEnd, "end", "", "end of date range (YYYYMMDD, inclusive)")
	_ = batchCmd.MarkFlagRequired("color")
	_ = batchCmd.MarkFlagRequired("start")
	_ = batchCmd.MarkFlagRequired("end")

	rootCmd.AddCommand(batchCmd)
}
