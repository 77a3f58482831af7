package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menta2k/color-finder/pkg/classifier"
	"github.com/menta2k/color-finder/pkg/walker"
)

var (
	scanColor string
	scanLower int
	scanUpper int
	scanExt   string
)

var scanCmd = &cobra.Command{
	Use:   "scan <base_dir>",
	Short: "Scan a whole tree for files of one type",
	Long: "scan walks every directory under base_dir and classifies each file whose\n" +
		"name ends with the given extension. Matches are logged and, with --dest,\n" +
		"copied flat into the destination folder.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := walkerOptions(scanColor, scanLower, scanUpper, destDir)
		if err != nil {
			return err
		}

		ext := scanExt
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}

		w := walker.New(classifier.New(), logger, opts)
		_, err = w.ScanTree(context.Background(), args[0], ext)
		return err
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanColor, "color", "c", "", "color to find (e.g. pink, orange)")
	scanCmd.Flags().IntVarP(&scanLower, "lower", "l", 0, "minimum % of color to detect (exclusive)")
	scanCmd.Flags().IntVarP(&scanUpper, "upper", "u", 100, "maximum % of color to detect (exclusive)")
	scanCmd.Flags().StringVarP(&scanExt, "ext", "e", ".png", "file extension to scan (.png, .jpg, .tif)")
	_ = scanCmd.MarkFlagRequired("color")

	rootCmd.AddCommand(scanCmd)
}
