package cmd

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	_ "golang.org/x/image/bmp"

	"github.com/pagesift/pagesift/internal/pipeline"
)

// pageCmd represents the page command.
var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Process scanned page images",
	Long: `Process one or more page images: deskew, segment into text and
image regions, run OCR in reading order, and optionally correct the text.

Supported formats: JPEG, PNG, BMP

Examples:
  pagesift page scan.png
  pagesift page *.png --format json
  pagesift page scan.png --overlay-dir debug/ --correct`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}

		orch, err := pipeline.FromConfig(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = orch.Close() }()

		ctx := cmd.Context()
		doc := &pipeline.Document{}
		if len(args) == 1 {
			doc.Source = args[0]
		}

		for i, path := range args {
			img, err := loadImage(path)
			if err != nil {
				return fmt.Errorf("load %q: %w", path, err)
			}

			page, err := orch.ProcessPage(ctx, img, i+1)
			if err != nil {
				return err
			}

			if cfg.Output.OverlayDir != "" {
				if _, err := pipeline.SaveOverlay(cfg.Output.OverlayDir, img, page); err != nil {
					return err
				}
			}
			doc.Pages = append(doc.Pages, page)
		}

		return writeResults(doc, cfg.Output.Format, cfg.Output.File)
	},
}

// loadImage decodes an image file from disk.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // G304: reading user-provided input path is expected
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	return img, err
}

// writeResults formats the document and writes it to the output file or
// standard output.
func writeResults(doc *pipeline.Document, format, outputFile string) error {
	out, err := pipeline.FormatDocument(doc, format)
	if err != nil {
		return err
	}
	if outputFile != "" {
		return os.WriteFile(outputFile, []byte(out), 0o600)
	}
	fmt.Print(out)
	return nil
}

func init() {
	rootCmd.AddCommand(pageCmd)

	pageCmd.Flags().String("engine", "", "OCR engine (tesseract, easyocr)")
	pageCmd.Flags().String("language", "", "recognition and correction language (BCP-47, e.g. en, de)")
	pageCmd.Flags().Bool("correct", false, "enable text correction")
	pageCmd.Flags().Float64("confidence-threshold", 0, "skip correction below this OCR confidence")
	pageCmd.Flags().String("format", "", "output format (text, json, yaml)")
	pageCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	pageCmd.Flags().String("overlay-dir", "", "directory for region overlay images")

	_ = viper.BindPFlag("pipeline.engine", pageCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("pipeline.language", pageCmd.Flags().Lookup("language"))
	_ = viper.BindPFlag("pipeline.enable_correction", pageCmd.Flags().Lookup("correct"))
	_ = viper.BindPFlag("pipeline.confidence_threshold", pageCmd.Flags().Lookup("confidence-threshold"))
	_ = viper.BindPFlag("output.format", pageCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("output.file", pageCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output.overlay_dir", pageCmd.Flags().Lookup("overlay-dir"))
}
