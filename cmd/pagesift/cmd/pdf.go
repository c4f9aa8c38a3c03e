package cmd

import (
	"errors"
	"image"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pagesift/pagesift/internal/config"
	"github.com/pagesift/pagesift/internal/pdf"
	"github.com/pagesift/pagesift/internal/pipeline"
)

// pdfCmd represents the pdf command.
var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Process scanned PDF documents",
	Long: `Extract page images from a PDF document and run the digitization
pipeline over the selected pages.

The --pages flag accepts "all", a comma-separated list of 1-based page
numbers, or inclusive ranges: "1,3", "2-5", "1,4-6".

Examples:
  pagesift pdf document.pdf
  pagesift pdf document.pdf --pages 2-5 --format json
  pagesift pdf document.pdf --pages 1,3 --output results.json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("expected exactly one PDF file")
		}

		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}

		selection, err := config.ParsePageSelection(cfg.Pipeline.Pages)
		if err != nil {
			return err
		}

		pageImages, err := pdf.ExtractPages(args[0], selection)
		if err != nil {
			return err
		}

		orch, err := pipeline.FromConfig(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = orch.Close() }()

		inputs := make([]pipeline.PageInput, len(pageImages))
		for i, p := range pageImages {
			inputs[i] = pipeline.PageInput{PageNumber: p.PageNumber, Image: p.Image}
		}

		pages, err := orch.ProcessPages(cmd.Context(), inputs, pipeline.ParallelConfig{
			MaxWorkers:       cfg.Pipeline.Parallel.PageWorkers,
			ProgressCallback: &pipeline.LogProgressCallback{},
		})
		if err != nil {
			return err
		}

		if cfg.Output.OverlayDir != "" {
			imagesByPage := make(map[int]image.Image, len(pageImages))
			for _, p := range pageImages {
				imagesByPage[p.PageNumber] = p.Image
			}
			for _, page := range pages {
				img, ok := imagesByPage[page.PageNumber]
				if !ok {
					continue
				}
				if _, err := pipeline.SaveOverlay(cfg.Output.OverlayDir, img, page); err != nil {
					return err
				}
			}
		}

		doc := &pipeline.Document{Source: args[0], Pages: pages}
		return writeResults(doc, cfg.Output.Format, cfg.Output.File)
	},
}

func init() {
	rootCmd.AddCommand(pdfCmd)

	pdfCmd.Flags().String("pages", "", `page selection ("all", "1,3", "2-5")`)
	pdfCmd.Flags().String("engine", "", "OCR engine (tesseract, easyocr)")
	pdfCmd.Flags().String("language", "", "recognition and correction language (BCP-47, e.g. en, de)")
	pdfCmd.Flags().Bool("correct", false, "enable text correction")
	pdfCmd.Flags().String("format", "", "output format (text, json, yaml)")
	pdfCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	pdfCmd.Flags().String("overlay-dir", "", "directory for region overlay images")

	_ = viper.BindPFlag("pipeline.pages", pdfCmd.Flags().Lookup("pages"))
	_ = viper.BindPFlag("pipeline.engine", pdfCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("pipeline.language", pdfCmd.Flags().Lookup("language"))
	_ = viper.BindPFlag("pipeline.enable_correction", pdfCmd.Flags().Lookup("correct"))
	_ = viper.BindPFlag("output.format", pdfCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("output.file", pdfCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output.overlay_dir", pdfCmd.Flags().Lookup("overlay-dir"))
}
