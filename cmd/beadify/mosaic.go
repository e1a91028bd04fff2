package main

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"beadify/internal/app"
	imagepkg "beadify/internal/image"
	"beadify/internal/pdf"
)

type mosaicFlags struct {
	output  string
	format  string
	width   int
	height  int
	choices []string
}

func mosaicCommand(ctx *cliContext) *cobra.Command {
	var f mosaicFlags

	cmd := &cobra.Command{
		Use:   "mosaic <image>",
		Short: "Turn an image into a bead scheme (PNG or PDF)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := app.MosaicSettings(ctx.cfg.Mosaic)
			if cmd.Flags().Changed("width") {
				settings.GridWidth = f.width
			}
			if cmd.Flags().Changed("height") {
				settings.GridHeight = f.height
				// только высота: ширину считаем по пропорции
				if !cmd.Flags().Changed("width") {
					settings.GridWidth = 0
				}
			}
			return runMosaic(cmd, ctx, args[0], f, settings)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "mosaic.png", "output file")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: png, pdf (default: from output extension)")
	cmd.Flags().IntVar(&f.width, "width", 0, "scheme width in beads")
	cmd.Flags().IntVar(&f.height, "height", 0, "scheme height in beads")
	cmd.Flags().StringArrayVar(&f.choices, "choice", nil, "override bead option for a source color, HEX:INDEX")
	return cmd
}

func runMosaic(cmd *cobra.Command, ctx *cliContext, input string, f mosaicFlags, settings imagepkg.Settings) error {
	// 1. Декодируем
	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()
	img, err := imagepkg.Decode(in)
	if err != nil {
		return err
	}

	// 2. Строим схему
	scheme, err := imagepkg.Build(cmd.Context(), ctx.logger, img, ctx.repo, ctx.matchOptions(), settings, ctx.cfg.Matching.Workers)
	if err != nil {
		return err
	}
	for _, raw := range f.choices {
		src, idx, err := imagepkg.ParseChoice(raw)
		if err != nil {
			return err
		}
		if err := scheme.Choose(src, idx); err != nil {
			return err
		}
	}

	// 3. Пишем результат
	format := strings.ToLower(f.format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(f.output)), ".")
	}
	mosaic := scheme.Render()

	var buf bytes.Buffer
	switch format {
	case "pdf":
		doc, err := pdf.GeneratePDF(mosaic, scheme.Usage(), scheme.SizeInfo())
		if err != nil {
			return err
		}
		buf.Write(doc)
	case "png", "":
		if err := png.Encode(&buf, mosaic); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err := os.WriteFile(f.output, buf.Bytes(), 0o644); err != nil {
		return err
	}

	ctx.logger.Info("scheme written",
		"output", f.output, "width", scheme.Width, "height", scheme.Height,
		"unique_colors", len(scheme.Colors()))
	for _, u := range scheme.Usage() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d\n", u.Entry.Hex, u.Entry.Coco, u.Entry.Mard, u.Count)
	}
	return nil
}
