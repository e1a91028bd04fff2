package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"beadify/internal/color"
	"beadify/internal/matcher"
)

const invalidHexMessage = "Invalid hex color format. Please enter a 6-digit hex color."

func matchCommand(ctx *cliContext) *cobra.Command {
	var noSwatch bool

	cmd := &cobra.Command{
		Use:   "match [hex...]",
		Short: "Find the closest beads for hex colors",
		Long: `Find the closest beads for each given 6-digit hex color.
Without arguments, reads colors interactively until "exit" or "quit".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &matchPrinter{
				out:      cmd.OutOrStdout(),
				ctx:      ctx,
				swatches: !noSwatch,
			}
			if len(args) > 0 {
				for _, a := range args {
					if err := p.query(a); err != nil {
						return err
					}
				}
				return nil
			}
			return p.interactive(cmd.InOrStdin())
		},
	}

	cmd.Flags().BoolVar(&noSwatch, "no-swatch", false, "do not print color swatches")
	return cmd
}

type matchPrinter struct {
	out      io.Writer
	ctx      *cliContext
	swatches bool
}

// interactive читает цвета построчно, пока не встретит exit/quit или конец ввода.
func (p *matchPrinter) interactive(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(p.out, "Enter a hex color (or type 'exit' to quit): ")
		if !scanner.Scan() {
			fmt.Fprintln(p.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "exit", "quit":
			return nil
		}
		if err := p.query(line); err != nil {
			return err
		}
	}
}

// query печатает лучшие варианты для одного цвета. На некорректный ввод
// печатается сообщение, ошибка не возвращается.
func (p *matchPrinter) query(s string) error {
	target, err := color.ParseQuery(s)
	if err != nil {
		fmt.Fprintln(p.out, invalidHexMessage)
		return nil
	}

	opts := p.ctx.matchOptions()
	matches, err := matcher.FindClosest(p.ctx.repo, color.ToLab(target), opts.K, opts.AvailableOnly)
	if err != nil {
		return err
	}

	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, " === BEST MATCH FOR COLOR %s === \n", strings.ToUpper(s))
	if len(matches) == 0 {
		fmt.Fprintln(p.out, "No matching beads.")
	}
	for _, m := range matches {
		fmt.Fprintf(p.out, "%s %s  - Distance: %.4f\n", m.Entry.Hex, m.Entry.Coco, m.Distance)
	}
	fmt.Fprintln(p.out)

	if p.swatches && len(matches) > 0 {
		fmt.Fprintln(p.out, renderSwatches(p.out, target, matches))
		fmt.Fprintln(p.out)
	}
	return nil
}

// renderSwatches рисует полосу: исходный цвет, затем найденные бусины.
func renderSwatches(w io.Writer, target color.RGB, matches []matcher.Match) string {
	r := lipgloss.NewRenderer(w)
	swatch := func(hex, label string) string {
		return r.NewStyle().
			Background(lipgloss.Color("#" + hex)).
			Foreground(lipgloss.Color(color.ContrastText(hex))).
			Padding(1, 2).
			MarginRight(1).
			Render(label)
	}

	blocks := []string{swatch(target.Hex(), "TARGET "+strings.ToUpper(target.Hex()))}
	for _, m := range matches {
		label := m.Entry.Coco
		if label == "" {
			label = m.Entry.Hex
		}
		blocks = append(blocks, swatch(m.Entry.Hex, label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}
