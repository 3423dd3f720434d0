package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderPad renders a single colored pad
func RenderPad(color [3]uint8) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render("■")
}

// RenderPadRow renders a row of colored pads with spacing
func RenderPadRow(colors [][3]uint8) string {
	var out strings.Builder
	for i, c := range colors {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(RenderPad(c))
	}
	return out.String()
}

// RenderBlocks draws a matrix of full-block characters, one per color.
// Runs of the same color share one styled segment.
func RenderBlocks(rows [][][3]uint8) string {
	lines := make([]string, len(rows))
	for r, row := range rows {
		var line strings.Builder
		for i := 0; i < len(row); {
			j := i
			for j < len(row) && row[j] == row[i] {
				j++
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(row[i])))
			line.WriteString(style.Render(strings.Repeat("█", j-i)))
			i = j
		}
		lines[r] = line.String()
	}
	return strings.Join(lines, "\n")
}

// Swatch is one selectable color in a palette bar
type Swatch struct {
	Key   string
	Name  string
	Note  string
	Color [3]uint8
}

// RenderSwatches renders "1 ■ white B  2 ■ red C# ..." with the selected
// entry underlined
func RenderSwatches(items []Swatch, selected int) string {
	parts := make([]string, len(items))
	for i, s := range items {
		label := fmt.Sprintf("%s %s", s.Name, s.Note)
		if i == selected {
			label = lipgloss.NewStyle().Bold(true).Underline(true).Render(label)
		}
		parts[i] = fmt.Sprintf("%s %s %s", s.Key, RenderPad(s.Color), label)
	}
	return strings.Join(parts, "  ")
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color [3]uint8, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderPad(color), name, desc)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
