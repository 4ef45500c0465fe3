package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/tiwariParth/go-task-cli/internal/models"
)

// Column widths in terminal cells, separator included.
const (
	idWidth     = 5
	statusWidth = 13
	descWidth   = 32
	timeWidth   = 21
)

const timeLayout = "2006-01-02T15:04:05"

type palette struct {
	ok         *color.Color
	err        *color.Color
	header     *color.Color
	todo       *color.Color
	inProgress *color.Color
	done       *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		ok:         color.New(color.FgGreen),
		err:        color.New(color.FgRed),
		header:     color.New(color.Bold),
		todo:       color.New(color.Reset),
		inProgress: color.New(color.FgYellow),
		done:       color.New(color.FgGreen),
	}
	if noColor {
		for _, c := range []*color.Color{p.ok, p.err, p.header, p.todo, p.inProgress, p.done} {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) status(s models.Status) *color.Color {
	switch s {
	case models.StatusInProgress:
		return p.inProgress
	case models.StatusDone:
		return p.done
	default:
		return p.todo
	}
}

// renderTable writes a fixed-width report. The header is printed even when
// tasks is empty. Cells are padded before coloring so escape codes do not
// shift the columns.
func renderTable(w io.Writer, tasks []models.Task, p palette) {
	header := cell("ID", idWidth) + cell("Status", statusWidth) + cell("Description", descWidth) +
		cell("Created At", timeWidth) + "Updated At"
	fmt.Fprintln(w, p.header.Sprint(header))
	fmt.Fprintln(w, strings.Repeat("-", idWidth+statusWidth+descWidth+timeWidth+len(timeLayout)))

	for _, t := range tasks {
		fmt.Fprintln(w,
			cell(strconv.Itoa(t.ID), idWidth)+
				p.status(t.Status).Sprint(cell(string(t.Status), statusWidth))+
				cell(displayText(t.Description), descWidth)+
				cell(t.CreatedAt.Format(timeLayout), timeWidth)+
				t.UpdatedAt.Format(timeLayout))
	}
}

// cell pads s to width cells, truncating with an ellipsis so at least one
// cell of separation remains.
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width-1, "…"), width)
}

// displayText collapses newlines and tabs so a row stays on one line.
func displayText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
