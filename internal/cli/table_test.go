package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/tiwariParth/go-task-cli/internal/models"
)

func TestCell(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{in: "1", width: 5, want: "1    "},
		{in: "todo", width: 13, want: "todo         "},
		{in: "abcdefgh", width: 5, want: "abc… "},
		{in: "写报告", width: 8, want: "写报告  "},
	}
	for _, tt := range tests {
		if got := cell(tt.in, tt.width); got != tt.want {
			t.Errorf("cell(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	renderTable(&buf, nil, newPalette(true))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header and rule: %q", len(lines), buf.String())
	}
	want := "ID   Status       Description                     Created At           Updated At"
	if lines[0] != want {
		t.Errorf("header = %q\nwant     %q", lines[0], want)
	}
	if lines[1] != strings.Repeat("-", 90) {
		t.Errorf("rule = %q", lines[1])
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	created := time.Date(2024, 3, 9, 8, 30, 0, 0, time.Local)
	a := models.NewTask(1, "buy milk", created)
	b := models.NewTask(12, "写一份非常长的季度总结报告并且发给所有相关同事审阅", created)
	b.SetStatus(models.StatusInProgress, created.Add(90*time.Second))
	c := models.NewTask(3, "line one\nline two", created)

	var buf bytes.Buffer
	renderTable(&buf, []models.Task{a, b, c}, newPalette(true))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}

	for _, line := range lines[2:] {
		// Every row has the same display width up to the Updated At column.
		prefix := runewidth.Truncate(line, idWidth+statusWidth+descWidth+timeWidth, "")
		if w := runewidth.StringWidth(prefix); w != idWidth+statusWidth+descWidth+timeWidth {
			t.Errorf("row %q prefix width = %d", line, w)
		}
		if !strings.HasSuffix(line, "2024-03-09T08:30:00") && !strings.HasSuffix(line, "2024-03-09T08:31:30") {
			t.Errorf("row %q missing updatedAt", line)
		}
	}

	if !strings.HasPrefix(lines[2], "1    todo         buy milk") {
		t.Errorf("row = %q", lines[2])
	}
	if !strings.Contains(lines[3], "…") || !strings.HasPrefix(lines[3], "12   in-progress  ") {
		t.Errorf("long row = %q", lines[3])
	}
	if !strings.Contains(lines[4], "line one line two") {
		t.Errorf("multi-line description not flattened: %q", lines[4])
	}
}
