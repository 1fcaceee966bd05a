package ui

import (
	"strings"
	"testing"
)

func TestSimpleTable(t *testing.T) {
	table := NewSimpleTable("Test Table", []string{"Col1", "Col2"})
	table.AddRow("Row1Col1", "Row1Col2")

	view := table.View(DefaultStyles())
	t.Logf("View:\n%q", view)

	if !strings.Contains(view, "Test Table") {
		t.Error("View missing title")
	}
	if !strings.Contains(view, "Row1Col1") {
		t.Error("View missing cell content")
	}
}

func TestSimpleTableEmpty(t *testing.T) {
	if NewSimpleTable("x", []string{"a"}).View(DefaultStyles()) != "" {
		t.Fatal("empty table renders nothing")
	}
}

func TestSimpleTableTruncates(t *testing.T) {
	table := NewSimpleTable("", []string{"Problem"})
	table.MaxCell = 8
	table.AddRow("a very long problem statement")
	if strings.Contains(table.View(DefaultStyles()), "statement") {
		t.Fatal("cells wider than MaxCell should be truncated")
	}
}
