package view

import (
	"encoding/json"

	"clubweb/internal/models"
)

type Column struct {
	Key   string
	Label string
	// Date cells are rendered as YYYY-MM-DD.
	Date bool
	// Missing replaces an absent cell; "-" when unset.
	Missing string
}

type DataTableDef struct {
	Title   string
	Columns []Column
	Empty   string
}

var (
	LibraryTable = DataTableDef{
		Title: "Library",
		Columns: []Column{
			{Key: "title", Label: "Title"},
			{Key: "author", Label: "Author"},
			{Key: "publisher", Label: "Publisher"},
			{Key: "isbn", Label: "ISBN"},
			{Key: "shelf", Label: "Shelf"},
			{Key: "dueDate", Label: "Due date", Date: true},
		},
		Empty: "No books registered.",
	}
	FeeTable = DataTableDef{
		Title: "Fee",
		Columns: []Column{
			{Key: "userId", Label: "Name"},
			{Key: "amount", Label: "Amount"},
			{Key: "year", Label: "Year"},
			{Key: "date", Label: "Date", Date: true},
			{Key: "status", Label: "Status"},
			{Key: "paidAt", Label: "Paid at", Date: true},
		},
		Empty: "No fee records.",
	}
	CleaningTable = DataTableDef{
		Title: "Clean",
		Columns: []Column{
			{Key: "date", Label: "Date", Date: true},
			{Key: "assignedUsers", Label: "Name", Missing: "Unassigned"},
		},
		Empty: "No cleaning schedule.",
	}
)

type DataTable struct {
	Title   string
	Headers []string
	Rows    [][]string
	Empty   string
	// Dropped counts rows that were not objects.
	Dropped int
}

func NewDataTable(def DataTableDef, raws []json.RawMessage) DataTable {
	t := DataTable{Title: def.Title, Headers: make([]string, len(def.Columns))}
	for i, c := range def.Columns {
		t.Headers[i] = c.Label
	}
	for _, raw := range raws {
		cells, err := models.DecodeCells(raw)
		if err != nil {
			t.Dropped++
			continue
		}
		row := make([]string, len(def.Columns))
		for i, c := range def.Columns {
			v := cells[c.Key]
			if v != "" && c.Date {
				v = models.NormalizeDate(v)
			}
			if v == "" {
				v = c.Missing
				if v == "" {
					v = models.UnknownName
				}
			}
			row[i] = v
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 {
		t.Empty = def.Empty
	}
	return t
}
