package collection

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ParseFormat maps a format name, or a file name's extension, to a format.
func ParseFormat(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch {
	case name == FormatCSV || strings.HasSuffix(name, ".csv"):
		return FormatCSV, nil
	case name == FormatXLSX || strings.HasSuffix(name, ".xlsx"):
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", name)
	}
}

// Export writes the ledger in format.
func (s *Store) Export(w io.Writer, format string) error {
	return Write(w, s.kind, format, s.ledger)
}

// Write renders entries of kind in format.
func Write(w io.Writer, kind Kind, format string, entries []Entry) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, entries)
	case FormatXLSX:
		return WriteXLSX(w, sheetName(kind), entries)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// FileName is the default download name for an export of kind.
func FileName(kind Kind, format string) string {
	if kind == KindLanguage {
		return "language_flashcards." + format
	}
	return "flashcards." + format
}

// WriteCSV writes one `"phrase";"answer"` line per entry. Field content is
// written verbatim; quotes inside a field are not escaped, which is the
// layout Anki's importer accepts for these decks.
func WriteCSV(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		line := `"` + e.Phrase + `";"` + e.TranslationAnswer + `"` + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func sheetName(kind Kind) string {
	if kind == KindLanguage {
		return "Language"
	}
	return "Flashcards"
}

// WriteXLSX writes the entries to a single-sheet workbook with a header row.
func WriteXLSX(w io.Writer, sheet string, entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("drop default sheet: %w", err)
		}
	}
	if idx, err := f.GetSheetIndex(sheet); err == nil {
		f.SetActiveSheet(idx)
	}

	headers := []string{"Phrase", "Answer"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for row, e := range entries {
		for col, v := range []string{e.Phrase, e.TranslationAnswer} {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row+1, err)
			}
		}
	}
	if err := f.SetColWidth(sheet, "A", "B", 60); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
