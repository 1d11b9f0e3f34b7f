package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ContentType é o tipo MIME das planilhas geradas.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	defaultSheet = "Sheet1"
	emptyMessage = "Nenhum dado para exportar."
	maxNameLen   = 31
)

// ErrNoSheets indica exportação sem nenhuma aba.
var ErrNoSheets = errors.New("export: nenhuma aba informada")

// Column descreve uma coluna da planilha.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Sheet é uma aba já convertida em texto.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Table monta a aba a partir dos registros e colunas.
func Table[T any](name string, columns []Column[T], items []T) Sheet {
	sheet := Sheet{Name: name, Headers: make([]string, len(columns)), Rows: make([][]string, 0, len(items))}
	for i, col := range columns {
		sheet.Headers[i] = col.Header
	}
	for _, item := range items {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = col.Value(item)
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

// Write grava as abas como XLSX em w.
func Write(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return ErrNoSheets
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1A659E"}, Pattern: 1},
		Font:      &excelize.Font{Color: "FFFFFF", Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("export: estilo: %w", err)
	}

	for i, sheet := range sheets {
		name := sheetName(sheet.Name, i)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("export: aba %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("export: aba %q: %w", name, err)
		}
		if err := writeSheet(f, name, sheet, headerStyle); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: gravar: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, sheet Sheet, headerStyle int) error {
	for col, header := range sheet.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(name, cell, cell, headerStyle); err != nil {
			return err
		}
		width := float64(len([]rune(header))) + 4
		for _, row := range sheet.Rows {
			if col < len(row) {
				width = max(width, float64(len([]rune(row[col])))+2)
			}
		}
		letter, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, letter, letter, min(width, 60)); err != nil {
			return err
		}
	}

	if len(sheet.Rows) == 0 {
		return f.SetCellValue(name, "A2", emptyMessage)
	}
	for r, row := range sheet.Rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(name, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func sheetName(name string, idx int) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = fmt.Sprintf("Dados %d", idx+1)
	}
	if runes := []rune(name); len(runes) > maxNameLen {
		name = string(runes[:maxNameLen])
	}
	return name
}
