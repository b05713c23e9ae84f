package exportsvc

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet    = "Sheet1"
	maxSheetNameLen = 31
)

var sheetNameReplacer = strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ")

// WriteExcel writes one sheet per section.
func WriteExcel(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return errors.Wrap(err, "creating title style")
	}

	for i, s := range r.Sections {
		name := sheetName(s.Title)
		if i == 0 {
			if err = f.SetSheetName(defaultSheet, name); err != nil {
				return errors.Wrapf(err, "renaming sheet %q", name)
			}
		} else if _, err = f.NewSheet(name); err != nil {
			return errors.Wrapf(err, "creating sheet %q", name)
		}
		if err = writeSection(f, name, r, s, headerStyle, titleStyle); err != nil {
			return errors.Wrapf(err, "writing sheet %q", name)
		}
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}

func writeSection(f *excelize.File, sheet string, r Report, s Section, headerStyle, titleStyle int) error {
	if r.RightToLeft {
		rtl := true
		if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
			return err
		}
	}

	if err := f.SetCellValue(sheet, "A1", r.Title+" - "+s.Title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", titleStyle); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "A2", r.GeneratedLabel+" "+r.GeneratedAt.Format("2006-01-02 15:04")); err != nil {
		return err
	}

	const headerRow = 4
	for col, title := range r.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRow)
		if err != nil {
			return err
		}
		if err = f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}
	if len(r.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(r.Columns), headerRow)
		if err != nil {
			return err
		}
		if err = f.SetCellStyle(sheet, "A4", last, headerStyle); err != nil {
			return err
		}
		lastCol := strings.TrimRight(last, "0123456789")
		if err = f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
			return err
		}
	}

	for i, row := range s.Rows {
		for col, val := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, headerRow+1+i)
			if err != nil {
				return err
			}
			if err = f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}
	return nil
}

func sheetName(title string) string {
	name := strings.TrimSpace(sheetNameReplacer.Replace(title))
	if name == "" {
		name = defaultSheet
	}
	if r := []rune(name); len(r) > maxSheetNameLen {
		name = string(r[:maxSheetNameLen])
	}
	return name
}
