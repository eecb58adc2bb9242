// Package importer reads candidate tank designs from an xlsx workbook.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"H2Tank/internal/calc/batch"
	"H2Tank/internal/calc/calcerr"

	"github.com/xuri/excelize/v2"
)

// Columns lists the expected sheet layout. Only the first five are required.
var Columns = []string{
	"name", "radius_mm", "length_mm", "thickness_mm", "pressure_bar",
	"winding_angle_deg", "liner", "fibre", "liner_thickness_mm",
}

const requiredColumns = 5

type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type Sheet struct {
	Designs []batch.Design `json:"designs"`
	Skipped []SkippedRow   `json:"skipped"`
}

// Read parses the first sheet of the workbook in r. The header row is
// skipped; rows that do not parse are reported in Skipped.
func Read(r io.Reader) (Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Sheet{}, fmt.Errorf("%w: open workbook: %v", calcerr.ErrInvalidInput, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return Sheet{}, fmt.Errorf("%w: read sheet: %v", calcerr.ErrInvalidInput, err)
	}
	if len(rows) < 2 {
		return Sheet{}, fmt.Errorf("%w: empty sheet", calcerr.ErrInvalidInput)
	}

	var out Sheet
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}
		d, err := parseRow(row)
		if err != nil {
			// Sheet rows are 1-based.
			out.Skipped = append(out.Skipped, SkippedRow{Row: i + 1, Reason: err.Error()})
			continue
		}
		out.Designs = append(out.Designs, d)
	}
	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRow(row []string) (batch.Design, error) {
	if len(row) < requiredColumns {
		return batch.Design{}, fmt.Errorf("expected at least %d columns, got %d", requiredColumns, len(row))
	}
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	num := func(i int, required bool) (float64, error) {
		s := cell(i)
		if s == "" {
			if required {
				return 0, fmt.Errorf("%s is empty", Columns[i])
			}
			return 0, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not a number", Columns[i], s)
		}
		if v < 0 {
			return 0, fmt.Errorf("%s is negative", Columns[i])
		}
		return v, nil
	}

	d := batch.Design{Name: cell(0), Liner: cell(6), Fibre: cell(7)}
	var err error
	if d.RadiusMM, err = num(1, true); err != nil {
		return batch.Design{}, err
	}
	if d.LengthMM, err = num(2, false); err != nil {
		return batch.Design{}, err
	}
	if d.ThicknessMM, err = num(3, true); err != nil {
		return batch.Design{}, err
	}
	if d.PressureBar, err = num(4, true); err != nil {
		return batch.Design{}, err
	}
	if d.WindingAngleDeg, err = num(5, false); err != nil {
		return batch.Design{}, err
	}
	if d.LinerThicknessMM, err = num(8, false); err != nil {
		return batch.Design{}, err
	}
	switch {
	case d.RadiusMM == 0, d.ThicknessMM == 0, d.PressureBar == 0:
		return batch.Design{}, fmt.Errorf("radius, thickness and pressure must be positive")
	case d.WindingAngleDeg >= 90:
		return batch.Design{}, fmt.Errorf("winding_angle_deg must be below 90")
	}
	return d, nil
}
