// Package report renders a design evaluation as an A4 PDF.
package report

import (
	"fmt"
	"io"
	"time"

	"H2Tank/internal/calc/batch"

	"github.com/phpdave11/gofpdf"
)

type Meta struct {
	Project string `json:"project"`
	Author  string `json:"author"`
	Title   string `json:"title"`
	Notes   string `json:"notes"`
}

const (
	labelW = 70.0
	lineH  = 6.0
)

// Render writes the report for res to w. date is printed in the header.
func Render(w io.Writer, meta Meta, res batch.Result, date time.Time) error {
	if meta.Title == "" {
		meta.Title = "Hydrogen Tank Design Report"
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, meta.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, lineH, fmt.Sprintf("Project: %s", meta.Project))
	pdf.Ln(lineH)
	pdf.Cell(0, lineH, fmt.Sprintf("Author: %s", meta.Author))
	pdf.Ln(lineH)
	pdf.Cell(0, lineH, fmt.Sprintf("Date: %s", date.Format("2006-01-02")))
	pdf.Ln(10)

	d := res.Design
	section(pdf, "Design")
	row(pdf, "Name", d.Name)
	row(pdf, "Radius", fmt.Sprintf("%.1f mm", d.RadiusMM))
	row(pdf, "Cylinder length", fmt.Sprintf("%.1f mm", d.LengthMM))
	row(pdf, "Wall thickness", fmt.Sprintf("%.2f mm", d.ThicknessMM))
	row(pdf, "Working pressure", fmt.Sprintf("%.0f bar", d.PressureBar))
	row(pdf, "Winding angle", fmt.Sprintf("%.2f deg", d.WindingAngleDeg))
	row(pdf, "Fibre", d.Fibre)
	row(pdf, "Liner", fmt.Sprintf("%s, %.2f mm", d.Liner, d.LinerThicknessMM))

	section(pdf, "Wall stresses")
	row(pdf, "Hoop", fmt.Sprintf("%.1f MPa", res.Stress.HoopMPa))
	row(pdf, "Axial", fmt.Sprintf("%.1f MPa", res.Stress.AxialMPa))
	row(pdf, "Radial (inner surface)", fmt.Sprintf("%.1f MPa", res.Stress.RadialMPa))
	note(pdf, res.Stress.Notes)

	section(pdf, "Ply failure indices")
	plyTable(pdf, res)
	note(pdf, res.Composite.Notes)

	section(pdf, "Permeation")
	p := res.Permeation
	row(pdf, "Rate", fmt.Sprintf("%.3f NmL/hr/L", p.RateNmLhrL))
	row(pdf, "Limit", fmt.Sprintf("%.1f NmL/hr/L", p.Compliance.Limit))
	row(pdf, "Margin", fmt.Sprintf("%.1f %%", p.Compliance.MarginPercent))
	row(pdf, "Required liner", fmt.Sprintf("%.2f mm", p.RequiredThicknessMM))
	row(pdf, "Compliant", yesNo(p.Compliance.Compliant))

	section(pdf, "Verdict")
	pdf.SetFont("Helvetica", "B", 12)
	if res.Passed {
		pdf.Cell(0, 8, "PASS: no ply failure and permeation within the limit")
	} else {
		pdf.Cell(0, 8, "FAIL: see ply indices and permeation above")
	}
	pdf.Ln(10)

	if meta.Notes != "" {
		section(pdf, "Notes")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, lineH, meta.Notes, "", "L", false)
	}

	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
}

func row(pdf *gofpdf.Fpdf, label, value string) {
	pdf.CellFormat(labelW, lineH, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, lineH, value, "", 1, "L", false, 0, "")
}

func note(pdf *gofpdf.Fpdf, text string) {
	if text == "" {
		return
	}
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, text, "", "L", false)
	pdf.SetFont("Helvetica", "", 11)
}

func plyTable(pdf *gofpdf.Fpdf, res batch.Result) {
	cols := []string{"Ply", "Angle", "Tsai-Wu", "Hashin", "Mode", "R"}
	widths := []float64{15, 25, 30, 30, 45, 35}
	pdf.SetFont("Helvetica", "B", 10)
	for i, c := range cols {
		pdf.CellFormat(widths[i], lineH, c, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for i, p := range res.Composite.Plies {
		ply := fmt.Sprintf("%d", i+1)
		if i == res.Composite.Governing {
			ply += "*"
		}
		cells := []string{
			ply,
			fmt.Sprintf("%.2f", p.AngleDeg),
			fmt.Sprintf("%.3f", p.TsaiWu),
			fmt.Sprintf("%.3f", p.HashinMax),
			p.HashinMode,
			fmt.Sprintf("%.2f", p.StrengthRatio),
		}
		for j, c := range cells {
			pdf.CellFormat(widths[j], lineH, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
