// Package export writes room designs and their evaluations to files that
// can leave the application: a PDF report, a DXF floor plan, an Excel
// tally and a compact share code.
package export

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/RoomFit/internal/engine"
	"github.com/piwi3910/RoomFit/internal/evaluation"
	"github.com/piwi3910/RoomFit/internal/model"
	"github.com/piwi3910/RoomFit/internal/project"
)

// kindColor represents an RGB color for a furniture kind.
type kindColor struct {
	R, G, B int
}

// kindColors is used for kinds whose appearance is a sprite rather than a colour.
var kindColors = []kindColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 14.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	panelWidth   = 90.0
	panelGap     = 8.0
	qrSize       = 32.0
)

// Report is everything that goes onto the evaluation report.
type Report struct {
	Layout      model.Layout
	Request     string                  // client brief the design answers
	Result      *model.EvaluationResult // nil if never evaluated
	GeneratedAt time.Time
}

// ExportReport writes a one-page PDF with the floor plan on the left and
// the brief, score, description, feedback and a share QR code on the right.
func ExportReport(path string, r Report) error {
	if err := r.Layout.Room.Validate(); err != nil {
		return err
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now()
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Title
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	room := r.Layout.Room
	title := fmt.Sprintf("Room design (%d x %d cells)", room.Width, room.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	summary := evaluation.Summarize(r.Layout)
	stats := fmt.Sprintf("Items: %d | Occupied: %d of %d cells (%.0f%%) | %s",
		len(r.Layout.Placements), summary.OccupiedArea, room.Cells(), summary.Ratio*100,
		r.GeneratedAt.Format("2006-01-02 15:04"))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	planBottom := renderFloorPlan(pdf, r.Layout)
	drawKindLegend(pdf, summary, r.Layout, planBottom+5)

	if err := renderPanel(pdf, tr, r); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// renderFloorPlan draws the room, door and furniture scaled into the left
// drawing area and returns the bottom edge of the plan.
func renderFloorPlan(pdf *fpdf.Fpdf, l model.Layout) float64 {
	drawWidth := pageWidth - marginLeft - marginRight - panelWidth - panelGap
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	room := l.Room
	scale := math.Min(drawWidth/float64(room.Width), drawHeight/float64(room.Height))
	canvasW := float64(room.Width) * scale
	canvasH := float64(room.Height) * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Floor
	pdf.SetFillColor(238, 232, 220)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	// Grid
	pdf.SetDrawColor(200, 195, 185)
	pdf.SetLineWidth(0.1)
	for x := 1; x < room.Width; x++ {
		fx := offsetX + float64(x)*scale
		pdf.Line(fx, offsetY, fx, offsetY+canvasH)
	}
	for y := 1; y < room.Height; y++ {
		fy := offsetY + float64(y)*scale
		pdf.Line(offsetX, fy, offsetX+canvasW, fy)
	}

	if l.Door != nil {
		pdf.SetFillColor(150, 110, 70)
		pdf.SetDrawColor(90, 60, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(offsetX+float64(l.Door.Cell.X)*scale, offsetY+float64(l.Door.Cell.Y)*scale, scale, scale, "FD")
	}

	palette := paletteFor(l.Placements)
	for p := range engine.NewRegistry(l.Placements).DepthSorted() {
		col := palette[p.KindName()]
		full := p.VisualRect()
		base := p.BaseRect()
		px := offsetX + float64(full.X)*scale
		py := offsetY + float64(full.Y)*scale
		pw := float64(full.W) * scale
		ph := float64(full.H) * scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		// Darker band marks the blocking base row
		pdf.SetFillColor(col.R*3/4, col.G*3/4, col.B*3/4)
		pdf.Rect(offsetX+float64(base.X)*scale, offsetY+float64(base.Y)*scale, float64(base.W)*scale, float64(base.H)*scale, "F")

		label := p.KindName()
		if p.Rotation.OddQuarter() {
			label += " R"
		}
		pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
		pdf.SetTextColor(0, 0, 0)
		if lw := pdf.GetStringWidth(label); lw < pw-2 && ph > 5 {
			pdf.SetXY(px+(pw-lw)/2, py+1)
			pdf.CellFormat(lw, 4, label, "", 0, "C", false, 0, "")
		}
	}

	drawDimensionAnnotations(pdf, room.Width, room.Height, offsetX, offsetY, canvasW, canvasH)
	return offsetY + canvasH
}

// drawDimensionAnnotations adds width and height labels outside the room rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, width, height int, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%d cells", width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%d cells", height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawKindLegend renders a swatch and count per kind below the plan.
func drawKindLegend(pdf *fpdf.Fpdf, s evaluation.Summary, l model.Layout, startY float64) {
	if s.Empty() {
		return
	}
	palette := paletteFor(l.Placements)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(22, 4, "Furniture:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 24
	maxX := pageWidth - marginRight - panelWidth - panelGap
	for _, kc := range s.Counts {
		col := palette[kc.Name]
		label := fmt.Sprintf("%d x %s", kc.Count, kc.Name)
		labelW := pdf.GetStringWidth(label) + 6
		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}
}

// renderPanel fills the right column with the evaluation text.
func renderPanel(pdf *fpdf.Fpdf, tr func(string) string, r Report) error {
	x := pageWidth - marginRight - panelWidth
	y := drawAreaTop

	section := func(title, body string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(x, y)
		pdf.CellFormat(panelWidth, 5, title, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetX(x)
		pdf.MultiCell(panelWidth, 3.8, tr(body), "", "L", false)
		y = pdf.GetY() + 3
	}

	request := r.Request
	if request == "" {
		request = "No client brief."
	}
	section("Client brief", request)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(x, y)
	pdf.CellFormat(panelWidth, 5, "Satisfaction", "", 1, "L", false, 0, "")
	y += 6
	drawScoreBar(pdf, x, y, r.Result)
	y += 10

	description := evaluation.Describe(r.Layout)
	feedback := "Not evaluated yet."
	if r.Result != nil {
		description = r.Result.Description
		feedback = r.Result.Feedback
	}
	section("Description", description)
	section("Feedback", feedback)

	png, err := ShareQR(project.FromLayout(r.Layout), 256)
	if err != nil {
		return err
	}
	pdf.RegisterImageOptionsReader("share_qr", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	qrY := pageHeight - marginBottom - qrSize
	if y > qrY {
		// Long feedback pushed past the QR slot; move the code to its own page
		pdf.AddPage()
		qrY = marginTop
	}
	qrX := pageWidth - marginRight - qrSize
	pdf.ImageOptions("share_qr", qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	pdf.SetFont("Helvetica", "I", 7)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(x, qrY+qrSize-4)
	pdf.CellFormat(panelWidth-qrSize-2, 4, "Scan to open this layout", "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// drawScoreBar draws the 0..5 scale with the result filled in.
func drawScoreBar(pdf *fpdf.Fpdf, x, y float64, result *model.EvaluationResult) {
	barW := panelWidth - 30
	pdf.SetDrawColor(120, 120, 120)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetLineWidth(0.2)
	pdf.Rect(x, y, barW, 5, "FD")

	label := "Not evaluated"
	switch {
	case result == nil:
	case result.Failed():
		label = "Evaluation failed"
	default:
		frac := math.Max(0, math.Min(1, result.Score/model.MaxScore))
		pdf.SetFillColor(76, 175, 80)
		pdf.Rect(x, y, barW*frac, 5, "F")
		label = fmt.Sprintf("%.2f / %.0f", result.Score, model.MaxScore)
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(x+barW+2, y)
	pdf.CellFormat(28, 5, label, "", 0, "L", false, 0, "")
}

// paletteFor assigns each kind present in the layout its fill colour.
func paletteFor(placements []model.Placement) map[string]kindColor {
	palette := make(map[string]kindColor)
	for _, p := range placements {
		name := p.KindName()
		if _, ok := palette[name]; ok {
			continue
		}
		if r, g, b, ok := p.Kind.Color(); ok {
			palette[name] = kindColor{R: int(r), G: int(g), B: int(b)}
			continue
		}
		palette[name] = kindColors[len(palette)%len(kindColors)]
	}
	return palette
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	size := math.Min(w/6, h/2)
	if size > 9 {
		size = 9
	}
	if size < 5 {
		size = 5
	}
	return size
}
