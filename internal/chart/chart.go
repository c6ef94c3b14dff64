// =============================================================================
// Expensight - Chart Producer
// =============================================================================
//
// Renders the four chart images from one aggregate set:
//
//   category_expenses_bar.png  - bar, fed by CategoryTotals
//   payment_mode_pie.png       - pie, fed by PaymentModeCounts
//   monthly_expenses_line.png  - line, fed by MonthlyTotals
//   expense_hist.png           - histogram, fed by all record amounts
//
// A chart whose feeding aggregate is empty is replaced by a "no data"
// placeholder image so the exporter never blocks on a missing picture.
// Styling beyond chart kind and data series is not a contract.
//
// =============================================================================

package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/expensight/expensight/internal/analyze"
	"github.com/expensight/expensight/internal/model"
	chart "github.com/wcharczuk/go-chart/v2"
)

// Chart image dimensions, shared by all four renderers.
const (
	chartWidth  = 800
	chartHeight = 500
)

// histogramBins is the number of equal-width bins in the distribution chart.
const histogramBins = 10

// Image is one rendered chart.
type Image struct {
	// Name is the output file name, e.g. "category_expenses_bar.png".
	Name string

	// Title is the human-readable chart title.
	Title string

	// PNG holds the encoded image bytes.
	PNG []byte

	// Placeholder is true when the feeding aggregate was empty and the
	// image is the flat "no data" canvas.
	Placeholder bool
}

// Set bundles the four chart images of one run, in display order.
type Set struct {
	CategoryBar  Image
	PaymentPie   Image
	MonthlyLine  Image
	Distribution Image
}

// All returns the four images in their fixed display order.
func (s Set) All() []Image {
	return []Image{s.CategoryBar, s.PaymentPie, s.MonthlyLine, s.Distribution}
}

// ByName returns the image with the given file name.
func (s Set) ByName(name string) (Image, bool) {
	for _, img := range s.All() {
		if img.Name == name {
			return img, true
		}
	}
	return Image{}, false
}

// =============================================================================
// RENDERING
// =============================================================================

// Render produces the full chart set for an aggregate set. Empty aggregates
// yield placeholders; a renderer failure is a real error.
func Render(aggs analyze.AggregateSet) (Set, error) {
	var set Set
	var err error

	if set.CategoryBar, err = categoryBar(aggs.CategoryTotals); err != nil {
		return Set{}, fmt.Errorf("rendering category bar chart: %w", err)
	}
	if set.PaymentPie, err = paymentPie(aggs.PaymentModeCounts); err != nil {
		return Set{}, fmt.Errorf("rendering payment mode pie chart: %w", err)
	}
	if set.MonthlyLine, err = monthlyLine(aggs.MonthlyTotals); err != nil {
		return Set{}, fmt.Errorf("rendering monthly line chart: %w", err)
	}
	if set.Distribution, err = histogram(aggs.SortedExpenses); err != nil {
		return Set{}, fmt.Errorf("rendering distribution histogram: %w", err)
	}
	return set, nil
}

// WriteFiles writes every chart image into dir, creating it if needed.
func WriteFiles(set Set, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating charts directory: %w", err)
	}
	for _, img := range set.All() {
		path := filepath.Join(dir, img.Name)
		if err := os.WriteFile(path, img.PNG, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", img.Name, err)
		}
	}
	return nil
}

// barRange pins the bar-chart y axis to [0, 1.1*max]. go-chart rejects a
// zero-delta value range, which otherwise happens whenever all bar values
// are equal (single record, single category, one-bin histogram).
func barRange(bars []chart.Value) chart.YAxis {
	max := 0.0
	for _, b := range bars {
		if b.Value > max {
			max = b.Value
		}
	}
	if max == 0 {
		max = 1
	}
	return chart.YAxis{
		Range: &chart.ContinuousRange{Min: 0, Max: max * 1.1},
	}
}

func categoryBar(totals []analyze.CategoryAmount) (Image, error) {
	img := Image{Name: "category_expenses_bar.png", Title: "Expenses by Category"}
	if len(totals) == 0 {
		return placeholder(img), nil
	}

	bars := make([]chart.Value, len(totals))
	for i, ct := range totals {
		bars[i] = chart.Value{Label: ct.Category, Value: ct.Amount.InexactFloat64()}
	}

	graph := chart.BarChart{
		Title:    img.Title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 50,
		Bars:     bars,
		YAxis:    barRange(bars),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return Image{}, err
	}
	img.PNG = buf.Bytes()
	return img, nil
}

func paymentPie(counts []analyze.ModeCount) (Image, error) {
	img := Image{Name: "payment_mode_pie.png", Title: "Payment Mode Distribution"}
	if len(counts) == 0 {
		return placeholder(img), nil
	}

	values := make([]chart.Value, len(counts))
	for i, mc := range counts {
		values[i] = chart.Value{Label: mc.Mode, Value: float64(mc.Count)}
	}

	graph := chart.PieChart{
		Title:  img.Title,
		Width:  chartHeight, // square canvas
		Height: chartHeight,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return Image{}, err
	}
	img.PNG = buf.Bytes()
	return img, nil
}

func monthlyLine(totals []analyze.MonthTotal) (Image, error) {
	img := Image{Name: "monthly_expenses_line.png", Title: "Monthly Expenses Over Time"}
	if len(totals) == 0 {
		return placeholder(img), nil
	}

	xs := make([]time.Time, len(totals))
	ys := make([]float64, len(totals))
	for i, mt := range totals {
		xs[i] = mt.Month
		ys[i] = mt.Total.InexactFloat64()
	}

	xAxis := chart.XAxis{
		ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
	}
	// A single month yields a zero-width x range, which go-chart rejects.
	// Widen the axis by two weeks on each side so the point still plots.
	if len(xs) == 1 {
		// TimeSeries plots x values as UnixNano floats.
		xAxis.Range = &chart.ContinuousRange{
			Min: float64(xs[0].AddDate(0, 0, -14).UnixNano()),
			Max: float64(xs[0].AddDate(0, 0, 14).UnixNano()),
		}
	}

	graph := chart.Chart{
		Title:  img.Title,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  xAxis,
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Total Amount",
				XValues: xs,
				YValues: ys,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return Image{}, err
	}
	img.PNG = buf.Bytes()
	return img, nil
}

// histogram bins every record amount into equal-width buckets and renders
// the bucket counts as a bar chart.
func histogram(records []model.ExpenseRecord) (Image, error) {
	img := Image{Name: "expense_hist.png", Title: "Expense Distribution"}
	if len(records) == 0 {
		return placeholder(img), nil
	}

	amounts := make([]float64, len(records))
	min, max := records[0].Amount.InexactFloat64(), records[0].Amount.InexactFloat64()
	for i, rec := range records {
		v := rec.Amount.InexactFloat64()
		amounts[i] = v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	bins := histogramBins
	width := (max - min) / float64(bins)
	if width == 0 {
		// All amounts equal: one bucket holds everything.
		bins, width = 1, 1
	}

	counts := make([]int, bins)
	for _, v := range amounts {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1 // max value lands in the last bucket
		}
		counts[idx]++
	}

	bars := make([]chart.Value, bins)
	for i, n := range counts {
		low := min + float64(i)*width
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%.0f", low),
			Value: float64(n),
		}
	}

	graph := chart.BarChart{
		Title:    img.Title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 40,
		Bars:     bars,
		YAxis:    barRange(bars),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return Image{}, err
	}
	img.PNG = buf.Bytes()
	return img, nil
}

// =============================================================================
// NO-DATA PLACEHOLDER
// =============================================================================

// placeholder fills in a flat light-gray canvas for a chart whose feeding
// aggregate is empty. The exporter labels the slot "No data" next to it.
func placeholder(img Image) Image {
	canvas := image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	bg := color.RGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF}
	border := color.RGBA{R: 0xAA, G: 0xAA, B: 0xAA, A: 0xFF}

	for y := 0; y < chartHeight; y++ {
		for x := 0; x < chartWidth; x++ {
			if x < 2 || y < 2 || x >= chartWidth-2 || y >= chartHeight-2 {
				canvas.Set(x, y, border)
			} else {
				canvas.Set(x, y, bg)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		// Encoding an in-memory RGBA image cannot fail at runtime; keep the
		// image empty rather than aborting the run.
		return Image{Name: img.Name, Title: img.Title, Placeholder: true}
	}
	return Image{Name: img.Name, Title: img.Title, PNG: buf.Bytes(), Placeholder: true}
}
