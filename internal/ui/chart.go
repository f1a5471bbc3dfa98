package ui

import (
	"fmt"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"booklake/internal/domain"
)

const (
	chartWidth  = 900
	chartHeight = 220
	chartGutter = 24
)

// revenueChart renders the daily revenue series as inline SVG bars. Input
// arrives newest-first; bars are drawn oldest to newest, left to right.
func revenueChart(daily []domain.DailySales) Node {
	if len(daily) == 0 {
		return P(Class("muted"), Text("No daily sales to chart."))
	}

	days := make([]domain.DailySales, len(daily))
	for i, d := range daily {
		days[len(daily)-1-i] = d
	}

	maxRevenue := 0.0
	for _, d := range days {
		if d.TotalRevenue > maxRevenue {
			maxRevenue = d.TotalRevenue
		}
	}
	if maxRevenue == 0 {
		maxRevenue = 1
	}

	plotHeight := float64(chartHeight - chartGutter)
	barSlot := float64(chartWidth) / float64(len(days))
	barWidth := barSlot * 0.8

	bars := make([]Node, 0, len(days))
	for i, d := range days {
		barHeight := d.TotalRevenue / maxRevenue * plotHeight
		x := float64(i)*barSlot + (barSlot-barWidth)/2
		y := plotHeight - barHeight
		bars = append(bars, El("rect",
			Attr("x", fmt.Sprintf("%.1f", x)),
			Attr("y", fmt.Sprintf("%.1f", y)),
			Attr("width", fmt.Sprintf("%.1f", barWidth)),
			Attr("height", fmt.Sprintf("%.1f", barHeight)),
			Attr("rx", "2"),
			Class("bar"),
			El("title", Text(fmt.Sprintf("%s: $%.2f", d.Date, d.TotalRevenue))),
		))
	}

	// Date labels on the first and last bar only.
	labels := []Node{
		El("text",
			Attr("x", "0"),
			Attr("y", fmt.Sprintf("%d", chartHeight-6)),
			Class("axis-label"),
			Text(days[0].Date),
		),
		El("text",
			Attr("x", fmt.Sprintf("%d", chartWidth)),
			Attr("y", fmt.Sprintf("%d", chartHeight-6)),
			Attr("text-anchor", "end"),
			Class("axis-label"),
			Text(days[len(days)-1].Date),
		),
	}

	return SVG(
		Attr("viewBox", fmt.Sprintf("0 0 %d %d", chartWidth, chartHeight)),
		Attr("role", "img"),
		Attr("aria-label", "Daily revenue bar chart"),
		Class("revenue-chart"),
		Group(bars),
		Group(labels),
	)
}
