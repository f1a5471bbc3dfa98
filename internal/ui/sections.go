package ui

import (
	"fmt"
	"strconv"
	"strings"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
	data "maragu.dev/gomponents-datastar"

	"booklake/internal/domain"
)

func overviewSection(o domain.Overview) Node {
	cards := []struct {
		label string
		value string
	}{
		{"Total Revenue", fmt.Sprintf("$%.2f", o.TotalRevenue)},
		{"Transactions", fmt.Sprintf("%d", o.TotalTransactions)},
		{"Avg Transaction", fmt.Sprintf("$%.2f", o.AvgTransactionValue)},
		{"Customers", fmt.Sprintf("%d", o.TotalCustomers)},
		{"Books Sold", fmt.Sprintf("%d titles", o.TotalBooks)},
		{"Days With Sales", fmt.Sprintf("%d", o.DaysWithSales)},
	}
	nodes := make([]Node, 0, len(cards))
	for _, c := range cards {
		nodes = append(nodes, Div(Class("card stat"),
			P(Class("muted"), Text(c.label)),
			Strong(Text(c.value)),
		))
	}
	return Section(
		ID("overview"),
		pollEvery(basePath+"/fragments/overview", 30),
		Class("stats-grid"),
		Group(nodes),
	)
}

func revenueSection(daily []domain.DailySales) Node {
	return Section(
		ID("revenue"),
		pollEvery(basePath+"/fragments/revenue", 60),
		Class("card"),
		H2(Text(fmt.Sprintf("Daily Revenue (last %d days with sales)", revenueWindowDays))),
		revenueChart(daily),
	)
}

// containsExpr builds the client-side expression that keeps a row visible
// while the quick-filter signal matches it.
func containsExpr(value string) string {
	lower := strings.ToLower(value)
	return "$q === '' || " + strconv.Quote(lower) + ".includes($q.toLowerCase())"
}

func topBooksSection(topBooks []domain.TopBook) Node {
	rows := make([]Node, 0, len(topBooks))
	for _, b := range topBooks {
		rows = append(rows, Tr(
			data.Show(containsExpr(b.Title+" "+b.Author+" "+b.Category)),
			Td(Text(fmt.Sprintf("%d", b.Rank))),
			Td(Text(b.Title)),
			Td(Text(b.Author)),
			Td(Text(b.Category)),
			Td(Class("num"), Text(fmt.Sprintf("$%.2f", b.TotalRevenue))),
			Td(Class("num"), Text(fmt.Sprintf("%d", b.TotalSales))),
		))
	}
	body := Node(TBody(Group(rows)))
	if len(topBooks) == 0 {
		body = TBody(Tr(Td(ColSpan("6"), Class("muted"), Text("No sales recorded yet."))))
	}
	return Section(
		ID("top-books"),
		pollEvery(basePath+"/fragments/top-books", 60),
		data.Signals(map[string]any{"q": ""}),
		Class("card"),
		H2(Text("Top Books by Revenue")),
		Label(Class("muted"), Text("Quick filter "),
			Input(Type("text"), data.Bind("q"), Placeholder("Filter by title, author, or category")),
		),
		Table(
			THead(Tr(
				Th(Text("#")), Th(Text("Title")), Th(Text("Author")),
				Th(Text("Category")), Th(Text("Revenue")), Th(Text("Sales")),
			)),
			body,
		),
	)
}

func categoriesSection(categories []domain.CategoryPerformance) Node {
	rows := make([]Node, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, Tr(
			Td(Text(c.Category)),
			Td(Class("num"), Text(fmt.Sprintf("$%.2f", c.TotalRevenue))),
			Td(Class("num"), Text(fmt.Sprintf("%d", c.TotalSales))),
			Td(Class("num"),
				Div(Class("share-bar"),
					Div(Class("share-fill"), Style(fmt.Sprintf("width:%.1f%%", c.MarketShare))),
				),
				Text(fmt.Sprintf("%.1f%%", c.MarketShare)),
			),
		))
	}
	body := Node(TBody(Group(rows)))
	if len(categories) == 0 {
		body = TBody(Tr(Td(ColSpan("4"), Class("muted"), Text("No sales recorded yet."))))
	}
	return Section(
		ID("categories"),
		pollEvery(basePath+"/fragments/categories", 60),
		Class("card"),
		H2(Text("Category Market Share")),
		Table(
			THead(Tr(
				Th(Text("Category")), Th(Text("Revenue")), Th(Text("Sales")), Th(Text("Share")),
			)),
			body,
		),
	)
}
