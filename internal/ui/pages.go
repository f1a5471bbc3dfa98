package ui

import (
	"fmt"
	"time"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"booklake/internal/domain"
)

type dashboardData struct {
	Overview   domain.Overview
	Daily      []domain.DailySales
	TopBooks   []domain.TopBook
	Categories []domain.CategoryPerformance
}

// pollEvery makes datastar re-fetch a fragment on an interval. The fragment
// carries the same element id, so the response morphs in place.
func pollEvery(path string, seconds int) Node {
	return Attr(fmt.Sprintf("data-on-interval__duration.%ds", seconds), fmt.Sprintf("@get('%s')", path))
}

func dashboardPage(data dashboardData) Node {
	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text("Book Sales Dashboard")),
			Link(Rel("icon"), Href("data:,")),
			StyleEl(Raw(stylesheet)),
			Script(
				Type("module"),
				Src("https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.7/bundles/datastar.js"),
			),
		),
		Body(
			Main(Class("shell"),
				Header(Class("topbar"),
					H1(Text("Book Sales Analytics")),
					P(Class("muted"), Text("Star-schema warehouse overview, refreshed automatically")),
				),
				overviewSection(data.Overview),
				revenueSection(data.Daily),
				Div(Class("grid-2"),
					topBooksSection(data.TopBooks),
					categoriesSection(data.Categories),
				),
				Footer(Class("muted"),
					Text("Rendered "+formatTime(time.Now().UTC())),
				),
			),
		),
	)
}

func errorPage(title, message string) Node {
	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			TitleEl(Text(title)),
			StyleEl(Raw(stylesheet)),
		),
		Body(
			Main(Class("shell"),
				H1(Text(title)),
				P(Text(message)),
				P(A(Href(basePath), Text("Back to dashboard"))),
			),
		),
	)
}
