package ui

// stylesheet is inlined into every page; the dashboard is small enough that
// an asset pipeline would be overhead.
const stylesheet = `
:root { color-scheme: light dark; --accent: #2563eb; --muted: #6b7280; --border: #e5e7eb; }
* { box-sizing: border-box; }
body { margin: 0; font-family: system-ui, -apple-system, sans-serif; line-height: 1.5; }
.shell { max-width: 960px; margin: 0 auto; padding: 1.5rem 1rem 3rem; }
.topbar h1 { margin: 0 0 0.25rem; font-size: 1.5rem; }
.muted { color: var(--muted); font-size: 0.875rem; }
.card { border: 1px solid var(--border); border-radius: 8px; padding: 1rem; margin-bottom: 1rem; }
.card h2 { margin: 0 0 0.75rem; font-size: 1.05rem; }
.stats-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(140px, 1fr)); gap: 0.75rem; margin-bottom: 1rem; }
.stat strong { display: block; font-size: 1.25rem; margin-top: 0.25rem; }
.grid-2 { display: grid; grid-template-columns: 1fr; gap: 1rem; }
@media (min-width: 820px) { .grid-2 { grid-template-columns: 1fr 1fr; } }
table { width: 100%; border-collapse: collapse; font-size: 0.875rem; }
th, td { text-align: left; padding: 0.4rem 0.5rem; border-bottom: 1px solid var(--border); }
td.num { text-align: right; font-variant-numeric: tabular-nums; }
.revenue-chart { width: 100%; height: auto; }
.revenue-chart .bar { fill: var(--accent); }
.revenue-chart .axis-label { font-size: 11px; fill: var(--muted); }
.share-bar { background: var(--border); border-radius: 3px; height: 6px; margin-bottom: 2px; overflow: hidden; }
.share-fill { background: var(--accent); height: 100%; }
footer { margin-top: 1.5rem; }
`
