package descriptions

// Comprehensive tool descriptions with practical examples and use cases

const (
	ExtractTablesDescription = `Recover table structure from PDF documents or geometry feeds, returning cell grids with text, spans, and quality scores.

**When to use:** Need structured tabular data out of a document instead of a flat text dump.

**Why it's useful:** Rebuilds rows, columns, and merged cells from page geometry, so downstream systems get real tables rather than whitespace-separated text.

**Examples:**
• Financial statements: "Extract the balance sheet tables from annual-report.pdf pages 12-15"
• Invoice processing: "Get the line-item table from invoice-2024-001.pdf"
• Data ingestion: "Pull every table from survey-results.json into structured rows"

**Common workflows:**
1. Ruled documents: extract with method=lattice → check accuracy in each table's report
2. Unruled documents: extract with method=stream → verify column alignment in the output
3. Unknown documents: extract with method=lattice and fallback=true → pages without ruling lines fall back to stream automatically

**Best practices:** Start with lattice plus fallback; inspect the per-table accuracy and whitespace scores before trusting the data. Low accuracy usually means the wrong method for the page.`

	GeometryInfoDescription = `Inspect a document's page geometry: page count plus per-page text fragment and ruling-line counts.

**When to use:** Before extraction, to pick pages and choose between lattice and stream methods.

**Why it's useful:** Ruling-line counts reveal whether a page carries a drawn grid (lattice territory) or relies on whitespace alignment (stream territory), without running a full extraction.

**Examples:**
• Method selection: "Check report.pdf: pages with many ruling lines get lattice, the rest get stream"
• Page targeting: "Find which pages of statements.json actually contain content"
• Feed debugging: "Verify the geometry feed carries the line segments the renderer was supposed to emit"

**Common workflows:**
1. Survey → Extract: geometry_info → pick pages and method → extract_tables
2. Feed validation: geometry_info → compare fragment counts against the source document

**Best practices:** A page with fewer than two horizontal and two vertical ruling lines cannot be latticed; route it to stream.`
)
