// Package domain normalizes raw crash-report tables into typed records.
//
// # Data Source
//
// Crash reports arrive as delimited text with a mandatory header row, either
// uploaded by a user or fetched from a published spreadsheet export URL. The
// sheets are maintained by hand across several teams, so formatting is
// inconsistent: dates appear in half a dozen encodings, counts carry unit
// suffixes or thousands separators, and the crash classification is scattered
// as free text across whatever columns the author chose.
//
// # Column Conventions
//
// Only a handful of column names are interpreted; everything else passes
// through untouched for display:
//
//	Date      - parsed through an ordered format list, day-first preferred
//	Game      - trimmed and title-cased, "Unknown" when missing or blank
//	Platform  - as Game, with "Ios"/"IOS" canonicalized to "iOS"
//	Network   - trimmed ad-network name, "Unknown" when absent
//	*crash count* - the first header containing "crash count"
//	            (case-insensitive) feeds the count extractor
//
// Date format precedence (first successful parse wins):
//
//	02-01-2006, 2006-01-02, 02/01/2006, 01/02/2006, 02-Jan-2006, 2006/01/02
//
// Ambiguous numeric triples like "03-04-2024" therefore resolve day-first
// (3 April). A permissive day-first fallback handles stragglers; anything
// still unparseable excludes the row when the table declares a Date column.
//
// Magnitude encoding ("Crash Count" columns, frequently inconsistent):
//
//	1.2K   = 1,200    (thousands suffix)
//	3M     = 3,000,000 (millions suffix; K wins when both letters appear)
//	2,345  = 2,345    (comma thousands separators)
//	"", NA, N/A, -, NONE, NULL = 0 (unmeasured)
//
// Extraction never fails; unrecognizable values degrade to zero.
//
// # Crash Type Classification
//
// Each record is assigned exactly one of ANR, Fatal, Non-fatal, or Network by
// ordered substring rules over the lower-cased, space-joined row text. The
// rule order is load-bearing: "anr" is checked before the fatal rules since
// ANR comments often mention crashes, and "fatal" must reject any "non"
// occurrence before the non-fatal rule runs. The Network rule matches a fixed
// ad-network vocabulary (network, applovin, unity, moloco, ironsource) which
// can be extended through configuration. The default label is Non-fatal; there
// is no unclassified state.
package domain
