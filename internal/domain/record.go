package domain

import "time"

// RawRow maps a header name to the untyped cell value as read from the
// source. Rows from the same table need not share the same populated columns.
type RawRow map[string]string

// Table is a raw crash-report table: an ordered header plus rows keyed by
// those header names.
type Table struct {
	Columns []string
	Rows    []RawRow
}

// CrashType is one of the four fixed crash labels. Classification is total;
// every record carries exactly one of these.
type CrashType string

const (
	CrashANR      CrashType = "ANR"
	CrashFatal    CrashType = "Fatal"
	CrashNonFatal CrashType = "Non-fatal"
	CrashNetwork  CrashType = "Network"
)

// Unknown is the default substituted for missing or blank Game, Platform,
// and Network values.
const Unknown = "Unknown"

// NormalizedRecord is the canonical crash record after type coercion,
// default substitution, and derived-field computation. Records are never
// mutated after normalization; re-ingestion replaces the table wholesale.
type NormalizedRecord struct {
	Date        time.Time `json:"date,omitzero"`
	HasDate     bool      `json:"-"`
	Game        string    `json:"game"`
	Platform    string    `json:"platform"`
	CrashCount  int       `json:"crash_count"`
	CrashType   CrashType `json:"crash_type"`
	NetworkName string    `json:"network_name"`
	YearMonth   string    `json:"year_month,omitempty"` // "2006-01", present iff Date is

	// Extra carries non-semantic source columns through for display.
	Extra map[string]string `json:"extra,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}

// Result is the outcome of normalizing one table.
type Result struct {
	Records []NormalizedRecord
	Columns []string // cleaned header, original order
	Dropped int      // rows excluded for an unparseable date
}
