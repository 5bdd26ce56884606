package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// thousandsRe and millionsRe pull the decimal immediately preceding a
	// magnitude suffix, e.g. "1.2K" -> "1.2", "3 M" -> "3".
	thousandsRe = regexp.MustCompile(`([\d.]+)\s*K`)
	millionsRe  = regexp.MustCompile(`([\d.]+)\s*M`)

	// digitRunRe matches the first plain number, allowing comma thousands
	// separators and a decimal point: "2,345 reports" -> "2,345".
	digitRunRe = regexp.MustCompile(`[\d,]+\.?\d*`)
)

// emptyCountTokens are the sentinels sheet authors use for "no data".
var emptyCountTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "-": {}, "NONE": {}, "NULL": {},
}

// ExtractCrashCount parses a crash-count cell into a non-negative integer.
// Magnitude suffixes multiply (K by 1e3, M by 1e6; K is checked first when a
// malformed token carries both), commas are stripped, and decimals truncate.
// Anything unrecognizable degrades to zero; extraction never fails.
func ExtractCrashCount(raw string) int {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if _, empty := emptyCountTokens[s]; empty {
		return 0
	}

	if strings.Contains(s, "K") {
		if n, ok := scaled(thousandsRe, s, 1_000); ok {
			return n
		}
	}
	if strings.Contains(s, "M") {
		if n, ok := scaled(millionsRe, s, 1_000_000); ok {
			return n
		}
	}

	if run := digitRunRe.FindString(s); run != "" {
		v, err := strconv.ParseFloat(strings.ReplaceAll(run, ",", ""), 64)
		if err == nil {
			return int(v)
		}
	}
	return 0
}

// scaled extracts the decimal captured by re and multiplies it by factor,
// truncating to an integer.
func scaled(re *regexp.Regexp, s string, factor float64) (int, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return int(v * factor), true
}
