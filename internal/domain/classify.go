package domain

import "strings"

// classifyRule pairs a crash label with its substring matcher.
type classifyRule struct {
	label CrashType
	match func(text string) bool
}

// classifyRules is evaluated in order; the first match wins. The ordering is
// an invariant: ANR precedes the fatal rules because ANR comments often
// mention crashes, and the Fatal rule must reject any "non" occurrence before
// the Non-fatal rule is consulted.
var classifyRules = []classifyRule{
	{CrashANR, func(t string) bool {
		return strings.Contains(t, "anr") || strings.Contains(t, "not responding")
	}},
	{CrashFatal, func(t string) bool {
		return strings.Contains(t, "fatal") && !strings.Contains(t, "non")
	}},
	{CrashNonFatal, func(t string) bool {
		return strings.Contains(t, "non-fatal") || strings.Contains(t, "nonfatal")
	}},
	{CrashNetwork, func(t string) bool {
		for _, kw := range networkVocabulary {
			if strings.Contains(t, kw) {
				return true
			}
		}
		return false
	}},
}

// defaultNetworkVocabulary is the ad-network keyword set observed in the
// source sheets. Deployments tracking other mediation partners extend it via
// the vocabulary config file.
var defaultNetworkVocabulary = []string{"network", "applovin", "unity", "moloco", "ironsource"}

var networkVocabulary = defaultNetworkVocabulary

// SetNetworkVocabulary replaces the ad-network keyword set used by the
// Network rule. Keywords are matched lower-cased. Pass nil to restore the
// default vocabulary.
func SetNetworkVocabulary(keywords []string) {
	if len(keywords) == 0 {
		networkVocabulary = defaultNetworkVocabulary
		return
	}
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}
	networkVocabulary = lowered
}

// ClassifyCrashType assigns exactly one crash label to a row. It joins the
// lower-cased text of every populated cell in column order and applies the
// ordered rule list; rows matching nothing default to Non-fatal. The function
// is total — there is no unclassifiable state.
//
// Callers must pass the original, unnormalized cells: unit suffixes and other
// raw text can carry the keywords the rules look for.
func ClassifyCrashType(columns []string, row RawRow) CrashType {
	var parts []string
	for _, col := range columns {
		if v, ok := row[col]; ok && strings.TrimSpace(v) != "" {
			parts = append(parts, strings.ToLower(v))
		}
	}
	text := strings.Join(parts, " ")

	for _, rule := range classifyRules {
		if rule.match(text) {
			return rule.label
		}
	}
	return CrashNonFatal
}
