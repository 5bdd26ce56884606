package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func classifySingle(col, value string) CrashType {
	return ClassifyCrashType([]string{col}, RawRow{col: value})
}

func TestClassifyCrashType(t *testing.T) {
	tests := []struct {
		name     string
		col      string
		value    string
		expected CrashType
	}{
		{"anr keyword", "Type", "ANR spike", CrashANR},
		{"not responding phrase", "Type", "App Not Responding", CrashANR},
		{"fatal", "Notes", "Fatal crash on launch", CrashFatal},
		{"non-fatal", "Notes", "non-fatal exception", CrashNonFatal},
		{"nonfatal one word", "Notes", "nonfatal exception", CrashNonFatal},
		{"network keyword", "Source", "network timeout", CrashNetwork},
		{"applovin", "Source", "AppLovin SDK timeout", CrashNetwork},
		{"unity", "Source", "Unity Ads init failure", CrashNetwork},
		{"moloco", "Source", "moloco bid error", CrashNetwork},
		{"ironsource", "Source", "ironSource mediation", CrashNetwork},
		{"default", "Notes", "something odd happened", CrashNonFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifySingle(tt.col, tt.value))
		})
	}
}

func TestClassifyCrashType_EmptyRow(t *testing.T) {
	assert.Equal(t, CrashNonFatal, ClassifyCrashType(nil, RawRow{}))
}

// Rule ordering invariants: ANR outranks Fatal, and any "non" occurrence in
// the row suppresses the Fatal label even across cells.
func TestClassifyCrashType_RuleOrdering(t *testing.T) {
	t.Run("anr beats fatal", func(t *testing.T) {
		assert.Equal(t, CrashANR, classifySingle("Notes", "ANR followed by fatal crash"))
	})

	t.Run("non in another cell suppresses fatal", func(t *testing.T) {
		cols := []string{"Type", "Device"}
		row := RawRow{"Type": "fatal", "Device": "non-retina tablet"}
		assert.Equal(t, CrashNonFatal, ClassifyCrashType(cols, row))
	})

	t.Run("fatal beats network keywords", func(t *testing.T) {
		assert.Equal(t, CrashFatal, classifySingle("Notes", "fatal error in unity module"))
	})
}

// Classification reads every cell, so a unit-suffixed count column can still
// carry the network hint.
func TestClassifyCrashType_CountColumnCarriesHint(t *testing.T) {
	cols := []string{"Game", "Crash Count"}
	row := RawRow{"Game": "puzzle blast", "Crash Count": "1.2K applovin"}
	assert.Equal(t, CrashNetwork, ClassifyCrashType(cols, row))
}

func TestSetNetworkVocabulary(t *testing.T) {
	SetNetworkVocabulary([]string{"Vungle", " chartboost "})
	defer SetNetworkVocabulary(nil)

	assert.Equal(t, CrashNetwork, classifySingle("Source", "Vungle adapter timeout"))
	assert.Equal(t, CrashNetwork, classifySingle("Source", "chartboost failure"))
	// Default vocabulary no longer applies while overridden.
	assert.Equal(t, CrashNonFatal, classifySingle("Source", "applovin issue"))

	SetNetworkVocabulary(nil)
	assert.Equal(t, CrashNetwork, classifySingle("Source", "applovin issue"))
}
