package model

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferences_Normalize(t *testing.T) {
	p := Preferences{
		HighValueKeywords:   []string{" API ", "api", "", "billing", "Billing"},
		PreferredIndustries: []string{"Technology", "  ", "technology"},
	}.Normalize()

	assert.Equal(t, []string{"API", "billing"}, p.HighValueKeywords)
	assert.Equal(t, []string{"Technology"}, p.PreferredIndustries)
}

func TestPreferences_Validate(t *testing.T) {
	assert.NoError(t, Preferences{HighValueKeywords: []string{"api"}}.Validate())
	assert.NoError(t, Preferences{PreferredIndustries: []string{"Retail"}}.Validate())

	err := Preferences{}.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least one")

	err = Preferences{HighValueKeywords: []string{"api", ""}}.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid entry")

	err = Preferences{HighValueKeywords: []string{" ", "  "}}.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least one")
}

func TestPreferences_ValidateBounds(t *testing.T) {
	long := strings.Repeat("a", MaxPreferenceLength+1)
	err := Preferences{HighValueKeywords: []string{long}}.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid entry")

	assert.NoError(t, Preferences{HighValueKeywords: []string{strings.Repeat("é", MaxPreferenceLength)}}.Validate())

	many := make([]string, MaxPreferenceEntries+1)
	for i := range many {
		many[i] = fmt.Sprintf("industry %d", i)
	}
	err = Preferences{PreferredIndustries: many}.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid entry")
}

func TestLead_HasSource(t *testing.T) {
	l := &Lead{DataSources: []string{"a", "b"}}
	assert.True(t, l.HasSource("b"))
	assert.False(t, l.HasSource("c"))
}
