package leadimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldPartition(t *testing.T) {
	all := AllFields()
	required := RequiredFields()
	optional := OptionalFields()

	assert.Equal(t, []string{"full_name", "email", "phone", "country", "timezone", "income_range", "agent", "comment"}, all)
	assert.Equal(t, []string{"full_name", "email", "phone"}, required)
	assert.Equal(t, []string{"country", "timezone", "income_range", "agent", "comment"}, optional)
	assert.Equal(t, len(all), len(required)+len(optional))

	// callers get copies
	all[0] = "mutated"
	assert.Equal(t, "full_name", AllFields()[0])
}

func TestSuggestMapping(t *testing.T) {
	m := SuggestMapping([]string{"Full Name", "E-Mail", "Mobile", "Phone", "TZ", "Notes", "Unnamed: 6"})

	assert.Equal(t, "Full Name", m[FieldFullName])
	assert.Equal(t, "E-Mail", m[FieldEmail])
	assert.Equal(t, "Mobile", m[FieldPhone])
	assert.Equal(t, "TZ", m[FieldTimezone])
	assert.Equal(t, "Notes", m[FieldComment])
	assert.Equal(t, "", m[FieldAgent])
	assert.Len(t, m, len(AllFields()))
}
