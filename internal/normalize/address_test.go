package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddress(t *testing.T) {
	tests := []struct {
		name     string
		street   string
		city     string
		state    string
		postal   string
		expected string
	}{
		{
			name:     "Directional and street type",
			street:   "123 N Main St",
			city:     "St Petersburg",
			state:    "FL",
			postal:   "33701",
			expected: "123 north main street street petersburg fl 33701",
		},
		{
			name:     "Punctuation and spacing",
			street:   "  4500  S.W.  Park   Blvd. ",
			city:     "St. Petersburg",
			state:    "fl",
			postal:   "33711",
			expected: "4500 southwest park boulevard street petersburg fl 33711",
		},
		{
			name:     "Hash unit",
			street:   "200 Central Ave #12",
			city:     "St Petersburg",
			state:    "FL",
			expected: "200 central avenue unit 12 street petersburg fl",
		},
		{
			name:     "Apartment designator",
			street:   "200 Central Ave Apt 12",
			city:     "St Petersburg",
			state:    "FL",
			expected: "200 central avenue unit 12 street petersburg fl",
		},
		{
			name:     "Designator followed by hash",
			street:   "200 Central Ave Suite #12",
			city:     "St Petersburg",
			state:    "FL",
			expected: "200 central avenue unit 12 street petersburg fl",
		},
		{
			name:     "Compound directional",
			street:   "901 NE 5th Ter",
			city:     "Tampa",
			state:    "FL",
			expected: "901 northeast 5th terrace tampa fl",
		},
		{
			name:     "Whole words only",
			street:   "77 Stone Drive Ln",
			city:     "Westchase",
			state:    "FL",
			expected: "77 stone drive lane westchase fl",
		},
		{
			name:     "Empty input",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Address(tt.street, tt.city, tt.state, tt.postal))
		})
	}
}

func TestAddressEquivalence(t *testing.T) {
	pairs := []struct {
		name string
		a    [4]string
		b    [4]string
	}{
		{
			name: "Abbreviated and spelled out",
			a:    [4]string{"123 N Main St", "St Petersburg", "FL", "33701"},
			b:    [4]string{"123 North Main Street", "St Petersburg", "FL", "33701"},
		},
		{
			name: "Apt and hash",
			a:    [4]string{"10 Bay Dr Apt 2", "St Petersburg", "FL", "33704"},
			b:    [4]string{"10 Bay Dr #2", "St Petersburg", "FL", "33704"},
		},
		{
			name: "Case and punctuation",
			a:    [4]string{"55 E. Pine Ct.", "ST. PETERSBURG", "FL", ""},
			b:    [4]string{"55 east pine court", "st petersburg", "fl", ""},
		},
		{
			name: "Suite and unit",
			a:    [4]string{"1 Main St Ste 300", "Tampa", "FL", "33602"},
			b:    [4]string{"1 Main St Unit 300", "Tampa", "FL", "33602"},
		},
	}

	for _, p := range pairs {
		t.Run(p.name, func(t *testing.T) {
			assert.Equal(t,
				Address(p.a[0], p.a[1], p.a[2], p.a[3]),
				Address(p.b[0], p.b[1], p.b[2], p.b[3]),
			)
		})
	}
}

func TestAddressIdempotent(t *testing.T) {
	inputs := []string{
		"123 N Main St Apt #4",
		"4500 SW Park Blvd., Suite 9",
		"901 NE 5th Ter",
		"  weird   ,, spacing ## 7 ",
	}

	for _, in := range inputs {
		once := Address(in, "St Petersburg", "FL", "33701")
		twice := Address(once, "", "", "")
		assert.Equal(t, once, twice, in)
	}
}

func TestAddressDistinctUnits(t *testing.T) {
	a := Address("10 Bay Dr Apt 2", "St Petersburg", "FL", "33704")
	b := Address("10 Bay Dr Apt 3", "St Petersburg", "FL", "33704")
	assert.NotEqual(t, a, b)
}
