package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRange(t *testing.T, start, end string) Range {
	t.Helper()
	s, err := Parse(start)
	require.NoError(t, err)
	e, err := Parse(end)
	require.NoError(t, err)
	return New(s, e)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b [2]string
		want bool
	}{
		{"checkout on check-in day", [2]string{"2024-06-05", "2024-06-10"}, [2]string{"2024-06-10", "2024-06-15"}, false},
		{"one night overlap", [2]string{"2024-06-05", "2024-06-11"}, [2]string{"2024-06-10", "2024-06-15"}, true},
		{"contained", [2]string{"2024-06-01", "2024-06-30"}, [2]string{"2024-06-10", "2024-06-12"}, true},
		{"identical", [2]string{"2024-06-10", "2024-06-12"}, [2]string{"2024-06-10", "2024-06-12"}, true},
		{"disjoint", [2]string{"2024-06-01", "2024-06-03"}, [2]string{"2024-06-10", "2024-06-12"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustRange(t, tt.a[0], tt.a[1])
			b := mustRange(t, tt.b[0], tt.b[1])
			assert.Equal(t, tt.want, Overlaps(a, b))
			assert.Equal(t, tt.want, Overlaps(b, a), "overlap must be symmetric")
		})
	}
}

func TestOverlaps_SymmetricOverGrid(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var ranges []Range
	for s := 0; s < 6; s++ {
		for n := 1; n < 5; n++ {
			ranges = append(ranges, New(base.AddDate(0, 0, s), base.AddDate(0, 0, s+n)))
		}
	}

	for _, a := range ranges {
		for _, b := range ranges {
			require.Equal(t, Overlaps(a, b), Overlaps(b, a), "%s vs %s", a, b)
		}
	}
}

func TestOverlaps_IgnoresTimeOfDay(t *testing.T) {
	a := Range{
		Start: time.Date(2024, 6, 5, 15, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC),
	}
	b := Range{
		Start: time.Date(2024, 6, 10, 16, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 12, 11, 0, 0, 0, time.UTC),
	}
	assert.False(t, Overlaps(a, b))
	assert.True(t, Turnover(a, b))
}

func TestRange_NightsAndDays(t *testing.T) {
	r := mustRange(t, "2024-08-01", "2024-08-04")
	assert.Equal(t, 3, r.Nights())
	days := r.Days()
	require.Len(t, days, 3)
	assert.Equal(t, "2024-08-01", Format(days[0]))
	assert.Equal(t, "2024-08-03", Format(days[2]))
	assert.True(t, r.Contains(days[2]))
	assert.False(t, r.Contains(r.End))

	partial := Range{Start: r.Start, End: r.Start.Add(30 * time.Hour)}
	assert.Equal(t, 2, partial.Nights(), "partial days round up")

	assert.Equal(t, 0, Range{Start: r.End, End: r.Start}.Nights())
	assert.False(t, Range{Start: r.End, End: r.Start}.Valid())
}

func TestRange_Shift(t *testing.T) {
	r := mustRange(t, "2024-02-27", "2024-03-01")
	shifted := r.Shift(2)
	assert.Equal(t, "2024-02-29 to 2024-03-03", shifted.String())
	assert.Equal(t, r.Nights(), shifted.Nights())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("06/10/2024")
	assert.Error(t, err)
}
