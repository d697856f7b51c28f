package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReadingType(t *testing.T) {
	for v := 1; v <= 4; v++ {
		prt, err := ParseReadingType(v)
		require.NoError(t, err)
		assert.Equal(t, ReadingType(v), prt)
	}

	for _, v := range []int{0, -1, 5} {
		_, err := ParseReadingType(v)
		assert.Error(t, err, "value %d", v)
	}
}

func TestPricesExtract(t *testing.T) {
	p := Prices{
		ImportActive:   100,
		ExportActive:   -200,
		ImportReactive: 300,
		ExportReactive: 400,
	}

	assert.Equal(t, int64(100), p.Extract(ImportActivePowerKwh))
	assert.Equal(t, int64(-200), p.Extract(ExportActivePowerKwh))
	assert.Equal(t, int64(300), p.Extract(ImportReactivePowerKvarh))
	assert.Equal(t, int64(400), p.Extract(ExportReactivePowerKvarh))
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name  string
		start int
		limit int
		want  Window
	}{
		{
			name:  "one full day aligned",
			start: 0,
			limit: 4,
			want:  Window{DbStart: 0, DbLimit: 1, HeadSkip: 0, TailSkip: 0},
		},
		{
			name:  "single element at day boundary",
			start: 0,
			limit: 1,
			want:  Window{DbStart: 0, DbLimit: 1, HeadSkip: 0, TailSkip: 3},
		},
		{
			name:  "offset into first day spills into second",
			start: 1,
			limit: 4,
			want:  Window{DbStart: 0, DbLimit: 2, HeadSkip: 1, TailSkip: 3},
		},
		{
			name:  "mid window spanning two days",
			start: 5,
			limit: 6,
			want:  Window{DbStart: 1, DbLimit: 2, HeadSkip: 1, TailSkip: 1},
		},
		{
			name:  "second day aligned",
			start: 4,
			limit: 8,
			want:  Window{DbStart: 1, DbLimit: 2, HeadSkip: 0, TailSkip: 0},
		},
		{
			name:  "zero limit",
			start: 2,
			limit: 0,
			want:  Window{DbStart: 0, DbLimit: 1, HeadSkip: 2, TailSkip: 2},
		},
		{
			name:  "negative inputs clamp to zero",
			start: -3,
			limit: -1,
			want:  Window{DbStart: 0, DbLimit: 0, HeadSkip: 0, TailSkip: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageWindow(tt.start, tt.limit))
		})
	}
}

// PageWindow must cover exactly the requested element range for any
// start and limit: the day bucket window minus head and tail trim equals
// the page the client asked for.
func TestPageWindowCoversRequestedRange(t *testing.T) {
	for start := 0; start < 13; start++ {
		for limit := 0; limit < 13; limit++ {
			w := PageWindow(start, limit)

			elems := w.DbLimit * ReadingTypeCount
			got := elems - w.HeadSkip - w.TailSkip
			assert.Equal(t, limit, got, "start=%d limit=%d", start, limit)
			assert.Equal(t, start, w.DbStart*ReadingTypeCount+w.HeadSkip, "start=%d limit=%d", start, limit)
		}
	}
}
