package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		limit string
		want  Params
	}{
		{"defaults", "", "", Params{Page: 1, Limit: DefaultLimit}},
		{"explicit", "3", "20", Params{Page: 3, Limit: 20}},
		{"garbage", "abc", "-5", Params{Page: 1, Limit: DefaultLimit}},
		{"zero page", "0", "5", Params{Page: 1, Limit: 5}},
		{"limit capped", "1", "1000", Params{Page: 1, Limit: MaxLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.page, tt.limit))
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, Limit: 12}.Offset())
	assert.Equal(t, 24, Params{Page: 3, Limit: 12}.Offset())
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(Params{Page: 2, Limit: 12}, 25)
	assert.Equal(t, Meta{Page: 2, Limit: 12, Total: 25, TotalPages: 3}, m)

	m = NewMeta(Params{Page: 1, Limit: 12}, 0)
	assert.Equal(t, int64(0), m.TotalPages)

	m = NewMeta(Params{Page: 1, Limit: 12}, 24)
	assert.Equal(t, int64(2), m.TotalPages)
}
