package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/accipio/internal/models"
)

func TestParseSlotLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  models.ParsedSlotLabel
	}{
		{
			name:  "abbreviated day with slash date",
			label: "Wed 02/14/2024 9:00am - 11:00am",
			want: models.ParsedSlotLabel{
				Date:      "02/14/2024",
				DayOfWeek: "Wed",
				TimeRange: "9:00am - 11:00am",
			},
		},
		{
			name:  "full day name iso date",
			label: "Monday 2024-02-12 1:00pm to 3:00pm",
			want: models.ParsedSlotLabel{
				Date:      "2024-02-12",
				DayOfWeek: "Monday",
				TimeRange: "1:00pm to 3:00pm",
			},
		},
		{
			name:  "time range only",
			label: "9:00 - 11:00",
			want: models.ParsedSlotLabel{
				TimeRange: "9:00 - 11:00",
			},
		},
		{
			name:  "no recognizable parts",
			label: "call office to schedule",
			want:  models.ParsedSlotLabel{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSlotLabel(tt.label)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTimeTokens(t *testing.T) {
	tokens := extractTimeTokens("From 9:00 AM to 11:30pm, maybe 2:15 pm too")
	assert.Equal(t, []string{"9:00am", "11:30pm", "2:15pm"}, tokens)
}
