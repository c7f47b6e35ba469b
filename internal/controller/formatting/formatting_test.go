package formatting

import (
	"testing"
	"time"

	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{45, "45 мин"},
		{60, "1 ч"},
		{90, "1 ч 30 мин"},
		{120, "2 ч"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.minutes))
	}
}

func TestFormatTimes(t *testing.T) {
	start := time.Date(2025, 3, 2, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "02.03.2025 09:05", FormatDateTime(start))
	assert.Equal(t, "09:05-10:05", FormatTimeRange(start, start.Add(time.Hour)))
}

func TestStatusDisplays(t *testing.T) {
	assert.Equal(t, "⏳ Ожидает ответа", RequestStatus(model.RequestStatusPending).String())
	assert.Equal(t, "👻 Неявка", SessionStatus(model.SessionStatusNoShow).String())
	assert.Equal(t, "❓", RequestStatus("archived").Emoji)
	assert.Equal(t, "очно", Format(model.FormatInPerson))
}
