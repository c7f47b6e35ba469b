package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	assert.True(t, b.Empty())

	markup := b.
		Row(Button("✅ Принять", "req_accept:1"), Button("❌ Отклонить", "req_decline:1")).
		Row().
		Row(URLButton("🔗 Ссылка", "https://meet.example.edu/go")).
		Build()

	assert.False(t, b.Empty())
	assert.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "req_decline:1", markup.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, "https://meet.example.edu/go", markup.InlineKeyboard[1][0].URL)
}
