package formatting

import "github.com/Freeeeeet/skill_swap/internal/model"

// StatusDisplay представляет отображение статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

func (d StatusDisplay) String() string {
	return d.Emoji + " " + d.Text
}

// RequestStatus возвращает emoji и текст для статуса заявки
func RequestStatus(status model.RequestStatus) StatusDisplay {
	displays := map[model.RequestStatus]StatusDisplay{
		model.RequestStatusPending:   {"⏳", "Ожидает ответа"},
		model.RequestStatusAccepted:  {"✅", "Принята"},
		model.RequestStatusDeclined:  {"🚫", "Отклонена"},
		model.RequestStatusCancelled: {"❌", "Отменена"},
		model.RequestStatusExpired:   {"⌛️", "Истекла"},
	}

	if display, ok := displays[status]; ok {
		return display
	}
	return StatusDisplay{"❓", "Неизвестно"}
}

// SessionStatus возвращает emoji и текст для статуса сессии
func SessionStatus(status model.SessionStatus) StatusDisplay {
	displays := map[model.SessionStatus]StatusDisplay{
		model.SessionStatusScheduled:  {"🗓", "Запланирована"},
		model.SessionStatusInProgress: {"▶️", "Идёт"},
		model.SessionStatusCompleted:  {"✔️", "Завершена"},
		model.SessionStatusCancelled:  {"❌", "Отменена"},
		model.SessionStatusNoShow:     {"👻", "Неявка"},
	}

	if display, ok := displays[status]; ok {
		return display
	}
	return StatusDisplay{"❓", "Неизвестно"}
}

// Format возвращает название формата занятия
func Format(format model.SessionFormat) string {
	switch format {
	case model.FormatOnline:
		return "онлайн"
	case model.FormatInPerson:
		return "очно"
	case model.FormatFlexible:
		return "любой"
	default:
		return string(format)
	}
}
