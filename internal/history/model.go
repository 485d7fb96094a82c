package history

import (
	"time"

	"github.com/eleven-am/screen-assistant/internal/assistant"
)

type TurnRecord struct {
	ID         string `gorm:"primaryKey" json:"id"`
	Source     string `gorm:"not null" json:"source"`
	UserText   string `gorm:"type:text;not null" json:"user_text"`
	ScreenText string `gorm:"type:text" json:"screen_text"`
	FrameSeq   uint64 `json:"frame_seq"`
	Prompt     string `gorm:"type:text" json:"prompt"`
	Answer     string `gorm:"type:text" json:"answer"`
	Backend    string `gorm:"index" json:"backend"`
	Voice      string `json:"voice"`

	StartedAt   time.Time `gorm:"index" json:"started_at"`
	AnsweredAt  time.Time `json:"answered_at"`
	CompletedAt time.Time `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (TurnRecord) TableName() string {
	return "conversation_turns"
}

func fromTurn(t assistant.Turn) *TurnRecord {
	return &TurnRecord{
		ID:          t.ID,
		Source:      string(t.Source),
		UserText:    t.UserText,
		ScreenText:  t.ScreenText,
		FrameSeq:    t.FrameSeq,
		Prompt:      t.Prompt,
		Answer:      t.Answer,
		Backend:     t.Backend,
		Voice:       t.Voice,
		StartedAt:   t.StartedAt,
		AnsweredAt:  t.AnsweredAt,
		CompletedAt: t.CompletedAt,
	}
}
