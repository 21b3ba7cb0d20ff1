package models

import (
	"time"
)

// AIChatMessage is one chat round: the user prompt and the model reply.
type AIChatMessage struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"userId" gorm:"size:36;index;not null"`
	Model      string    `json:"model" gorm:"size:100"`
	UserText   string    `json:"userText" gorm:"type:text;not null"`
	AIText     string    `json:"aiText" gorm:"type:longtext;not null"`
	Contextual bool      `json:"contextual" gorm:"default:false"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (AIChatMessage) TableName() string {
	return "ai_chat_messages"
}
