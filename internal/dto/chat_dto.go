package dto

import "time"

// ChatRequest is one inbound message. Email is used as the session key as given.
type ChatRequest struct {
	Email   string `json:"email"`
	Message string `json:"message" validate:"required"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type PreferencesRequest struct {
	Email       string   `json:"email" validate:"required"`
	Preferences []string `json:"preferences" validate:"dive,required"`
}

type UtteranceDTO struct {
	Speaker string    `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

type SessionResponse struct {
	Email        string         `json:"email"`
	Name         string         `json:"name,omitempty"`
	Preferences  []string       `json:"preferences"`
	History      []UtteranceDTO `json:"history"`
	LastQuestion string         `json:"last_question,omitempty"`
}
