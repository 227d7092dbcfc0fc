package models

import (
	"net/url"
	"time"

	"github.com/pribylovaa/hack-or-snooze/internal/api"
)

// Story — одна публикация. После создания не меняется; обновление — только заменой.
type Story struct {
	StoryID   string
	Title     string
	Author    string
	URL       string
	Username  string
	CreatedAt time.Time
}

// NewStory копирует поля записи API без валидации.
func NewStory(r api.StoryRecord) *Story {
	return &Story{
		StoryID:   r.StoryID,
		Title:     r.Title,
		Author:    r.Author,
		URL:       r.URL,
		Username:  r.Username,
		CreatedAt: r.CreatedAt,
	}
}

// HostName возвращает host (вместе с портом, если он задан) из URL истории.
// Для относительного или некорректного URL возвращает пустую строку.
func (s *Story) HostName() string {
	u, err := url.Parse(s.URL)
	if err != nil || !u.IsAbs() {
		return ""
	}

	return u.Host
}
