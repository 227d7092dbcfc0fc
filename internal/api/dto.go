package api

import "time"

// StoryRecord — плоское представление истории в API.
type StoryRecord struct {
	StoryID   string    `json:"storyId"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	URL       string    `json:"url"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserRecord — профиль пользователя в API вместе с его коллекциями.
type UserRecord struct {
	Username  string        `json:"username"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"createdAt"`
	Favorites []StoryRecord `json:"favorites"`
	Stories   []StoryRecord `json:"stories"`
}

// NewStory — поля новой истории; storyId/createdAt назначает сервер.
type NewStory struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

type storiesResponse struct {
	Stories []StoryRecord `json:"stories"`
}

type storyResponse struct {
	Story StoryRecord `json:"story"`
}

type userResponse struct {
	User UserRecord `json:"user"`
}

type authResponse struct {
	User  UserRecord `json:"user"`
	Token string     `json:"token"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type createStoryRequest struct {
	Token string   `json:"token"`
	Story NewStory `json:"story"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type authRequest struct {
	User credentials `json:"user"`
}

// errorEnvelope — тело ошибки API: {"error": {"status", "title", "message"}}.
type errorEnvelope struct {
	Error struct {
		Status  int    `json:"status"`
		Title   string `json:"title"`
		Message string `json:"message"`
	} `json:"error"`
}
