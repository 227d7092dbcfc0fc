package models

// Тесты доменной модели: Story, StoryList, User.
//
//  Проверяем:
//  - копирование полей Story и разбор hostname из собственного URL;
//  - AddStory/DeleteStory: изменения только после подтверждения сервером;
//  - избранное: оптимистичное обновление, откат при ошибке, идемпотентность;
//  - восстановление сессии: «отвергнутый токен» -> (nil, nil).
//
// Моки сгенерированы в пакете /mocks (MockAPI).

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/hack-or-snooze/internal/api"
	"github.com/pribylovaa/hack-or-snooze/mocks"
)

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func rec(id string) api.StoryRecord {
	return api.StoryRecord{
		StoryID:   id,
		Title:     "title " + id,
		Author:    "author " + id,
		URL:       "https://example.com/" + id,
		Username:  "alice",
		CreatedAt: testTime,
	}
}

func newMock(t *testing.T) *mocks.MockAPI {
	t.Helper()
	ctrl := gomock.NewController(t)
	return mocks.NewMockAPI(ctrl)
}

func newTestUser(m *mocks.MockAPI, favorites, own []api.StoryRecord) *User {
	return NewUser(api.UserRecord{
		Username:  "alice",
		Name:      "Alice",
		CreatedAt: testTime,
		Favorites: favorites,
		Stories:   own,
	}, "tok", m)
}

func ids(stories []*Story) []string {
	out := make([]string, 0, len(stories))
	for _, s := range stories {
		out = append(out, s.StoryID)
	}
	return out
}

func validationErr() error {
	return &api.Error{Op: "api/client/CreateStory", Status: http.StatusUnprocessableEntity, Kind: api.ErrValidation}
}

// --- Story ---

func TestNewStory_RoundTrip(t *testing.T) {
	t.Parallel()

	r := rec("s1")
	s := NewStory(r)

	require.Equal(t, r.StoryID, s.StoryID)
	require.Equal(t, r.Title, s.Title)
	require.Equal(t, r.Author, s.Author)
	require.Equal(t, r.URL, s.URL)
	require.Equal(t, r.Username, s.Username)
	require.Equal(t, r.CreatedAt, s.CreatedAt)
}

func TestStory_HostName(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		url, want string
	}{
		{"https://example.com/a/b", "example.com"},
		{"http://x.com", "x.com"},
		{"http://localhost:8080/path?q=1", "localhost:8080"},
		{"/relative/path", ""},
		{"not a url", ""},
		{"http://[::1", ""},
		{"", ""},
	}

	for _, tc := range tcs {
		require.Equal(t, tc.want, (&Story{URL: tc.url}).HostName(), tc.url)
	}
}

// --- StoryList ---

func TestGetStories_OK(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	m.EXPECT().ListStories(gomock.Any(), PageSize).
		Return([]api.StoryRecord{rec("3"), rec("2"), rec("1"), rec("2")}, nil)

	list, err := GetStories(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, []string{"3", "2", "1"}, ids(list.Stories()))
}

func TestGetStories_ErrorPropagated(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	m.EXPECT().ListStories(gomock.Any(), PageSize).
		Return(nil, &api.Error{Op: "api/client/ListStories", Kind: api.ErrNetwork})

	list, err := GetStories(context.Background(), m)
	require.Nil(t, list)
	require.ErrorIs(t, err, api.ErrNetwork)
}

// Сценарий: пустая лента, addStory -> stories = [Story{storyId:"1"}].
func TestAddStory_EmptyFeed_Scenario(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	user := newTestUser(m, nil, nil)
	list := NewStoryList(m, nil)

	m.EXPECT().CreateStory(gomock.Any(), "tok", api.NewStory{Title: "A", Author: "B", URL: "http://x.com"}).
		Return(api.StoryRecord{StoryID: "1", Title: "A", Author: "B", URL: "http://x.com", Username: "alice", CreatedAt: testTime}, nil)

	story, err := list.AddStory(context.Background(), user, StoryInput{Title: "A", Author: "B", URL: "http://x.com"})
	require.NoError(t, err)

	stories := list.Stories()
	require.Len(t, stories, 1)
	require.Equal(t, &Story{StoryID: "1", Title: "A", Author: "B", URL: "http://x.com", Username: "alice", CreatedAt: testTime}, stories[0])
	require.Same(t, story, stories[0])
}

func TestAddStory_PrependsToFeedAndOwnStories(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	user := newTestUser(m, nil, []api.StoryRecord{rec("old")})
	list := NewStoryList(m, []*Story{NewStory(rec("a")), NewStory(rec("b"))})

	m.EXPECT().CreateStory(gomock.Any(), "tok", gomock.Any()).Return(rec("new"), nil)

	story, err := list.AddStory(context.Background(), user, StoryInput{Title: "t", Author: "a", URL: "https://example.com"})
	require.NoError(t, err)
	require.Equal(t, "new", story.StoryID)

	require.Equal(t, []string{"new", "a", "b"}, ids(list.Stories()))
	require.Equal(t, []string{"new", "old"}, ids(user.OwnStories()))
	require.True(t, user.IsOwn(story))
}

func TestAddStory_ServerReturnsExistingID_StaysUnique(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	user := newTestUser(m, nil, nil)
	list := NewStoryList(m, []*Story{NewStory(rec("a")), NewStory(rec("b"))})

	m.EXPECT().CreateStory(gomock.Any(), "tok", gomock.Any()).Return(rec("b"), nil)

	_, err := list.AddStory(context.Background(), user, StoryInput{})
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, ids(list.Stories()))
}

func TestAddStory_Failure_LeavesCollectionsUnchanged(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	user := newTestUser(m, nil, []api.StoryRecord{rec("own")})
	list := NewStoryList(m, []*Story{NewStory(rec("a"))})

	m.EXPECT().CreateStory(gomock.Any(), "tok", gomock.Any()).Return(api.StoryRecord{}, validationErr())

	story, err := list.AddStory(context.Background(), user, StoryInput{Title: "t"})
	require.Nil(t, story)
	require.ErrorIs(t, err, api.ErrValidation)
	require.Equal(t, 1, list.Len())
	require.Len(t, user.OwnStories(), 1)
}

func TestAddStory_NoUser(t *testing.T) {
	t.Parallel()

	list := NewStoryList(newMock(t), nil)
	_, err := list.AddStory(context.Background(), nil, StoryInput{})
	require.ErrorIs(t, err, ErrNoUser)
}

func TestDeleteStory_RemovesFromAllThree(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	user := newTestUser(m, []api.StoryRecord{rec("x"), rec("f")}, []api.StoryRecord{rec("x"), rec("o")})
	list := NewStoryList(m, []*Story{NewStory(rec("a")), NewStory(rec("x"))})

	m.EXPECT().DeleteStory(gomock.Any(), "tok", "x").Return(nil)

	require.NoError(t, list.DeleteStory(context.Background(), user, "x"))

	_, found := list.Find("x")
	require.False(t, found)
	require.Equal(t, []string{"a"}, ids(list.Stories()))
	require.Equal(t, []string{"o"}, ids(user.OwnStories()))
	require.Equal(t, []string{"f"}, ids(user.Favorites()))
}

func TestDeleteStory_Failure_LeavesAllThreeUntouched(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	user := newTestUser(m, []api.StoryRecord{rec("x")}, []api.StoryRecord{rec("x")})
	list := NewStoryList(m, []*Story{NewStory(rec("x"))})

	m.EXPECT().DeleteStory(gomock.Any(), "tok", "x").
		Return(&api.Error{Op: "api/client/DeleteStory", Status: http.StatusUnauthorized, Kind: api.ErrUnauthorized})

	err := list.DeleteStory(context.Background(), user, "x")
	require.ErrorIs(t, err, api.ErrUnauthorized)

	require.Equal(t, []string{"x"}, ids(list.Stories()))
	require.Equal(t, []string{"x"}, ids(user.OwnStories()))
	require.Equal(t, []string{"x"}, ids(user.Favorites()))
}

// --- User: session ---

func TestSignup_OK_OwnStoriesFromStories(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	m.EXPECT().Signup(gomock.Any(), "alice", "pw", "Alice").
		Return(api.UserRecord{Username: "alice", Name: "Alice", CreatedAt: testTime, Stories: []api.StoryRecord{rec("s")}}, "tok", nil)

	u, err := Signup(context.Background(), m, "alice", "pw", "Alice")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, "Alice", u.Name)
	require.Equal(t, "tok", u.LoginToken)
	require.Equal(t, []string{"s"}, ids(u.OwnStories()))
	require.Empty(t, u.Favorites())
}

func TestSignup_Conflict_StructuredError(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	m.EXPECT().Signup(gomock.Any(), "alice", "pw", "Alice").
		Return(api.UserRecord{}, "", &api.Error{Op: "api/client/Signup", Status: http.StatusConflict, Kind: api.ErrConflict})

	u, err := Signup(context.Background(), m, "alice", "pw", "Alice")
	require.Nil(t, u)
	require.ErrorIs(t, err, api.ErrConflict)
}

func TestLogin_BadCredentials(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	m.EXPECT().Login(gomock.Any(), "alice", "bad").
		Return(api.UserRecord{}, "", &api.Error{Op: "api/client/Login", Status: http.StatusUnauthorized, Kind: api.ErrInvalidCredentials})

	u, err := Login(context.Background(), m, "alice", "bad")
	require.Nil(t, u)
	require.ErrorIs(t, err, api.ErrInvalidCredentials)
}

func TestLogin_OK(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	m.EXPECT().Login(gomock.Any(), "alice", "pw").
		Return(api.UserRecord{Username: "alice", Favorites: []api.StoryRecord{rec("f")}}, "tok", nil)

	u, err := Login(context.Background(), m, "alice", "pw")
	require.NoError(t, err)
	require.True(t, u.IsFavorite(&Story{StoryID: "f"}))
}

func TestLoginViaStoredCredentials(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		m := newMock(t)
		m.EXPECT().UserByName(gomock.Any(), "tok", "alice").Return(api.UserRecord{Username: "alice"}, nil)

		u, err := LoginViaStoredCredentials(context.Background(), m, "tok", "alice")
		require.NoError(t, err)
		require.Equal(t, "tok", u.LoginToken)
	})

	t.Run("invalid_token_is_absent", func(t *testing.T) {
		m := newMock(t)
		m.EXPECT().UserByName(gomock.Any(), "bad", "alice").
			Return(api.UserRecord{}, &api.Error{Op: "api/client/UserByName", Status: http.StatusUnauthorized, Kind: api.ErrUnauthorized})

		u, err := LoginViaStoredCredentials(context.Background(), m, "bad", "alice")
		require.NoError(t, err)
		require.Nil(t, u)
	})

	t.Run("unknown_user_is_absent", func(t *testing.T) {
		m := newMock(t)
		m.EXPECT().UserByName(gomock.Any(), "tok", "ghost").
			Return(api.UserRecord{}, &api.Error{Op: "api/client/UserByName", Status: http.StatusNotFound, Kind: api.ErrNotFound})

		u, err := LoginViaStoredCredentials(context.Background(), m, "tok", "ghost")
		require.NoError(t, err)
		require.Nil(t, u)
	})

	t.Run("empty_credentials_skip_call", func(t *testing.T) {
		u, err := LoginViaStoredCredentials(context.Background(), newMock(t), "", "alice")
		require.NoError(t, err)
		require.Nil(t, u)
	})

	t.Run("network_error_surfaced", func(t *testing.T) {
		m := newMock(t)
		m.EXPECT().UserByName(gomock.Any(), "tok", "alice").
			Return(api.UserRecord{}, &api.Error{Op: "api/client/UserByName", Kind: api.ErrNetwork})

		u, err := LoginViaStoredCredentials(context.Background(), m, "tok", "alice")
		require.Nil(t, u)
		require.ErrorIs(t, err, api.ErrNetwork)
	})
}

// --- User: favorites ---

func TestFavorites_AddThenRemove_RoundTrip(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	user := newTestUser(m, nil, nil)
	story := NewStory(rec("s1"))

	gomock.InOrder(
		m.EXPECT().AddFavorite(gomock.Any(), "tok", "alice", "s1").Return(nil),
		m.EXPECT().RemoveFavorite(gomock.Any(), "tok", "alice", "s1").Return(nil),
	)

	require.False(t, user.IsFavorite(story))
	require.NoError(t, user.AddFavorite(context.Background(), story))
	require.True(t, user.IsFavorite(story))

	// Другая копия с тем же storyId — тоже избранное.
	require.True(t, user.IsFavorite(NewStory(rec("s1"))))

	require.NoError(t, user.RemoveFavorite(context.Background(), story))
	require.False(t, user.IsFavorite(story))
}

func TestAddFavorite_AlreadyFavorite_NoDuplicateNoCall(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	user := newTestUser(m, []api.StoryRecord{rec("s1")}, nil)

	require.NoError(t, user.AddFavorite(context.Background(), NewStory(rec("s1"))))
	require.Len(t, user.Favorites(), 1)
}

func TestAddFavorite_Optimistic_ThenRollbackOnFailure(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	user := newTestUser(m, []api.StoryRecord{rec("a")}, nil)
	story := NewStory(rec("s1"))

	m.EXPECT().AddFavorite(gomock.Any(), "tok", "alice", "s1").
		DoAndReturn(func(context.Context, string, string, string) error {
			// Во время вызова история уже видна в избранном.
			require.True(t, user.IsFavorite(story))
			return &api.Error{Op: "api/client/AddFavorite", Kind: api.ErrNetwork}
		})

	err := user.AddFavorite(context.Background(), story)
	require.ErrorIs(t, err, api.ErrNetwork)
	require.False(t, user.IsFavorite(story))
	require.Equal(t, []string{"a"}, ids(user.Favorites()))
}

func TestRemoveFavorite_RollbackRestoresPosition(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	user := newTestUser(m, []api.StoryRecord{rec("a"), rec("b"), rec("c")}, nil)

	m.EXPECT().RemoveFavorite(gomock.Any(), "tok", "alice", "b").
		DoAndReturn(func(context.Context, string, string, string) error {
			require.Equal(t, []string{"a", "c"}, ids(user.Favorites()))
			return errors.New("boom")
		})

	require.Error(t, user.RemoveFavorite(context.Background(), NewStory(rec("b"))))
	require.Equal(t, []string{"a", "b", "c"}, ids(user.Favorites()))
}

func TestFavorites_NilStory(t *testing.T) {
	t.Parallel()

	user := newTestUser(newMock(t), nil, nil)
	require.ErrorIs(t, user.AddFavorite(context.Background(), nil), ErrNoStory)
	require.ErrorIs(t, user.RemoveFavorite(context.Background(), nil), ErrNoStory)
	require.False(t, user.IsFavorite(nil))
}

func TestFavorites_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	m := newMock(t)
	user := newTestUser(m, nil, nil)
	m.EXPECT().AddFavorite(gomock.Any(), "tok", "alice", gomock.Any()).Return(nil).AnyTimes()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = user.AddFavorite(context.Background(), &Story{StoryID: id})
			_ = user.Favorites()
		}(string(rune('a' + i)))
	}
	wg.Wait()

	require.Len(t, user.Favorites(), 16)
}
