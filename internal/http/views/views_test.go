package views

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/hack-or-snooze/internal/api"
	"github.com/pribylovaa/hack-or-snooze/internal/models"
)

func render(t *testing.T, name string, p Page) *goquery.Document {
	t.Helper()

	r, err := New()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	require.NoError(t, r.Render(rr, http.StatusOK, name, p))
	require.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	return doc
}

func story(id, url string) *models.Story {
	return &models.Story{StoryID: id, Title: "T" + id, Author: "A" + id, URL: url, Username: "bob"}
}

func TestStoryMarkup_Anonymous_NoStarNoTrash(t *testing.T) {
	stories := []*models.Story{story("s1", "https://example.com/a/b")}

	doc := render(t, "stories", Page{Section: SectionAll, Stories: Items(stories, nil, false, "/")})

	li := doc.Find("#all-stories-list li")
	require.Equal(t, 1, li.Length())
	require.Equal(t, "s1", li.AttrOr("id", ""))
	require.Zero(t, li.Find(".star").Length())
	require.Zero(t, li.Find(".trash-can").Length())

	link := li.Find("a.story-link")
	require.Equal(t, "https://example.com/a/b", link.AttrOr("href", ""))
	require.Equal(t, "a_blank", link.AttrOr("target", ""))
	require.Equal(t, "Ts1", link.Text())
	require.Equal(t, "(example.com)", li.Find(".story-hostname").Text())
	require.Equal(t, "by As1", li.Find(".story-author").Text())
	require.Equal(t, "posted by bob", li.Find(".story-user").Text())

	require.Equal(t, 1, doc.Find("#nav-login").Length())
	require.Zero(t, doc.Find("#submit-form").Length())
}

func TestStoryMarkup_SignedIn_StarReflectsFavorite(t *testing.T) {
	user := models.NewUser(api.UserRecord{
		Username:  "alice",
		Favorites: []api.StoryRecord{{StoryID: "fav"}},
	}, "tok", nil)

	stories := []*models.Story{story("fav", "https://a.com"), story("plain", "https://b.com")}

	doc := render(t, "stories", Page{
		User:       user,
		Section:    SectionAll,
		ShowSubmit: true,
		Stories:    Items(stories, user, false, "/"),
	})

	require.True(t, doc.Find("li#fav .star i").HasClass("fas"))
	require.False(t, doc.Find("li#fav .star i").HasClass("far"))
	require.True(t, doc.Find("li#plain .star i").HasClass("far"))
	require.Equal(t, "/stories/plain/favorite", doc.Find("li#plain form.star").AttrOr("action", ""))
	require.Equal(t, "/", doc.Find("li#plain form.star input[name=return]").AttrOr("value", ""))
	require.Zero(t, doc.Find(".trash-can").Length())

	require.Equal(t, "alice", doc.Find("#nav-user-profile").Text())
	require.Equal(t, 1, doc.Find("#submit-form").Length())
}

func TestStoryMarkup_OwnStories_TrashCan(t *testing.T) {
	user := models.NewUser(api.UserRecord{Username: "alice"}, "tok", nil)

	doc := render(t, "stories", Page{
		User:    user,
		Section: SectionOwn,
		Stories: Items([]*models.Story{story("mine", "https://x.com")}, user, true, "/my-stories"),
	})

	form := doc.Find("li#mine form.trash-can")
	require.Equal(t, 1, form.Length())
	require.Equal(t, "/stories/mine/delete", form.AttrOr("action", ""))
	require.Equal(t, 1, doc.Find("li#mine .fa-trash-alt").Length())
}

func TestStoryMarkup_RelativeURL_EmptyHostname(t *testing.T) {
	doc := render(t, "stories", Page{Section: SectionAll, Stories: Items([]*models.Story{story("r", "/local")}, nil, false, "/")})

	require.Equal(t, "()", doc.Find("li#r .story-hostname").Text())
}

func TestStoryMarkup_EscapesContent(t *testing.T) {
	s := story("x", "javascript:alert(1)")
	s.Title = "<script>alert(1)</script>"

	r, err := New()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	require.NoError(t, r.Render(rr, http.StatusOK, "stories", Page{Stories: Items([]*models.Story{s}, nil, false, "/")}))

	body := rr.Body.String()
	require.NotContains(t, body, "<script>alert(1)</script>")
	require.NotContains(t, body, `href="javascript:`)
}

func TestEmptyStates(t *testing.T) {
	user := models.NewUser(api.UserRecord{Username: "alice"}, "tok", nil)

	doc := render(t, "stories", Page{User: user, Section: SectionOwn, Empty: EmptyOwnStories})
	require.Equal(t, "Current User has no stories added yet.", doc.Find("#my-stories h5").Text())
	require.Zero(t, doc.Find("li").Length())

	doc = render(t, "stories", Page{User: user, Section: SectionFavorites, Empty: EmptyFavorites})
	require.Equal(t, "User has no favorites added yet.", doc.Find("#favorited-stories h5").Text())
}

func TestLoginPage_ErrorAndForms(t *testing.T) {
	doc := render(t, "login", Page{Title: "login", Error: "Users credentials invalid.", Username: "alice"})

	require.Equal(t, "Users credentials invalid.", doc.Find("#page-error").Text())
	require.Equal(t, "/login", doc.Find("#login-form").AttrOr("action", ""))
	require.Equal(t, "/signup", doc.Find("#signup-form").AttrOr("action", ""))
	require.Equal(t, "alice", doc.Find("#login-username").AttrOr("value", ""))
}

func TestRender_UnknownTemplate(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	require.Error(t, r.Render(rr, http.StatusOK, "nope", Page{}))
	require.Zero(t, rr.Body.Len())
}
