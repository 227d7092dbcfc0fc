package handlers

import (
	"encoding/xml"
	"net/http"
	"time"

	apierrors "github.com/pribylovaa/hack-or-snooze/internal/errors"
	"github.com/pribylovaa/hack-or-snooze/internal/models"
)

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate,omitempty"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// RSS — текущая лента сессии в формате RSS 2.0 (при первой загрузке лента берётся с сервера).
func (h *Handlers) RSS(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)

	feed := sess.Feed()
	if feed == nil {
		list, err := models.GetStories(r.Context(), h.API)
		if err != nil {
			apierrors.WriteError(w, r, err)
			return
		}
		sess.SetFeed(list)
		feed = list
	}

	doc := rssDoc{
		Version: "2.0",
		Channel: rssChannel{
			Title:       "Hack or Snooze",
			Link:        baseURL(r) + "/",
			Description: "Latest stories",
		},
	}

	for _, s := range feed.Stories() {
		item := rssItem{
			Title:       s.Title,
			Link:        s.URL,
			Description: "by " + s.Author + ", posted by " + s.Username,
			GUID:        rssGUID{IsPermaLink: "false", Value: s.StoryID},
		}
		if !s.CreatedAt.IsZero() {
			item.PubDate = s.CreatedAt.UTC().Format(time.RFC1123Z)
		}
		doc.Channel.Items = append(doc.Channel.Items, item)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}

	return scheme + "://" + r.Host
}
