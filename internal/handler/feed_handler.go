package handler

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/hitoshi/kumivoice/internal/model"
)

// feedItemLimit はRSSフィードに含める投稿の最大件数。
const feedItemLimit = 20

// FeedHandler は公開投稿のRSS 2.0フィードを配信するハンドラー。
type FeedHandler struct {
	service PostServiceInterface
	baseURL string
	title   string
}

// NewFeedHandler はFeedHandlerを生成する。
// baseURLはリンク生成に使うサイトのベースURL（例: "https://union.example.jp"）。
func NewFeedHandler(service PostServiceInterface, baseURL, title string) *FeedHandler {
	return &FeedHandler{
		service: service,
		baseURL: baseURL,
		title:   title,
	}
}

// rssDocument はRSS 2.0のルート要素。
type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Category    string `xml:"category"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
}

// Feed は公開済み投稿のRSSフィードを返す。
// GET /api/feed
func (h *FeedHandler) Feed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPublished(r.Context(), feedItemLimit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	doc := h.buildDocument(posts)

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	enc.Encode(doc)
}

func (h *FeedHandler) buildDocument(posts []model.Post) rssDocument {
	items := make([]rssItem, len(posts))
	for i, p := range posts {
		link := fmt.Sprintf("%s/posts/%s", h.baseURL, p.ID)
		items[i] = rssItem{
			Title:       p.Title,
			Link:        link,
			Description: p.Excerpt,
			Category:    p.Category,
			GUID:        link,
			PubDate:     p.CreatedAt.Format(time.RFC1123Z),
		}
	}

	channel := rssChannel{
		Title:       h.title,
		Link:        h.baseURL,
		Description: h.title + " の最新のお知らせ",
		Language:    "ja",
		Items:       items,
	}
	if len(posts) > 0 {
		channel.LastBuildDate = posts[0].CreatedAt.Format(time.RFC1123Z)
	}

	return rssDocument{Version: "2.0", Channel: channel}
}
