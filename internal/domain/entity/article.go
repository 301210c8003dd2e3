// Package entity defines the core domain entities and validation logic for the application.
// It contains the canonical Article record every source is normalized into, the closed
// set of supported news sources, and the domain-specific errors raised while building them.
package entity

import (
	"math"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// wordsPerMinute is the reading speed used to estimate reading time.
const wordsPerMinute = 200

// Article represents a normalized news article.
// Articles are immutable once constructed: fields are only reachable through accessors,
// and every value handed out is a copy.
type Article struct {
	id         uuid.UUID
	title      string
	summary    *string
	link       *url.URL
	source     NewsSource
	tags       Tags
	authorName *string
	content    *Content
	createdAt  time.Time
}

// Content is the optional body of an article.
type Content struct {
	Text                        string
	EstimatedReadingTimeSeconds int
}

// ArticleParams holds the unvalidated input for NewArticle.
// Nil pointers mean the upstream did not supply the value.
type ArticleParams struct {
	Title      string
	Summary    *string
	Link       string
	Source     NewsSource
	Tags       []string
	AuthorName *string
	BodyText   *string
}

// NewArticle validates params and builds an Article with a freshly generated ID.
// It returns a *ValidationError when the title is blank, when a summary is supplied
// but blank, when the link is not an absolute URL, or when a tag is blank.
func NewArticle(p ArticleParams) (*Article, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is empty"}
	}

	var summary *string
	if p.Summary != nil {
		s := strings.TrimSpace(*p.Summary)
		if s == "" {
			return nil, &ValidationError{Field: "summary", Message: "short summary is empty"}
		}
		summary = &s
	}

	link, err := ParseAbsoluteURL(p.Link)
	if err != nil {
		return nil, err
	}

	tags, err := NewTags(p.Tags...)
	if err != nil {
		return nil, err
	}

	var content *Content
	if p.BodyText != nil {
		c := NewContent(*p.BodyText)
		content = &c
	}

	return &Article{
		id:         uuid.New(),
		title:      title,
		summary:    summary,
		link:       link,
		source:     p.Source,
		tags:       tags,
		authorName: cloneString(p.AuthorName),
		content:    content,
		createdAt:  time.Now().UTC(),
	}, nil
}

// StoredArticle is an article as read back from storage.
type StoredArticle struct {
	ID         uuid.UUID
	Title      string
	Summary    *string
	Link       string
	Source     NewsSource
	Tags       []string
	AuthorName *string
	CreatedAt  time.Time
}

// RestoreArticle rebuilds a previously persisted article, keeping its ID and creation time.
// Only the link is re-checked; a stored link that no longer parses is reported as a
// *ValidationError for the caller to classify.
func RestoreArticle(s StoredArticle) (*Article, error) {
	link, err := ParseAbsoluteURL(s.Link)
	if err != nil {
		return nil, err
	}

	tags := make(Tags, 0, len(s.Tags))
	for _, t := range s.Tags {
		tags = append(tags, Tag(t))
	}

	return &Article{
		id:         s.ID,
		title:      s.Title,
		summary:    cloneString(s.Summary),
		link:       link,
		source:     s.Source,
		tags:       tags,
		authorName: cloneString(s.AuthorName),
		createdAt:  s.CreatedAt,
	}, nil
}

// NewContent wraps body text together with its estimated reading time.
func NewContent(text string) Content {
	return Content{
		Text:                        text,
		EstimatedReadingTimeSeconds: EstimateReadingTime(text),
	}
}

// EstimateReadingTime returns the reading time of text in whole seconds at 200 words
// per minute, floored, and never less than one second.
func EstimateReadingTime(text string) int {
	words := len(strings.Fields(text))

	var seconds float32
	if words > 0 {
		seconds = float32(words) / wordsPerMinute * 60
	}

	return max(1, int(math.Floor(float64(seconds))))
}

func (a *Article) ID() uuid.UUID        { return a.id }
func (a *Article) Title() string        { return a.title }
func (a *Article) Source() NewsSource   { return a.source }
func (a *Article) CreatedAt() time.Time { return a.createdAt }

// Link returns a copy of the article URL.
func (a *Article) Link() *url.URL {
	u := *a.link
	return &u
}

// Summary returns the short summary and whether one is present.
func (a *Article) Summary() (string, bool) {
	if a.summary == nil {
		return "", false
	}
	return *a.summary, true
}

// AuthorName returns the author and whether the upstream supplied one.
func (a *Article) AuthorName() (string, bool) {
	if a.authorName == nil {
		return "", false
	}
	return *a.authorName, true
}

// Content returns the article body and whether one is present.
func (a *Article) Content() (Content, bool) {
	if a.content == nil {
		return Content{}, false
	}
	return *a.content, true
}

// Tags returns a copy of the article tags in display order.
func (a *Article) Tags() Tags {
	return slices.Clone(a.tags)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
