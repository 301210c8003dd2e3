package entity

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestNewArticle_Valid(t *testing.T) {
	article, err := NewArticle(ArticleParams{
		Title:      "  Rust 2.0 released  ",
		Summary:    ptr(" A short summary "),
		Link:       "https://example.com/path/to/article",
		Source:     HackerNews,
		Tags:       []string{"story", "front_page"},
		AuthorName: ptr("pg"),
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, article.ID())
	assert.Equal(t, "Rust 2.0 released", article.Title())
	assert.Equal(t, "https://example.com/path/to/article", article.Link().String())
	assert.Equal(t, HackerNews, article.Source())
	assert.Equal(t, []string{"story", "front_page"}, article.Tags().Strings())
	assert.False(t, article.CreatedAt().IsZero())

	summary, ok := article.Summary()
	assert.True(t, ok)
	assert.Equal(t, "A short summary", summary)

	author, ok := article.AuthorName()
	assert.True(t, ok)
	assert.Equal(t, "pg", author)

	_, ok = article.Content()
	assert.False(t, ok, "content is omitted without body text")
}

func TestNewArticle_OptionalFieldsAbsent(t *testing.T) {
	article, err := NewArticle(ArticleParams{
		Title:  "Title",
		Link:   "https://example.com",
		Source: IrishTimes,
	})
	require.NoError(t, err)

	_, ok := article.Summary()
	assert.False(t, ok)
	_, ok = article.AuthorName()
	assert.False(t, ok)
	assert.NotNil(t, article.Tags())
	assert.Empty(t, article.Tags())
}

func TestNewArticle_GeneratesDistinctIDs(t *testing.T) {
	p := ArticleParams{Title: "Title", Link: "https://example.com", Source: Dou}

	a, err := NewArticle(p)
	require.NoError(t, err)
	b, err := NewArticle(p)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID(), b.ID())
}

func TestNewArticle_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		params    ArticleParams
		wantField string
	}{
		{
			name:      "empty title",
			params:    ArticleParams{Title: "", Link: "https://example.com"},
			wantField: "title",
		},
		{
			name:      "whitespace title",
			params:    ArticleParams{Title: " \t\n ", Link: "https://example.com"},
			wantField: "title",
		},
		{
			name:      "blank summary",
			params:    ArticleParams{Title: "Title", Summary: ptr("   "), Link: "https://example.com"},
			wantField: "summary",
		},
		{
			name:      "empty summary",
			params:    ArticleParams{Title: "Title", Summary: ptr(""), Link: "https://example.com"},
			wantField: "summary",
		},
		{
			name:      "relative link",
			params:    ArticleParams{Title: "Title", Link: "/path/to/article"},
			wantField: "link",
		},
		{
			name:      "malformed link",
			params:    ArticleParams{Title: "Title", Link: "http://[::1"},
			wantField: "link",
		},
		{
			name:      "missing link",
			params:    ArticleParams{Title: "Title"},
			wantField: "link",
		},
		{
			name:      "blank tag",
			params:    ArticleParams{Title: "Title", Link: "https://example.com", Tags: []string{"ok", " "}},
			wantField: "tags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			article, err := NewArticle(tt.params)
			assert.Nil(t, article)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "got %v", err)
			assert.Equal(t, tt.wantField, validationErr.Field)
		})
	}
}

func TestNewArticle_Content(t *testing.T) {
	body := strings.TrimSpace(strings.Repeat("word ", 200))

	article, err := NewArticle(ArticleParams{
		Title:    "Title",
		Link:     "https://example.com",
		BodyText: &body,
	})
	require.NoError(t, err)

	content, ok := article.Content()
	require.True(t, ok)
	assert.Equal(t, body, content.Text)
	assert.Equal(t, 60, content.EstimatedReadingTimeSeconds)
}

func TestEstimateReadingTime(t *testing.T) {
	tests := []struct {
		name  string
		words int
		want  int
	}{
		{name: "one word is floored up to one second", words: 1, want: 1},
		{name: "three words", words: 3, want: 1},
		{name: "four words", words: 4, want: 1},
		{name: "two hundred words", words: 200, want: 60},
		{name: "three hundred words", words: 300, want: 90},
		{name: "one thousand words", words: 1000, want: 300},
		{name: "no words", words: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("lorem\t", tt.words)
			assert.Equal(t, tt.want, EstimateReadingTime(text))
		})
	}
}

func TestRestoreArticle(t *testing.T) {
	id := uuid.New()

	article, err := RestoreArticle(StoredArticle{
		ID:     id,
		Title:  "Stored",
		Link:   "https://irishtimes.com/technology/a",
		Source: IrishTimes,
		Tags:   []string{"technology"},
	})
	require.NoError(t, err)

	assert.Equal(t, id, article.ID())
	assert.Equal(t, Tags{"technology"}, article.Tags())
}

func TestRestoreArticle_CorruptLink(t *testing.T) {
	_, err := RestoreArticle(StoredArticle{ID: uuid.New(), Title: "Stored", Link: "not a url"})

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "link", validationErr.Field)
}

func TestArticle_AccessorsReturnCopies(t *testing.T) {
	article, err := NewArticle(ArticleParams{
		Title: "Title",
		Link:  "https://example.com/a",
		Tags:  []string{"one"},
	})
	require.NoError(t, err)

	article.Link().Path = "/mutated"
	tags := article.Tags()
	tags[0] = "mutated"

	assert.Equal(t, "/a", article.Link().Path)
	assert.Equal(t, Tags{"one"}, article.Tags())
}
