// Package news serves the news routes: articles of a source, the supported
// sources and manual ingestion.
package news

import "catchup-server/internal/domain/entity"

// ArticleDTO is the JSON form of an article. Optional fields are omitted when absent.
type ArticleDTO struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	ShortSummary *string     `json:"shortSummary,omitempty"`
	Link         string      `json:"link"`
	Source       string      `json:"source"`
	Tags         []string    `json:"tags"`
	AuthorName   *string     `json:"authorName,omitempty"`
	Content      *ContentDTO `json:"content,omitempty"`
}

type ContentDTO struct {
	Text                        string `json:"text"`
	EstimatedReadingTimeSeconds int    `json:"estimatedReadingTimeSeconds"`
}

type ArticlesResponse struct {
	Articles []ArticleDTO `json:"articles"`
}

type SourceDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Homepage string `json:"homepage"`
	ImageURL string `json:"imageUrl"`
}

type SourcesResponse struct {
	Sources []SourceDTO `json:"sources"`
}

type IngestionResponse struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

func toArticleDTO(a *entity.Article) ArticleDTO {
	dto := ArticleDTO{
		ID:     a.ID().String(),
		Title:  a.Title(),
		Link:   a.Link().String(),
		Source: a.Source().Key(),
		Tags:   a.Tags().Strings(),
	}
	if summary, ok := a.Summary(); ok {
		dto.ShortSummary = &summary
	}
	if author, ok := a.AuthorName(); ok {
		dto.AuthorName = &author
	}
	if content, ok := a.Content(); ok {
		dto.Content = &ContentDTO{
			Text:                        content.Text,
			EstimatedReadingTimeSeconds: content.EstimatedReadingTimeSeconds,
		}
	}
	return dto
}
