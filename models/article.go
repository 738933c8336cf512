package models

import "time"

type ArticleStatus string

const (
	ArticleDraft     ArticleStatus = "draft"
	ArticlePublished ArticleStatus = "published"
	ArticleScheduled ArticleStatus = "scheduled"
	ArticleArchived  ArticleStatus = "archived"
)

// Article is a blog post as managed from the back-office.
type Article struct {
	ID          string        `json:"id" mapstructure:"id" csv:"id"`
	Title       string        `json:"title" mapstructure:"title" csv:"title"`
	Slug        string        `json:"slug" mapstructure:"slug" csv:"slug"`
	Author      string        `json:"author" mapstructure:"author" csv:"author"`
	Excerpt     string        `json:"excerpt,omitempty" mapstructure:"excerpt" csv:"-"`
	Content     string        `json:"content,omitempty" mapstructure:"content" csv:"-"`
	Category    string        `json:"category,omitempty" mapstructure:"category" csv:"category"`
	Status      ArticleStatus `json:"status" mapstructure:"status" csv:"status"`
	Tags        []string      `json:"tags,omitempty" mapstructure:"tags" csv:"-"`
	Views       int           `json:"views,omitempty" mapstructure:"views" csv:"views"`
	PublishDate string        `json:"publishDate,omitempty" mapstructure:"publishDate" csv:"publish_date"`
	CreatedAt   time.Time     `json:"createdAt" mapstructure:"createdAt" csv:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" mapstructure:"updatedAt" csv:"updated_at"`
}

func (a Article) Attributes() Attributes {
	return Attributes{
		Text:     []string{a.Title, a.Excerpt, a.Author},
		Category: a.Category,
		Status:   string(a.Status),
		Tags:     a.Tags,
	}
}

func (a Article) SortValue(field string) any {
	switch field {
	case "title":
		return a.Title
	case "author":
		return a.Author
	case "views":
		return a.Views
	case "publishDate":
		return a.PublishDate
	case "status":
		return string(a.Status)
	case "createdAt":
		return a.CreatedAt
	case "updatedAt":
		return a.UpdatedAt
	}
	return nil
}
