package models

import "time"

// BlogPost is a published article as served by GET /content/blog.
type BlogPost struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Author      string    `json:"author"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Content     string    `json:"content,omitempty"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	ReadMinutes int       `json:"readMinutes,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

func (p BlogPost) Attributes() Attributes {
	return Attributes{
		Text:     []string{p.Title, p.Excerpt, p.Author},
		Category: p.Category,
		Tags:     p.Tags,
	}
}

func (p BlogPost) SortValue(field string) any {
	switch field {
	case "title":
		return p.Title
	case "publishedAt", "date":
		return p.PublishedAt
	case "readMinutes":
		return p.ReadMinutes
	}
	return nil
}

type FAQ struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
	Order    int    `json:"order,omitempty"`
}

func (f FAQ) Attributes() Attributes {
	return Attributes{Text: []string{f.Question, f.Answer}, Category: f.Category}
}

func (f FAQ) SortValue(field string) any {
	if field == "order" {
		return f.Order
	}
	if field == "question" {
		return f.Question
	}
	return nil
}

type Testimonial struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Country     string    `json:"country,omitempty"`
	Text        string    `json:"text"`
	Rating      float64   `json:"rating"`
	TreatmentID string    `json:"treatmentId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (t Testimonial) Attributes() Attributes {
	return Attributes{Text: []string{t.Name, t.Text, t.Country}, City: t.Country, Rating: t.Rating}
}

func (t Testimonial) SortValue(field string) any {
	switch field {
	case "rating":
		return t.Rating
	case "createdAt", "date":
		return t.CreatedAt
	case "name":
		return t.Name
	}
	return nil
}

// ContactMessage is the body of POST /content/contact.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// NewsletterSubscription is the body of POST /content/newsletter/subscribe.
type NewsletterSubscription struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}
