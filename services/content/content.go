package content

import (
	"context"
	"strings"

	"ayurbook/models"
	"ayurbook/services/catalog"
	"ayurbook/services/gateway"
	"ayurbook/utils"

	"go.uber.org/zap"
)

// Store holds the read-only marketing content lists. They share the list
// behaviour of the catalog: filters reset the page, stale responses drop.
type Store struct {
	Blog         *catalog.ListStore[models.BlogPost]
	FAQ          *catalog.ListStore[models.FAQ]
	Testimonials *catalog.ListStore[models.Testimonial]

	client *gateway.Client
	logger *zap.Logger
}

func NewStore(client *gateway.Client, perPage int, events *utils.Events, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{client: client, logger: logger}
	s.Blog = catalog.NewListStore[models.BlogPost]("blog", utils.TopicBlog, perPage,
		listFrom[models.BlogPost](client, "/content/blog"),
		func(p models.BlogPost) string { return p.ID }, events, logger)
	s.FAQ = catalog.NewListStore[models.FAQ]("faq", utils.TopicFAQ, perPage,
		listFrom[models.FAQ](client, "/content/faq"),
		func(f models.FAQ) string { return f.ID }, events, logger)
	s.Testimonials = catalog.NewListStore[models.Testimonial]("testimonials", utils.TopicTestimonials, perPage,
		listFrom[models.Testimonial](client, "/content/testimonials"),
		func(t models.Testimonial) string { return t.ID }, events, logger)
	return s
}

func listFrom[T any](client *gateway.Client, path string) catalog.Fetcher[T] {
	return func(ctx context.Context, f models.Filter) ([]T, error) {
		return gateway.GetList[T](ctx, client, path, f.Values())
	}
}

// SubmitContact sends an enquiry from the contact form.
func (s *Store) SubmitContact(ctx context.Context, msg models.ContactMessage) error {
	fields := map[string]string{}
	if strings.TrimSpace(msg.Name) == "" {
		fields["name"] = "is required"
	}
	if !utils.ValidEmail(msg.Email) {
		fields["email"] = "must be a valid email"
	}
	if strings.TrimSpace(msg.Message) == "" {
		fields["message"] = "is required"
	}
	if len(fields) > 0 {
		return gateway.NewValidationError(fields)
	}
	msg.Email = strings.TrimSpace(msg.Email)
	if err := s.client.Post(ctx, "/content/contact", msg, nil); err != nil {
		return err
	}
	s.logger.Info("[Content] contact message sent", zap.String("subject", msg.Subject))
	return nil
}

// Subscribe adds email to the newsletter.
func (s *Store) Subscribe(ctx context.Context, email, name string) error {
	if !utils.ValidEmail(email) {
		return gateway.NewValidationError(map[string]string{"email": "must be a valid email"})
	}
	sub := models.NewsletterSubscription{Email: strings.TrimSpace(email), Name: strings.TrimSpace(name)}
	return s.client.Post(ctx, "/content/newsletter/subscribe", sub, nil)
}

// RefreshAll loads every content list. The first error is returned after
// all lists have been attempted.
func (s *Store) RefreshAll(ctx context.Context) error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	_, err := s.Blog.Refresh(ctx)
	keep(err)
	_, err = s.FAQ.Refresh(ctx)
	keep(err)
	_, err = s.Testimonials.Refresh(ctx)
	keep(err)
	return first
}
