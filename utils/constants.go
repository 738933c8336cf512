// File: utils/constants.go
package utils

// Keys of the durable local storage.
const (
	AuthTokenKey = "ayurbook:auth_token"
	CurrencyKey  = "ayurbook:currency"
)

// Event topics published by the stores.
const (
	TopicSession      = "session:changed"
	TopicUnauthorized = "session:unauthorized"
	TopicTreatments   = "catalog:treatments"
	TopicPackages     = "catalog:packages"
	TopicBlog         = "content:blog"
	TopicFAQ          = "content:faq"
	TopicTestimonials = "content:testimonials"
	TopicBookingDraft = "booking:draft"
	TopicBookings     = "booking:list"
	TopicAdmin        = "admin:collection"
)

// DateLayout and TimeLayout are the wire formats of booking dates and times.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)
