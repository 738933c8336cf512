package gatewaytest

import (
	"time"

	"ayurbook/models"
)

var seededAt = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// Abhyanga is the seeded treatment most tests book.
const Abhyanga = "abhyanga"

func (s *Server) seed() {
	s.Treatments = []models.Treatment{
		{
			ID: Abhyanga, Name: "Abhyanga", Slug: "abhyanga", Category: "massage",
			Description:     "Full body warm oil massage",
			DurationMinutes: 60, Price: 3500, Currency: models.CurrencyINR,
			Prices: map[models.Currency]float64{models.CurrencyUSD: 45, models.CurrencyEUR: 41},
			Rating: 4.8, ReviewCount: 120, Tags: []string{"oil", "relaxation"},
			Contraindications: []string{"fever"},
			Status:            models.TreatmentActive, CreatedAt: seededAt, UpdatedAt: seededAt,
		},
		{
			ID: "shirodhara", Name: "Shirodhara", Slug: "shirodhara", Category: "therapy",
			Description:     "Continuous stream of oil on the forehead",
			DurationMinutes: 45, Price: 4200, Currency: models.CurrencyINR,
			Prices: map[models.Currency]float64{models.CurrencyUSD: 52},
			Rating: 4.9, ReviewCount: 80, Tags: []string{"oil", "stress"},
			Status: models.TreatmentActive, CreatedAt: seededAt, UpdatedAt: seededAt,
		},
		{
			ID: "nasya", Name: "Nasya", Slug: "nasya", Category: "therapy",
			Description:     "Nasal administration of herbal oils",
			DurationMinutes: 30, Price: 1800, Currency: models.CurrencyINR,
			Rating: 4.2, ReviewCount: 14, Tags: []string{"sinus"},
			Status: models.TreatmentActive, CreatedAt: seededAt, UpdatedAt: seededAt,
		},
		{
			ID: "udvartana", Name: "Udvartana", Slug: "udvartana", Category: "massage",
			Description:     "Dry herbal powder massage",
			DurationMinutes: 50, Price: 3000, Currency: models.CurrencyINR,
			Rating: 4.5, ReviewCount: 30, Tags: []string{"detox"},
			Status: models.TreatmentInactive, CreatedAt: seededAt, UpdatedAt: seededAt,
		},
	}

	s.Packages = []models.Package{
		{
			ID: "panchakarma-kochi", Name: "Panchakarma Detox", Type: "panchakarma", City: "Kochi",
			DurationDays: 14, Price: 98000, Currency: models.CurrencyINR,
			Prices:       map[models.Currency]float64{models.CurrencyUSD: 1180},
			Inclusions:   []string{"Accommodation", "Daily consultation"},
			TreatmentIDs: []string{Abhyanga, "shirodhara"}, Rating: 4.9,
			CreatedAt: seededAt, UpdatedAt: seededAt,
		},
		{
			ID: "rejuvenation-goa", Name: "Beach Rejuvenation", Type: "rejuvenation", City: "Goa",
			DurationDays: 7, Price: 52000, Currency: models.CurrencyINR,
			Inclusions:   []string{"Yoga", "Meals"},
			TreatmentIDs: []string{Abhyanga}, Rating: 4.4,
			CreatedAt: seededAt, UpdatedAt: seededAt,
		},
	}

	s.Blog = []models.BlogPost{
		{ID: "b1", Title: "Understanding your dosha", Author: "Dr. Menon", Category: "basics", Tags: []string{"dosha"}, ReadMinutes: 6, PublishedAt: seededAt},
		{ID: "b2", Title: "Monsoon diet tips", Author: "Dr. Nair", Category: "nutrition", Tags: []string{"diet", "seasonal"}, ReadMinutes: 4, PublishedAt: seededAt.AddDate(0, 0, 3)},
		{ID: "b3", Title: "Why oil massage works", Author: "Dr. Menon", Category: "treatments", Tags: []string{"oil"}, ReadMinutes: 5, PublishedAt: seededAt.AddDate(0, 0, 7)},
	}
	s.FAQ = []models.FAQ{
		{ID: "f1", Question: "How do I cancel a booking?", Answer: "Open My Bookings and choose cancel.", Category: "booking", Order: 1},
		{ID: "f2", Question: "Which currencies are accepted?", Answer: "INR, USD and EUR.", Category: "payment", Order: 2},
		{ID: "f3", Question: "Can I reschedule?", Answer: "Pending and confirmed bookings can be rescheduled.", Category: "booking", Order: 3},
	}
	s.Testimonials = []models.Testimonial{
		{ID: "t1", Name: "Anna", Country: "Germany", Text: "Wonderful stay", Rating: 5, CreatedAt: seededAt},
		{ID: "t2", Name: "Raj", Country: "India", Text: "Good but crowded", Rating: 3.5, CreatedAt: seededAt.AddDate(0, 0, 1)},
		{ID: "t3", Name: "Claire", Country: "France", Text: "Very relaxing", Rating: 4.5, CreatedAt: seededAt.AddDate(0, 0, 2)},
	}
}
