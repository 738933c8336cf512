package gatewaytest

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"ayurbook/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func currentUser(c *gin.Context) models.User {
	u, _ := c.Get("user")
	user, _ := u.(models.User)
	return user
}

// ---- auth ----

func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	fields := gin.H{}
	if !strings.Contains(req.Email, "@") {
		fields["email"] = "must be a valid email"
	}
	if len(req.Password) < 6 {
		fields["password"] = "must be at least 6 characters"
	}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "is required"
	}
	if len(fields) > 0 {
		validation(c, fields)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(req.Email)
	if _, exists := s.accounts[key]; exists {
		c.JSON(http.StatusConflict, gin.H{"message": "Email already registered"})
		return
	}
	now := time.Now().UTC()
	user := models.User{
		ID: uuid.New().String(), Name: req.Name, Email: req.Email, Phone: req.Phone,
		Role: models.RoleCustomer, Status: models.UserActive, CreatedAt: now, UpdatedAt: now,
	}
	s.accounts[key] = &account{user: user, password: req.Password}
	token := s.issueLocked(req.Email, time.Hour)
	c.JSON(http.StatusCreated, gin.H{"data": models.AuthResponse{Token: token, User: user}})
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[strings.ToLower(req.Email)]
	if !ok || acc.password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}
	if acc.user.Status == models.UserSuspended {
		c.JSON(http.StatusForbidden, gin.H{"message": "Account suspended"})
		return
	}
	token := s.issueLocked(acc.user.Email, time.Hour)
	c.JSON(http.StatusOK, models.AuthResponse{Token: token, User: acc.user})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": currentUser(c)})
}

func (s *Server) updateProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if req.Phone != nil && len(strings.TrimSpace(*req.Phone)) < 7 {
		validation(c, gin.H{"phone": "must be a valid phone number"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accounts[strings.ToLower(currentUser(c).Email)]
	if req.Name != nil {
		acc.user.Name = *req.Name
	}
	if req.Phone != nil {
		acc.user.Phone = *req.Phone
	}
	if req.Nationality != nil {
		acc.user.Nationality = *req.Nationality
	}
	acc.user.UpdatedAt = time.Now().UTC()
	c.JSON(http.StatusOK, acc.user)
}

func (s *Server) logout(c *gin.Context) {
	token := c.GetString("token")
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !strings.Contains(req.Email, "@") {
		validation(c, gin.H{"email": "must be a valid email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the account exists a reset link was sent"})
}

// ResetToken is the reset token the fake server accepts for email.
func ResetToken(email string) string {
	return "reset:" + strings.ToLower(email)
}

func (s *Server) resetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if len(req.Password) < 6 {
		validation(c, gin.H{"password": "must be at least 6 characters"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[strings.TrimPrefix(req.Token, "reset:")]
	if !ok || !strings.HasPrefix(req.Token, "reset:") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Reset token is invalid or expired"})
		return
	}
	acc.password = req.Password
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// ---- treatments ----

func (s *Server) listTreatments(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := append([]models.Treatment{}, s.Treatments...)
	c.JSON(http.StatusOK, items)
}

func (s *Server) searchTreatments(c *gin.Context) {
	crit := models.Criteria{Search: c.Query("q")}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"items": models.Select(s.Treatments, crit)})
}

func (s *Server) treatmentCategories(c *gin.Context) {
	s.mu.Lock()
	counts := map[string]int{}
	for _, t := range s.Treatments {
		counts[t.Category]++
	}
	s.mu.Unlock()

	out := make([]models.TreatmentCategory, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.TreatmentCategory{ID: name, Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) findTreatment(id string) int {
	for i, t := range s.Treatments {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) getTreatment(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTreatment(c.Param("id"))
	if i < 0 {
		notFound(c, "Treatment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": s.Treatments[i]})
}

func (s *Server) rateTreatment(c *gin.Context) {
	var req models.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Rating < 1 || req.Rating > 5 {
		validation(c, gin.H{"rating": "must be between 1 and 5"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTreatment(c.Param("id"))
	if i < 0 {
		notFound(c, "Treatment")
		return
	}
	t := &s.Treatments[i]
	t.Rating = (t.Rating*float64(t.ReviewCount) + float64(req.Rating)) / float64(t.ReviewCount+1)
	t.ReviewCount++
	c.JSON(http.StatusOK, gin.H{"data": *t})
}

// ---- packages ----

func (s *Server) listPackages(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"items": s.Packages})
}

func (s *Server) findPackage(id string) (models.Package, bool) {
	for _, p := range s.Packages {
		if p.ID == id {
			return p, true
		}
	}
	return models.Package{}, false
}

func (s *Server) getPackage(c *gin.Context) {
	s.mu.Lock()
	p, ok := s.findPackage(c.Param("id"))
	s.mu.Unlock()
	if !ok {
		notFound(c, "Package")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) packageAvailability(c *gin.Context) {
	s.mu.Lock()
	p, ok := s.findPackage(c.Param("id"))
	s.mu.Unlock()
	if !ok {
		notFound(c, "Package")
		return
	}
	month := c.DefaultQuery("month", time.Now().Format("2006-01"))
	first, err := time.Parse("2006-01", month)
	if err != nil {
		validation(c, gin.H{"month": "must be YYYY-MM"})
		return
	}
	var starts []string
	for _, day := range []int{0, 7, 14, 21} {
		starts = append(starts, first.AddDate(0, 0, day).Format("2006-01-02"))
	}
	c.JSON(http.StatusOK, models.PackageAvailability{PackageID: p.ID, Month: month, StartDates: starts, SlotsLeft: 6})
}

func (s *Server) packagePricing(c *gin.Context) {
	s.mu.Lock()
	p, ok := s.findPackage(c.Param("id"))
	s.mu.Unlock()
	if !ok {
		notFound(c, "Package")
		return
	}
	cur := models.Currency(strings.ToUpper(c.DefaultQuery("currency", string(p.Currency))))
	base, listed := p.ListedPrice(cur)
	if !listed {
		validation(c, gin.H{"currency": "no price listed in " + string(cur)})
		return
	}
	taxes := cur.Round(base * 0.05)
	c.JSON(http.StatusOK, gin.H{"data": models.PackagePricing{
		PackageID: p.ID, Currency: cur, BasePrice: base, Taxes: taxes, Total: cur.Round(base + taxes),
	}})
}

// ---- bookings ----

func (s *Server) createBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	fields := gin.H{}
	if (req.TreatmentID == "") == (req.PackageID == "") {
		fields["treatmentId"] = "exactly one of treatment or package is required"
	}
	if req.Date == "" {
		fields["date"] = "is required"
	}
	if req.Time == "" {
		fields["time"] = "is required"
	}
	if req.Customer.Email == "" {
		fields["customer.email"] = "is required"
	}
	if len(fields) > 0 {
		validation(c, fields)
		return
	}
	status := req.Status
	if status == "" {
		status = models.BookingPending
	}
	now := time.Now().UTC()
	customer := req.Customer
	b := &models.Booking{
		ID: uuid.New().String(), CustomerID: currentUser(c).ID,
		TreatmentID: req.TreatmentID, PackageID: req.PackageID, TherapistID: req.TherapistID,
		Date: req.Date, Time: req.Time, DurationMinutes: req.DurationMinutes,
		Amount: req.Amount, Currency: req.Currency, Status: status, Notes: req.Notes,
		Customer: &customer, Medical: req.Medical, CreatedAt: now, UpdatedAt: now,
	}
	s.mu.Lock()
	s.Bookings[b.ID] = b
	s.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"data": *b})
}

func (s *Server) listBookings(c *gin.Context) {
	user := currentUser(c)
	s.mu.Lock()
	items := make([]models.Booking, 0, len(s.Bookings))
	for _, b := range s.Bookings {
		if user.IsAdmin() || b.CustomerID == user.ID {
			items = append(items, *b)
		}
	}
	s.mu.Unlock()
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// withBooking runs fn on the caller's booking under the lock.
func (s *Server) withBooking(c *gin.Context, fn func(b *models.Booking)) {
	user := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Bookings[c.Param("id")]
	if !ok || (!user.IsAdmin() && b.CustomerID != user.ID) {
		notFound(c, "Booking")
		return
	}
	fn(b)
}

func transition(c *gin.Context, b *models.Booking, next models.BookingStatus) bool {
	if !b.Status.CanTransitionTo(next) {
		validation(c, gin.H{"status": "cannot move from " + string(b.Status) + " to " + string(next)})
		return false
	}
	b.Status = next
	b.UpdatedAt = time.Now().UTC()
	return true
}

func (s *Server) getBooking(c *gin.Context) {
	s.withBooking(c, func(b *models.Booking) {
		c.JSON(http.StatusOK, gin.H{"data": *b})
	})
}

func (s *Server) updateBooking(c *gin.Context) {
	var req models.BookingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	s.withBooking(c, func(b *models.Booking) {
		if req.Status != nil && !transition(c, b, *req.Status) {
			return
		}
		if req.Notes != nil {
			b.Notes = *req.Notes
		}
		b.UpdatedAt = time.Now().UTC()
		c.JSON(http.StatusOK, gin.H{"data": *b})
	})
}

func (s *Server) cancelBooking(c *gin.Context) {
	var req models.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
		validation(c, gin.H{"reason": "is required"})
		return
	}
	s.withBooking(c, func(b *models.Booking) {
		if !transition(c, b, models.BookingCancelled) {
			return
		}
		b.CancellationReason = req.Reason
		c.JSON(http.StatusOK, gin.H{"data": *b})
	})
}

func (s *Server) rescheduleBooking(c *gin.Context) {
	var req models.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Date == "" || req.Time == "" {
		validation(c, gin.H{"date": "date and time are required"})
		return
	}
	s.withBooking(c, func(b *models.Booking) {
		if !b.Status.Reschedulable() {
			validation(c, gin.H{"status": "booking can no longer be rescheduled"})
			return
		}
		b.Date, b.Time = req.Date, req.Time
		b.UpdatedAt = time.Now().UTC()
		c.JSON(http.StatusOK, gin.H{"data": *b})
	})
}

func (s *Server) confirmBooking(c *gin.Context) {
	s.withBooking(c, func(b *models.Booking) {
		if transition(c, b, models.BookingConfirmed) {
			c.JSON(http.StatusOK, gin.H{"data": *b})
		}
	})
}

func (s *Server) rateBooking(c *gin.Context) {
	var req models.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Rating < 1 || req.Rating > 5 {
		validation(c, gin.H{"rating": "must be between 1 and 5"})
		return
	}
	s.withBooking(c, func(b *models.Booking) {
		if b.Status != models.BookingCompleted {
			validation(c, gin.H{"status": "only completed bookings can be rated"})
			return
		}
		rating := req.Rating
		b.Rating = &rating
		b.Review = req.Review
		b.UpdatedAt = time.Now().UTC()
		c.JSON(http.StatusOK, gin.H{"data": *b})
	})
}

// ---- content ----

func (s *Server) listBlog(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"items": s.Blog})
}

func (s *Server) listFAQ(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.FAQ)
}

func (s *Server) listTestimonials(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"items": s.Testimonials}})
}

func (s *Server) contact(c *gin.Context) {
	var req models.ContactMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	fields := gin.H{}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "is required"
	}
	if !strings.Contains(req.Email, "@") {
		fields["email"] = "must be a valid email"
	}
	if strings.TrimSpace(req.Message) == "" {
		fields["message"] = "is required"
	}
	if len(fields) > 0 {
		validation(c, fields)
		return
	}
	s.mu.Lock()
	s.Contacts = append(s.Contacts, req)
	s.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"message": "Thank you, we will be in touch"})
}

func (s *Server) subscribe(c *gin.Context) {
	var req models.NewsletterSubscription
	if err := c.ShouldBindJSON(&req); err != nil || !strings.Contains(req.Email, "@") {
		validation(c, gin.H{"email": "must be a valid email"})
		return
	}
	email := strings.ToLower(req.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Subscribers {
		if existing == email {
			c.JSON(http.StatusConflict, gin.H{"message": "Already subscribed"})
			return
		}
	}
	s.Subscribers = append(s.Subscribers, email)
	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed"})
}
