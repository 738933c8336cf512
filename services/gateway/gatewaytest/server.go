// Package gatewaytest provides an in-process fake of the storefront REST API
// for tests of the stores built on the gateway.
package gatewaytest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"ayurbook/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var secret = []byte("gatewaytest")

type account struct {
	user     models.User
	password string
}

type failure struct {
	status int
	body   gin.H
}

// Server is a fake API backed by in-memory fixtures.
type Server struct {
	*httptest.Server
	Engine *gin.Engine

	mu           sync.Mutex
	Treatments   []models.Treatment
	Packages     []models.Package
	Bookings     map[string]*models.Booking
	Blog         []models.BlogPost
	FAQ          []models.FAQ
	Testimonials []models.Testimonial
	Contacts     []models.ContactMessage
	Subscribers  []string
	LastAuth     string

	accounts map[string]*account // by email
	tokens   map[string]string   // token -> email
	calls    map[string]int
	failures map[string][]failure
	limiter  *rate.Limiter
}

// New starts a server seeded with the catalog and content fixtures.
// Callers must Close it.
func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		Engine:   gin.New(),
		Bookings: make(map[string]*models.Booking),
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		calls:    make(map[string]int),
		failures: make(map[string][]failure),
	}
	s.seed()
	s.routes()
	s.Server = httptest.NewServer(s.Engine)
	return s
}

// AddUser registers an account and returns it.
func (s *Server) AddUser(u models.User, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = models.RoleCustomer
	}
	if u.Status == "" {
		u.Status = models.UserActive
	}
	s.accounts[strings.ToLower(u.Email)] = &account{user: u, password: password}
	return u
}

// IssueToken returns a signed token for email valid for ttl.
func (s *Server) IssueToken(email string, ttl time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(email, ttl)
}

func (s *Server) issueLocked(email string, ttl time.Duration) string {
	claims := jwt.MapClaims{
		"sub":   email,
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
		"jti":   uuid.New().String(),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	s.tokens[token] = strings.ToLower(email)
	return token
}

// RevokeAll invalidates every issued token.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// FailNext makes the next call of method+route answer with status and body.
// route is the gin pattern, e.g. "/bookings/:id/confirm".
func (s *Server) FailNext(method, route string, status int, body gin.H) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + route
	s.failures[key] = append(s.failures[key], failure{status: status, body: body})
}

// Count returns how many times method+route was called.
func (s *Server) Count(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+route]
}

// AddBooking stores b as if it had been created earlier.
func (s *Server) AddBooking(b models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := b
	s.Bookings[b.ID] = &cp
}

// Booking returns the server-side copy of booking id.
func (s *Server) Booking(id string) (models.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Bookings[id]
	if !ok {
		return models.Booking{}, false
	}
	return *b, true
}

func (s *Server) track() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Method + " " + c.FullPath()
		s.mu.Lock()
		s.calls[key]++
		s.LastAuth = c.GetHeader("Authorization")
		var f *failure
		if queue := s.failures[key]; len(queue) > 0 {
			f = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()
		if f != nil {
			c.AbortWithStatusJSON(f.status, f.body)
			return
		}
		c.Next()
	}
}

func (s *Server) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		s.mu.Lock()
		email, ok := s.tokens[token]
		var acc *account
		if ok {
			acc = s.accounts[email]
		}
		s.mu.Unlock()
		if !strings.HasPrefix(header, "Bearer ") || acc == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}
		c.Set("user", acc.user)
		c.Set("token", token)
		c.Next()
	}
}

func (s *Server) routes() {
	r := s.Engine
	r.Use(recoverJSON(), s.rateLimit(), s.track())

	authGroup := r.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.POST("/forgot-password", s.forgotPassword)
	authGroup.POST("/reset-password", s.resetPassword)
	authGroup.GET("/me", s.auth(), s.me)
	authGroup.PUT("/profile", s.auth(), s.updateProfile)
	authGroup.POST("/logout", s.auth(), s.logout)

	r.GET("/treatments", s.listTreatments)
	r.GET("/treatments/search", s.searchTreatments)
	r.GET("/treatments/categories", s.treatmentCategories)
	r.GET("/treatments/:id", s.getTreatment)
	r.POST("/treatments/:id/rate", s.auth(), s.rateTreatment)

	r.GET("/packages", s.listPackages)
	r.GET("/packages/:id", s.getPackage)
	r.GET("/packages/:id/availability", s.packageAvailability)
	r.GET("/packages/:id/pricing", s.packagePricing)

	bookings := r.Group("/bookings", s.auth())
	bookings.POST("", s.createBooking)
	bookings.GET("", s.listBookings)
	bookings.GET("/:id", s.getBooking)
	bookings.PUT("/:id", s.updateBooking)
	bookings.POST("/:id/cancel", s.cancelBooking)
	bookings.POST("/:id/reschedule", s.rescheduleBooking)
	bookings.POST("/:id/confirm", s.confirmBooking)
	bookings.POST("/:id/rate", s.rateBooking)

	content := r.Group("/content")
	content.GET("/blog", s.listBlog)
	content.GET("/faq", s.listFAQ)
	content.GET("/testimonials", s.listTestimonials)
	content.POST("/contact", s.contact)
	content.POST("/newsletter/subscribe", s.subscribe)
}

func validation(c *gin.Context, fields gin.H) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Validation failed", "errors": fields})
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("%s not found", what)})
}
