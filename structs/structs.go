package structs

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Event statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusCancelled = "cancelled"
	StatusFinished  = "finished"
)

// Event types accepted by the validator
var EventTypes = []string{"conference", "workshop", "seminar", "meetup", "other"}

type Location struct {
	Address string `json:"address" bson:"address"`
	City    string `json:"city" bson:"city"`
	Country string `json:"country" bson:"country"`
}

type Event struct {
	EventID     string    `json:"eventid" bson:"eventid"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Date        time.Time `json:"date" bson:"date"`
	Timezone    string    `json:"timezone" bson:"timezone"`
	Location    Location  `json:"location" bson:"location"`
	Capacity    int       `json:"capacity" bson:"capacity"`
	Type        string    `json:"type" bson:"type"`
	Tags        []string  `json:"tags" bson:"tags"`
	Status      string    `json:"status" bson:"status"`
	OrganizerID string    `json:"organizerid" bson:"organizerid"`
	Attendees   []string  `json:"attendees" bson:"attendees"`
	AIAnalysis  string    `json:"ai_analysis" bson:"ai_analysis"`
	BannerImage string    `json:"banner_image" bson:"banner_image"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// Ticket types
const (
	TicketFree = "free"
	TicketPaid = "paid"
)

type Ticket struct {
	TicketID  string    `json:"ticketid" bson:"ticketid"`
	EventID   string    `json:"eventid" bson:"eventid"`
	Name      string    `json:"name" bson:"name"`
	Type      string    `json:"type" bson:"type"`
	Price     float64   `json:"price" bson:"price"`
	Total     int       `json:"total" bson:"total"`
	Sold      int       `json:"sold" bson:"sold"`
	Benefits  []string  `json:"benefits" bson:"benefits"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// User roles
const (
	RoleIndividual = "individual"
	RoleCompany    = "company"
)

type User struct {
	UserID         string    `json:"userid" bson:"userid"`
	Username       string    `json:"username" bson:"username"`
	Email          string    `json:"email" bson:"email"`
	Password       string    `json:"password,omitempty" bson:"password,omitempty"`
	Role           string    `json:"role" bson:"role"`
	Bio            string    `json:"bio,omitempty" bson:"bio,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty" bson:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// InsightEntry is the cached pros/cons analysis of a user's event
// portfolio. One entry per user: lookups match userid+hash, upserts
// overwrite by userid alone.
type InsightEntry struct {
	UserID      string    `json:"userid" bson:"userid"`
	Hash        string    `json:"hash" bson:"hash"`
	Pros        []string  `json:"pros" bson:"pros"`
	Cons        []string  `json:"cons" bson:"cons"`
	LastUpdated time.Time `json:"last_updated" bson:"last_updated"`
}

type UserData struct {
	EntityType string `json:"entity_type" bson:"entity_type"`
	EntityID   string `json:"entity_id" bson:"entity_id"`
	UserID     string `json:"userid" bson:"userid"`
	CreatedAt  string `json:"created_at" bson:"created_at"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	IsValid bool         `json:"isValid"`
	Errors  []FieldError `json:"errors"`
}

// JWT claims
type Claims struct {
	Username string `json:"username"`
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type UserProfileResponse struct {
	UserID         string `json:"userid"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture"`
}
