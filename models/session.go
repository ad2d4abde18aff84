package models

import (
	"slices"
	"time"
)

type SlotName string

const (
	SlotDepartment SlotName = "department"
	SlotCity       SlotName = "city"
	SlotHospital   SlotName = "hospital"
	SlotDate       SlotName = "date"
	SlotTime       SlotName = "time"
)

// AllSlots is the closed set of booking slots.
var AllSlots = []SlotName{SlotDepartment, SlotCity, SlotHospital, SlotDate, SlotTime}

// Slots holds pending booking information. Keys outside AllSlots are never stored.
type Slots map[SlotName]string

// Set stores a non-empty value for a known slot and reports whether it did.
func (s *Slots) Set(name SlotName, value string) bool {
	if value == "" || !slices.Contains(AllSlots, name) {
		return false
	}
	if *s == nil {
		*s = Slots{}
	}
	(*s)[name] = value
	return true
}

func (s Slots) Get(name SlotName) string {
	return s[name]
}

func (s Slots) Delete(name SlotName) {
	delete(s, name)
}

// Merge overwrites s with every value present in other; unspecified slots persist.
func (s *Slots) Merge(other Slots) {
	for _, name := range AllSlots {
		if v, ok := other[name]; ok {
			s.Set(name, v)
		}
	}
}

// Missing lists the required slots that hold no value, in the order given.
func (s Slots) Missing(required ...SlotName) []SlotName {
	var missing []SlotName
	for _, name := range required {
		if s[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func (s Slots) Clear() {
	clear(s)
}

type UserProfile struct {
	Name   string `json:"name" bson:"name" binding:"required,max=100" validate:"required,max=100"`
	Age    int    `json:"age" bson:"age" binding:"gte=0,lte=120" validate:"gte=0,lte=120"`
	Gender string `json:"gender" bson:"gender" binding:"omitempty,oneof=Male Female Other" validate:"omitempty,oneof=Male Female Other"`
	City   string `json:"city" bson:"city" binding:"max=100" validate:"max=100"`
}

type Turn struct {
	Sender    string    `json:"sender"` // "user" or "assistant"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the explicit per-conversation context passed into every turn.
type Session struct {
	ID               string         `json:"id"`
	User             UserProfile    `json:"user"`
	Channel          MessageChannel `json:"channel,omitempty"`
	Turns            []Turn         `json:"turns"`
	City             string         `json:"city,omitempty"`
	LastIntent       MessageIntent  `json:"last_intent,omitempty"`
	Slots            Slots          `json:"slots"`
	IssuedBookingIDs []string       `json:"issued_booking_ids,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func NewSession(id string, user UserProfile, channel MessageChannel, now time.Time) *Session {
	return &Session{
		ID:        id,
		User:      user,
		Channel:   channel,
		Slots:     Slots{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) AddTurn(sender, text string, at time.Time) {
	s.Turns = append(s.Turns, Turn{Sender: sender, Text: text, Timestamp: at})
	s.UpdatedAt = at
}

// Reset drops the conversation but keeps the user.
func (s *Session) Reset(now time.Time) {
	s.Turns = nil
	s.City = ""
	s.LastIntent = ""
	s.Slots = Slots{}
	s.UpdatedAt = now
}

func (s *Session) HasIssued(bookingID string) bool {
	return slices.Contains(s.IssuedBookingIDs, bookingID)
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (s *Session) Clone() *Session {
	c := *s
	c.Turns = slices.Clone(s.Turns)
	c.IssuedBookingIDs = slices.Clone(s.IssuedBookingIDs)
	c.Slots = make(Slots, len(s.Slots))
	for k, v := range s.Slots {
		c.Slots[k] = v
	}
	return &c
}
