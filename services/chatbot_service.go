package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"medbot-backend/catalog"
	"medbot-backend/database"
	"medbot-backend/failure"
	"medbot-backend/models"
	"medbot-backend/resolver"
	"medbot-backend/session"
	"medbot-backend/utils"
)

const (
	maxSymptomHospitals = 3
	maxListed           = 10
	maxReviews          = 2
	maxReviewLength     = 80

	senderUser      = "user"
	senderAssistant = "assistant"
)

// Replier produces free-form answers for messages no rule understands.
type Replier interface {
	GeneralReply(ctx context.Context, message, department string) (string, error)
}

// ToneDetector labels how a message feels so replies can open in kind.
type ToneDetector interface {
	Sentiment(ctx context.Context, text string) (Sentiment, error)
}

// ChatbotService runs one conversation turn at a time per session:
// extract slots, classify the intent, answer from the catalog and book
// once department and city are known.
type ChatbotService struct {
	catalog          *catalog.Catalog
	resolver         resolver.Resolver
	followUp         resolver.Resolver
	intentClassifier *utils.IntentClassifier
	sessions         session.Store
	bookings         *BookingService
	repo             database.Repository
	ai               Replier
	tone             ToneDetector
	defaultCity      string
	now              func() time.Time
	locks            *sessionLocks
}

func NewChatbotService(
	cat *catalog.Catalog,
	res resolver.Resolver,
	sessions session.Store,
	bookings *BookingService,
	repo database.Repository,
	defaultCity string,
) *ChatbotService {
	return &ChatbotService{
		catalog:          cat,
		resolver:         res,
		followUp:         resolver.NewStrict(cat.SymptomRules()),
		intentClassifier: utils.NewIntentClassifier(),
		sessions:         sessions,
		bookings:         bookings,
		repo:             repo,
		defaultCity:      defaultCity,
		now:              time.Now,
		locks:            newSessionLocks(),
	}
}

func (s *ChatbotService) WithAI(ai Replier) *ChatbotService {
	s.ai = ai
	return s
}

func (s *ChatbotService) WithTone(tone ToneDetector) *ChatbotService {
	s.tone = tone
	return s
}

func (s *ChatbotService) WithClock(now func() time.Time) *ChatbotService {
	s.now = now
	return s
}

func (s *ChatbotService) Intents() []utils.IntentRule {
	return s.intentClassifier.Rules()
}

// CreateSession starts a conversation for a patient profile.
func (s *ChatbotService) CreateSession(ctx context.Context, user models.UserProfile, channel models.MessageChannel) (*models.Session, error) {
	return s.createSession(ctx, uuid.NewString(), user, channel)
}

// EnsureSession returns the session with id, creating it for user when it
// does not exist yet.
func (s *ChatbotService) EnsureSession(ctx context.Context, id string, user models.UserProfile, channel models.MessageChannel) (*models.Session, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.sessions.Get(ctx, id)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, session.ErrNotFound) {
		return nil, failure.InternalError(errors.Wrapf(err, "load session %s", id))
	}
	return s.createSession(ctx, id, user, channel)
}

func (s *ChatbotService) createSession(ctx context.Context, id string, user models.UserProfile, channel models.MessageChannel) (*models.Session, error) {
	sess := models.NewSession(id, user, channel, s.now())
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, errors.Wrap(err, "create session")
	}
	log.Debug().Str("session_id", id).Str("channel", string(channel)).Msg("Session created")
	return sess, nil
}

func (s *ChatbotService) GetSession(ctx context.Context, id string) (*models.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return nil, failure.SessionNotFound
	case err != nil:
		log.Error().Err(err).Str("session_id", id).Msg("Failed to load session")
		return nil, failure.InternalError(errors.Wrapf(err, "load session %s", id))
	}
	return sess, nil
}

// EndSession discards the conversation.
func (s *ChatbotService) EndSession(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	err := s.sessions.Delete(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		return failure.SessionNotFound
	}
	return err
}

// ResetSession clears turns, slots, city and last intent but keeps the user.
func (s *ChatbotService) ResetSession(ctx context.Context, id string) (*models.Session, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Reset(s.now())
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, errors.Wrap(err, "reset session")
	}
	return sess, nil
}

func (s *ChatbotService) ListBookings(ctx context.Context, sessionID string) ([]models.Booking, error) {
	if s.repo == nil {
		return []models.Booking{}, nil
	}
	return s.repo.ListBookings(ctx, sessionID)
}

func (s *ChatbotService) ProcessMessage(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	unlock := s.locks.lock(req.SessionID)
	defer unlock()

	sess, err := s.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	msg := strings.TrimSpace(req.Message)
	sess.AddTurn(senderUser, msg, now)

	if city := utils.ExtractCity(msg, s.catalog.Cities()); city != "" {
		sess.City = city
		sess.Slots.Set(models.SlotCity, city)
	}

	intent, matched := s.intentClassifier.Match(msg)
	if !matched && utils.IsAffirmative(msg) && len(sess.Slots.Missing(models.SlotDepartment, models.SlotCity)) == 0 {
		// "yes" after a suggestion books with the pending slots.
		intent, matched = models.IntentBooking, true
	}
	if !matched {
		intent = s.intentClassifier.ClassifyIntent(msg, sess.LastIntent)
	}
	continued := !matched && intent != models.IntentFallback

	var response *models.ChatResponse
	switch intent {
	case models.IntentSymptom:
		response = s.handleSymptom(ctx, sess, msg, continued)
	case models.IntentHospitalList:
		response = s.handleHospitalList(sess)
	case models.IntentDoctorList:
		response = s.handleDoctorList(sess, msg)
	case models.IntentBooking:
		response = s.handleBooking(ctx, sess, msg, now)
	case models.IntentGreeting:
		response = s.handleGreeting(sess, now)
	default:
		response = s.handleFallback(ctx, msg)
	}
	response.SessionID = sess.ID
	response.Intent = intent

	if intent != models.IntentFallback {
		sess.LastIntent = intent
	}
	sess.AddTurn(senderAssistant, response.Response, s.now())

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, failure.InternalError(errors.Wrapf(err, "save session %s", sess.ID))
	}

	s.saveMessage(ctx, sess, req, response, now)

	log.Debug().
		Str("session_id", sess.ID).
		Str("intent", string(intent)).
		Bool("continued", continued).
		Bool("booked", response.Booking != nil).
		Msg("Turn processed")

	return response, nil
}

func (s *ChatbotService) saveMessage(ctx context.Context, sess *models.Session, req models.ChatRequest, resp *models.ChatResponse, at time.Time) {
	if s.repo == nil {
		return
	}

	channel := req.Channel
	if channel == "" {
		channel = sess.Channel
	}
	message := &models.Message{
		SessionID:   sess.ID,
		UserMessage: req.Message,
		BotResponse: resp.Response,
		Intent:      resp.Intent,
		Timestamp:   at,
		Channel:     channel,
	}
	if resp.Booking != nil {
		message.BookingID = resp.Booking.ID
	}

	if err := s.repo.SaveMessage(ctx, message); err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID).Msg("Failed to persist message")
	}
}

// currentCity is the last mentioned city, then the profile city, then the
// configured default.
func (s *ChatbotService) currentCity(sess *models.Session) string {
	switch {
	case sess.City != "":
		return sess.City
	case sess.User.City != "":
		return sess.User.City
	default:
		return s.defaultCity
	}
}

func (s *ChatbotService) handleSymptom(ctx context.Context, sess *models.Session, msg string, continued bool) *models.ChatResponse {
	dept := s.resolveDepartment(ctx, sess, msg, continued)
	city := s.currentCity(sess)
	sess.Slots.Merge(models.Slots{models.SlotDepartment: dept, models.SlotCity: city})

	var b strings.Builder
	fmt.Fprintf(&b, "🩺 Based on your symptoms, you may need to consult **%s**.\n\n", dept)

	hospitals := s.catalog.HospitalsFor(city, dept)
	if len(hospitals) == 0 {
		fmt.Fprintf(&b, "No hospitals found for %s in %s.", dept, city)
		resp := models.NewTextResponse(b.String(), models.IntentSymptom)
		resp.Data = map[string]interface{}{"department": dept, "city": city}
		return resp
	}

	hospitals = limit(hospitals, maxSymptomHospitals)
	fmt.Fprintf(&b, "🏥 Hospitals for **%s** in **%s**:\n", dept, city)
	for i, h := range hospitals {
		fmt.Fprintf(&b, "%d. **%s** (⭐ %.1f)\n", i+1, h.Name, h.Rating)
		s.writeReviews(&b, h.ID, maxReviews)
	}
	b.WriteString("\nWould you like to book an appointment? Tell me a date and time, e.g. \"book tomorrow at 11am\".")

	resp := models.NewInteractiveResponse(b.String(), models.IntentSymptom, []models.Action{
		{Type: "book_appointment", Label: "Book appointment", ID: "book_appointment"},
		{Type: "list_doctors", Label: "Show doctors", ID: "list_doctors"},
	})
	resp.Data = map[string]interface{}{
		"department": dept,
		"city":       city,
		"hospitals":  hospitals,
	}
	return resp
}

func (s *ChatbotService) handleHospitalList(sess *models.Session) *models.ChatResponse {
	city := s.currentCity(sess)

	hospitals := s.catalog.HospitalsInCity(city)
	if len(hospitals) == 0 {
		return models.NewTextResponse(fmt.Sprintf("No hospitals found in %s.", city), models.IntentHospitalList)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏥 Hospitals in **%s**:\n", city)
	reviewed := map[string]bool{}
	for _, h := range limit(hospitals, maxListed) {
		fmt.Fprintf(&b, "• **%s** (%s, ⭐ %.1f)\n", h.Name, h.Department, h.Rating)
		if !reviewed[h.ID] {
			reviewed[h.ID] = true
			s.writeReviews(&b, h.ID, 1)
		}
	}
	if extra := len(hospitals) - maxListed; extra > 0 {
		fmt.Fprintf(&b, "…and %d more.\n", extra)
	}
	b.WriteString("\nTell me your symptoms and I'll suggest the right department.")

	resp := models.NewTextResponse(b.String(), models.IntentHospitalList)
	resp.Data = map[string]interface{}{
		"city":      city,
		"hospitals": limit(hospitals, maxListed),
	}
	return resp
}

func (s *ChatbotService) handleDoctorList(sess *models.Session, msg string) *models.ChatResponse {
	dept := utils.ExtractDepartment(msg, s.catalog.Departments())
	if dept == "" {
		dept = sess.Slots.Get(models.SlotDepartment)
	}
	if dept == "" {
		return models.NewTextResponse(
			fmt.Sprintf("Which department are you looking for? Available departments: %s.",
				strings.Join(s.catalog.Departments(), ", ")),
			models.IntentDoctorList,
		)
	}

	city := sess.Slots.Get(models.SlotCity)
	if city == "" {
		city = s.currentCity(sess)
	}
	sess.Slots.Merge(models.Slots{models.SlotDepartment: dept, models.SlotCity: city})

	doctors := s.catalog.DoctorsInCity(city, dept)
	if len(doctors) == 0 {
		return models.NewTextResponse(fmt.Sprintf("No doctors found for %s in %s.", dept, city), models.IntentDoctorList)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👩‍⚕️ Doctors for **%s** in **%s**:\n", dept, city)
	for _, d := range limit(doctors, maxListed) {
		hospital, _ := s.catalog.Hospital(d.HospitalID)
		fmt.Fprintf(&b, "• **%s** at %s (%s – %s, ₹%.0f)\n",
			d.Name, hospital.Name, models.Clock12(d.StartTime), models.Clock12(d.EndTime), d.Fee)
	}
	b.WriteString("\nSay \"book\" with a date and time to reserve a slot.")

	resp := models.NewInteractiveResponse(b.String(), models.IntentDoctorList, []models.Action{
		{Type: "book_appointment", Label: "Book appointment", ID: "book_appointment"},
	})
	resp.Data = map[string]interface{}{
		"department": dept,
		"city":       city,
		"doctors":    limit(doctors, maxListed),
	}
	return resp
}

func (s *ChatbotService) handleBooking(ctx context.Context, sess *models.Session, msg string, now time.Time) *models.ChatResponse {
	extracted := models.Slots{}
	if dept := utils.ExtractDepartment(msg, s.catalog.Departments()); dept != "" {
		extracted.Set(models.SlotDepartment, dept)
	}
	if name := utils.ExtractHospital(msg, s.catalog.HospitalNames()); name != "" {
		if h, ok := s.catalog.HospitalByName(name); ok {
			extracted.Set(models.SlotHospital, h.Name)
			extracted.Set(models.SlotCity, h.City)
		}
	}
	if date, ok := utils.ExtractDate(msg, now); ok {
		extracted.Set(models.SlotDate, date.Format(utils.DateLayout))
	}
	if clock, ok := utils.ExtractTime(msg); ok {
		extracted.Set(models.SlotTime, clock)
	}
	sess.Slots.Merge(extracted)

	if sess.Slots.Get(models.SlotCity) == "" {
		if sess.City != "" {
			sess.Slots.Set(models.SlotCity, sess.City)
		} else {
			sess.Slots.Set(models.SlotCity, sess.User.City)
		}
	}

	if missing := sess.Slots.Missing(models.SlotDepartment, models.SlotCity); len(missing) > 0 {
		return models.NewTextResponse(missingSlotsText(missing), models.IntentBooking)
	}

	dept := sess.Slots.Get(models.SlotDepartment)
	city := sess.Slots.Get(models.SlotCity)
	wanted := sess.Slots.Get(models.SlotHospital)

	candidates := s.catalog.HospitalsFor(city, dept)
	if wanted != "" {
		var filtered []models.Hospital
		for _, h := range candidates {
			if strings.EqualFold(h.Name, wanted) {
				filtered = append(filtered, h)
			}
		}
		candidates = filtered
	}
	if len(candidates) == 0 {
		if wanted != "" {
			return models.NewTextResponse(fmt.Sprintf("Sorry, %s has no %s department in %s.", wanted, dept, city), models.IntentBooking)
		}
		return models.NewTextResponse(fmt.Sprintf("Sorry, no hospitals found for %s in %s.", dept, city), models.IntentBooking)
	}
	hospital := candidates[0]

	doctors := s.catalog.DoctorsFor(hospital.ID, dept)
	if len(doctors) == 0 {
		return models.NewTextResponse(fmt.Sprintf("Sorry, no %s doctors are listed at %s.", dept, hospital.Name), models.IntentBooking)
	}
	doctor := doctors[0]

	date := sess.Slots.Get(models.SlotDate)
	if date == "" {
		date = now.Format(utils.DateLayout)
	}
	clock := sess.Slots.Get(models.SlotTime)
	if clock == "" {
		clock = utils.DefaultTime
	}

	if ok, err := doctor.Available(clock); err != nil || !ok {
		sess.Slots.Delete(models.SlotTime)
		resp := models.NewTextResponse(fmt.Sprintf(
			"%s is available between %s and %s.\nPlease choose a time within this window.",
			doctor.Name, models.Clock12(doctor.StartTime), models.Clock12(doctor.EndTime),
		), models.IntentBooking)
		resp.Data = map[string]interface{}{
			"doctor":     doctor.Name,
			"start_time": doctor.StartTime,
			"end_time":   doctor.EndTime,
			"requested":  clock,
		}
		return resp
	}

	booking, rec, err := s.bookings.Finalize(ctx, sess, hospital, doctor, dept, date, clock)
	if err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Msg("Booking failed")
		return models.NewTextResponse("Sorry, I couldn't complete the booking. Please try again.", models.IntentBooking)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Appointment booked with **%s** at **%s**.\n", doctor.Name, hospital.Name)
	fmt.Fprintf(&b, "🗓️ Date: **%s** | ⏰ Time: **%s hrs**\n", booking.Date, booking.Time)
	fmt.Fprintf(&b, "🆔 Booking ID: **%s**\n\n", booking.ID)
	if rec != nil {
		b.WriteString("📄 You can download your receipt below.")
	} else {
		b.WriteString("⚠️ The receipt is unavailable right now, but your booking is confirmed.")
	}

	resp := models.NewTextResponse(b.String(), models.IntentBooking)
	resp.Booking = booking
	resp.Receipt = rec
	resp.Data = map[string]interface{}{"booking_id": booking.ID}
	return resp
}

func missingSlotsText(missing []models.SlotName) string {
	names := make([]string, len(missing))
	for i, m := range missing {
		names[i] = string(m)
	}

	var hints []string
	for _, m := range missing {
		switch m {
		case models.SlotDepartment:
			hints = append(hints, "describe your symptoms or name a department (e.g. Cardiology)")
		case models.SlotCity:
			hints = append(hints, "tell me your city")
		}
	}
	return fmt.Sprintf("I still need the %s to book your appointment. Please %s.",
		strings.Join(names, " and "), strings.Join(hints, " and "))
}

func (s *ChatbotService) handleGreeting(sess *models.Session, now time.Time) *models.ChatResponse {
	greeting := "Good evening"
	switch hour := now.Hour(); {
	case hour < 12:
		greeting = "Good morning"
	case hour < 18:
		greeting = "Good afternoon"
	}
	if sess.User.Name != "" {
		greeting += " " + sess.User.Name
	}

	return models.NewInteractiveResponse(
		greeting+"! 👋 I'm MedBot. I can help you with:\n\n"+
			"• 🏥 Listing hospitals\n"+
			"• 👩‍⚕️ Finding doctors\n"+
			"• 🩺 Suggesting a department from your symptoms\n"+
			"• 📅 Booking appointments\n\n"+
			"Tell me your city or your symptoms to begin.",
		models.IntentGreeting,
		[]models.Action{
			{Type: "quick_action", Label: "Hospitals nearby", ID: "hospital_list"},
			{Type: "quick_action", Label: "Find a doctor", ID: "doctor_list"},
			{Type: "quick_action", Label: "Book appointment", ID: "book_appointment"},
		},
	)
}

func (s *ChatbotService) handleFallback(ctx context.Context, msg string) *models.ChatResponse {
	dept := s.resolver.Resolve(ctx, s.symptomText(msg))
	prefix := s.tonePrefix(ctx, msg)

	if s.ai != nil {
		reply, err := s.ai.GeneralReply(ctx, msg, dept)
		if err == nil {
			return models.NewTextResponse(prefix+reply+
				"\n\n⚠️ Note: This information is for educational purposes only. "+
				"Please consult a doctor for personalised medical advice.", models.IntentFallback)
		}
		log.Warn().Err(err).Msg("AI reply failed, using help text")
	}

	return models.NewTextResponse(
		prefix+"I'm MedBot 🤖 and I can help you with:\n"+
			"- Listing hospitals 🏥\n"+
			"- Finding doctors 👩‍⚕️\n"+
			"- Detecting departments from symptoms 🩺\n"+
			"- Booking appointments 📅\n\n"+
			fmt.Sprintf("If you're feeling unwell, the **%s** department is a good place to start. ", dept)+
			"Please tell me your **city** or your **symptoms** to begin.",
		models.IntentFallback,
	)
}

// resolveDepartment maps the message to a department. City and hospital
// names are removed first. A follow-up keeps the department already in the
// slots unless it names a symptom outright; fuzzy matching is not trusted on
// short replies such as "yes" or a bare city.
func (s *ChatbotService) resolveDepartment(ctx context.Context, sess *models.Session, msg string, continued bool) string {
	text := s.symptomText(msg)
	if !continued {
		return s.resolver.Resolve(ctx, text)
	}

	if dept := s.followUp.Resolve(ctx, text); dept != resolver.DefaultDepartment {
		return dept
	}
	if prev := sess.Slots.Get(models.SlotDepartment); prev != "" {
		return prev
	}
	return s.resolver.Resolve(ctx, text)
}

func (s *ChatbotService) symptomText(msg string) string {
	return utils.RemoveWords(msg, s.catalog.Cities(), s.catalog.HospitalNames())
}

func (s *ChatbotService) writeReviews(b *strings.Builder, hospitalID string, n int) {
	for _, r := range limit(s.catalog.ReviewsFor(hospitalID), n) {
		fmt.Fprintf(b, "   💬 _\"%s\"_\n", clip(r.Text, maxReviewLength))
	}
}

// tonePrefix opens a general reply according to the sentiment of msg.
// Without a detector every message reads as neutral.
func (s *ChatbotService) tonePrefix(ctx context.Context, msg string) string {
	sentiment := SentimentNeutral
	if s.tone != nil {
		got, err := s.tone.Sentiment(ctx, msg)
		if err != nil {
			log.Debug().Err(err).Msg("Sentiment detection failed")
		} else {
			sentiment = got
		}
	}

	switch sentiment {
	case SentimentNegative:
		return "I'm sorry to hear that. Please know I'm here to help. "
	case SentimentPositive:
		return "That's good to hear. Here is some helpful information. "
	default:
		return "Let's look into that. "
	}
}

func clip(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}

func limit[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// sessionLocks serialises turns of one session; different sessions never
// wait on each other. Entries live only while someone holds or waits on them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sessionLock{}
		l.locks[id] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()

		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
