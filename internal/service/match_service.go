package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/bola-na-rede/internal/logger"
	"github.com/iliyamo/bola-na-rede/internal/model"
	q "github.com/iliyamo/bola-na-rede/internal/queue"
	"github.com/iliyamo/bola-na-rede/internal/repository"
)

// MatchInput is the editable part of a match as submitted by a client.
// RentCost is kept as typed so "90,00" and "90.00" are both accepted.
type MatchInput struct {
	Name        string
	Date        string
	Time        string
	Location    model.Location
	Coordinates *model.Coordinates
	RentCost    string
	Roster      []string
}

// MatchRules configures how the service interprets dates and expiry.
type MatchRules struct {
	Location *time.Location   // zone for DD/MM/YYYY HH:MM, UTC when nil
	Grace    time.Duration    // visibility after start, DefaultGrace when zero
	Now      func() time.Time // clock, time.Now when nil
}

// MatchService is the single entry point for match operations.  Every read
// sweeps expired records first and persists the trimmed collection.
type MatchService struct {
	repo     *repository.MatchRepo
	events   EventPublisher
	loc      *time.Location
	grace    time.Duration
	now      func() time.Time
	validate *validator.Validate
}

func NewMatchService(repo *repository.MatchRepo, events EventPublisher, rules MatchRules) *MatchService {
	if repo == nil {
		panic("nil repository passed to NewMatchService")
	}
	s := &MatchService{
		repo:     repo,
		events:   events,
		loc:      rules.Location,
		grace:    rules.Grace,
		now:      rules.Now,
		validate: validator.New(),
	}
	if s.events == nil {
		s.events = NopPublisher{}
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.grace <= 0 {
		s.grace = DefaultGrace
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// load reads the collection, drops expired records and writes the trimmed
// collection back when anything was removed.
func (s *MatchService) load(ctx context.Context) ([]model.Match, []model.Match, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	kept, expired := Sweep(records, s.now(), s.loc, s.grace)
	if len(expired) == 0 {
		return kept, nil, nil
	}
	if err := s.repo.SaveAll(ctx, kept); err != nil {
		return nil, nil, err
	}
	logger.Info("match sweep: removed %d expired match(es)", len(expired))
	evs := make([]q.MatchEvent, 0, len(expired))
	for _, m := range expired {
		evs = append(evs, s.event(q.MatchExpired, m, ""))
	}
	if err := s.events.Publish(ctx, evs...); err != nil {
		logger.Warn("match sweep: %d expired event(s) not published: %v", len(evs), err)
	}
	return kept, expired, nil
}

// List returns the caller's matches: organized by them or listing them.
func (s *MatchService) List(ctx context.Context, sess model.Session) ([]model.Match, error) {
	records, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return repository.FilterForUser(records, sess.Email), nil
}

// Get returns one match.  Matches the caller is not part of are reported as
// not found, except for admins.
func (s *MatchService) Get(ctx context.Context, sess model.Session, id int64) (model.Match, error) {
	records, _, err := s.load(ctx)
	if err != nil {
		return model.Match{}, err
	}
	return visible(records, sess, id)
}

// Create validates in, rejects schedule conflicts and appends the new match
// with the caller as organizer.
func (s *MatchService) Create(ctx context.Context, sess model.Session, in MatchInput) (model.Match, error) {
	draft, err := s.build(in, sess.Email)
	if err != nil {
		return model.Match{}, err
	}
	records, _, err := s.load(ctx)
	if err != nil {
		return model.Match{}, err
	}
	if HasConflict(draft, records, 0) {
		return model.Match{}, ErrScheduleConflict
	}
	draft.ID = nextID(records, s.now())
	if err := s.repo.Append(ctx, draft); err != nil {
		return model.Match{}, err
	}
	s.publish(ctx, q.MatchCreated, draft, sess.Email)
	return draft, nil
}

// Update replaces every editable field of match id.  The id and organizer
// are kept.
func (s *MatchService) Update(ctx context.Context, sess model.Session, id int64, in MatchInput) (model.Match, error) {
	records, _, err := s.load(ctx)
	if err != nil {
		return model.Match{}, err
	}
	current, err := visible(records, sess, id)
	if err != nil {
		return model.Match{}, err
	}
	draft, err := s.build(in, current.OrganizerEmail)
	if err != nil {
		return model.Match{}, err
	}
	draft.ID = id
	if HasConflict(draft, records, id) {
		return model.Match{}, ErrScheduleConflict
	}
	updated, err := s.repo.ReplaceByID(ctx, id, func(m *model.Match) error {
		*m = draft
		return nil
	})
	if err != nil {
		return model.Match{}, err
	}
	s.publish(ctx, q.MatchUpdated, updated, sess.Email)
	return updated, nil
}

// Delete removes match id.  Any participant may delete a match, not only
// its organizer.
func (s *MatchService) Delete(ctx context.Context, sess model.Session, id int64) error {
	records, _, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, err := visible(records, sess, id); err != nil {
		return err
	}
	removed, err := s.repo.RemoveByID(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, q.MatchDeleted, removed, sess.Email)
	return nil
}

// All returns the whole collection after a sweep.
func (s *MatchService) All(ctx context.Context) ([]model.Match, error) {
	records, _, err := s.load(ctx)
	return records, err
}

// SweepNow runs the expiry sweep and reports how many matches it removed.
func (s *MatchService) SweepNow(ctx context.Context) (int, error) {
	_, expired, err := s.load(ctx)
	return len(expired), err
}

// Purge deletes the stored collection.
func (s *MatchService) Purge(ctx context.Context) error {
	return s.repo.Reset(ctx)
}

// SplitPreview is the live per-player figure shown while a form is filled.
func (s *MatchService) SplitPreview(rent string, rosterSize int) decimal.Decimal {
	return PerPersonFromString(rent, rosterSize)
}

// build validates input and produces a normalized match owned by organizer.
func (s *MatchService) build(in MatchInput, organizer string) (model.Match, error) {
	organizer = model.NormalizeEmail(organizer)
	if organizer == "" {
		return model.Match{}, invalid("organizer", "missing session email")
	}
	loc := in.Location
	loc.PostalCode = model.DigitsOnly(loc.PostalCode)
	for _, f := range []struct{ name, val string }{
		{"name", in.Name},
		{"venue_name", loc.VenueName},
		{"date", in.Date},
		{"time", in.Time},
		{"postal_code", loc.PostalCode},
		{"number", loc.Number},
		{"rent_cost", in.RentCost},
	} {
		if strings.TrimSpace(f.val) == "" {
			return model.Match{}, invalid(f.name, "required")
		}
	}
	if len(loc.PostalCode) != 8 {
		return model.Match{}, invalid("postal_code", "must have 8 digits")
	}

	start, err := ParseSchedule(in.Date, in.Time, s.loc)
	if err != nil {
		return model.Match{}, invalid("date", "use DD/MM/YYYY and HH:MM")
	}
	if start.Before(startOfDay(s.now().In(s.loc))) {
		return model.Match{}, invalid("date", "match date cannot be in the past")
	}

	rent, err := ParseRent(in.RentCost)
	if err != nil {
		return model.Match{}, invalid("rent_cost", err.Error())
	}

	roster, err := s.normalizeRoster(in.Roster, organizer)
	if err != nil {
		return model.Match{}, err
	}

	var coords *model.Coordinates
	if in.Coordinates != nil {
		c := *in.Coordinates
		if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
			return model.Match{}, invalid("coordinates", "out of range")
		}
		coords = &c
	}

	date, clock := FormatSchedule(start)
	loc.Street = strings.TrimSpace(loc.Street)
	loc.Number = strings.TrimSpace(loc.Number)
	loc.Neighborhood = strings.TrimSpace(loc.Neighborhood)
	loc.City = strings.TrimSpace(loc.City)
	loc.Region = strings.ToUpper(strings.TrimSpace(loc.Region))
	loc.VenueName = strings.TrimSpace(loc.VenueName)
	return model.Match{
		Name:           strings.TrimSpace(in.Name),
		Date:           date,
		Time:           clock,
		Location:       loc,
		Coordinates:    coords,
		RentCost:       rent,
		OrganizerEmail: organizer,
		Roster:         roster,
	}, nil
}

func (s *MatchService) normalizeRoster(in []string, organizer string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, raw := range in {
		email := model.NormalizeEmail(raw)
		if email == "" {
			return nil, invalid("roster", "empty player email")
		}
		if err := s.validate.Var(email, "email"); err != nil {
			return nil, invalid("roster", fmt.Sprintf("invalid player email %q", email))
		}
		if email == organizer {
			return nil, invalid("roster", "the organizer is counted automatically")
		}
		if _, dup := seen[email]; dup {
			return nil, invalid("roster", fmt.Sprintf("player %q already added", email))
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out, nil
}

func (s *MatchService) publish(ctx context.Context, typ string, m model.Match, actor string) {
	if err := s.events.Publish(ctx, s.event(typ, m, actor)); err != nil {
		logger.Warn("match %d: %s event not published: %v", m.ID, typ, err)
	}
}

func (s *MatchService) event(typ string, m model.Match, actor string) q.MatchEvent {
	return q.MatchEvent{
		Type:           typ,
		MatchID:        m.ID,
		Name:           m.Name,
		Date:           m.Date,
		Time:           m.Time,
		PostalCode:     m.Location.PostalCode,
		VenueName:      m.Location.VenueName,
		OrganizerEmail: m.OrganizerEmail,
		Roster:         m.Roster,
		ActorEmail:     actor,
		RentCost:       FormatMoney(m.RentCost),
		PerPersonCost:  FormatMoney(PerPerson(m.RentCost, len(m.Roster))),
		OccurredAt:     s.now().UTC().Format(time.RFC3339),
	}
}

// visible finds id in records and checks that sess may see it.
func visible(records []model.Match, sess model.Session, id int64) (model.Match, error) {
	i, ok := repository.Index(records)[id]
	if !ok {
		return model.Match{}, repository.ErrMatchNotFound
	}
	m := records[i]
	if !sess.IsAdmin() && !m.Involves(sess.Email) {
		return model.Match{}, repository.ErrMatchNotFound
	}
	return m, nil
}

// nextID derives an id from the creation time in milliseconds, moving past
// the largest existing id when two matches are created in the same
// millisecond.
func nextID(records []model.Match, now time.Time) int64 {
	id := now.UnixMilli()
	for _, m := range records {
		if m.ID >= id {
			id = m.ID + 1
		}
	}
	return id
}

// IsNotFound reports whether err means the match does not exist for the caller.
func IsNotFound(err error) bool { return errors.Is(err, repository.ErrMatchNotFound) }
