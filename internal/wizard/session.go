// Package wizard drives the linear intake flow for one client session.
//
// A Session is created when the client starts and discarded when it exits; it
// owns the form, the current step, the submission cache and the admin gate.
package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/DAVIDafergan/tatpro-intake/internal/admin"
	"github.com/DAVIDafergan/tatpro-intake/internal/cache"
	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
	"github.com/DAVIDafergan/tatpro-intake/internal/ports"
	"github.com/DAVIDafergan/tatpro-intake/internal/pricing"
)

// ErrNotAtSummary is returned when registration is attempted off the price summary.
var ErrNotAtSummary = errors.New("registration is only available on the price summary")

// ErrIncomplete is returned by Register when a field was cleared or changed
// after its step was passed.
var ErrIncomplete = errors.New("form is incomplete")

// PublishError wraps a failed API publish. The submission it carries was
// still recorded locally.
type PublishError struct {
	Submission domain.Submission
	Err        error
}

func (e *PublishError) Error() string { return fmt.Sprintf("publish submission: %v", e.Err) }
func (e *PublishError) Unwrap() error { return e.Err }

type Session struct {
	step      domain.Step
	form      domain.FormData
	table     *pricing.Table
	store     *cache.Store
	gate      *admin.Gate
	publisher ports.Publisher
}

type Option func(*Session)

// WithPublisher forwards every registered submission to p.
func WithPublisher(p ports.Publisher) Option { return func(s *Session) { s.publisher = p } }

// WithTable replaces the embedded price table.
func WithTable(t *pricing.Table) Option { return func(s *Session) { s.table = t } }

func NewSession(store *cache.Store, gate *admin.Gate, opts ...Option) *Session {
	s := &Session{
		step:  domain.StepWelcome,
		table: pricing.Default(),
		store: store,
		gate:  gate,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) Step() domain.Step       { return s.step }
func (s *Session) Form() domain.FormData   { return s.form }
func (s *Session) Store() *cache.Store     { return s.store }
func (s *Session) Gate() *admin.Gate       { return s.gate }
func (s *Session) Price() pricing.Price    { return s.table.Quote(s.form.CampaignGoal) }
func (s *Session) Set(name, v string) error { return setField(&s.form, name, v) }

func (s *Session) Field(name string) (string, error) { return getField(s.form, name) }

func inLinearFlow(step domain.Step) bool {
	return step >= domain.StepWelcome && step <= domain.StepPriceSummary
}

// CanAdvance reports whether the forward control is enabled.
func (s *Session) CanAdvance() bool {
	return inLinearFlow(s.step) && s.step < domain.StepPriceSummary && Valid(s.step, s.form)
}

// Advance moves one step forward when the current step validates. It never
// moves past the price summary; Register leads to Success.
func (s *Session) Advance() bool {
	if !s.CanAdvance() {
		return false
	}
	s.step++
	return true
}

// Retreat moves one step back inside the linear flow, stopping at Welcome.
func (s *Session) Retreat() bool {
	if !inLinearFlow(s.step) || s.step == domain.StepWelcome {
		return false
	}
	s.step--
	return true
}

// Progress returns the completed fraction of the flow. ok is false on screens
// that show no progress bar.
func (s *Session) Progress() (fraction float64, ok bool) {
	if s.step <= domain.StepWelcome || s.step >= domain.StepSuccess {
		return 0, false
	}
	return float64(s.step+1) / domain.LinearSteps, true
}

// Register records the current form and its quote, then moves to Success.
// Every input step is validated again first.
// With a publisher configured the submission is also sent to the API; a
// publish failure is returned as *PublishError after the move.
func (s *Session) Register(ctx context.Context) (domain.Submission, error) {
	if s.step != domain.StepPriceSummary {
		return domain.Submission{}, ErrNotAtSummary
	}
	for _, step := range []domain.Step{domain.StepInitialDetails, domain.StepCampaignDetails, domain.StepClearingDetails} {
		if !Valid(step, s.form) {
			return domain.Submission{}, fmt.Errorf("%w: %s", ErrIncomplete, step)
		}
	}
	sub, err := s.store.Register(s.form, s.Price())
	if err != nil {
		return domain.Submission{}, err
	}
	s.step = domain.StepSuccess
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, sub); err != nil {
			return sub, &PublishError{Submission: sub, Err: err}
		}
	}
	return sub, nil
}

// Restart returns to the welcome screen. Field values are kept.
func (s *Session) Restart() { s.step = domain.StepWelcome }

// OpenAdmin jumps to the admin screen from anywhere.
func (s *Session) OpenAdmin() { s.step = domain.StepAdmin }

// CloseAdmin leaves the admin screen for the welcome screen.
func (s *Session) CloseAdmin() {
	if s.step == domain.StepAdmin {
		s.step = domain.StepWelcome
	}
}

// Login opens the admin gate and shows the admin listing.
func (s *Session) Login(ctx context.Context, username, code string) error {
	if err := s.gate.Login(ctx, username, code); err != nil {
		return err
	}
	s.step = domain.StepAdmin
	return nil
}

// Logout returns the admin screen to its login state.
func (s *Session) Logout() { s.gate.Logout() }
