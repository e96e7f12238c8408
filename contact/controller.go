package contact

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/secfolio/portfolio/logging"
)

// DefaultResetDelay is how long the success state is shown before the form
// returns to idle.
const DefaultResetDelay = 3 * time.Second

var (
	// ErrSubmissionInFlight is returned when Submit is called while sending
	ErrSubmissionInFlight = errors.New("a submission is already being sent")

	// ErrIncompleteFields is returned when a required field is blank
	ErrIncompleteFields = errors.New("name, email and message are required")

	// ErrDeliveryFailed wraps the delivery's own error
	ErrDeliveryFailed = errors.New("message delivery failed")
)

// Status is the form's position in its submission cycle.
type Status int

const (
	StatusIdle Status = iota
	StatusSending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSending:
		return "sending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Message is the status line shown under the form.
func (s Status) Message() string {
	switch s {
	case StatusSending:
		return "Sending..."
	case StatusSuccess:
		return "✓ Message sent successfully!"
	case StatusError:
		return "✗ Failed to send message. Please try again."
	default:
		return ""
	}
}

// Controller owns one contact form: its fields and its status.
//
//	idle ──submit──▶ sending ──ok──▶ success ──reset delay──▶ idle
//	                    └──failure──▶ error
//
// Only a submission can leave the error state. Submitting again from success
// is allowed and cancels the pending reset.
type Controller struct {
	mu         sync.Mutex
	fields     Fields
	status     Status
	last       *Submission
	resetTimer *time.Timer
	generation uint64

	delivery   Delivery
	resetDelay time.Duration
	logger     *zap.Logger
	observers  []func(Status)
	now        func() time.Time
}

// Option configures a Controller
type Option func(*Controller)

// WithResetDelay sets how long success is displayed.
func WithResetDelay(d time.Duration) Option {
	return func(c *Controller) { c.resetDelay = d }
}

// WithLogger sets the controller's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = logging.OrNop(l) }
}

// WithObserver registers fn to be called after every status change.
// Observers run on the goroutine that made the change, outside the lock.
func WithObserver(fn func(Status)) Option {
	return func(c *Controller) { c.observers = append(c.observers, fn) }
}

// NewController creates an idle form. A nil delivery means Simulated{}.
func NewController(delivery Delivery, opts ...Option) *Controller {
	if delivery == nil {
		delivery = Simulated{}
	}
	c := &Controller{
		delivery:   delivery,
		resetDelay: DefaultResetDelay,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the current status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Fields returns the current field values.
func (c *Controller) Fields() Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields
}

// SetFields replaces the field values. It never changes the status.
func (c *Controller) SetFields(f Fields) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = f
}

// LastSubmission returns the most recent accepted submission, if any.
func (c *Controller) LastSubmission() (Submission, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Submission{}, false
	}
	return *c.last, true
}

// Submit sends the current fields. It blocks until the delivery resolves.
// Rejected submissions (in flight, incomplete) change nothing.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	return c.submitLocked(ctx, c.fields)
}

// SubmitFields replaces the fields and sends them as one step. When the
// submission is rejected the stored fields are left untouched, so a second
// form posted while another is sending cannot overwrite the one in flight.
func (c *Controller) SubmitFields(ctx context.Context, f Fields) error {
	c.mu.Lock()
	return c.submitLocked(ctx, f)
}

// submitLocked is entered with c.mu held and releases it.
func (c *Controller) submitLocked(ctx context.Context, f Fields) error {
	if c.status == StatusSending {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if !f.Complete() {
		c.mu.Unlock()
		return ErrIncompleteFields
	}
	c.fields = f

	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
	sub := Submission{
		ID:          uuid.NewString(),
		Fields:      c.fields,
		SubmittedAt: c.now(),
	}
	c.last = &sub
	c.status = StatusSending
	c.generation++
	gen := c.generation
	c.mu.Unlock()
	c.notify(StatusSending)

	c.logger.Info("contact submission started", zap.String("submission_id", sub.ID))

	// Leaving the page does not cancel a send in progress.
	err := c.delivery.Deliver(context.WithoutCancel(ctx), sub)

	c.mu.Lock()
	if err != nil {
		c.status = StatusError
		c.mu.Unlock()
		c.notify(StatusError)
		c.logger.Warn("contact submission failed",
			zap.String("submission_id", sub.ID),
			zap.Duration("elapsed", time.Since(sub.SubmittedAt)),
			zap.Error(err))
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	c.status = StatusSuccess
	c.fields = Fields{}
	c.mu.Unlock()
	c.notify(StatusSuccess)

	c.mu.Lock()
	if c.generation == gen && c.status == StatusSuccess {
		c.resetTimer = time.AfterFunc(c.resetDelay, func() { c.expireSuccess(gen) })
	}
	c.mu.Unlock()

	c.logger.Info("contact submission delivered",
		zap.String("submission_id", sub.ID),
		zap.Duration("elapsed", time.Since(sub.SubmittedAt)))
	return nil
}

// expireSuccess returns the form to idle unless another submission has
// started since the timer was armed.
func (c *Controller) expireSuccess(gen uint64) {
	c.mu.Lock()
	if c.generation != gen || c.status != StatusSuccess {
		c.mu.Unlock()
		return
	}
	c.status = StatusIdle
	c.resetTimer = nil
	c.mu.Unlock()
	c.notify(StatusIdle)
}

func (c *Controller) notify(s Status) {
	for _, fn := range c.observers {
		fn(s)
	}
}
