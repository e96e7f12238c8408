package contact

import (
	"context"
	"strings"
	"time"
)

// Fields are the three inputs of the contact form.
type Fields struct {
	Name    string `form:"name" json:"name" binding:"required"`
	Email   string `form:"email" json:"email" binding:"required"`
	Message string `form:"message" json:"message" binding:"required"`
}

// Complete reports whether every field has non-blank content. Nothing else
// is checked: no email format, no length limits.
func (f Fields) Complete() bool {
	return strings.TrimSpace(f.Name) != "" &&
		strings.TrimSpace(f.Email) != "" &&
		strings.TrimSpace(f.Message) != ""
}

// Submission is one accepted send attempt.
type Submission struct {
	ID          string
	Fields      Fields
	SubmittedAt time.Time
}

// Delivery hands a submission to whatever carries messages onward.
// A nil error is success; anything else moves the form into the error state.
type Delivery interface {
	Deliver(ctx context.Context, s Submission) error
}

// DeliveryFunc adapts a plain function to Delivery.
type DeliveryFunc func(ctx context.Context, s Submission) error

func (f DeliveryFunc) Deliver(ctx context.Context, s Submission) error {
	return f(ctx, s)
}

// Simulated stands in for a real transport: it waits Delay and succeeds.
// The message goes nowhere.
type Simulated struct {
	Delay time.Duration
}

func (d Simulated) Deliver(ctx context.Context, _ Submission) error {
	if d.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(d.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
