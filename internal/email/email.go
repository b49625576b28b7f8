package email

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/volare/booking/internal/kafka"
)

// Sender renders booking notifications. A real mail transport would
// slot in behind the same Send signature.
type Sender struct {
	out io.Writer
}

func NewSender() *Sender {
	return NewSenderWithWriter(os.Stdout)
}

func NewSenderWithWriter(w io.Writer) *Sender {
	return &Sender{out: w}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	var err error
	switch event.Type {
	case kafka.EventBookingCancelled:
		_, err = fmt.Fprintf(s.out, "notify user %d: booking %s is %s (flight %d, %d cents refunded)\n",
			event.UserID, event.Reference, event.Status, event.FlightID, event.TotalCents)
	default:
		_, err = fmt.Fprintf(s.out, "notify user %d: booking %s is %s (flight %d, %d passenger(s), %d cents)\n",
			event.UserID, event.Reference, event.Status, event.FlightID, event.Passengers, event.TotalCents)
	}
	return err
}
