package booking

import (
	"errors"
	"io"
	"log/slog"
)

// Logger is the logging surface the service needs; *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Option configures a Service.
type Option func(*Service) error

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(s *Service) error {
		if c == nil {
			return errors.New("booking: nil clock")
		}
		s.clock = c
		return nil
	}
}

// WithGenerator replaces the confirmation number generator.
func WithGenerator(g *Generator) Option {
	return func(s *Service) error {
		if g == nil {
			return errors.New("booking: nil generator")
		}
		s.gen = g
		return nil
	}
}

// WithNotifier sets the receiver of committed reservation events.
func WithNotifier(n Notifier) Option {
	return func(s *Service) error {
		if n == nil {
			return errors.New("booking: nil notifier")
		}
		s.notifier = n
		return nil
	}
}

func WithLogger(l Logger) Option {
	return func(s *Service) error {
		if l == nil {
			return errors.New("booking: nil logger")
		}
		s.log = l
		return nil
	}
}

// WithConfirmationAttempts bounds how many confirmation numbers are drawn
// per creation.  With 1, the default, a code is generated once and used
// without a lookup.  Larger values check each draw against the property's
// existing codes and redraw on a hit.
func WithConfirmationAttempts(n int) Option {
	return func(s *Service) error {
		if n < 1 {
			return errors.New("booking: confirmation attempts must be at least 1")
		}
		s.confirmAttempts = n
		return nil
	}
}

func defaultLogger() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
