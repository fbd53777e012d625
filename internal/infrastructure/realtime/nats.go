package realtime

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, data []byte) error

// Dispatcher routes notifications to handlers by subject.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	logger   *zap.Logger
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
	}
}

func (d *Dispatcher) Handle(subject string, handler HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[subject] = handler
}

func (d *Dispatcher) Subjects() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	subjects := make([]string, 0, len(d.handlers))
	for subject := range d.handlers {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	return subjects
}

// Dispatch runs the handler for subject. Unknown subjects are ignored;
// handler errors are logged, never returned to the transport.
func (d *Dispatcher) Dispatch(ctx context.Context, subject string, data []byte) {
	d.mu.RLock()
	handler, ok := d.handlers[subject]
	d.mu.RUnlock()

	if !ok {
		d.logger.Debug("no handler for realtime subject", zap.String("subject", subject))
		return
	}
	if err := handler(ctx, data); err != nil {
		d.logger.Warn("realtime handler failed", zap.String("subject", subject), zap.Error(err))
	}
}

type Subscriber struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *zap.Logger
}

func NewSubscriber(url string, logger *zap.Logger) (*Subscriber, error) {
	conn, err := nats.Connect(url,
		nats.Name("storefront-gateway"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("realtime channel disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("realtime channel reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &Subscriber{conn: conn, logger: logger}, nil
}

// Subscribe registers every subject known to the dispatcher. Messages are
// handled with ctx, which should outlive the subscription.
func (s *Subscriber) Subscribe(ctx context.Context, d *Dispatcher) error {
	for _, subject := range d.Subjects() {
		sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
			d.Dispatch(ctx, msg.Subject, msg.Data)
		})
		if err != nil {
			return fmt.Errorf("subscribing to %s: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
		s.logger.Info("subscribed to realtime subject", zap.String("subject", subject))
	}
	return nil
}

func (s *Subscriber) Close() error {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	return s.conn.Drain()
}
