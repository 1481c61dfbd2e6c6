// Package oms is the service shell: it subscribes to inbound order
// subjects, validates and transitions orders against the single in-memory
// book, and publishes the resulting event envelopes (spec.md §4.G).
package oms

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/axtrade/omsbroker/client"
	"github.com/axtrade/omsbroker/events"
	"github.com/axtrade/omsbroker/orders"
	"github.com/axtrade/omsbroker/statemachine"
	"github.com/axtrade/omsbroker/store"
)

const inboundQueueDepth = 4096

var inboundSubjects = []string{"orders.new", "orders.fill", "orders.cancel", "orders.amend"}

type inboundEvent struct {
	subject string
	data    []byte
}

// Service is the OMS's single-owner state: an order book, a per-account
// rules cache, and the running counters its heartbeat reports. Every field
// here is touched only from the goroutine run starts — the only way in is
// the inbound channel, fed by subscription callbacks that never mutate
// state directly (spec.md §5's single-owner discipline).
type Service struct {
	conn   *client.Client
	logger *slog.Logger

	heartbeatInterval time.Duration

	inbound chan inboundEvent
	doneCh  chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	subs []string

	book       map[string]orders.Order
	rulesCache map[string]orders.ValidationRules

	activeOrders int
	dailyVolume  decimal.Decimal
	startedAt    time.Time

	orderStore store.Store[store.OrderSnapshot]
	rulesStore store.Store[store.RulesSnapshot]

	fillDedup   *fillDedupCache
	rateLimiter *accountRateLimiter
}

// Option configures a Service at construction.
type Option func(*Service)

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

func WithHeartbeatInterval(d time.Duration) Option {
	return func(s *Service) { s.heartbeatInterval = d }
}

func WithOrderStore(st store.Store[store.OrderSnapshot]) Option {
	return func(s *Service) { s.orderStore = st }
}

func WithRulesStore(st store.Store[store.RulesSnapshot]) Option {
	return func(s *Service) { s.rulesStore = st }
}

// WithOrderRateLimit caps orders.new intake to maxRate submissions per
// window, per account. maxRate <= 0 disables the limit (the default).
func WithOrderRateLimit(maxRate int, window time.Duration) Option {
	return func(s *Service) { s.rateLimiter = newAccountRateLimiter(maxRate, window) }
}

// New builds a Service over an already-connected Client. Call Start to
// begin processing.
func New(conn *client.Client, opts ...Option) *Service {
	s := &Service{
		conn:              conn,
		logger:            slog.Default(),
		heartbeatInterval: 10 * time.Second,
		inbound:           make(chan inboundEvent, inboundQueueDepth),
		doneCh:            make(chan struct{}),
		book:              make(map[string]orders.Order),
		rulesCache:        make(map[string]orders.ValidationRules),
		dailyVolume:       decimal.Zero,
		fillDedup:         newFillDedupCache(fillDedupMaxSize),
		rateLimiter:       newAccountRateLimiter(0, time.Minute),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes to every inbound subject and launches the dispatch
// loop. Each subscription callback only forwards the raw message onto one
// channel — the loop started here is the sole mutator of book/rulesCache.
func (s *Service) Start(ctx context.Context) error {
	s.startedAt = time.Now()
	s.restoreBook(ctx)

	for _, subject := range inboundSubjects {
		subj := subject
		sid, err := s.conn.Subscribe(subj, func(msg client.Message) {
			select {
			case s.inbound <- inboundEvent{subject: msg.Subject, data: msg.Data}:
			case <-s.doneCh:
			}
		})
		if err != nil {
			return err
		}
		s.subs = append(s.subs, sid)
	}

	s.wg.Add(1)
	go s.run(ctx)
	return nil
}

// Stop unsubscribes from every inbound subject and halts the dispatch
// loop. Idempotent.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		for _, sid := range s.subs {
			_ = s.conn.Unsubscribe(sid, 0)
		}
		close(s.doneCh)
	})
	s.wg.Wait()
}

func (s *Service) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.heartbeatInterval)
	defer ticker.Stop()

	cleanup := time.NewTicker(fillDedupCleanupInterval)
	defer cleanup.Stop()

	for {
		select {
		case ev := <-s.inbound:
			s.dispatch(ctx, ev)
		case <-ticker.C:
			s.publishHeartbeat()
		case <-cleanup.C:
			s.fillDedup.cleanup()
			s.rateLimiter.cleanup()
		case <-ctx.Done():
			return
		case <-s.doneCh:
			return
		}
	}
}

func (s *Service) dispatch(ctx context.Context, ev inboundEvent) {
	switch ev.subject {
	case "orders.new":
		s.handleNew(ctx, ev.data)
	case "orders.fill":
		s.handleFill(ctx, ev.data)
	case "orders.cancel":
		s.handleCancel(ctx, ev.data)
	case "orders.amend":
		s.handleAmend(ctx, ev.data)
	default:
		s.logger.Warn("oms: dispatch on unrecognised subject", "subject", ev.subject)
	}
}

func (s *Service) handleNew(ctx context.Context, data []byte) {
	var req newOrderRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.logger.Warn("oms: dropping malformed orders.new", "error", err)
		return
	}
	order, err := req.Order.toOrder()
	if err != nil {
		s.logger.Warn("oms: dropping orders.new with invalid order shape", "error", err)
		return
	}

	if !s.rateLimiter.allow(req.AccountID) {
		s.publish(events.NewOrderRejected(order.ID, "rate_limited"))
		return
	}

	if _, exists := s.book[order.ID]; exists {
		s.publish(events.NewOrderRejected(order.ID, store.ErrAlreadyExists.Error()))
		return
	}

	rules := s.rulesFor(ctx, req.AccountID)
	if err := orders.Validate(order, rules); err != nil {
		s.publish(events.NewOrderRejected(order.ID, err.Error()))
		return
	}

	now := time.Now()
	order.Status = orders.NewStatus()
	order.CreatedAt = now
	order.UpdatedAt = now

	s.book[order.ID] = order
	s.activeOrders++
	s.persistOrder(ctx, order)
	s.publish(events.NewOrderSubmitted(order.ID, order.InstrumentID, order.Quantity))
}

func (s *Service) handleFill(ctx context.Context, data []byte) {
	var req fillRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.logger.Warn("oms: dropping malformed orders.fill", "error", err)
		return
	}

	if req.FillID != "" && s.fillDedup.seen(req.FillID) {
		s.logger.Debug("oms: dropping duplicate fill", "fill_id", req.FillID, "order_id", req.OrderID)
		return
	}

	order, ok := s.book[req.OrderID]
	if !ok {
		s.publish(events.NewOrderError(req.OrderID, "not_found"))
		return
	}

	next, effects, err := statemachine.Transition(order, statemachine.FillEvent{
		Qty: req.FillQty, Price: req.FillPrice, Timestamp: time.Now(),
	})
	if err != nil {
		s.publish(events.NewOrderError(order.ID, err.Error()))
		return
	}

	s.book[order.ID] = next
	s.dailyVolume = s.dailyVolume.Add(req.FillQty)
	if isTerminal(next.Status.Kind) {
		s.activeOrders--
	}
	s.persistOrder(ctx, next)
	for _, eff := range effects {
		s.publish(eff)
	}
}

func (s *Service) handleCancel(ctx context.Context, data []byte) {
	var req cancelRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.logger.Warn("oms: dropping malformed orders.cancel", "error", err)
		return
	}

	order, ok := s.book[req.OrderID]
	if !ok {
		s.publish(events.NewOrderError(req.OrderID, "not_found"))
		return
	}

	wasActive := !isTerminal(order.Status.Kind)
	next, effects, err := statemachine.Transition(order, statemachine.CancelEvent{Timestamp: time.Now()})
	if err != nil {
		s.publish(events.NewOrderError(order.ID, err.Error()))
		return
	}

	s.book[order.ID] = next
	if wasActive && isTerminal(next.Status.Kind) {
		s.activeOrders--
	}
	s.persistOrder(ctx, next)
	for _, eff := range effects {
		s.publish(eff)
	}
}

func (s *Service) handleAmend(ctx context.Context, data []byte) {
	var req amendRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.logger.Warn("oms: dropping malformed orders.amend", "error", err)
		return
	}

	order, ok := s.book[req.OrderID]
	if !ok {
		s.publish(events.NewOrderError(req.OrderID, "not_found"))
		return
	}

	next, _, err := statemachine.Transition(order, statemachine.AmendEvent{
		NewQty: req.Quantity, NewPrice: req.Price, Timestamp: time.Now(),
	})
	if err != nil {
		s.publish(events.NewOrderError(order.ID, err.Error()))
		return
	}

	s.book[order.ID] = next
	s.persistOrder(ctx, next)
	s.publish(events.NewOrderAmended(next.ID, next.Quantity))
}

func isTerminal(kind orders.StatusKind) bool {
	return kind == orders.StatusFilled || kind == orders.StatusCancelled || kind == orders.StatusRejected
}

// rulesFor returns the cached rules for accountID, seeding the cache from
// the optional rules store and falling back to DefaultValidationRules if
// neither has an entry (SPEC_FULL.md §4.G: a miss never blocks intake).
func (s *Service) rulesFor(ctx context.Context, accountID string) orders.ValidationRules {
	if rules, ok := s.rulesCache[accountID]; ok {
		return rules
	}

	if s.rulesStore != nil {
		if snap, err := s.rulesStore.Load(ctx, accountID); err == nil {
			rules := rulesFromSnapshot(snap)
			s.rulesCache[accountID] = rules
			return rules
		}
	}

	rules := orders.DefaultValidationRules()
	s.rulesCache[accountID] = rules
	return rules
}

// restoreBook repopulates the in-memory book from the order store's last
// mirror, so a restart after a crash does not forget every in-flight
// order (the in-memory map stays authoritative once restored; the store
// is never read again until the process restarts).
func (s *Service) restoreBook(ctx context.Context) {
	if s.orderStore == nil {
		return
	}
	keys, err := s.orderStore.List(ctx)
	if err != nil {
		s.logger.Warn("oms: failed to list order snapshots for restore", "error", err)
		return
	}
	for _, key := range keys {
		snap, err := s.orderStore.Load(ctx, key)
		if err != nil {
			s.logger.Warn("oms: failed to load order snapshot", "key", key, "error", err)
			continue
		}
		order := fromSnapshot(snap)
		s.book[order.ID] = order
		if !isTerminal(order.Status.Kind) {
			s.activeOrders++
		}
	}
}

func (s *Service) persistOrder(ctx context.Context, order orders.Order) {
	if s.orderStore == nil {
		return
	}
	if err := s.orderStore.Save(ctx, order.ID, toSnapshot(order)); err != nil {
		s.logger.Warn("oms: failed to persist order snapshot", "order_id", order.ID, "error", err)
	}
}

func (s *Service) publish(p events.Payload) {
	env := events.Wrap(p)
	data, err := env.Marshal()
	if err != nil {
		s.logger.Warn("oms: failed to marshal event payload", "kind", p.Kind(), "error", err)
		return
	}
	if err := s.conn.Publish(env.Subject, data); err != nil {
		s.logger.Warn("oms: failed to publish event", "subject", env.Subject, "error", err)
	}
	for _, mirror := range events.MirrorSubjects(p) {
		if err := s.conn.Publish(mirror, data); err != nil {
			s.logger.Warn("oms: failed to publish mirrored event", "subject", mirror, "error", err)
		}
	}
}

type heartbeatPayload struct {
	ActiveOrders int       `json:"active_orders"`
	DailyVolume  string    `json:"daily_volume"`
	UptimeS      float64   `json:"uptime_s"`
	Timestamp    time.Time `json:"timestamp"`
}

func (s *Service) publishHeartbeat() {
	payload := heartbeatPayload{
		ActiveOrders: s.activeOrders,
		DailyVolume:  s.dailyVolume.String(),
		UptimeS:      time.Since(s.startedAt).Seconds(),
		Timestamp:    time.Now().UTC(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("oms: failed to marshal heartbeat", "error", err)
		return
	}
	if err := s.conn.Publish("system.heartbeat.oms", data); err != nil {
		s.logger.Warn("oms: failed to publish heartbeat", "error", err)
	}
}
