package notify

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"atrangi/internal/util"
	"atrangi/pkg/domain"
)

// RedisNotifier queues order events on a Redis stream and delivers them from a
// consumer group. Enqueue failures are logged only; the checkout that produced
// the event has already committed.
type RedisNotifier struct {
	client       *redis.Client
	stream       string
	group        string
	consumerBase string
	adminEmail   string
	maxRetries   int
	block        time.Duration
	claimIdle    time.Duration
	retryDelay   time.Duration
	maxLen       int64
	readCount    int64
	once         sync.Once
}

type RedisConfig struct {
	Addr       string
	Password   string
	Stream     string
	Group      string
	Consumer   string
	AdminEmail string
	MaxRetries int
	Block      time.Duration
	ClaimIdle  time.Duration
	RetryDelay time.Duration
	MaxLen     int64
	ReadCount  int64
}

func NewRedisNotifier(cfg RedisConfig) (*RedisNotifier, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("redis addr required")
	}
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		stream = "atrangi:notify"
	}
	group := strings.TrimSpace(cfg.Group)
	if group == "" {
		group = "mailers"
	}
	consumer := strings.TrimSpace(cfg.Consumer)
	if consumer == "" {
		consumer = util.NewID()
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	block := cfg.Block
	if block <= 0 {
		block = 5 * time.Second
	}
	claimIdle := cfg.ClaimIdle
	if claimIdle <= 0 {
		claimIdle = 30 * time.Second
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = 10000
	}
	readCount := cfg.ReadCount
	if readCount <= 0 {
		readCount = 10
	}

	return &RedisNotifier{
		client:       redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Password}),
		stream:       stream,
		group:        group,
		consumerBase: consumer,
		adminEmail:   strings.TrimSpace(cfg.AdminEmail),
		maxRetries:   maxRetries,
		block:        block,
		claimIdle:    claimIdle,
		retryDelay:   retryDelay,
		maxLen:       maxLen,
		readCount:    readCount,
	}, nil
}

// OrderPlaced enqueues the confirmation/alert fan-out for a committed order.
func (n *RedisNotifier) OrderPlaced(ctx context.Context, order domain.Order, userEmail string) {
	for _, ev := range OrderEvents(order, userEmail, n.adminEmail) {
		if err := n.enqueue(ctx, ev, 0); err != nil {
			slog.Error("enqueue order notification failed", "kind", ev.Kind, "order_id", ev.OrderID, "error", err)
		}
	}
}

func (n *RedisNotifier) enqueue(ctx context.Context, ev Event, attempts int) error {
	return n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		MaxLen: n.maxLen,
		Approx: true,
		Values: map[string]any{
			"kind":       ev.Kind,
			"to":         ev.To,
			"order_id":   ev.OrderID,
			"total":      strconv.FormatFloat(ev.Total, 'f', -1, 64),
			"first_name": ev.FirstName,
			"last_name":  ev.LastName,
			"attempts":   strconv.Itoa(attempts),
		},
	}).Err()
}

// Start launches delivery workers that drain the stream into the mailer.
func (n *RedisNotifier) Start(ctx context.Context, concurrency int, mailer Mailer) {
	if concurrency <= 0 {
		concurrency = 1
	}
	n.ensureGroup(ctx)
	for i := 0; i < concurrency; i++ {
		consumer := n.consumerBase + "-" + strconv.Itoa(i)
		go n.consumeLoop(ctx, consumer, mailer)
	}
}

func (n *RedisNotifier) ensureGroup(ctx context.Context) {
	n.once.Do(func() {
		err := n.client.XGroupCreateMkStream(ctx, n.stream, n.group, "$").Err()
		if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
			slog.Warn("create notify consumer group failed", "stream", n.stream, "error", err)
		}
	})
}

func (n *RedisNotifier) consumeLoop(ctx context.Context, consumer string, mailer Mailer) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if msgs, err := n.claimPending(ctx, consumer); err == nil {
			for _, msg := range msgs {
				n.handleMessage(ctx, msg, mailer)
			}
		}

		streams, err := n.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    n.group,
			Consumer: consumer,
			Streams:  []string{n.stream, ">"},
			Count:    n.readCount,
			Block:    n.block,
		}).Result()
		if err != nil {
			continue
		}
		for _, stream := range streams {
			for _, msg := range stream.Messages {
				n.handleMessage(ctx, msg, mailer)
			}
		}
	}
}

func (n *RedisNotifier) claimPending(ctx context.Context, consumer string) ([]redis.XMessage, error) {
	res, _, err := n.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   n.stream,
		Group:    n.group,
		Consumer: consumer,
		MinIdle:  n.claimIdle,
		Start:    "0-0",
		Count:    n.readCount,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (n *RedisNotifier) handleMessage(ctx context.Context, msg redis.XMessage, mailer Mailer) {
	ev, attempts, ok := decodeEvent(msg)
	if !ok {
		n.ackAndDel(ctx, msg.ID)
		return
	}
	err := mailer.Send(ctx, ev)
	if err == nil {
		n.ackAndDel(ctx, msg.ID)
		return
	}
	attempts++
	if attempts >= n.maxRetries {
		slog.Error("order notification dropped", "kind", ev.Kind, "order_id", ev.OrderID, "attempts", attempts, "error", err)
		n.ackAndDel(ctx, msg.ID)
		return
	}
	slog.Warn("order notification retry", "kind", ev.Kind, "order_id", ev.OrderID, "attempts", attempts, "error", err)
	if n.retryDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(n.retryDelay):
		}
	}
	if err := n.enqueue(ctx, ev, attempts); err == nil {
		n.ackAndDel(ctx, msg.ID)
	}
}

func (n *RedisNotifier) ackAndDel(ctx context.Context, msgID string) {
	_, _ = n.client.XAck(ctx, n.stream, n.group, msgID).Result()
	_, _ = n.client.XDel(ctx, n.stream, msgID).Result()
}

func decodeEvent(msg redis.XMessage) (Event, int, bool) {
	ev := Event{}
	ev.Kind, _ = msg.Values["kind"].(string)
	ev.To, _ = msg.Values["to"].(string)
	ev.OrderID, _ = msg.Values["order_id"].(string)
	if ev.Kind == "" || ev.To == "" {
		return Event{}, 0, false
	}
	if raw, _ := msg.Values["total"].(string); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			ev.Total = v
		}
	}
	ev.FirstName, _ = msg.Values["first_name"].(string)
	ev.LastName, _ = msg.Values["last_name"].(string)
	attempts := 0
	if raw, _ := msg.Values["attempts"].(string); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			attempts = v
		}
	}
	return ev, attempts, true
}
