package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	eventBuffer = 64

	// presence hash fields are "<key>/<session token>".
	fieldSeparator = "/"
)

// trackScript announces ARGV[1] at ARGV[3] and returns 1 when a fresh field of the same
// key (prefix ARGV[2]) already existed.
var trackScript = redis.NewScript(`
local entries = redis.call('HGETALL', KEYS[1])
local fresh = 0
for i = 1, #entries, 2 do
	local at = tonumber(entries[i + 1])
	if string.sub(entries[i], 1, #ARGV[2]) == ARGV[2] and at and tonumber(ARGV[3]) - at <= tonumber(ARGV[4]) then
		fresh = 1
	end
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
return fresh
`)

// untrackScript removes ARGV[1] and returns 1 when no fresh field of the same key is left.
var untrackScript = redis.NewScript(`
if redis.call('HDEL', KEYS[1], ARGV[1]) == 0 then
	return 0
end
local entries = redis.call('HGETALL', KEYS[1])
for i = 1, #entries, 2 do
	local at = tonumber(entries[i + 1])
	if string.sub(entries[i], 1, #ARGV[2]) == ARGV[2] and at and tonumber(ARGV[3]) - at <= tonumber(ARGV[4]) then
		return 0
	end
end
return 1
`)

// Subscription is one participant's live view of a room.
type Subscription interface {
	Events() <-chan Event
	Track(ctx context.Context, key string) error
	Untrack(ctx context.Context, key string) error
	Members(ctx context.Context) ([]string, error)
	Close() error
}

// RedisBroker delivers row changes and presence over Redis pub/sub.
type RedisBroker struct {
	logger     *slog.Logger
	client     *redis.Client
	staleAfter time.Duration
	now        func() time.Time
}

// NewRedisBroker - presence announcements older than staleAfter are not reported as members.
func NewRedisBroker(logger *slog.Logger, client *redis.Client, staleAfter time.Duration) *RedisBroker {
	return &RedisBroker{
		logger:     logger.With("component", "realtime"),
		client:     client,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

func (that *RedisBroker) Subscribe(ctx context.Context, roomID string) (Subscription, error) {
	log := that.logger.With("method", "Subscribe", "room_id", roomID)

	pubsub := that.client.Subscribe(ctx, ChangesTopic(roomID), PresenceTopic(roomID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to room %s: %w", roomID, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())

	sub := &redisSubscription{
		logger: log,
		broker: that,
		roomID: roomID,
		token:  uuid.NewString(),
		pubsub: pubsub,
		events: make(chan Event, eventBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go sub.run(runCtx)

	return sub, nil
}

type redisSubscription struct {
	logger *slog.Logger
	broker *RedisBroker
	roomID string
	token  string
	pubsub *redis.PubSub
	events chan Event

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func (that *redisSubscription) Events() <-chan Event {
	return that.events
}

func (that *redisSubscription) run(ctx context.Context) {
	defer close(that.done)

	if !that.emit(ctx, StatusChanged{Status: StatusSubscribed}) {
		return
	}

	members, err := that.Members(ctx)
	if err != nil {
		that.logger.Warn("failed to read presence snapshot", "error", err)
	} else if !that.emit(ctx, PresenceSync{Members: members}) {
		return
	}

	messages := that.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return
				}
				that.emit(ctx, StatusChanged{Status: StatusError, Err: errors.New("pubsub channel closed")})
				return
			}

			event, err := Decode(msg.Channel, []byte(msg.Payload))
			if err != nil {
				that.logger.Warn("dropping realtime message", "channel", msg.Channel, "error", err)
				continue
			}

			if !that.emit(ctx, event) {
				return
			}
		}
	}
}

func (that *redisSubscription) emit(ctx context.Context, event Event) bool {
	select {
	case that.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// Track announces key for this subscription. A join is published unless key, from this or
// another subscription, was announced within the staleness window.
func (that *redisSubscription) Track(ctx context.Context, key string) error {
	present, err := trackScript.Run(ctx, that.broker.client,
		[]string{PresenceKey(that.roomID)},
		that.field(key), key+fieldSeparator, that.broker.now().UnixMilli(), that.broker.staleAfter.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("failed to announce presence: %w", err)
	}

	if present == 1 {
		return nil
	}

	return that.publishPresence(ctx, presenceJoin, key)
}

// Untrack withdraws this subscription's announcement. A leave is published only when no
// other subscription still holds key.
func (that *redisSubscription) Untrack(ctx context.Context, key string) error {
	left, err := untrackScript.Run(ctx, that.broker.client,
		[]string{PresenceKey(that.roomID)},
		that.field(key), key+fieldSeparator, that.broker.now().UnixMilli(), that.broker.staleAfter.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("failed to remove presence: %w", err)
	}

	if left == 0 {
		return nil
	}

	return that.publishPresence(ctx, presenceLeave, key)
}

func (that *redisSubscription) field(key string) string {
	return key + fieldSeparator + that.token
}

// Members returns the keys announced within the staleness window, sorted.
func (that *redisSubscription) Members(ctx context.Context) ([]string, error) {
	entries, err := that.broker.client.HGetAll(ctx, PresenceKey(that.roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read presence: %w", err)
	}

	now := that.broker.now()

	seen := make(map[string]struct{}, len(entries))
	members := make([]string, 0, len(entries))
	for field, announcedAt := range entries {
		if that.broker.isStale(announcedAt, now) {
			continue
		}

		key := field
		if i := strings.LastIndex(field, fieldSeparator); i >= 0 {
			key = field[:i]
		}

		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		members = append(members, key)
	}
	sort.Strings(members)

	return members, nil
}

// Close stops delivery. The events channel is closed once the reader goroutine exits.
func (that *redisSubscription) Close() error {
	var err error

	that.closeOnce.Do(func() {
		that.cancel()
		err = that.pubsub.Close()
		<-that.done

		select {
		case that.events <- StatusChanged{Status: StatusClosed}:
		default:
		}
		close(that.events)
	})

	if err != nil {
		return fmt.Errorf("failed to close subscription: %w", err)
	}

	return nil
}

func (that *redisSubscription) publishPresence(ctx context.Context, event, key string) error {
	payload, err := encodePresence(event, key)
	if err != nil {
		return fmt.Errorf("failed to encode presence: %w", err)
	}

	if err = that.broker.client.Publish(ctx, PresenceTopic(that.roomID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish presence %s: %w", event, err)
	}

	return nil
}

func (that *RedisBroker) isStale(announcedAt string, now time.Time) bool {
	ms, err := strconv.ParseInt(announcedAt, 10, 64)
	if err != nil {
		return true
	}

	return now.Sub(time.UnixMilli(ms)) > that.staleAfter
}
