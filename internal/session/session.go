package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-online/internal/client"
	"github.com/rocketscienceinc/tictactoe-online/internal/presence"
	"github.com/rocketscienceinc/tictactoe-online/internal/realtime"
)

var ErrNoRoom = errors.New("session needs a room")

const teardownTimeout = 2 * time.Second

type Broker interface {
	Subscribe(ctx context.Context, roomID string) (realtime.Subscription, error)
}

// Handlers are called from the session goroutine. They must not call Close.
type Handlers struct {
	OnState              func(state client.State)
	OnOpponentDisconnect func()
	OnOpponentReconnect  func()
}

type Options struct {
	Presence presence.Config
	Now      func() time.Time
}

// Session owns one player's subscription to one room: the event stream, the presence tracker,
// the poll ticker and the grace timer. All of them are released by Close.
type Session struct {
	logger   *slog.Logger
	sub      realtime.Subscription
	tracker  *presence.Tracker
	handlers Handlers
	opts     Options
	self     string

	mu    sync.Mutex
	state client.State

	graceCh    chan presence.GraceToken
	graceTimer *time.Timer
	ticker     *time.Ticker

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Open subscribes to the room of initial and starts processing its events.
func Open(
	ctx context.Context,
	logger *slog.Logger,
	broker Broker,
	initial client.State,
	opts Options,
	handlers Handlers,
) (*Session, error) {
	roomID := initial.RoomID()
	if roomID == "" {
		return nil, ErrNoRoom
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Presence == (presence.Config{}) {
		opts.Presence = presence.DefaultConfig()
	}

	sub, err := broker.Subscribe(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	tracker := presence.NewTracker(initial.Online.PlayerID, opts.Presence)
	tracker.OnRowChange(initial.Online.Room, opts.Now())

	initial.Online.ConnectionStatus = client.Connecting

	runCtx, cancel := context.WithCancel(context.Background())

	session := &Session{
		logger:   logger.With("component", "session", "room_id", roomID, "player_id", initial.Online.PlayerID),
		sub:      sub,
		tracker:  tracker,
		handlers: handlers,
		opts:     opts,
		self:     initial.Online.PlayerID,
		state:    initial,
		graceCh:  make(chan presence.GraceToken),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go session.run(runCtx)

	return session, nil
}

// State returns the latest reconciled state.
func (that *Session) State() client.State {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state
}

// Close stops the event loop, withdraws the player's presence and closes the subscription.
// It is safe to call more than once.
func (that *Session) Close() error {
	that.closeOnce.Do(func() {
		that.cancel()
		<-that.done

		ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
		defer cancel()

		if err := that.sub.Untrack(ctx, that.self); err != nil {
			that.logger.Warn("failed to withdraw presence", "error", err)
		}

		if err := that.sub.Close(); err != nil {
			that.closeErr = fmt.Errorf("failed to close session: %w", err)
		}
	})

	return that.closeErr
}

func (that *Session) run(ctx context.Context) {
	defer close(that.done)
	defer that.stopTimers()

	events := that.sub.Events()

	for {
		var tick <-chan time.Time
		if that.ticker != nil {
			tick = that.ticker.C
		}

		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				events = nil
				that.handle(ctx, realtime.StatusChanged{Status: realtime.StatusClosed})
				continue
			}
			that.handle(ctx, event)
		case <-tick:
			that.poll(ctx)
		case token := <-that.graceCh:
			that.graceExpired(ctx, token)
		}
	}
}

func (that *Session) handle(ctx context.Context, event realtime.Event) {
	now := that.opts.Now()

	switch e := event.(type) {
	case realtime.RowChanged:
		if e.Kind == realtime.RowDelete {
			that.logger.Info("room was deleted")
			that.stopTimers()
			that.update(client.ApplyRoomDeleted)
			return
		}

		signal := that.tracker.OnRowChange(e.Room, now)
		that.update(func(state client.State) client.State {
			return client.ApplyRoom(state, e.Room)
		})
		that.dispatch(signal)
	case realtime.PresenceSync:
		that.dispatch(that.tracker.OnPresenceSync(e.Members, now))
	case realtime.PresenceJoined:
		that.dispatch(that.tracker.OnPresenceJoin(e.Key, now))
	case realtime.PresenceLeft:
		if token, ok := that.tracker.OnPresenceLeave(e.Key, now); ok {
			that.scheduleGrace(ctx, token)
		}
	case realtime.StatusChanged:
		that.update(func(state client.State) client.State {
			return client.ApplyChannelStatus(state, e.Status)
		})

		if e.Status == realtime.StatusSubscribed {
			that.announce(ctx)
			that.startPolling()
			return
		}

		that.logger.Warn("channel is down", "status", e.Status, "error", e.Err)
		that.stopTimers()
	default:
		that.logger.Warn("unexpected event", "event", fmt.Sprintf("%T", event))
	}
}

func (that *Session) poll(ctx context.Context) {
	that.announce(ctx)

	if that.tracker.Opponent() == "" {
		return
	}

	that.dispatch(that.tracker.OnPoll(that.opponentPresent(ctx), that.opts.Now()))
}

func (that *Session) graceExpired(ctx context.Context, token presence.GraceToken) {
	that.dispatch(that.tracker.OnGraceExpired(token, that.opponentPresent(ctx), that.opts.Now()))
}

// opponentPresent never fails, a lookup error counts as absent.
func (that *Session) opponentPresent(ctx context.Context) bool {
	opponentID := that.tracker.Opponent()
	if opponentID == "" {
		return false
	}

	members, err := that.sub.Members(ctx)
	if err != nil {
		that.logger.Warn("presence lookup failed, treating opponent as absent", "error", err)
		return false
	}

	return slices.Contains(members, opponentID)
}

func (that *Session) announce(ctx context.Context) {
	if err := that.sub.Track(ctx, that.self); err != nil {
		that.logger.Warn("failed to announce presence", "error", err)
	}
}

func (that *Session) dispatch(signal presence.Signal) {
	switch signal {
	case presence.Disconnect:
		that.logger.Info("opponent disconnected",
			"opponent_id", that.tracker.Opponent(),
			"opponent_name", that.opponentName(),
			"last_heartbeat", that.tracker.LastHeartbeat(),
		)
		that.update(client.ApplyOpponentDisconnected)
		if that.handlers.OnOpponentDisconnect != nil {
			that.handlers.OnOpponentDisconnect()
		}
	case presence.Reconnect:
		that.logger.Info("opponent reconnected", "opponent_id", that.tracker.Opponent(), "opponent_name", that.opponentName())
		that.update(client.ApplyOpponentReconnected)
		if that.handlers.OnOpponentReconnect != nil {
			that.handlers.OnOpponentReconnect()
		}
	case presence.None:
	}
}

func (that *Session) opponentName() string {
	room := that.State().Online.Room
	if room == nil {
		return ""
	}

	return room.NameOf(that.tracker.Opponent())
}

func (that *Session) update(apply func(client.State) client.State) {
	that.mu.Lock()
	that.state = apply(that.state)
	state := that.state
	that.mu.Unlock()

	if that.handlers.OnState != nil {
		that.handlers.OnState(state)
	}
}

func (that *Session) startPolling() {
	if that.ticker != nil {
		return
	}

	that.ticker = time.NewTicker(that.opts.Presence.PollInterval)
}

func (that *Session) scheduleGrace(ctx context.Context, token presence.GraceToken) {
	if that.graceTimer != nil {
		that.graceTimer.Stop()
	}

	that.graceTimer = time.AfterFunc(that.tracker.GracePeriod(), func() {
		select {
		case that.graceCh <- token:
		case <-ctx.Done():
		}
	})
}

func (that *Session) stopTimers() {
	if that.ticker != nil {
		that.ticker.Stop()
		that.ticker = nil
	}

	if that.graceTimer != nil {
		that.graceTimer.Stop()
		that.graceTimer = nil
	}
}
