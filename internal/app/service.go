package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jaminalder/timetravel-tictactoe/internal/domain"
)

// ErrNotFound is returned for unknown game ids.
var ErrNotFound = errors.New("game not found")

// GameState is the snapshot of one game session handed to callers.
type GameState struct {
	ID      string       `json:"id"`
	State   domain.State `json:"state"`
	Created time.Time    `json:"created"`
	Updated time.Time    `json:"updated"`
}

// View derives the renderable view of the session's game.
func (gs GameState) View() domain.View { return gs.State.View() }

type session struct {
	id      string
	game    *domain.Game
	created time.Time
	updated time.Time
}

func (ss *session) snapshot() GameState {
	return GameState{ID: ss.id, State: ss.game.State(), Created: ss.created, Updated: ss.updated}
}

type subscriber struct {
	ch        chan GameState
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// DefaultBuffer is the per-subscriber channel capacity unless WithBuffer
// says otherwise.
const DefaultBuffer = 8

// Service manages game sessions and the subscribers watching them.
type Service struct {
	mu     sync.Mutex
	games  map[string]*session
	subs   map[string]map[*subscriber]struct{}
	log    zerolog.Logger
	buffer int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for session events.
func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

// WithBuffer sets the per-subscriber channel capacity.
func WithBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// NewService creates an empty service.
func NewService(opts ...Option) *Service {
	s := &Service{
		games:  make(map[string]*session),
		subs:   make(map[string]map[*subscriber]struct{}),
		log:    zerolog.Nop(),
		buffer: DefaultBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame() (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	ss := &session{id: uuid.NewString(), game: domain.New(), created: now, updated: now}
	s.games[ss.id] = ss
	gamesCreated.Inc()
	s.log.Info().Str("game_id", ss.id).Msg("game created")
	gs := ss.snapshot()
	return &gs, nil
}

// Get returns a snapshot of the game if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.games[id]
	if !ok {
		return nil, false
	}
	gs := ss.snapshot()
	return &gs, true
}

// Play places the next mark at cell index. Illegal moves leave the game
// untouched and return its current snapshot without an error.
func (s *Service) Play(id string, index int) (*GameState, error) {
	return s.apply(id, "play", func(g *domain.Game) bool {
		if !g.Play(index) {
			movesTotal.WithLabelValues("ignored").Inc()
			s.log.Debug().Str("game_id", id).Int("cell", index).Msg("move ignored")
			return false
		}
		movesTotal.WithLabelValues("applied").Inc()
		if out := domain.Evaluate(g.Current().Board); out.Decided() {
			label := out.Result.String()
			if out.Result == domain.Win {
				label = strings.ToLower(out.Winner.String())
			}
			gamesFinished.WithLabelValues(label).Inc()
			s.log.Info().Str("game_id", id).Str("outcome", label).Msg("game decided")
		}
		return true
	})
}

// JumpTo views an earlier (or later) history step.
func (s *Service) JumpTo(id string, step int) (*GameState, error) {
	return s.apply(id, "jump", func(g *domain.Game) bool { return g.JumpTo(step) })
}

// ToggleOrder flips the move list order.
func (s *Service) ToggleOrder(id string) (*GameState, error) {
	return s.apply(id, "order", func(g *domain.Game) bool {
		g.ToggleOrder()
		return true
	})
}

// Reset starts the session's game over.
func (s *Service) Reset(id string) (*GameState, error) {
	return s.apply(id, "reset", func(g *domain.Game) bool {
		g.Reset()
		return true
	})
}

// apply runs op against the game and, when it reports a change, bumps the
// timestamp and fans the new snapshot out to subscribers.
func (s *Service) apply(id, action string, op func(*domain.Game) bool) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !op(ss.game) {
		gs := ss.snapshot()
		return &gs, nil
	}
	ss.updated = time.Now()
	gs := ss.snapshot()
	s.log.Debug().Str("game_id", id).Str("action", action).Int("step", gs.State.Step).Msg("game updated")
	s.broadcastLocked(id, gs)
	return &gs, nil
}

// broadcastLocked never blocks; subscribers with a full channel are dropped.
func (s *Service) broadcastLocked(id string, gs GameState) {
	set := s.subs[id]
	for sub := range set {
		select {
		case sub.ch <- gs:
		default:
			delete(set, sub)
			sub.close()
			activeSubscribers.Dec()
			droppedSubscribers.Inc()
			s.log.Warn().Str("game_id", id).Msg("dropped slow subscriber")
		}
	}
}

// Subscribe registers a subscriber for a game. The channel is closed when ctx
// ends, the returned func is called or the subscriber falls behind.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan GameState, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan GameState, s.buffer)}
	set[sub] = struct{}{}
	activeSubscribers.Inc()

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if set, ok := s.subs[id]; ok {
				if _, live := set[sub]; live {
					delete(set, sub)
					activeSubscribers.Dec()
				}
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}

// Subscribers returns the number of live subscribers for a game.
func (s *Service) Subscribers(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs[id])
}
