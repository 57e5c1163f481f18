package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jaminalder/timetravel-tictactoe/internal/domain"
)

func TestCreateAndGet(t *testing.T) {
	s := NewService()
	gs, err := s.CreateGame()
	if err != nil {
		t.Fatalf("CreateGame error: %v", err)
	}
	if gs.ID == "" {
		t.Fatalf("expected non-empty game ID")
	}
	if gs.State.Next != domain.X {
		t.Fatalf("expected initial turn X")
	}
	if gs.Created.IsZero() || gs.Updated.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}
	got, ok := s.Get(gs.ID)
	if !ok || got.ID != gs.ID {
		t.Fatalf("Get should find created game")
	}
	if _, ok := s.Get("missing"); ok {
		t.Fatalf("Get should not find unknown game")
	}
}

func TestUnknownGame(t *testing.T) {
	s := NewService()
	if _, err := s.Play("missing", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Play, got %v", err)
	}
	if _, err := s.JumpTo("missing", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from JumpTo, got %v", err)
	}
	if _, err := s.ToggleOrder("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from ToggleOrder, got %v", err)
	}
	if _, err := s.Reset("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Reset, got %v", err)
	}
	if _, _, err := s.Subscribe(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Subscribe, got %v", err)
	}
}

func TestPlayAlternatesAndIgnoresIllegal(t *testing.T) {
	s := NewService()
	gs, _ := s.CreateGame()

	st, err := s.Play(gs.ID, 0)
	if err != nil {
		t.Fatalf("X play failed: %v", err)
	}
	if st.State.Current().Board[0] != domain.X || st.State.Next != domain.O || len(st.State.History) != 2 {
		t.Fatalf("unexpected state after X move: %+v", st.State)
	}

	// occupied cell: no error, nothing changes
	st, err = s.Play(gs.ID, 0)
	if err != nil {
		t.Fatalf("occupied cell should not error, got %v", err)
	}
	if len(st.State.History) != 2 || st.State.Next != domain.O {
		t.Fatalf("occupied cell changed state: %+v", st.State)
	}

	st, _ = s.Play(gs.ID, 9)
	if len(st.State.History) != 2 {
		t.Fatalf("out of range cell changed state")
	}
}

func TestJumpToggleReset(t *testing.T) {
	s := NewService()
	gs, _ := s.CreateGame()
	for _, c := range []int{0, 4, 1} {
		if _, err := s.Play(gs.ID, c); err != nil {
			t.Fatalf("play %d: %v", c, err)
		}
	}

	st, _ := s.JumpTo(gs.ID, 1)
	if st.State.Step != 1 || st.State.Next != domain.O || len(st.State.History) != 4 {
		t.Fatalf("unexpected state after jump: step=%d next=%v len=%d", st.State.Step, st.State.Next, len(st.State.History))
	}
	st, _ = s.JumpTo(gs.ID, 10)
	if st.State.Step != 1 {
		t.Fatalf("out of range jump moved the step")
	}

	st, _ = s.ToggleOrder(gs.ID)
	if st.State.Order != domain.Descending {
		t.Fatalf("expected descending order")
	}

	st, _ = s.Reset(gs.ID)
	if len(st.State.History) != 1 || st.State.Step != 0 || st.State.Next != domain.X || st.State.Order != domain.Ascending {
		t.Fatalf("unexpected state after reset: %+v", st.State)
	}
}

func TestSubscribeAndBroadcast(t *testing.T) {
	s := NewService()
	gs, _ := s.CreateGame()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()
	ch, unsub, err := s.Subscribe(ctx, gs.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsub()

	if _, err := s.Play(gs.ID, 4); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	select {
	case got, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed unexpectedly")
		}
		if got.ID != gs.ID || got.State.Current().Changed != 4 {
			t.Fatalf("unexpected broadcast payload: %+v", got)
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for broadcast")
	}
}

func TestIgnoredMoveDoesNotBroadcast(t *testing.T) {
	s := NewService()
	gs, _ := s.CreateGame()
	s.Play(gs.ID, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, _, _ := s.Subscribe(ctx, gs.ID)

	s.Play(gs.ID, 4)
	s.JumpTo(gs.ID, 5)

	select {
	case got := <-ch:
		t.Fatalf("unexpected broadcast for ignored input: %+v", got)
	default:
	}
}

func TestDropSlowSubscriber(t *testing.T) {
	s := NewService(WithBuffer(1))
	gs, _ := s.CreateGame()

	// Slow subscriber: never read
	ctxSlow, cancelSlow := context.WithCancel(context.Background())
	defer cancelSlow()
	slowCh, _, _ := s.Subscribe(ctxSlow, gs.ID)

	// Fast subscriber: will read
	ctxFast, cancelFast := context.WithTimeout(context.Background(), time.Second*2)
	defer cancelFast()
	fastCh, unsubFast, _ := s.Subscribe(ctxFast, gs.ID)
	defer unsubFast()

	if _, err := s.Play(gs.ID, 0); err != nil {
		t.Fatalf("play1: %v", err)
	}
	select {
	case <-fastCh:
	case <-ctxFast.Done():
		t.Fatalf("fast subscriber did not receive first update")
	}
	if _, err := s.Play(gs.ID, 4); err != nil {
		t.Fatalf("play2: %v", err)
	}
	select {
	case <-fastCh:
	case <-ctxFast.Done():
		t.Fatalf("fast subscriber did not receive second update")
	}

	// slow one got the first snapshot buffered, then was dropped and closed
	if _, ok := <-slowCh; !ok {
		t.Fatalf("expected the buffered snapshot before close")
	}
	if _, ok := <-slowCh; ok {
		t.Fatalf("expected slow subscriber channel to be closed")
	}
	if n := s.Subscribers(gs.ID); n != 1 {
		t.Fatalf("expected 1 live subscriber, got %d", n)
	}
}

func TestUnsubscribeOnCancel(t *testing.T) {
	s := NewService()
	gs, _ := s.CreateGame()
	ctx, cancel := context.WithCancel(context.Background())
	ch, _, _ := s.Subscribe(ctx, gs.ID)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("channel not closed after cancel")
	}
	if n := s.Subscribers(gs.ID); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}
}

func TestDefaultBufferAbsorbsBurst(t *testing.T) {
	s := NewService()
	gs, _ := s.CreateGame()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, _, _ := s.Subscribe(ctx, gs.ID)

	// two tabs changing the game before the reader catches up
	s.Play(gs.ID, 0)
	s.Play(gs.ID, 4)
	s.ToggleOrder(gs.ID)

	if n := s.Subscribers(gs.ID); n != 1 {
		t.Fatalf("expected subscriber to survive a burst, got %d live", n)
	}
	for i, wantLen := range []int{2, 3, 3} {
		got, ok := <-ch
		if !ok {
			t.Fatalf("update %d: channel closed", i)
		}
		if len(got.State.History) != wantLen {
			t.Fatalf("update %d: expected %d entries, got %d", i, wantLen, len(got.State.History))
		}
	}
}
