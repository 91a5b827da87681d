// internal/service/workflow/sessions.go

package workflow

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gathering/internal/domain/plan"
)

// session holds the only mutable copy of one WorkflowState. mu guards
// state and is held across adapter calls; touched is read without it.
type session struct {
	mu      sync.Mutex
	state   plan.WorkflowState
	touched atomic.Int64
}

func newSession(state plan.WorkflowState, now time.Time) *session {
	sess := &session{state: state}
	sess.touch(now)
	return sess
}

func (sess *session) touch(now time.Time) {
	sess.touched.Store(now.UnixNano())
}

func (sess *session) idle(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, sess.touched.Load()))
}

// CreateSession starts a new, empty planning session
func (s *Service) CreateSession(ctx context.Context) (plan.WorkflowState, error) {
	now := s.now()
	state := plan.WorkflowState{
		ID:             uuid.New().String(),
		CandidateDates: []plan.Date{},
		Participants:   []plan.Participant{},
		Venues:         []plan.VenueCandidate{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	s.mu.Lock()
	s.sessions[state.ID] = newSession(state, now)
	s.mu.Unlock()

	s.metrics.SessionOpened()
	s.logger.Info("session created", zap.String("session_id", state.ID))
	s.publish(ctx, state.ID, EventSessionCreated, nil)

	return state.Clone(), nil
}

// GetSession returns a copy of the session state
func (s *Service) GetSession(ctx context.Context, id string) (plan.WorkflowState, error) {
	return s.view(id)
}

// DeleteSession discards a session
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return errNotFound()
	}

	s.metrics.SessionClosed()
	s.publish(ctx, id, EventSessionDeleted, nil)
	return nil
}

// Stop stops the session janitor
func (s *Service) Stop(ctx context.Context) error {
	s.cancel()

	c := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(c)
	}()

	select {
	case <-c:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (s *Service) lookup(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errNotFound()
	}
	return sess, nil
}

// view returns a copy of the session state
func (s *Service) view(id string) (plan.WorkflowState, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return plan.WorkflowState{}, err
	}

	sess.touch(s.now())

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state.Clone(), nil
}

// update applies fn to a working copy of the session state and keeps the
// result only when fn succeeds
func (s *Service) update(id string, fn func(st *plan.WorkflowState) error) (plan.WorkflowState, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return plan.WorkflowState{}, err
	}

	now := s.now()
	sess.touch(now)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	working := sess.state.Clone()
	if err := fn(&working); err != nil {
		return plan.WorkflowState{}, err
	}
	working.UpdatedAt = now
	sess.state = working

	return working.Clone(), nil
}

// runJanitor expires idle sessions until the service stops
func (s *Service) runJanitor() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.expire(s.now())
		}
	}
}

// expire removes sessions idle for longer than the session TTL. It never
// waits on a session's own lock, so a session busy with a search does not
// hold up the registry.
func (s *Service) expire(now time.Time) int {
	var candidates []string

	s.mu.RLock()
	for id, sess := range s.sessions {
		if sess.idle(now) > s.config.SessionTTL {
			candidates = append(candidates, id)
		}
	}
	s.mu.RUnlock()

	if len(candidates) == 0 {
		return 0
	}

	var expired []string
	s.mu.Lock()
	for _, id := range candidates {
		if sess, ok := s.sessions[id]; ok && sess.idle(now) > s.config.SessionTTL {
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		s.metrics.SessionClosed()
		s.logger.Info("session expired", zap.String("session_id", id))
		s.publish(s.ctx, id, EventSessionExpired, nil)
	}
	return len(expired)
}

func (s *Service) publish(ctx context.Context, sessionID, eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, plan.Event{SessionID: sessionID, Type: eventType, Payload: payload}); err != nil {
		s.logger.Warn("failed to publish session event",
			zap.String("session_id", sessionID),
			zap.String("event", eventType),
			zap.Error(err),
		)
	}
}

func errNotFound() error {
	return plan.E(plan.KindNotFound, "workflow.session", "the planning session does not exist or has expired", nil)
}
