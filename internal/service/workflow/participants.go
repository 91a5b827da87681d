// internal/service/workflow/participants.go

package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"gathering/internal/domain/plan"
)

// ParticipantInput is what a participant submits
type ParticipantInput struct {
	Name          string
	Availability  map[plan.Date]plan.Attendance
	Location      string
	Hobbies       []string
	FavoriteFoods []string
}

// build validates in against the session's candidate dates and returns the
// participant it describes
func (in ParticipantInput) build(id string, candidates []plan.Date) (plan.Participant, error) {
	const op = "workflow.participant"

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return plan.Participant{}, plan.E(plan.KindInvalidInput, op, "a participant name is required", nil)
	}

	availability := make(map[plan.Date]plan.Attendance, len(in.Availability))
	for d, a := range in.Availability {
		if !lo.Contains(candidates, d) {
			return plan.Participant{}, plan.E(plan.KindInvalidInput, op, fmt.Sprintf("%s is not a candidate date", d), nil)
		}
		if !a.Valid() {
			return plan.Participant{}, plan.E(plan.KindInvalidInput, op, fmt.Sprintf("unknown answer %q for %s", a, d), nil)
		}
		availability[d] = a
	}

	if unknown := lo.Without(in.Hobbies, plan.HobbyOptions...); len(unknown) > 0 {
		return plan.Participant{}, plan.E(plan.KindInvalidInput, op, fmt.Sprintf("unknown hobby %q", unknown[0]), nil)
	}
	if unknown := lo.Without(in.FavoriteFoods, plan.FoodOptions...); len(unknown) > 0 {
		return plan.Participant{}, plan.E(plan.KindInvalidInput, op, fmt.Sprintf("unknown food %q", unknown[0]), nil)
	}

	return plan.Participant{
		ID:            id,
		Name:          name,
		Availability:  availability,
		Location:      strings.TrimSpace(in.Location),
		Hobbies:       lo.Uniq(in.Hobbies),
		FavoriteFoods: lo.Uniq(in.FavoriteFoods),
	}, nil
}

// AddParticipant adds a participant to the session
func (s *Service) AddParticipant(ctx context.Context, id string, in ParticipantInput) (plan.Participant, error) {
	var added plan.Participant
	_, err := s.update(id, func(st *plan.WorkflowState) error {
		p, err := in.build(uuid.New().String(), st.CandidateDates)
		if err != nil {
			return err
		}
		st.Participants = append(st.Participants, p)
		added = p
		return nil
	})
	if err != nil {
		return plan.Participant{}, err
	}

	s.publish(ctx, id, EventParticipantAdded, added)
	return added, nil
}

// UpdateParticipant replaces a participant's answers
func (s *Service) UpdateParticipant(ctx context.Context, id, participantID string, in ParticipantInput) (plan.Participant, error) {
	var updated plan.Participant
	_, err := s.update(id, func(st *plan.WorkflowState) error {
		_, idx, ok := lo.FindIndexOf(st.Participants, func(p plan.Participant) bool {
			return p.ID == participantID
		})
		if !ok {
			return errParticipantNotFound()
		}
		p, err := in.build(participantID, st.CandidateDates)
		if err != nil {
			return err
		}
		st.Participants[idx] = p
		updated = p
		return nil
	})
	if err != nil {
		return plan.Participant{}, err
	}

	s.publish(ctx, id, EventParticipantUpdated, updated)
	return updated, nil
}

// RemoveParticipant removes a participant from the session
func (s *Service) RemoveParticipant(ctx context.Context, id, participantID string) error {
	_, err := s.update(id, func(st *plan.WorkflowState) error {
		kept := lo.Reject(st.Participants, func(p plan.Participant, _ int) bool {
			return p.ID == participantID
		})
		if len(kept) == len(st.Participants) {
			return errParticipantNotFound()
		}
		st.Participants = kept
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, id, EventParticipantRemoved, participantID)
	return nil
}

func errParticipantNotFound() error {
	return plan.E(plan.KindNotFound, "workflow.participant", "the participant does not exist", nil)
}
