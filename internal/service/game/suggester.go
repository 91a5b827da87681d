// internal/service/game/suggester.go

package game

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gathering/internal/domain/plan"
)

// HostPersona is the system message given to the text generation service
const HostPersona = "You are the organizer of a party, a host who wants everyone to enjoy themselves."

// ErrorPrefix starts every user-visible failure message
const ErrorPrefix = "An error occurred: "

// Suggester asks a text generation service for a party game
type Suggester struct {
	completer plan.Completer
	logger    *zap.Logger
}

// NewSuggester creates a new suggester. completer may be nil when no text
// generation service is configured.
func NewSuggester(completer plan.Completer, logger *zap.Logger) *Suggester {
	return &Suggester{
		completer: completer,
		logger:    logger,
	}
}

// Prompt builds the conversation sent for purpose
func Prompt(purpose plan.Purpose) []plan.ChatMessage {
	return []plan.ChatMessage{
		{Role: plan.RoleSystem, Content: HostPersona},
		{Role: plan.RoleUser, Content: fmt.Sprintf("The purpose of the gathering is \"%s\". Please suggest a party game.", purpose.Label())},
	}
}

// Suggest returns a game suggestion for purpose
func (s *Suggester) Suggest(ctx context.Context, purpose plan.Purpose) (string, error) {
	const op = "game.suggest"

	if !purpose.Valid() {
		return "", plan.E(plan.KindIncompletePlan, op, "please choose the purpose of the gathering first", nil)
	}
	if s.completer == nil {
		return "", plan.E(plan.KindServiceUnavailable, op, "game suggestions are not configured", nil)
	}

	text, err := s.completer.Complete(ctx, Prompt(purpose))
	if err != nil {
		s.logger.Warn("game suggestion failed", zap.String("purpose", string(purpose)), zap.Error(err))
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", plan.E(plan.KindServiceUnavailable, op, "the suggestion came back empty", nil)
	}
	return text, nil
}

// FailureText is the readable form of a failed suggestion
func FailureText(err error) string {
	if plan.KindOf(err) == plan.KindUnknown {
		return ErrorPrefix + err.Error()
	}
	return ErrorPrefix + plan.Describe(err)
}
