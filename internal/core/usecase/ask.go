package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/kirillkom/policy-navigator/internal/core/domain"
	"github.com/kirillkom/policy-navigator/internal/core/normalize"
	"github.com/kirillkom/policy-navigator/internal/core/ports"
)

// AskUseCase sequences question submission → pipeline or chat endpoint →
// response normalization, with busy/error state independent of the upload
// workflow. Remote failures become the displayed answer, never errors.
//
// Like the upload workflow, every write goes through SessionStore.Update and
// touches only the ask fields, keeping concurrent uploads in the same
// session intact.
type AskUseCase struct {
	gateway    ports.PipelineGateway
	sessions   ports.SessionStore
	normalizer *normalize.Normalizer
}

func NewAskUseCase(
	gateway ports.PipelineGateway,
	sessions ports.SessionStore,
	normalizer *normalize.Normalizer,
) *AskUseCase {
	return &AskUseCase{
		gateway:    gateway,
		sessions:   sessions,
		normalizer: normalizer,
	}
}

// Ask runs the workflow. An empty or whitespace-only question is a no-op:
// no network call is made and the prior answer stays untouched.
func (uc *AskUseCase) Ask(ctx context.Context, sessionID string, question domain.Question) (*domain.Session, error) {
	sess, err := uc.sessions.Ensure(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(question.Text) == "" {
		return sess, nil
	}
	if question.Mode == "" {
		question.Mode = domain.ModePipeline
	}

	sess, err = uc.sessions.Update(ctx, sess.ID, func(s *domain.Session) error {
		if s.Ask.Phase.InFlight() {
			return domain.WrapError(domain.ErrConflict, "ask", errors.New("ask workflow already in flight"))
		}
		s.Ask = domain.AskState{
			Phase:    domain.PhaseAsking,
			Question: question.Text,
			Mode:     question.Mode,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	raw, err := uc.gateway.SubmitQuestion(ctx, question)
	if err != nil {
		return uc.sessions.Update(ctx, sess.ID, func(s *domain.Session) error {
			s.Ask.Phase = domain.PhaseFailed
			s.Ask.Answer = WarnPrefix + err.Error()
			return nil
		})
	}

	answer, citations := uc.render(raw)
	return uc.sessions.Update(ctx, sess.ID, func(s *domain.Session) error {
		s.Ask.Raw = raw
		s.Ask.Answer = answer
		s.Ask.Citations = citations
		s.Ask.Phase = domain.PhaseAnswered
		return nil
	})
}

// render decodes the verbatim body and applies the normalizer. A body that is
// not valid JSON is displayed as-is.
func (uc *AskUseCase) render(raw json.RawMessage) (string, []domain.Citation) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return string(raw), nil
	}
	return uc.normalizer.BestText(value), normalize.Citations(value)
}

// Snapshot returns the current session state for display.
func (uc *AskUseCase) Snapshot(ctx context.Context, sessionID string) (*domain.Session, error) {
	return uc.sessions.Ensure(ctx, sessionID)
}
