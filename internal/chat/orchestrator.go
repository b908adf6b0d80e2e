// Package chat runs one conversation turn against the hosted model.
package chat

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"data-chatter/internal/apperr"
	"data-chatter/internal/history"
	"data-chatter/internal/llm"
	"data-chatter/internal/render"
	"data-chatter/internal/session"
)

type Orchestrator struct {
	provisioner  *session.Provisioner
	responder    llm.Responder
	normalizer   *render.Normalizer
	instructions string
	timeout      time.Duration
}

func NewOrchestrator(p *session.Provisioner, responder llm.Responder, n *render.Normalizer, instructions string, timeout time.Duration) *Orchestrator {
	if instructions == "" {
		instructions = DefaultInstructions
	}
	return &Orchestrator{
		provisioner:  p,
		responder:    responder,
		normalizer:   n,
		instructions: instructions,
		timeout:      timeout,
	}
}

// HandleUserTurn sends utterance with the session transcript to the model
// and appends the normalized reply to the session log. Errors carry one of
// the apperr kinds; on error no assistant turn is appended. When an
// artifact cannot be fetched the returned turn holds the elements that were
// produced before the failure.
func (o *Orchestrator) HandleUserTurn(ctx context.Context, s *session.Session, utterance, model string, temperature float64) (history.Turn, error) {
	if s.Dataset() == nil {
		return history.Turn{}, apperr.ErrNoDataset
	}
	container, err := o.provisioner.EnsureContainer(ctx, s)
	if err != nil {
		return history.Turn{}, err
	}

	s.Log.Append(history.UserText(utterance))
	transcript := s.Log.TranscriptText()

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	logger := log.With().Str("session", s.ID).Str("model", model).Logger()
	logger.Info().Int("context_len", len(transcript)).Msg("sending turn")

	resp, err := o.responder.CreateResponse(ctx, llm.ResponseRequest{
		Model:        model,
		Instructions: o.instructions,
		Tools:        container.Tools,
		Input: []llm.InputMessage{
			{Role: "system", Content: transcript},
			{Role: string(history.RoleUser), Content: utterance},
		},
		Temperature: temperature,
	})
	if err != nil {
		err = classify(err)
		logger.Error().Err(err).Msg("response failed")
		return history.Turn{}, err
	}
	logger.Info().Str("response", resp.ID).Int("items", len(resp.Output)).Msg("response received")

	elems, err := o.normalizer.Normalize(ctx, resp, s.Artifacts, container.ID)
	if err != nil {
		logger.Error().Err(err).Msg("normalize failed")
		return history.Turn{Role: history.RoleAssistant, Elements: elems}, err
	}

	turn := history.Turn{Role: history.RoleAssistant, Elements: elems}
	s.Log.Append(turn)
	return turn, nil
}

func classify(err error) error {
	if llm.IsContainerExpired(err) {
		return apperr.Wrap(apperr.ErrContainerExpired, err, "container is expired, re-create it before retrying")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.ErrRemoteCall, err, "response timed out")
	}
	return apperr.Wrap(apperr.ErrRemoteCall, err, "create response")
}
