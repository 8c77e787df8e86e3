package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/ecoroute/trip-planner/backend/internal/domain"
	"github.com/ecoroute/trip-planner/backend/internal/gateway"
	"github.com/ecoroute/trip-planner/backend/internal/itinerary"
)

// placeholderMessage is stored in the error document when both parse attempts fail.
const placeholderMessage = "Failed to parse AI response. Please regenerate the itinerary."

// Plan outcomes reported to the metrics recorder.
const (
	OutcomePlanned      = "planned"
	OutcomeRepaired     = "repaired"
	OutcomePlaceholder  = "placeholder"
	OutcomeRateLimited  = "rate_limited"
	OutcomeGatewayError = "gateway_error"
	OutcomeRejected     = "rejected"
	OutcomeStoreError   = "store_error"
)

// Completer sends a chat completion request. Implemented by *gateway.Client.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (gateway.Response, error)
}

// ItinerarySink overwrites a trip's itinerary document and status, scoped by
// trip and owner.
type ItinerarySink interface {
	SaveItinerary(ctx context.Context, tripID, ownerID uuid.UUID, doc any, status domain.TripStatus) error
}

// Recorder receives planner metrics. Implemented by *metrics.Collector.
type Recorder interface {
	PlanOutcome(outcome string)
	GatewayCall(stage string, elapsed time.Duration, err error)
}

// PlannerService turns a trip request into a persisted itinerary.
// Steps run strictly in sequence: validate, authorize, prompt, complete,
// extract, repair once on failure, persist.
type PlannerService struct {
	authz   *Authorizer
	gateway Completer
	sink    ItinerarySink
	metrics Recorder
	log     *slog.Logger
}

// NewPlannerService constructs a PlannerService. A nil recorder disables metrics.
func NewPlannerService(authz *Authorizer, gw Completer, sink ItinerarySink, rec Recorder, log *slog.Logger) *PlannerService {
	if rec == nil {
		rec = nopRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &PlannerService{authz: authz, gateway: gw, sink: sink, metrics: rec, log: log}
}

// Plan runs one planning invocation for the caller identified by authHeader.
//
// It returns a result with an itinerary (status planned) or, when the model
// output could not be recovered even after repair, a result carrying the error
// placeholder (status draft). Both are persisted. Errors are returned for
// validation, identity, ownership, gateway, rate-limit and store failures.
func (s *PlannerService) Plan(ctx context.Context, authHeader string, body any) (domain.PlanResult, error) {
	req, err := ValidateTripRequest(body)
	if err != nil {
		s.metrics.PlanOutcome(OutcomeRejected)
		return domain.PlanResult{}, fmt.Errorf("service.PlannerService.Plan: %w", err)
	}

	caller, err := s.authz.Authorize(ctx, authHeader, req.TripID)
	if err != nil {
		s.metrics.PlanOutcome(OutcomeRejected)
		return domain.PlanResult{}, fmt.Errorf("service.PlannerService.Plan: %w", err)
	}
	log := s.log.With("trip_id", req.TripID, "user_id", caller.UserID)

	days := max(req.DurationDays(), 1)
	raw, err := s.complete(ctx, "primary", BuildPrompt(req, days))
	if err != nil {
		s.metrics.PlanOutcome(failureOutcome(err))
		log.WarnContext(ctx, "planner: completion failed", "error", err)
		return domain.PlanResult{}, fmt.Errorf("service.PlannerService.Plan: %w", err)
	}

	result := domain.PlanResult{TripID: req.TripID, Status: domain.StatusPlanned}
	result.Itinerary, err = itinerary.Extract(raw)
	if err != nil {
		log.InfoContext(ctx, "planner: model output malformed, requesting repair", "error", err, "raw_len", len(raw))
		result.Itinerary, err = s.repair(ctx, raw)
		if err != nil {
			log.WarnContext(ctx, "planner: repair failed", "error", err)
			placeholder := domain.NewItineraryError(placeholderMessage, raw)
			result.Itinerary = nil
			result.Placeholder = &placeholder
			result.Status = domain.StatusDraft
		} else {
			result.Repaired = true
		}
	}

	if err := s.sink.SaveItinerary(ctx, req.TripID, caller.UserID, result.Document(), result.Status); err != nil {
		s.metrics.PlanOutcome(OutcomeStoreError)
		if !errors.Is(err, domain.ErrPersistence) {
			err = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}
		log.ErrorContext(ctx, "planner: saving itinerary failed", "error", err)
		return domain.PlanResult{}, fmt.Errorf("service.PlannerService.Plan: %w", err)
	}

	switch {
	case result.Failed():
		s.metrics.PlanOutcome(OutcomePlaceholder)
	case result.Repaired:
		s.metrics.PlanOutcome(OutcomeRepaired)
	default:
		s.metrics.PlanOutcome(OutcomePlanned)
	}
	log.InfoContext(ctx, "planner: itinerary saved", "status", result.Status, "repaired", result.Repaired)
	return result, nil
}

// complete sends a single-turn prompt and returns the text of the first choice.
// An embedded rate-limit error wraps domain.ErrRateLimited; any other embedded
// error wraps domain.ErrGateway.
func (s *PlannerService) complete(ctx context.Context, stage, prompt string) (string, error) {
	start := time.Now()
	resp, err := s.gateway.Complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
	if err == nil {
		if apiErr := resp.EmbeddedError(); apiErr != nil {
			if apiErr.RateLimited() {
				err = fmt.Errorf("%w: %s", domain.ErrRateLimited, apiErr.Error())
			} else {
				err = fmt.Errorf("%w: gateway reported: %s", domain.ErrGateway, apiErr.Error())
			}
		}
	}
	s.metrics.GatewayCall(stage, time.Since(start), err)
	if err != nil {
		return "", err
	}
	return resp.Content(), nil
}

// repair asks the model once to fix its own output and re-extracts the result.
func (s *PlannerService) repair(ctx context.Context, raw string) (domain.Itinerary, error) {
	fixed, err := s.complete(ctx, "repair", repairPrompt(raw))
	if err != nil {
		return nil, err
	}
	return itinerary.Extract(fixed)
}

func failureOutcome(err error) string {
	if errors.Is(err, domain.ErrRateLimited) {
		return OutcomeRateLimited
	}
	return OutcomeGatewayError
}

type nopRecorder struct{}

func (nopRecorder) PlanOutcome(string)                        {}
func (nopRecorder) GatewayCall(string, time.Duration, error) {}
