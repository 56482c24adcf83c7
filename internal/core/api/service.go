// Package api implements the formkeeper evaluation gRPC service.
package api

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/formkeeper/internal/core/db"
	"github.com/solatis/formkeeper/internal/i18n"
	"github.com/solatis/formkeeper/internal/log"
	"github.com/solatis/formkeeper/internal/questionset"
	"github.com/solatis/formkeeper/internal/rules"
	"github.com/solatis/formkeeper/internal/types"
	"github.com/solatis/formkeeper/internal/validate"
)

const tracerName = "github.com/solatis/formkeeper/internal/core/api"

// SetStore loads and stores question sets; implemented by *cache.CachedStore.
type SetStore interface {
	Get(ctx context.Context, id types.QuestionSetID) (*types.QuestionSet, error)
	Put(ctx context.Context, set *types.QuestionSet) (db.QuestionSetRecord, bool, error)
}

// EvaluationService implements EvaluationServer.
type EvaluationService struct {
	sets       SetStore
	loader     *questionset.Loader
	validation []validate.Option
	tracer     trace.Tracer
}

// NewEvaluationService creates the service. sets may be nil, in which case
// only inline question sets are accepted and PutQuestionSet fails.
func NewEvaluationService(sets SetStore, loader *questionset.Loader, opts ...validate.Option) (*EvaluationService, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader cannot be nil")
	}
	return &EvaluationService{
		sets:       sets,
		loader:     loader,
		validation: opts,
		tracer:     otel.Tracer(tracerName),
	}, nil
}

var _ EvaluationServer = (*EvaluationService)(nil)

// EvaluateApplicability decides applicability and visibility of the
// requested questions, or of every question in set order.
func (s *EvaluationService) EvaluateApplicability(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ctx, span := s.tracer.Start(ctx, "EvaluateApplicability")
	defer span.End()

	resp, err := s.evaluate(ctx, in)
	return s.finish(ctx, span, resp, err)
}

func (s *EvaluationService) evaluate(ctx context.Context, in *structpb.Struct) (any, error) {
	var req EvaluateRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}
	engine, err := s.engineFor(ctx, &req)
	if err != nil {
		return nil, err
	}

	var outcomes []rules.Outcome
	if len(req.QuestionIDs) == 0 {
		outcomes = engine.EvaluateAll(req.Answers)
	} else {
		outcomes = make([]rules.Outcome, 0, len(req.QuestionIDs))
		for _, id := range req.QuestionIDs {
			if _, ok := engine.Set().Question(id); !ok {
				return nil, fmt.Errorf("%w: %w: %s", errInvalidRequest, types.ErrUnknownQuestion, id)
			}
			outcomes = append(outcomes, engine.Evaluate(id, req.Answers))
		}
	}
	if !req.Trace {
		for i := range outcomes {
			outcomes[i].Rules = nil
		}
	}

	return EvaluateResponse{QuestionSetID: engine.Set().ID, Outcomes: outcomes}, nil
}

// ValidateAnswers reconciles visibility, clears answers of hidden
// questions and validates every visible question.
func (s *EvaluationService) ValidateAnswers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ctx, span := s.tracer.Start(ctx, "ValidateAnswers")
	defer span.End()

	resp, err := s.validateAnswers(ctx, in, span)
	return s.finish(ctx, span, resp, err)
}

func (s *EvaluationService) validateAnswers(ctx context.Context, in *structpb.Struct, span trace.Span) (any, error) {
	var req EvaluateRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}
	engine, err := s.engineFor(ctx, &req)
	if err != nil {
		return nil, err
	}

	ctx = localize(ctx, req.Locale)
	report := validate.New(engine, s.validation...).ValidateSubmission(ctx, req.Answers)

	resp := NewValidateResponse(engine.Set(), report)
	span.SetAttributes(
		attribute.Int("formkeeper.errors", len(report.Errors)),
		attribute.Int("formkeeper.cleared", len(resp.Cleared)),
	)
	return resp, nil
}

// PutQuestionSet validates, compiles and stores a question-set document.
func (s *EvaluationService) PutQuestionSet(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ctx, span := s.tracer.Start(ctx, "PutQuestionSet")
	defer span.End()

	resp, err := s.put(ctx, in)
	return s.finish(ctx, span, resp, err)
}

func (s *EvaluationService) put(ctx context.Context, in *structpb.Struct) (any, error) {
	if s.sets == nil {
		return nil, errNoStore
	}
	doc, err := structJSON(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	set, err := s.loader.Load(doc)
	if err != nil {
		return nil, err
	}
	if _, err := rules.Compile(set); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidRequest, err)
	}

	rec, changed, err := s.sets.Put(ctx, set)
	if err != nil {
		return nil, err
	}
	log.WithContext(ctx).Info("stored question set",
		"question_set_id", rec.ID,
		"version", rec.Version,
		"changed", changed,
	)
	return PutResponse{
		QuestionSetID: rec.ID,
		Version:       rec.Version,
		Checksum:      rec.Checksum,
		Changed:       changed,
	}, nil
}

// engineFor compiles the inline or stored question set of req.
func (s *EvaluationService) engineFor(ctx context.Context, req *EvaluateRequest) (*rules.Engine, error) {
	span := trace.SpanFromContext(ctx)

	switch {
	case len(req.QuestionSet) > 0 && req.QuestionSetID != "":
		return nil, fmt.Errorf("%w: QuestionSetId and QuestionSet are mutually exclusive", errInvalidRequest)

	case len(req.QuestionSet) > 0:
		set, err := s.loader.Load(req.QuestionSet)
		if err != nil {
			return nil, err
		}
		compiled, err := rules.Compile(set)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errInvalidRequest, err)
		}
		span.SetAttributes(attribute.String("formkeeper.question_set_id", string(compiled.ID)))
		return rules.NewEngine(compiled), nil

	case req.QuestionSetID != "":
		span.SetAttributes(attribute.String("formkeeper.question_set_id", string(req.QuestionSetID)))
		if s.sets == nil {
			return nil, errNoStore
		}
		set, err := s.sets.Get(ctx, req.QuestionSetID)
		if err != nil {
			return nil, err
		}
		compiled, err := rules.Compile(set)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", errStoredSet, req.QuestionSetID, err)
		}
		return rules.NewEngine(compiled), nil

	default:
		return nil, fmt.Errorf("%w: QuestionSetId or QuestionSet required", errInvalidRequest)
	}
}

func (s *EvaluationService) finish(ctx context.Context, span trace.Span, resp any, err error) (*structpb.Struct, error) {
	if err == nil {
		var out *structpb.Struct
		out, err = ToStruct(resp)
		if err == nil {
			return out, nil
		}
	}

	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	st := toStatus(err)
	if !errors.Is(err, errInvalidRequest) && !errors.Is(err, types.ErrSchemaViolation) {
		log.WithContext(ctx).Warn("request failed", "error", err)
	}
	return nil, st
}

// localize attaches a localizer preferring the request locale, then any
// accept-language metadata. Without either the validator's locale applies.
func localize(ctx context.Context, locale string) context.Context {
	var langs []string
	if locale != "" {
		langs = append(langs, locale)
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		langs = append(langs, md.Get("accept-language")...)
	}
	if len(langs) == 0 {
		return ctx
	}
	return i18n.WithLanguage(ctx, langs...)
}
