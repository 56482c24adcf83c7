// Package validate checks submitted answers of visible questions.
//
// Checks per question, in order:
//   - required: a Mandatory question must have an answer; when it fails no
//     format check runs for that question
//   - LENGTH, then REGEX, then DATE conditions; within a kind, rules in
//     Sequence order and conditions in declaration order
//
// Misconfigured operands (bad LENGTH bounds, invalid patterns, empty DATE
// token lists) are skipped rather than reported. Each check kind reports at
// most one error per question.
package validate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/solatis/formkeeper/internal/i18n"
	"github.com/solatis/formkeeper/internal/log"
	"github.com/solatis/formkeeper/internal/rules"
	"github.com/solatis/formkeeper/internal/types"
	"github.com/solatis/formkeeper/internal/visibility"
)

// Kind names the check that produced a FieldError.
type Kind string

const (
	KindRequired Kind = "REQUIRED"
	KindLength   Kind = Kind(types.OperatorLength)
	KindRegex    Kind = Kind(types.OperatorRegex)
	KindDate     Kind = Kind(types.OperatorDate)
)

// FieldError is one validation failure bound to a form field.
type FieldError struct {
	PropertyPath string            `json:"PropertyPath"`
	QuestionID   types.QuestionID  `json:"QuestionId"`
	ConditionID  types.ConditionID `json:"ConditionId,omitempty"`
	Kind         Kind              `json:"Kind"`
	Message      string            `json:"Message"`
}

// Report is the result of validating a submission.
type Report struct {
	Visibility visibility.Result `json:"-"`
	Errors     []FieldError      `json:"Errors"`
}

// Valid reports whether the submission passed every check.
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// Validator runs required and format checks against one question set.
// Safe for concurrent use.
type Validator struct {
	engine   *rules.Engine
	now      func() time.Time
	location *time.Location
	locale   string
	log      *slog.Logger
	regex    *regexCache
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock sets the source of "today" for FUTUREDATE/PASTDATE.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// WithLocation sets the time zone dates are compared in.
func WithLocation(loc *time.Location) Option {
	return func(v *Validator) {
		if loc != nil {
			v.location = loc
		}
	}
}

// WithRegexTimeout lowers the REGEX match timeout. Values outside
// (0, MaxRegexTimeout] use MaxRegexTimeout.
func WithRegexTimeout(d time.Duration) Option {
	return func(v *Validator) { v.regex = newRegexCache(d) }
}

// WithLocale sets the message language used when ctx has no localizer.
func WithLocale(lang string) Option {
	return func(v *Validator) { v.locale = lang }
}

// WithLogger sets the logger used instead of the context logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) { v.log = logger }
}

// New creates a validator for engine's question set.
func New(engine *rules.Engine, opts ...Option) *Validator {
	v := &Validator{
		engine:   engine,
		now:      time.Now,
		location: time.Local,
		locale:   i18n.DefaultLanguage,
		regex:    newRegexCache(MaxRegexTimeout),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Validator) logger(ctx context.Context) *slog.Logger {
	if v.log != nil {
		return v.log
	}
	return log.WithContext(ctx)
}

func (v *Validator) localize(ctx context.Context) context.Context {
	if i18n.HasLocalizer(ctx) {
		return ctx
	}
	return i18n.WithLanguage(ctx, v.locale)
}

// ValidateSubmission reconciles visibility, then checks every visible
// question against the reconciled answers.
func (v *Validator) ValidateSubmission(ctx context.Context, answers types.Answers) Report {
	ctx = v.localize(ctx)

	vis := visibility.Reconcile(v.engine, answers)
	report := Report{Visibility: vis, Errors: []FieldError{}}

	for _, q := range v.engine.Set().Questions() {
		if !vis.IsVisible(q.ID()) {
			continue
		}
		ans, _ := vis.Answers.Get(q.ID())
		report.Errors = append(report.Errors, v.ValidateQuestion(ctx, q, ans)...)
	}

	v.logger(ctx).Debug("validated submission",
		"question_set_id", v.engine.Set().ID,
		"answers", len(answers),
		"cleared", len(vis.Cleared),
		"errors", len(report.Errors),
	)
	return report
}

// ValidateQuestion checks the answer of a question already known to be
// visible. A missing answer is passed as the zero Answer.
func (v *Validator) ValidateQuestion(ctx context.Context, q *rules.CompiledQuestion, ans types.Answer) []FieldError {
	ctx = v.localize(ctx)

	if q.Question.Mandatory && ans.IsEmpty() {
		return []FieldError{{
			PropertyPath: AnswerPath(q.Index),
			QuestionID:   q.ID(),
			Kind:         KindRequired,
			Message:      requiredMessage(ctx, q.DataType()),
		}}
	}

	var errs []FieldError
	for _, op := range formatOperators {
		for _, cond := range q.ConditionsFor(op) {
			fe, failed := v.checkCondition(ctx, q, cond, ans)
			if !failed {
				continue
			}
			fe.QuestionID = q.ID()
			fe.ConditionID = cond.ID
			fe.Kind = Kind(op)
			errs = append(errs, fe)
			break
		}
	}

	return errs
}

var formatOperators = []types.Operator{types.OperatorLength, types.OperatorRegex, types.OperatorDate}

// checkCondition runs one format condition of q.
func (v *Validator) checkCondition(ctx context.Context, q *rules.CompiledQuestion, cond *rules.CompiledCondition, ans types.Answer) (FieldError, bool) {
	path := AnswerPath(q.Index)

	switch cond.Operator {
	case types.OperatorLength:
		lo, hi, applied, passed := checkLength(cond.Value, ans.Value)
		if !applied || passed {
			return FieldError{}, false
		}
		msg := cond.Description
		if msg == "" {
			msg = i18n.Td(ctx, i18n.MsgLengthOutOfRange, map[string]any{"Min": lo, "Max": hi})
		}
		return FieldError{PropertyPath: path, Message: msg}, true

	case types.OperatorRegex:
		ok, err := v.regex.match(cond.Value, ans.Value)
		if errors.Is(err, errInvalidPattern) {
			v.logger(ctx).Debug("skipping invalid pattern", "condition_id", cond.ID, "pattern", cond.Value)
			return FieldError{}, false
		}
		if err != nil {
			v.logger(ctx).Warn("regex match failed", "condition_id", cond.ID, "error", err)
		}
		if ok {
			return FieldError{}, false
		}
		msg := cond.Description
		if msg == "" {
			msg = i18n.T(ctx, i18n.MsgRegexMismatch)
		}
		return FieldError{PropertyPath: path, Message: msg}, true

	case types.OperatorDate:
		f := v.checkDate(ctx, cond.Value, cond.Description, ans)
		if f == nil {
			return FieldError{}, false
		}
		fe := FieldError{PropertyPath: path, Message: f.message}
		if f.part != "" {
			fe.PropertyPath = DatePartPath(q.Index, f.part)
		}
		return fe, true
	}

	return FieldError{}, false
}

func requiredMessage(ctx context.Context, dt types.DataType) string {
	if dt.SelectionKind() == types.SelectionNone {
		return i18n.T(ctx, i18n.MsgRequiredText)
	}
	return i18n.T(ctx, i18n.MsgRequiredSelect)
}
