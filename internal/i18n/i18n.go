// Package i18n localises the messages formkeeper generates itself.
//
// CMS-authored Description texts are surfaced verbatim; only fallback
// messages (length bounds, date checks, required answers) are translated.
// English and Welsh locales are embedded.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Message ids.
const (
	MsgDateMissingPart  = "DateMissingPart"
	MsgDatePartDay      = "DatePartDay"
	MsgDatePartMonth    = "DatePartMonth"
	MsgDatePartYear     = "DatePartYear"
	MsgListAnd          = "ListAnd"
	MsgLengthOutOfRange = "LengthOutOfRange"
	MsgRegexMismatch    = "RegexMismatch"
	MsgInvalidDate      = "InvalidDate"
	MsgFutureDate       = "FutureDate"
	MsgPastDate         = "PastDate"
	MsgRequiredSelect   = "RequiredSelect"
	MsgRequiredText     = "RequiredText"
)

// DefaultLanguage is used when no localizer is attached to the context.
const DefaultLanguage = "en"

//go:embed locales/*.json
var localeFS embed.FS

type ctxKey struct{}

var (
	bundle     *goi18n.Bundle
	bundleErr  error
	bundleOnce sync.Once
)

// Bundle returns the translation bundle, loading embedded locales on first use.
func Bundle() (*goi18n.Bundle, error) {
	bundleOnce.Do(func() {
		bundle, bundleErr = load()
	})
	return bundle, bundleErr
}

func load() (*goi18n.Bundle, error) {
	b := goi18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		if _, err := b.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("parse locale file %s: %w", e.Name(), err)
		}
	}
	return b, nil
}

// Languages lists the embedded locales.
func Languages() []language.Tag {
	b, err := Bundle()
	if err != nil {
		return nil
	}
	return b.LanguageTags()
}

// Supported reports whether lang parses and matches an embedded locale.
func Supported(lang string) bool {
	tag, err := language.Parse(lang)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	for _, t := range Languages() {
		if b, _ := t.Base(); b == base {
			return true
		}
	}
	return false
}

// NewLocalizer creates a localizer preferring langs in order (tags or
// Accept-Language values), falling back to English.
func NewLocalizer(langs ...string) *goi18n.Localizer {
	b, err := Bundle()
	if err != nil {
		slog.Error("load translations", "error", err)
		b = goi18n.NewBundle(language.English)
	}
	return goi18n.NewLocalizer(b, append(langs, DefaultLanguage)...)
}

// WithLocalizer stores a localizer in the context.
func WithLocalizer(ctx context.Context, loc *goi18n.Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, loc)
}

// WithLanguage stores a localizer for langs in the context.
func WithLanguage(ctx context.Context, langs ...string) context.Context {
	return WithLocalizer(ctx, NewLocalizer(langs...))
}

// HasLocalizer reports whether ctx carries a localizer.
func HasLocalizer(ctx context.Context) bool {
	_, ok := ctx.Value(ctxKey{}).(*goi18n.Localizer)
	return ok
}

func localizerFromCtx(ctx context.Context) *goi18n.Localizer {
	if loc, ok := ctx.Value(ctxKey{}).(*goi18n.Localizer); ok {
		return loc
	}
	return NewLocalizer(DefaultLanguage)
}

// T translates a message by id.
func T(ctx context.Context, msgID string) string {
	return Td(ctx, msgID, nil)
}

// Td translates a message by id with template data.
// A missing translation returns the id and is logged at warn.
func Td(ctx context.Context, msgID string, data map[string]any) string {
	s, err := localizerFromCtx(ctx).Localize(&goi18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: data,
	})
	if err != nil {
		slog.WarnContext(ctx, "missing translation", "id", msgID, "error", err)
		return msgID
	}
	return s
}
