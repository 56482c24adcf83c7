package validate

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/solatis/formkeeper/internal/i18n"
	"github.com/solatis/formkeeper/internal/types"
)

/*
 * DATE checks.
 *
 * The operand is a comma-delimited token list applied in order:
 *   MISSINGDATEPART   some but not all of day/month/year entered
 *   FORMAT:<pattern>  answer parses exactly with pattern
 *   FUTUREDATE        date after today
 *   PASTDATE          date today or earlier
 *
 * The first failing token ends DATE checking for the question. A successful
 * FORMAT fixes the layout later tokens parse with; otherwise the default
 * layouts are tried. FUTUREDATE/PASTDATE skip dates they cannot parse, and
 * unknown tokens are skipped.
 *
 * An answer without a Value is read from its day/month/year parts. Parts
 * that form a real calendar date satisfy any FORMAT, since the layout only
 * describes typed text; parts that do not fail FORMAT.
 */

const (
	tokenMissingDatePart = "MISSINGDATEPART"
	tokenFormat          = "FORMAT"
	tokenFutureDate      = "FUTUREDATE"
	tokenPastDate        = "PASTDATE"
)

// dateFailure describes the first failing DATE token.
type dateFailure struct {
	token   string
	message string
	part    DatePart // set when exactly one part is missing
}

// partsDate builds the date entered as separate parts. ok is false unless
// all three parts are integers naming a real calendar day.
func partsDate(p *types.DateParts, loc *time.Location) (time.Time, bool) {
	if p == nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(strings.TrimSpace(p.Day))
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(p.Month))
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(p.Year))
	if err != nil || year < 1 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// time.Date normalises 31/2 into March.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// missingParts lists the date parts left blank, in day, month, year order.
func missingParts(p *types.DateParts) []DatePart {
	if p == nil {
		return []DatePart{DatePartDay, DatePartMonth, DatePartYear}
	}
	var missing []DatePart
	if strings.TrimSpace(p.Day) == "" {
		missing = append(missing, DatePartDay)
	}
	if strings.TrimSpace(p.Month) == "" {
		missing = append(missing, DatePartMonth)
	}
	if strings.TrimSpace(p.Year) == "" {
		missing = append(missing, DatePartYear)
	}
	return missing
}

var partMessages = map[DatePart]string{
	DatePartDay:   i18n.MsgDatePartDay,
	DatePartMonth: i18n.MsgDatePartMonth,
	DatePartYear:  i18n.MsgDatePartYear,
}

// partList renders "day", "day and month".
func partList(ctx context.Context, parts []DatePart) string {
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = i18n.T(ctx, partMessages[p])
	}
	if len(names) <= 1 {
		return strings.Join(names, "")
	}
	and := " " + i18n.T(ctx, i18n.MsgListAnd) + " "
	return strings.Join(names[:len(names)-1], ", ") + and + names[len(names)-1]
}

// dayOf truncates t to midnight in loc.
func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func parseDate(text string, layouts []string, loc *time.Location) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return dayOf(t, loc), true
		}
	}
	return time.Time{}, false
}

// checkDate applies cond's tokens to ans. It returns nil when every token
// passed or was skipped.
func (v *Validator) checkDate(ctx context.Context, value, description string, ans types.Answer) *dateFailure {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	loc := v.location
	text := strings.TrimSpace(ans.Value)
	var (
		entered   time.Time
		fromParts bool
	)
	if text == "" {
		if ans.DateParts.IsEmpty() {
			return nil
		}
		entered, fromParts = partsDate(ans.DateParts, loc)
	}

	today := dayOf(v.now(), loc)
	layouts := defaultDateLayouts

	messageOr := func(msgID string) string {
		if description != "" {
			return description
		}
		return i18n.T(ctx, msgID)
	}

	for _, raw := range strings.Split(value, ",") {
		token := strings.TrimSpace(raw)
		name, arg, _ := strings.Cut(token, ":")
		name = strings.ToUpper(strings.TrimSpace(name))

		switch name {
		case tokenMissingDatePart:
			missing := missingParts(ans.DateParts)
			if len(missing) == 0 || len(missing) == 3 {
				continue
			}
			f := &dateFailure{
				token:   name,
				message: i18n.Td(ctx, i18n.MsgDateMissingPart, map[string]any{"Parts": partList(ctx, missing)}),
			}
			if len(missing) == 1 {
				f.part = missing[0]
			}
			return f

		case tokenFormat:
			layout, err := dateLayout(strings.TrimSpace(arg))
			if err != nil {
				v.logger(ctx).Debug("skipping date format", "pattern", arg, "error", err)
				continue
			}
			if fromParts {
				layouts = []string{layout}
				continue
			}
			if _, err := time.ParseInLocation(layout, text, loc); err != nil {
				return &dateFailure{token: name, message: messageOr(i18n.MsgInvalidDate)}
			}
			layouts = []string{layout}

		case tokenFutureDate:
			date, ok := v.answerDate(text, entered, fromParts, layouts)
			if !ok {
				continue
			}
			if !date.After(today) {
				return &dateFailure{token: name, message: messageOr(i18n.MsgFutureDate)}
			}

		case tokenPastDate:
			date, ok := v.answerDate(text, entered, fromParts, layouts)
			if !ok {
				continue
			}
			if date.After(today) {
				return &dateFailure{token: name, message: messageOr(i18n.MsgPastDate)}
			}
		}
	}

	return nil
}

// answerDate resolves the answer to a day: the entered parts when they form
// a date, else text parsed with layouts.
func (v *Validator) answerDate(text string, entered time.Time, fromParts bool, layouts []string) (time.Time, bool) {
	if fromParts {
		return entered, true
	}
	return parseDate(text, layouts, v.location)
}
