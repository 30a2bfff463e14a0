// Package assistant answers free-form questions about spending and
// classifies expense titles using a text-completion model, falling back to
// local keyword rules when no model is available.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"expensex/internal/category"
	"expensex/internal/core"
	"expensex/internal/currency"
	applog "expensex/internal/log"
)

var (
	// ErrEmptyQuery is returned by Ask for a blank question.
	ErrEmptyQuery = errors.New("question is required")
	// ErrUnavailable is returned by Ask when no completer is configured.
	ErrUnavailable = errors.New("assistant is not configured")
)

// NoAnswer is returned when the model produced no text.
const NoAnswer = "Couldn't get a response right now."

// Categorization sources.
const (
	SourceModel = "assistant"
	SourceLocal = "local"
)

const defaultTimeout = 30 * time.Second

// Completer turns a prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Categorization is the result of Categorize.
type Categorization struct {
	Categories []string `json:"categories"`
	Source     string   `json:"source"`
}

// Assistant builds prompts from the user's data and interprets the replies.
// It reads the expenses it is given and never mutates application state.
type Assistant struct {
	completer Completer
	catalog   *category.Catalog
	currency  string
	timeout   time.Duration
	logger    *applog.Logger
}

// New creates an assistant. completer may be nil, in which case Ask returns
// ErrUnavailable and Categorize uses local rules.
func New(completer Completer, catalog *category.Catalog, currencyCode string, logger *applog.Logger) *Assistant {
	if catalog == nil {
		catalog = category.Default()
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Assistant{
		completer: completer,
		catalog:   catalog,
		currency:  currencyCode,
		timeout:   defaultTimeout,
		logger:    logger.WithComponent(applog.ComponentAssistant),
	}
}

// Available reports whether a completion model is configured.
func (a *Assistant) Available() bool { return a.completer != nil }

// Ask sends the question together with a one-line-per-expense summary.
func (a *Assistant) Ask(ctx context.Context, query string, expenses []core.Expense) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	if a.completer == nil {
		return "", ErrUnavailable
	}

	answer, err := a.complete(ctx, AskPrompt(query, expenses, a.currency))
	if err != nil {
		return "", fmt.Errorf("ask assistant: %w", err)
	}
	if answer == "" {
		return NoAnswer, nil
	}
	return answer, nil
}

// AskPrompt renders the prompt used by Ask.
func AskPrompt(query string, expenses []core.Expense, currencyCode string) string {
	var b strings.Builder
	b.WriteString("User expenses:\n")
	for _, e := range expenses {
		fmt.Fprintf(&b, "%s: %s on %s\n", core.TitleOrDefault(e.Title), currency.Format(e.Amount, currencyCode), e.Date)
	}
	fmt.Fprintf(&b, "\nQuestion: %s\nGive concise and practical financial advice.", query)
	return b.String()
}

// Categorize classifies a title into one or more catalog categories. Model
// replies naming no known category, model errors and a missing model all
// fall back to the local keyword rules.
func (a *Assistant) Categorize(ctx context.Context, title string) Categorization {
	title = strings.TrimSpace(title)
	local := Categorization{Categories: []string{category.AutoCategorize(title)}, Source: SourceLocal}
	if a.completer == nil || title == "" {
		return local
	}

	reply, err := a.complete(ctx, a.categorizePrompt(title))
	if err != nil {
		a.logger.WarnContext(ctx, "Model categorization failed, using local rules",
			applog.FieldTitle, title,
			applog.FieldError, err)
		return local
	}

	cats := a.parseCategories(reply)
	if len(cats) == 0 {
		a.logger.DebugContext(ctx, "Model reply named no known category", "reply", reply)
		return local
	}
	return Categorization{Categories: cats, Source: SourceModel}
}

func (a *Assistant) categorizePrompt(title string) string {
	all := a.catalog.All()
	names := make([]string, 0, len(all))
	for _, c := range all {
		names = append(names, c.Name)
	}
	return fmt.Sprintf("Categorize this expense into one or more categories from: %s.\nExpense: %s\nReturn only comma separated categories.",
		strings.Join(names, ", "), title)
}

// parseCategories maps a comma-separated reply onto catalog names,
// case-insensitively, dropping unknown and repeated entries.
func (a *Assistant) parseCategories(reply string) []string {
	known := make(map[string]string)
	for _, c := range a.catalog.All() {
		known[strings.ToLower(c.Name)] = c.Name
	}

	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(reply, ",") {
		key := strings.ToLower(strings.Trim(strings.TrimSpace(part), `."'*`))
		name, ok := known[key]
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func (a *Assistant) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	out, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	a.logger.DebugContext(ctx, "Completion finished", applog.FieldDuration, time.Since(start).Milliseconds())
	return strings.TrimSpace(out), nil
}
