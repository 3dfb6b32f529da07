package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/brk3/habitflow/internal/logger"
	"github.com/brk3/habitflow/internal/validation"
	"github.com/brk3/habitflow/pkg/habit"
)

const (
	// EmptyInspiration is used when the model answers with no text.
	EmptyInspiration = "Every small step counts. Stay consistent!"
	// FallbackInspiration is used when the request fails.
	FallbackInspiration = "The journey of a thousand miles begins with a single step."

	noHabitsPhrase = "becoming a better version of myself"
)

// Gateway produces AI text for habits. Implementations never fail: a
// suggestion degrades to nil and an inspiration to a fallback sentence.
type Gateway interface {
	HabitInsight(ctx context.Context, name, description string) *habit.AISuggestion
	DailyInspiration(ctx context.Context, habitNames []string) string
}

// Generator sends one prompt to a text model. A non-nil schema asks for
// a JSON answer of that shape.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

type Client struct {
	gen     Generator
	timeout time.Duration
}

func NewClient(gen Generator, timeout time.Duration) *Client {
	return &Client{gen: gen, timeout: timeout}
}

var suggestionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"identityStatement": {Type: genai.TypeString},
		"motivation":        {Type: genai.TypeString},
		"tips": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"identityStatement", "motivation", "tips"},
}

func (c *Client) HabitInsight(ctx context.Context, name, description string) *habit.AISuggestion {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	prompt := fmt.Sprintf(`I want to start a habit called %q described as: %q.
Please provide a JSON object with:
1. identityStatement: A powerful "I am" statement related to this habit (e.g., "I am a runner" for a running habit).
2. motivation: A short, high-impact motivational sentence.
3. tips: 3 specific, actionable tips to succeed with this habit.`, name, description)

	text, err := c.gen.Generate(ctx, prompt, suggestionSchema)
	if err != nil {
		logger.Warn("Habit insight request failed", "habit_name", name, "error", err)
		insightRequests.WithLabelValues("habit", "error").Inc()
		return nil
	}

	s, err := decodeSuggestion(text)
	if err != nil {
		logger.Warn("Habit insight response rejected", "habit_name", name, "error", err)
		insightRequests.WithLabelValues("habit", "malformed").Inc()
		return nil
	}
	insightRequests.WithLabelValues("habit", "ok").Inc()
	return s
}

func (c *Client) DailyInspiration(ctx context.Context, habitNames []string) string {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	list := noHabitsPhrase
	if len(habitNames) > 0 {
		list = strings.Join(habitNames, ", ")
	}
	prompt := fmt.Sprintf("The user is tracking these habits: %s. Give them a single, short (max 20 words), "+
		"powerful morning greeting that inspires them to stay consistent today.", list)

	text, err := c.gen.Generate(ctx, prompt, nil)
	if err != nil {
		logger.Warn("Daily inspiration request failed", "error", err)
		insightRequests.WithLabelValues("inspiration", "error").Inc()
		return FallbackInspiration
	}
	text = strings.TrimSpace(text)
	if text == "" {
		insightRequests.WithLabelValues("inspiration", "empty").Inc()
		return EmptyInspiration
	}
	insightRequests.WithLabelValues("inspiration", "ok").Inc()
	return text
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// decodeSuggestion accepts exactly {identityStatement, motivation, tips}.
func decodeSuggestion(text string) (*habit.AISuggestion, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty response")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.DisallowUnknownFields()
	var s habit.AISuggestion
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode suggestion: %w", err)
	}
	if dec.More() {
		return nil, errors.New("trailing data after suggestion")
	}
	if err := validation.Suggestion(s); err != nil {
		return nil, fmt.Errorf("invalid suggestion: %s", validation.Summary(err))
	}
	return &s, nil
}

var _ Gateway = (*Client)(nil)
