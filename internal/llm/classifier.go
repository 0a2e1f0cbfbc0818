package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/HandsomeHarry/companion-cube/internal/classify"
)

// classifierSystemPrompt asks the model for a machine-readable judgment.
const classifierSystemPrompt = `You classify a user's desktop activity. Reply with a single JSON object and nothing else:
{"current_state": one of "flow"|"working"|"needs_nudge"|"afk",
 "focus_trend": one of "entering_focus"|"maintaining_focus"|"losing_focus"|"no_focus",
 "distraction_trend": one of "increasing"|"decreasing"|"stable"}`

// Classifier derives a Comparison by asking the language model. It satisfies
// classify.Classifier and is meant to run as the Primary of a
// classify.FallbackClassifier: any model failure or invalid reply falls
// through to the rule-based classifier.
type Classifier struct {
	client     *Client
	thresholds classify.Thresholds
}

// NewClassifier wraps an Ollama client as a classifier.
func NewClassifier(client *Client, th classify.Thresholds) *Classifier {
	return &Classifier{client: client, thresholds: th}
}

// Classify implements classify.Classifier.
func (c *Classifier) Classify(ctx context.Context, sums classify.Summaries) (classify.Comparison, error) {
	// The rule-based comparison supplies the activity description the model
	// sees; the model may only replace the final judgment.
	ruleCmp := classify.Compare(sums, c.thresholds)
	prompt := "Activity summary: " + classify.DescribeActivity(sums, ruleCmp)

	reply, err := c.client.Generate(ctx, classifierSystemPrompt, prompt, 120)
	if err != nil {
		return classify.Comparison{}, err
	}

	cmp, err := parseComparison(reply)
	if err != nil {
		return classify.Comparison{}, err
	}
	return cmp, nil
}

// parseComparison extracts the JSON object from a model reply. Models often
// wrap JSON in prose or code fences, so we take the outermost braces.
func parseComparison(reply string) (classify.Comparison, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return classify.Comparison{}, fmt.Errorf("no JSON object in reply")
	}

	var cmp classify.Comparison
	if err := json.Unmarshal([]byte(reply[start:end+1]), &cmp); err != nil {
		return classify.Comparison{}, fmt.Errorf("failed to parse classification: %w", err)
	}
	if !cmp.Valid() {
		return classify.Comparison{}, fmt.Errorf("classification outside known enums: %+v", cmp)
	}
	return cmp, nil
}
