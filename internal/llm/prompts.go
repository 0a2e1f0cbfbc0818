package llm

import (
	"context"
	"fmt"

	"github.com/HandsomeHarry/companion-cube/internal/classify"
)

// CompanionSystemPrompt frames every message the companion speaks.
const CompanionSystemPrompt = "You are a supportive ADHD companion. Be encouraging, never judgmental. Keep responses very concise."

// PromptForState builds the generation prompt for a behavioral state. The
// activity context is the natural-language description from the classifier.
func PromptForState(state classify.State, activityContext string) string {
	switch state {
	case classify.StateFlow:
		return fmt.Sprintf(`You are an ADHD coach. The user is in a flow state. %s
Respond with brief encouragement (max 20 words). Acknowledge their focus and remind them they're doing great.
No suggestions or interruptions - just positive reinforcement.`, activityContext)

	case classify.StateNeedsNudge:
		return fmt.Sprintf(`You are a gentle ADHD companion. %s
The user might be stuck or distracted. Provide:
1) Acknowledge what you see without judgment
2) One specific, tiny next action they could take
3) Encouragement that any progress is good progress
Keep it under 40 words, warm and supportive.`, activityContext)

	case classify.StateWorking:
		return fmt.Sprintf(`The user is working steadily. %s
Provide a brief acknowledgment of their progress. If they've been on the same task >45 min, gently suggest a stretch.
Keep it to one supportive sentence, max 20 words.`, activityContext)

	case classify.StateAFK:
		return `The user just returned to their computer. Welcome them back warmly and ask what they'd like to focus on next.
Keep it brief and encouraging, max 20 words.`

	default:
		return fmt.Sprintf(`You are a supportive ADHD companion. %s
Provide brief, encouraging feedback about their current activity. Max 20 words.`, activityContext)
	}
}

// FallbackResponse is the canned message used when the model is unreachable.
func FallbackResponse(state classify.State) string {
	switch state {
	case classify.StateFlow:
		return "You're in the zone! Keep going!"
	case classify.StateWorking:
		return "Nice steady progress!"
	case classify.StateNeedsNudge:
		return "Hey friend, feeling stuck? Pick one small thing to do next."
	case classify.StateAFK:
		return "Welcome back! What shall we tackle?"
	default:
		return "Keep going, you're doing great!"
	}
}

// Respond phrases a companion message for the given state, falling back to
// the canned response on any model failure.
func (c *Client) Respond(ctx context.Context, state classify.State, activityContext string) string {
	response, err := c.Generate(ctx, CompanionSystemPrompt, PromptForState(state, activityContext), 50)
	if err != nil || response == "" {
		return FallbackResponse(state)
	}
	return response
}
