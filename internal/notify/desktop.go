// Package notify handles desktop notifications to the user.
package notify

import (
	"os/exec"

	"github.com/HandsomeHarry/companion-cube/internal/classify"
)

// Urgency levels for desktop notifications.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// DesktopNotifier sends desktop notifications via notify-send.
type DesktopNotifier struct {
	appName string
}

// NewDesktopNotifier creates a new desktop notifier.
func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{
		appName: "Companion Cube",
	}
}

// Available checks if notify-send is available.
func (n *DesktopNotifier) Available() bool {
	_, err := exec.LookPath("notify-send")
	return err == nil
}

// Send sends a desktop notification.
func (n *DesktopNotifier) Send(title, body string, urgency Urgency) error {
	if !n.Available() {
		return nil // Silently skip if not available
	}

	args := []string{
		"--app-name=" + n.appName,
		"--urgency=" + string(urgency),
		"--icon=dialog-information",
		title,
		body,
	}

	cmd := exec.Command("notify-send", args...)
	return cmd.Run()
}

// UrgencyFor maps a behavioral state to a notification urgency: nudges ask
// for attention, everything else stays quiet.
func UrgencyFor(state classify.State) Urgency {
	switch state {
	case classify.StateNeedsNudge:
		return UrgencyNormal
	default:
		return UrgencyLow
	}
}

// SendCompanionMessage sends a companion message for the given state.
func (n *DesktopNotifier) SendCompanionMessage(state classify.State, message string) error {
	return n.Send("Companion Cube", message, UrgencyFor(state))
}
