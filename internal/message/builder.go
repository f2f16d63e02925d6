package message

import (
	"fmt"
	"strings"
	"time"

	"github.com/hush-sos/sos-agent/internal/catalog"
)

// timestampLayout renders the local short date/time, e.g. "31 Aug 2026, 2:05 PM".
const timestampLayout = "2 Jan 2006, 3:04 PM"

// Builder composes the outgoing emergency message. It holds no state beyond
// a clock, which exists so tests can pin the timestamp line.
type Builder struct {
	now func() time.Time
}

// NewBuilder returns a Builder using the wall clock.
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// NewBuilderWithClock returns a Builder using the given clock.
func NewBuilderWithClock(now func() time.Time) *Builder {
	return &Builder{now: now}
}

// Build combines a template, the optional user name, the location text and
// optional additional info into the final message. The location text is
// included verbatim; userName and additionalInfo lines are omitted entirely
// when empty. Message length limits are the dispatch boundary's problem,
// not enforced here.
func (b *Builder) Build(template catalog.Template, userName, locationText, additionalInfo string) string {
	var sb strings.Builder

	sb.WriteString("🚨 DEAF CAMPER EMERGENCY 🚨\n")
	sb.WriteString("PLEASE CALL 000 IMMEDIATELY\n\n")
	fmt.Fprintf(&sb, "Emergency: %s\n\n", template.MessageFragment)
	sb.WriteString("I am DEAF and CANNOT make voice calls.\n")
	sb.WriteString("Please call emergency services for me.\n\n")
	fmt.Fprintf(&sb, "📍 LOCATION:\n%s\n\n", locationText)

	if userName != "" {
		fmt.Fprintf(&sb, "Name: %s\n", userName)
	}

	if additionalInfo != "" {
		fmt.Fprintf(&sb, "Additional info: %s\n", additionalInfo)
	}

	sb.WriteString("\n⚠️ CRITICAL: Tell 000 this person is DEAF\n")
	fmt.Fprintf(&sb, "🕐 Time: %s\n", b.now().Format(timestampLayout))
	sb.WriteString("📱 Sent from Emergency Helper App")

	return sb.String()
}
