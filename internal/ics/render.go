package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/powerdashhr/invited/internal/domain"
)

// ProdID identifies this generator in emitted calendar documents.
const ProdID = "-//PowerDash HR//Interview Scheduler//EN"

// dtFormat is the RFC 5545 UTC basic format. Mainstream clients reject or
// misparse anything else, so every instant goes through it.
const dtFormat = "20060102T150405Z"

// Renderer turns validated meeting requests into iCalendar documents. The
// clock is injectable because DTSTAMP is the only non-deterministic line.
type Renderer struct {
	now func() time.Time
}

// NewRenderer returns a renderer using the given clock; nil means time.Now.
func NewRenderer(now func() time.Time) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{now: now}
}

var defaultRenderer = NewRenderer(nil)

// Render renders m with the wall clock.
func Render(m domain.MeetingRequest) ([]byte, error) {
	return defaultRenderer.Render(m)
}

// Render validates m and emits the full VCALENDAR/VEVENT document as UTF-8
// text with CRLF line terminators, including after the final line. Output is
// byte-identical for identical input and clock.
//
// Known interoperability gap: text values are emitted verbatim, without
// escaping the `,`, `;` and `\` characters RFC 5545 treats as structural.
// Existing integrations depend on the unescaped shape.
func (r *Renderer) Render(m domain.MeetingRequest) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	method := m.Method
	if method == "" {
		method = domain.MethodRequest
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("PRODID:%s", ProdID)
	line("VERSION:2.0")
	line("METHOD:%s", method)
	line("CALSCALE:GREGORIAN")
	line("BEGIN:VEVENT")
	line("UID:%s", m.UID)
	line("DTSTAMP:%s", formatDateTime(r.now()))
	line("DTSTART:%s", formatDateTime(m.StartUTC))
	line("DTEND:%s", formatDateTime(m.EndUTC))
	line("SUMMARY:%s", m.Summary)
	line("DESCRIPTION:%s", m.Description)
	line("LOCATION:%s", m.Location)
	line("ORGANIZER;CN=%s:MAILTO:%s", organizerName(m.Organizer), m.Organizer.Email)

	// Required participants render before optional ones; input order is kept
	// within each group. Entries without an email are skipped entirely.
	for _, role := range []domain.Role{domain.RoleRequired, domain.RoleOptional} {
		for _, a := range m.Attendees {
			if a.Role != role {
				continue
			}
			email := strings.TrimSpace(a.Email)
			if email == "" {
				continue
			}
			name := a.DisplayName
			if name == "" {
				name = email
			}
			line("ATTENDEE;CN=%s;ROLE=%s;PARTSTAT=NEEDS-ACTION;RSVP=TRUE:MAILTO:%s",
				name, role.ICSValue(), email)
		}
	}

	// SEQUENCE stays 0 on creation; an update/cancel path would bump it.
	line("SEQUENCE:0")
	line("STATUS:CONFIRMED")
	line("TRANSP:OPAQUE")

	if m.ReminderMinutes > 0 {
		line("BEGIN:VALARM")
		line("TRIGGER:-PT%dM", m.ReminderMinutes)
		line("ACTION:DISPLAY")
		line("DESCRIPTION:Reminder")
		line("END:VALARM")
	}

	line("END:VEVENT")
	line("END:VCALENDAR")

	return []byte(b.String()), nil
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format(dtFormat)
}

func organizerName(o domain.Organizer) string {
	if o.DisplayName != "" {
		return o.DisplayName
	}
	return o.Email
}
