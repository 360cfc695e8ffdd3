package domain

import (
	"fmt"
	"strings"
	"time"
)

// MethodRequest is the only iCalendar method this system emits. It marks the
// document as an invitation so clients show Accept/Tentative/Decline.
const MethodRequest = "REQUEST"

// Role describes how strongly an attendee is expected to participate.
type Role int

const (
	RoleRequired Role = iota
	RoleOptional
)

// ICSValue returns the RFC 5545 ROLE parameter value.
func (r Role) ICSValue() string {
	if r == RoleOptional {
		return "OPT-PARTICIPANT"
	}
	return "REQ-PARTICIPANT"
}

// Organizer is the mailbox the invitation is issued from.
type Organizer struct {
	Email       string
	DisplayName string // defaults to Email when empty
}

// Attendee is one invited participant.
type Attendee struct {
	Email       string
	DisplayName string // defaults to Email when empty
	Role        Role
}

// ValidationError reports which field of a meeting request failed validation
// and why. It is always raised before any rendering output is produced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid meeting request: %s: %s", e.Field, e.Reason)
}

// MeetingInput carries the raw caller-supplied facts for one interview slot.
type MeetingInput struct {
	UID             string
	Summary         string
	Description     string
	Location        string
	Organizer       Organizer
	Attendees       []Attendee
	Start           time.Time
	End             time.Time
	ReminderMinutes int // >0 adds a display alarm that many minutes before start
}

// MeetingRequest is a validated, normalized meeting description ready to
// render. Construct it with NewMeetingRequest and treat it as immutable;
// re-sending the same logical slot must reuse the same UID so calendar
// clients update the existing event instead of duplicating it.
type MeetingRequest struct {
	UID             string
	Summary         string
	Description     string
	Location        string
	Organizer       Organizer
	Attendees       []Attendee
	StartUTC        time.Time
	EndUTC          time.Time
	Method          string
	ReminderMinutes int
}

// NewMeetingRequest normalizes and validates caller input. Normalization:
// times are converted to UTC, display names default to the email address,
// attendees with an empty email are dropped, and required attendees are
// ordered before optional ones (insertion order kept within each group).
// Any invariant violation returns a *ValidationError naming the field.
func NewMeetingRequest(in MeetingInput) (MeetingRequest, error) {
	m := MeetingRequest{
		UID:             strings.TrimSpace(in.UID),
		Summary:         in.Summary,
		Description:     in.Description,
		Location:        in.Location,
		Organizer:       in.Organizer,
		StartUTC:        in.Start.UTC(),
		EndUTC:          in.End.UTC(),
		Method:          MethodRequest,
		ReminderMinutes: in.ReminderMinutes,
	}

	m.Organizer.Email = strings.TrimSpace(m.Organizer.Email)
	if m.Organizer.DisplayName == "" {
		m.Organizer.DisplayName = m.Organizer.Email
	}

	for _, group := range []Role{RoleRequired, RoleOptional} {
		for _, a := range in.Attendees {
			if a.Role != group {
				continue
			}
			a.Email = strings.TrimSpace(a.Email)
			if a.Email == "" {
				continue // silently dropped, not an error
			}
			if a.DisplayName == "" {
				a.DisplayName = a.Email
			}
			m.Attendees = append(m.Attendees, a)
		}
	}

	if err := m.Validate(); err != nil {
		return MeetingRequest{}, err
	}
	return m, nil
}

// Validate checks every invariant a renderable meeting request must hold.
func (m *MeetingRequest) Validate() error {
	if m.UID == "" {
		return &ValidationError{Field: "uid", Reason: "must not be empty"}
	}
	if m.Summary == "" {
		return &ValidationError{Field: "summary", Reason: "must not be empty"}
	}
	if m.Organizer.Email == "" {
		return &ValidationError{Field: "organizer", Reason: "email must not be empty"}
	}
	if m.StartUTC.IsZero() {
		return &ValidationError{Field: "start", Reason: "must be set"}
	}
	if m.EndUTC.IsZero() {
		return &ValidationError{Field: "end", Reason: "must be set"}
	}
	if !m.EndUTC.After(m.StartUTC) {
		return &ValidationError{Field: "end", Reason: "must be after start"}
	}
	return nil
}

// AttendeeEmails returns the recipient list in rendering order.
func (m *MeetingRequest) AttendeeEmails() []string {
	emails := make([]string, 0, len(m.Attendees))
	for _, a := range m.Attendees {
		emails = append(emails, a.Email)
	}
	return emails
}
