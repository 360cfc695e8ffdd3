package ics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"

	"github.com/powerdashhr/invited/internal/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func phoneScreen(t *testing.T) domain.MeetingRequest {
	t.Helper()
	start := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	m, err := domain.NewMeetingRequest(domain.MeetingInput{
		UID:         "abc123@powerdashhr.com",
		Summary:     "Phone Screen",
		Description: "Intro call with the hiring team",
		Location:    "Zoom",
		Organizer:   domain.Organizer{Email: "hr@powerdashhr.com", DisplayName: "HR Team"},
		Attendees: []domain.Attendee{
			{Email: "cand@example.com", DisplayName: "Jane Doe", Role: domain.RoleRequired},
		},
		Start: start,
		End:   start.Add(30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("new meeting request: %v", err)
	}
	return m
}

func TestRenderFullDocument(t *testing.T) {
	now := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)
	r := NewRenderer(fixedClock(now))

	data, err := r.Render(phoneScreen(t))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"PRODID:-//PowerDash HR//Interview Scheduler//EN",
		"VERSION:2.0",
		"METHOD:REQUEST",
		"CALSCALE:GREGORIAN",
		"BEGIN:VEVENT",
		"UID:abc123@powerdashhr.com",
		"DTSTAMP:20240520T080000Z",
		"DTSTART:20240601T150000Z",
		"DTEND:20240601T153000Z",
		"SUMMARY:Phone Screen",
		"DESCRIPTION:Intro call with the hiring team",
		"LOCATION:Zoom",
		"ORGANIZER;CN=HR Team:MAILTO:hr@powerdashhr.com",
		"ATTENDEE;CN=Jane Doe;ROLE=REQ-PARTICIPANT;PARTSTAT=NEEDS-ACTION;RSVP=TRUE:MAILTO:cand@example.com",
		"SEQUENCE:0",
		"STATUS:CONFIRMED",
		"TRANSP:OPAQUE",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n") + "\r\n"

	if string(data) != want {
		t.Fatalf("document mismatch\nwant:\n%q\ngot:\n%q", want, string(data))
	}
}

func TestRenderTimestampFormat(t *testing.T) {
	start := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
	m, err := domain.NewMeetingRequest(domain.MeetingInput{
		UID:       "uid@powerdashhr.com",
		Summary:   "Interview",
		Organizer: domain.Organizer{Email: "hr@powerdashhr.com"},
		Start:     start,
		End:       start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("new meeting request: %v", err)
	}

	data, err := Render(m)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !bytes.Contains(data, []byte("DTSTART:20240305T093000Z\r\n")) {
		t.Fatalf("expected exact DTSTART line, got:\n%s", data)
	}
}

func TestRenderNormalizesZonedStart(t *testing.T) {
	zone := time.FixedZone("CET", 60*60)
	start := time.Date(2024, 3, 5, 10, 30, 0, 0, zone) // 09:30 UTC
	m, err := domain.NewMeetingRequest(domain.MeetingInput{
		UID:       "uid@powerdashhr.com",
		Summary:   "Interview",
		Organizer: domain.Organizer{Email: "hr@powerdashhr.com"},
		Start:     start,
		End:       start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("new meeting request: %v", err)
	}

	data, err := Render(m)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Contains(data, []byte("DTSTART:20240305T093000Z\r\n")) {
		t.Fatalf("expected zoned start to render in UTC, got:\n%s", data)
	}
}

func TestRenderAttendeeOrderAndRoles(t *testing.T) {
	start := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	m, err := domain.NewMeetingRequest(domain.MeetingInput{
		UID:       "uid@powerdashhr.com",
		Summary:   "Panel Interview",
		Organizer: domain.Organizer{Email: "hr@powerdashhr.com"},
		Attendees: []domain.Attendee{
			{Email: "opt@example.com", Role: domain.RoleOptional},
			{Email: "req1@example.com", Role: domain.RoleRequired},
			{Email: "req2@example.com", Role: domain.RoleRequired},
		},
		Start: start,
		End:   start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("new meeting request: %v", err)
	}

	data, err := Render(m)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var roles []string
	for _, raw := range strings.Split(string(data), "\r\n") {
		if !strings.HasPrefix(raw, "ATTENDEE;") {
			continue
		}
		for _, param := range strings.Split(raw, ";") {
			if strings.HasPrefix(param, "ROLE=") {
				roles = append(roles, strings.TrimPrefix(param, "ROLE="))
			}
		}
	}

	want := []string{"REQ-PARTICIPANT", "REQ-PARTICIPANT", "OPT-PARTICIPANT"}
	if len(roles) != len(want) {
		t.Fatalf("expected %d ATTENDEE lines, got %d", len(want), len(roles))
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("expected roles %v, got %v", want, roles)
		}
	}
}

func TestRenderSkipsEmptyAttendeeEmail(t *testing.T) {
	m := phoneScreen(t)
	// Bypass the constructor to prove the renderer drops them too.
	m.Attendees = append(m.Attendees, domain.Attendee{DisplayName: "Ghost", Role: domain.RoleRequired})

	data, err := Render(m)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if got := bytes.Count(data, []byte("ATTENDEE;")); got != 1 {
		t.Fatalf("expected 1 ATTENDEE line, got %d:\n%s", got, data)
	}
}

func TestRenderCRLFTermination(t *testing.T) {
	data, err := Render(phoneScreen(t))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !bytes.HasSuffix(data, []byte("END:VCALENDAR\r\n")) {
		t.Fatalf("expected CRLF after the final line, got tail %q", data[len(data)-20:])
	}
	for i, line := range bytes.Split(bytes.TrimSuffix(data, []byte("\r\n")), []byte("\r\n")) {
		if bytes.ContainsRune(line, '\n') || bytes.ContainsRune(line, '\r') {
			t.Fatalf("line %d contains a bare CR or LF: %q", i, line)
		}
	}
}

func TestRenderReminderAlarm(t *testing.T) {
	m := phoneScreen(t)
	m.ReminderMinutes = 15

	data, err := Render(m)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	wantBlock := "BEGIN:VALARM\r\nTRIGGER:-PT15M\r\nACTION:DISPLAY\r\nDESCRIPTION:Reminder\r\nEND:VALARM\r\nEND:VEVENT\r\n"
	if !bytes.Contains(data, []byte(wantBlock)) {
		t.Fatalf("expected VALARM block before END:VEVENT, got:\n%s", data)
	}

	noReminder, err := Render(phoneScreen(t))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if bytes.Contains(noReminder, []byte("VALARM")) {
		t.Fatalf("expected no VALARM without a reminder, got:\n%s", noReminder)
	}
}

func TestRenderValidationFailureProducesNoOutput(t *testing.T) {
	m := phoneScreen(t)
	m.Summary = ""

	data, err := Render(m)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Field != "summary" {
		t.Fatalf("expected summary failure, got %v", verr)
	}
	if data != nil {
		t.Fatalf("expected no partial output, got %q", data)
	}
}

func TestRenderDeterministicExceptDTSTAMP(t *testing.T) {
	first := NewRenderer(fixedClock(time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)))
	second := NewRenderer(fixedClock(time.Date(2024, 5, 21, 9, 30, 0, 0, time.UTC)))

	a, err := first.Render(phoneScreen(t))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b, err := second.Render(phoneScreen(t))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	linesA := strings.Split(string(a), "\r\n")
	linesB := strings.Split(string(b), "\r\n")
	if len(linesA) != len(linesB) {
		t.Fatalf("expected same line count, got %d and %d", len(linesA), len(linesB))
	}
	for i := range linesA {
		if strings.HasPrefix(linesA[i], "DTSTAMP:") {
			if linesA[i] == linesB[i] {
				t.Fatalf("expected DTSTAMP to differ across clocks")
			}
			continue
		}
		if linesA[i] != linesB[i] {
			t.Fatalf("line %d differs beyond DTSTAMP: %q vs %q", i, linesA[i], linesB[i])
		}
	}
}

// Rendered documents must stay parseable by a real iCalendar implementation.
func TestRenderParsesAsICalendar(t *testing.T) {
	data, err := Render(phoneScreen(t))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		t.Fatalf("decode rendered document: %v", err)
	}

	if prop := cal.Props.Get(ical.PropMethod); prop == nil || prop.Value != "REQUEST" {
		t.Fatalf("expected METHOD:REQUEST, got %v", prop)
	}

	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 VEVENT, got %d", len(events))
	}
	event := events[0]

	if prop := event.Props.Get(ical.PropUID); prop == nil || prop.Value != "abc123@powerdashhr.com" {
		t.Fatalf("expected UID to survive parsing, got %v", prop)
	}
	if prop := event.Props.Get(ical.PropSummary); prop == nil || prop.Value != "Phone Screen" {
		t.Fatalf("expected SUMMARY to survive parsing, got %v", prop)
	}

	start, err := event.DateTimeStart(time.UTC)
	if err != nil {
		t.Fatalf("parse DTSTART: %v", err)
	}
	if !start.Equal(time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected parsed start 2024-06-01T15:00:00Z, got %v", start)
	}
}
