package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"

	"github.com/powerdashhr/invited/internal/clients/caldav"
	"github.com/powerdashhr/invited/internal/clients/graph"
	"github.com/powerdashhr/invited/internal/domain"
	"github.com/powerdashhr/invited/internal/ics"
)

const (
	attachmentName        = "invite.ics"
	attachmentContentType = "text/calendar; method=REQUEST; charset=utf-8"
)

// MailSender is the dispatch capability the service needs. *graph.Client
// satisfies it.
type MailSender interface {
	SendMail(ctx context.Context, senderEmail string, toEmails []string,
		subject, htmlBody string, attachments []graph.Attachment, ccEmails []string) (*graph.SendResult, error)
}

// InviteService renders interview invitations and dispatches them by mail,
// with an optional mirror into the organizer's CalDAV calendar.
type InviteService struct {
	mail        MailSender
	publisher   *caldav.Publisher
	renderer    *ics.Renderer
	senderEmail string
}

// NewInviteService creates an invite service. publisher may be nil or
// unconfigured, in which case sent invites are not mirrored anywhere.
func NewInviteService(mail MailSender, publisher *caldav.Publisher, senderEmail string) *InviteService {
	return &InviteService{
		mail:        mail,
		publisher:   publisher,
		renderer:    ics.NewRenderer(nil),
		senderEmail: senderEmail,
	}
}

// Render returns the invitation document for m without sending anything.
func (s *InviteService) Render(m domain.MeetingRequest) ([]byte, error) {
	return s.renderer.Render(m)
}

// Send renders m, mails it to every attendee as a calendar attachment, and
// mirrors it to the organizer's calendar when a publisher is configured.
// Rendering failures are *domain.ValidationError; mail failures pass through
// from the Graph client unchanged. A publish failure after a successful send
// is reported on the error return alongside the non-nil result.
func (s *InviteService) Send(ctx context.Context, m domain.MeetingRequest, htmlBody string) (*graph.SendResult, error) {
	data, err := s.renderer.Render(m)
	if err != nil {
		return nil, err
	}

	if htmlBody == "" {
		htmlBody = defaultBody(m)
	}

	attachment := graph.Attachment{
		Name:         attachmentName,
		ContentType:  attachmentContentType,
		ContentBytes: base64.StdEncoding.EncodeToString(data),
	}

	result, err := s.mail.SendMail(ctx, s.senderEmail, m.AttendeeEmails(),
		m.Summary, htmlBody, []graph.Attachment{attachment}, nil)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil && s.publisher.IsConfigured() {
		if err := s.publisher.PublishInvite(ctx, m.UID, data); err != nil {
			return result, fmt.Errorf("invite sent but calendar publish failed: %w", err)
		}
	}

	return result, nil
}

func defaultBody(m domain.MeetingRequest) string {
	body := fmt.Sprintf("<p>You are invited to <b>%s</b>.</p>", html.EscapeString(m.Summary))
	if m.Description != "" {
		body += fmt.Sprintf("<p>%s</p>", html.EscapeString(m.Description))
	}
	body += "<p>Please respond using the attached calendar invitation.</p>"
	return body
}
