package caldav

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
)

// Publisher mirrors sent invites into the organizer's own CalDAV calendar,
// so the interview slot appears there without waiting for the mail round
// trip. Publishing is optional; an unconfigured publisher is a no-op guard
// the service checks with IsConfigured.
type Publisher struct {
	baseURL      string
	username     string
	password     string
	calendarPath string
	client       *caldav.Client
}

// Calendar describes one calendar collection on the server.
type Calendar struct {
	Path        string
	DisplayName string
}

// NewPublisher creates a publisher. calendarPath is the collection the
// invites are written into, e.g. /calendars/hr/interviews/.
func NewPublisher(baseURL, username, password, calendarPath string) *Publisher {
	return &Publisher{
		baseURL:      baseURL,
		username:     username,
		password:     password,
		calendarPath: calendarPath,
	}
}

// IsConfigured returns true if the publisher has a server and credentials.
func (p *Publisher) IsConfigured() bool {
	return p.baseURL != "" && p.username != "" && p.password != ""
}

func (p *Publisher) connect() (*caldav.Client, error) {
	if p.client != nil {
		return p.client, nil
	}

	httpClient := &http.Client{
		Transport: &basicAuthTransport{
			username: p.username,
			password: p.password,
		},
		Timeout: 30 * time.Second,
	}

	client, err := caldav.NewClient(httpClient, p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to CalDAV: %w", err)
	}

	p.client = client
	return client, nil
}

// basicAuthTransport adds Basic Auth to HTTP requests
type basicAuthTransport struct {
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return http.DefaultTransport.RoundTrip(req)
}

// DiscoverCalendars returns all calendar collections for the account.
func (p *Publisher) DiscoverCalendars(ctx context.Context) ([]Calendar, error) {
	client, err := p.connect()
	if err != nil {
		return nil, err
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("find home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("find calendars: %w", err)
	}

	result := make([]Calendar, 0, len(cals))
	for _, cal := range cals {
		result = append(result, Calendar{Path: cal.Path, DisplayName: cal.Name})
	}
	return result, nil
}

// PublishInvite writes a rendered invite document to <calendar>/<uid>.ics.
// PUT replaces, so republishing the same UID updates the event in place,
// matching how the mailed copy deduplicates in recipients' calendars.
func (p *Publisher) PublishInvite(ctx context.Context, uid string, icsData []byte) error {
	client, err := p.connect()
	if err != nil {
		return err
	}

	if p.calendarPath == "" {
		return fmt.Errorf("calendar path not specified")
	}

	cal, err := ical.NewDecoder(bytes.NewReader(icsData)).Decode()
	if err != nil {
		return fmt.Errorf("decode invite: %w", err)
	}

	// CalDAV servers reject stored objects carrying a scheduling METHOD.
	cal.Props.Del(ical.PropMethod)

	eventPath := p.calendarPath
	if !strings.HasSuffix(eventPath, "/") {
		eventPath += "/"
	}
	eventPath += uid + ".ics"

	if _, err := client.PutCalendarObject(ctx, eventPath, cal); err != nil {
		return fmt.Errorf("publish invite: %w", err)
	}
	return nil
}
