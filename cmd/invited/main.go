package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/powerdashhr/invited/config"
	"github.com/powerdashhr/invited/internal/clients/caldav"
	"github.com/powerdashhr/invited/internal/clients/graph"
	"github.com/powerdashhr/invited/internal/domain"
	"github.com/powerdashhr/invited/internal/ics"
	"github.com/powerdashhr/invited/internal/service"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "invited",
		Usage: "Render and send interview meeting invitations.",
		Commands: []*cli.Command{
			renderCommand(),
			sendCommand(),
			calendarsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func meetingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "subject", Usage: "Meeting title", Required: true},
		&cli.StringFlag{Name: "agenda", Usage: "Meeting description/agenda"},
		&cli.StringFlag{Name: "location", Usage: "Meeting location"},
		&cli.StringFlag{Name: "organizer-email", Usage: "Organizer email", Required: true},
		&cli.StringFlag{Name: "organizer-name", Usage: "Organizer display name"},
		&cli.StringSliceFlag{Name: "attendee", Usage: "Required attendee, 'email' or 'email=Display Name' (repeatable)"},
		&cli.StringSliceFlag{Name: "optional-attendee", Usage: "Optional attendee, same format (repeatable)"},
		&cli.StringFlag{Name: "start", Usage: "Start instant, RFC 3339 (e.g. 2024-06-01T15:00:00Z)", Required: true},
		&cli.IntFlag{Name: "duration", Usage: "Duration in minutes", Value: 30},
		&cli.IntFlag{Name: "reminder", Usage: "Reminder minutes before start (0 = none)"},
		&cli.StringFlag{Name: "uid", Usage: "Explicit calendar UID (default: derived from subject, organizer and start)"},
		&cli.BoolFlag{Name: "random-uid", Usage: "Use a random UID instead of a derived one (no dedup across resends)"},
	}
}

func buildMeeting(c *cli.Context) (domain.MeetingRequest, error) {
	start, err := time.Parse(time.RFC3339, c.String("start"))
	if err != nil {
		return domain.MeetingRequest{}, fmt.Errorf("invalid --start: %w", err)
	}

	attendees := parseAttendees(c.StringSlice("attendee"), domain.RoleRequired)
	attendees = append(attendees, parseAttendees(c.StringSlice("optional-attendee"), domain.RoleOptional)...)

	uid := c.String("uid")
	if uid == "" && c.Bool("random-uid") {
		uid = ics.RandomUID()
	}

	organizer := domain.Organizer{
		Email:       c.String("organizer-email"),
		DisplayName: c.String("organizer-name"),
	}

	return ics.NewInterviewInvite(
		c.String("subject"),
		c.String("agenda"),
		c.String("location"),
		organizer,
		attendees,
		start,
		time.Duration(c.Int("duration"))*time.Minute,
		c.Int("reminder"),
		uid,
	)
}

func parseAttendees(specs []string, role domain.Role) []domain.Attendee {
	attendees := make([]domain.Attendee, 0, len(specs))
	for _, spec := range specs {
		email, name, _ := strings.Cut(spec, "=")
		attendees = append(attendees, domain.Attendee{
			Email:       email,
			DisplayName: name,
			Role:        role,
		})
	}
	return attendees
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Render the ICS document to stdout or a file without sending anything.",
		Flags: append(meetingFlags(),
			&cli.StringFlag{Name: "out", Usage: "Write to file instead of stdout"},
		),
		Action: func(c *cli.Context) error {
			meeting, err := buildMeeting(c)
			if err != nil {
				return err
			}

			data, err := ics.Render(meeting)
			if err != nil {
				return err
			}

			if out := c.String("out"); out != "" {
				return os.WriteFile(out, data, 0o644)
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
}

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "Render the invitation and mail it to every attendee.",
		Flags: append(meetingFlags(),
			&cli.StringFlag{Name: "body", Usage: "HTML mail body (default: generated from the meeting)"},
		),
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			meeting, err := buildMeeting(c)
			if err != nil {
				return err
			}

			svc := service.NewInviteService(newGraphClient(cfg), newPublisher(cfg), cfg.SenderEmail)

			// A non-nil result alongside an error means the mail went out but
			// the calendar mirror failed; say so, or the operator will resend.
			result, err := svc.Send(c.Context, meeting, c.String("body"))
			if result != nil {
				slog.Info("Invitation sent", "uid", meeting.UID, "status", result.StatusCode,
					"attendees", len(meeting.Attendees))
			}
			return err
		},
	}
}

func calendarsCommand() *cli.Command {
	return &cli.Command{
		Name:  "calendars",
		Usage: "List CalDAV calendars available for mirroring sent invites.",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			publisher := newPublisher(cfg)
			if publisher == nil {
				return fmt.Errorf("CalDAV is not configured (set CALDAV_URL, CALDAV_USERNAME, CALDAV_PASSWORD)")
			}

			cals, err := publisher.DiscoverCalendars(c.Context)
			if err != nil {
				return err
			}

			for _, cal := range cals {
				fmt.Printf("%s\t%s\n", cal.Path, cal.DisplayName)
			}
			return nil
		},
	}
}

func newGraphClient(cfg *config.Config) *graph.Client {
	if cfg.GraphAccessToken != "" {
		return graph.NewClient(cfg.GraphAccessToken)
	}
	return graph.NewClientCredentials(cfg.GraphTenantID, cfg.GraphClientID, cfg.GraphClientSecret)
}

func newPublisher(cfg *config.Config) *caldav.Publisher {
	if !cfg.HasCalDAV() {
		return nil
	}
	return caldav.NewPublisher(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, cfg.CalDAVCalendarPath)
}
