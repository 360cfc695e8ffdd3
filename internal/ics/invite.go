package ics

import (
	"time"

	"github.com/powerdashhr/invited/internal/domain"
)

// NewInterviewInvite builds a validated meeting request for an interview
// slot. The end instant is start plus duration. When uid is empty a stable
// identifier is derived from the subject, organizer email and start instant,
// so resending the same slot collapses into one calendar entry; pass an
// explicit uid (for example RandomUID) to opt out of that deduplication.
func NewInterviewInvite(subject, agenda, location string, organizer domain.Organizer,
	attendees []domain.Attendee, start time.Time, duration time.Duration,
	reminderMinutes int, uid string) (domain.MeetingRequest, error) {

	start = start.UTC()
	if uid == "" {
		uid = StableUID(subject, organizer.Email, start.Format(time.RFC3339))
	}

	return domain.NewMeetingRequest(domain.MeetingInput{
		UID:             uid,
		Summary:         subject,
		Description:     agenda,
		Location:        location,
		Organizer:       organizer,
		Attendees:       attendees,
		Start:           start,
		End:             start.Add(duration),
		ReminderMinutes: reminderMinutes,
	})
}
