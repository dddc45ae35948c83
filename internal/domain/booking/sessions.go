package booking

import "github.com/edumatch/tutor-scheduler/internal/models"

// ===============================
// Session Generator
// ===============================

// GenerateSessions materializes the session rows for a booking.
// Numbers are contiguous from 1 and every row starts out scheduled.
// Only the anchor session carries a concrete date and time; how the
// remaining sessions of a package get scheduled is decided outside
// this core, so their date fields stay empty here.
func GenerateSessions(b *models.Booking) []models.Session {
	sessions := make([]models.Session, 0, b.SessionsCount)

	for n := 1; n <= b.SessionsCount; n++ {
		s := models.Session{
			BookingID:     &b.ID,
			TeacherID:     b.TeacherID,
			StudentID:     b.StudentID,
			SessionNumber: n,
			DurationMin:   b.DurationMin,
			Status:        string(SessionScheduled),
		}

		if n == 1 {
			date := b.FirstSessionDate
			start := b.StartTime
			end := b.EndTime
			s.Date = &date
			s.StartTime = &start
			s.EndTime = &end
		}

		sessions = append(sessions, s)
	}

	return sessions
}
