package notify

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic360/platform/internal/identity"
)

// AppointmentSnapshot is the appointment data copied into a notification job
// at booking time. Later mutations of the appointment row (reschedule,
// cancellation) do not affect an already-enqueued confirmation; a stale
// confirmation is acceptable under the best-effort delivery contract.
type AppointmentSnapshot struct {
	ID        int64     `json:"id"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
}

// Job is one confirmation email to deliver. It is destroyed on success or
// after the dispatcher exhausts its attempts.
type Job struct {
	ID          string              `json:"id"`
	Patient     identity.Summary    `json:"patient"`
	Doctor      identity.Summary    `json:"doctor"`
	Appointment AppointmentSnapshot `json:"appointment"`
	EnqueuedAt  time.Time           `json:"enqueuedAt"`
}

// EncodeJob assigns a job id when missing and serializes the job for the
// queue.
func EncodeJob(job Job) (Job, string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	body, err := json.Marshal(job)
	if err != nil {
		return Job{}, "", fmt.Errorf("notify: failed to encode job: %w", err)
	}
	return job, string(body), nil
}

// DecodeJob parses a queue message body back into a Job.
func DecodeJob(body string) (Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		return Job{}, fmt.Errorf("notify: failed to decode job: %w", err)
	}
	return job, nil
}

// ConfirmationEmail renders the appointment confirmation message for a job.
func ConfirmationEmail(job Job) EmailMessage {
	reason := job.Appointment.Reason
	if reason == "" {
		reason = "Not specified"
	}

	body := fmt.Sprintf(`Dear %s,

Your appointment has been scheduled with Dr. %s.

Appointment Details:
- Date: %s
- Time: %s - %s
- Reason: %s

Location: Clinic360 Medical Center

Please arrive 15 minutes before your scheduled time. If you need to reschedule or cancel your appointment, please contact us as soon as possible.

Best regards,
Clinic360 Team
`,
		job.Patient.FullName,
		job.Doctor.FullName,
		job.Appointment.StartTime.Format("January 2, 2006"),
		job.Appointment.StartTime.Format("3:04 PM"),
		job.Appointment.EndTime.Format("3:04 PM"),
		reason,
	)

	return EmailMessage{
		To:      job.Patient.Email,
		ToName:  job.Patient.FullName,
		Subject: fmt.Sprintf("Appointment Confirmation with Dr. %s", job.Doctor.FullName),
		Body:    body,
		HTML:    strings.ReplaceAll(body, "\n", "<br>"),
	}
}
