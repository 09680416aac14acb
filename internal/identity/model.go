package identity

import "time"

// Roles recognized by the scheduling core. Identity itself (registration,
// password hashing, session issuance) is owned by an external service; this
// package only reads users and validates session tokens.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// User is a clinic user referenced by appointments and availability slots.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Role           string    `json:"role"`
	Email          string    `json:"email"`
	FullName       string    `json:"fullName"`
	Specialization string    `json:"specialization,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Summary is the subset of User embedded in appointment listings and
// notification snapshots.
type Summary struct {
	ID             int64  `json:"id"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Specialization string `json:"specialization,omitempty"`
}

// Summarize projects a User to its embeddable summary.
func (u *User) Summarize() Summary {
	return Summary{
		ID:             u.ID,
		FullName:       u.FullName,
		Email:          u.Email,
		Role:           u.Role,
		Specialization: u.Specialization,
	}
}
