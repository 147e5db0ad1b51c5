package entities

import "time"

// Role is a user's capability level.
type Role string

// Roles. Review actions require RoleReviewer or RoleAdmin.
const (
	RoleUser     Role = "user"
	RoleReviewer Role = "reviewer"
	RoleAdmin    Role = "admin"
)

// CanReview reports whether the role carries the review capability.
func (r Role) CanReview() bool {
	return r == RoleReviewer || r == RoleAdmin
}

// AccountStatus is the moderation state of a user account.
type AccountStatus string

// Account statuses.
const (
	AccountActive     AccountStatus = "active"
	AccountSuspended  AccountStatus = "suspended"
	AccountBlocked    AccountStatus = "blocked"
	AccountRestricted AccountStatus = "restricted"
)

// IsBlocked reports whether the account may not contribute.
func (s AccountStatus) IsBlocked() bool {
	return s == AccountSuspended || s == AccountBlocked || s == AccountRestricted
}

// Counter names a per-user contribution counter.
type Counter string

// Contribution counters. Superseded submissions increment none of them.
const (
	CounterCorrectionsApproved Counter = "corrections_approved"
	CounterCorrectionsRejected Counter = "corrections_rejected"
	CounterSubmissionsApproved Counter = "submissions_approved"
	CounterSubmissionsRejected Counter = "submissions_rejected"
)

// AllCounters lists every counter in display order.
var AllCounters = []Counter{
	CounterCorrectionsApproved,
	CounterCorrectionsRejected,
	CounterSubmissionsApproved,
	CounterSubmissionsRejected,
}

// User is an account that may submit and, with a role, review proposals.
type User struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Role      Role              `json:"role"`
	Status    AccountStatus     `json:"status"`
	Counters  map[Counter]int64 `json:"counters,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Person returns the user's id/name pair.
func (u *User) Person() Person {
	return Person{ID: u.ID, Name: u.Name}
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID     string
	Name   string
	Role   Role
	Status AccountStatus
}

// ActorFromUser builds an Actor from a stored user.
func ActorFromUser(u *User) Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role, Status: u.Status}
}

// Person returns the actor's id/name pair.
func (a Actor) Person() Person {
	return Person{ID: a.ID, Name: a.Name}
}
