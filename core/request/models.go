package request

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ahmedtelkodsh/geniussmart/core"
)

// Types
const (
	TypeAbsence           Type = "Absence"
	TypeAuthorizedAbsence Type = "Authorized Absence"
	TypeEarlyLeave        Type = "Early Leave"
	TypeLateArrival       Type = "Late Arrival"
)

// Results
const (
	ResultPending  Result = "Pending"
	ResultApproved Result = "Approved"
	ResultRejected Result = "Rejected"
)

var AllTypes = []Type{TypeAbsence, TypeAuthorizedAbsence, TypeEarlyLeave, TypeLateArrival}

type (
	Type   string
	Result string
)

func (t Type) IsValid() bool {
	for _, typ := range AllTypes {
		if t == typ {
			return true
		}
	}
	return false
}

// Request is a teacher's absence / leave / lateness request.
// AppliedDate is kept as submitted: an unparseable value is a recognized state, not an error.
type Request struct {
	ID          string     `json:"id"`
	TeacherID   string     `json:"teacherId"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	RequestType Type       `json:"requestType"`
	AppliedDate string     `json:"appliedDate"`
	Duration    string     `json:"duration"`
	Reason      string     `json:"reason"`
	Result      Result     `json:"result"`
	CreatedAt   time.Time  `json:"createdAt"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
}

func (r Request) IsPending() bool {
	return r.Result == "" || r.Result == ResultPending
}

// NewRequest contains information needed to create a new Request.
type NewRequest struct {
	RequestType Type   `json:"requestType" validate:"required,reqtype"`
	AppliedDate string `json:"appliedDate" validate:"required,isodate"`
	Duration    string `json:"duration"`
	Reason      string `json:"reason" validate:"notblank,max=500"`
}

func (nr *NewRequest) Validate(validate *validator.Validate) error {
	nr.AppliedDate = core.CleanString(nr.AppliedDate)
	nr.Duration = core.CleanString(nr.Duration)
	nr.Reason = core.CleanString(nr.Reason)
	return validate.Struct(nr)
}

// Decision is a manager's verdict on a pending Request.
type Decision struct {
	Result Result `json:"result" validate:"required,oneof=Approved Rejected"`
}

func (d Decision) Validate(validate *validator.Validate) error { return validate.Struct(d) }

// OrderingFields maps the ordering query params to DB columns.
var OrderingFields = map[string]string{
	"name":        "name",
	"requestType": "request_type",
	"appliedDate": "applied_date",
	"result":      "result",
	"createdAt":   "created_at",
}

type QueryFilter struct {
	TeacherID string
	Types     []Type
	Orderings []core.DBOrdering
}

func (qf QueryFilter) HasType(t Type) bool {
	if len(qf.Types) == 0 {
		return true
	}
	for _, typ := range qf.Types {
		if typ == t {
			return true
		}
	}
	return false
}
