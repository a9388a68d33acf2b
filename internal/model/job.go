package model

import "cloud.google.com/go/civil"

// Job tracks work that follows an accepted quote.
type Job struct {
	JobID           string      `json:"job_id"`
	QuoteID         string      `json:"quote_id,omitempty"`
	ClientID        string      `json:"client_id"`
	DateAccepted    civil.Date  `json:"date_accepted"`
	ScheduledDate   *civil.Date `json:"scheduled_date,omitempty"`
	DateStarted     *civil.Date `json:"date_started,omitempty"`
	DateCompleted   *civil.Date `json:"date_completed,omitempty"`
	DateInvoiced    *civil.Date `json:"date_invoiced,omitempty"`
	ActualCosts     []string    `json:"actual_costs,omitempty"`
	Version         int         `json:"version"`
	Notes           string      `json:"notes,omitempty"`
	CalendarEventID string      `json:"calendar_event_id,omitempty"`
}

// Validate requires the job id, client id and acceptance date.
func (j Job) Validate() error {
	v := newValidator("job")
	if j.JobID == "" {
		v.addf("job_id", "must not be empty")
	}
	if j.ClientID == "" {
		v.addf("client_id", "must not be empty")
	}
	if !j.DateAccepted.IsValid() {
		v.addf("date_accepted", "must be a valid date")
	}
	return v.err()
}

// Status derives the job's state: invoiced > completed > in progress > scheduled.
func (j Job) Status() JobStatus {
	switch {
	case isSet(j.DateInvoiced):
		return JobInvoiced
	case isSet(j.DateCompleted):
		return JobCompleted
	case isSet(j.DateStarted):
		return JobInProgress
	default:
		return JobScheduled
	}
}

// DurationDays returns the days between start and completion, if both are set.
func (j Job) DurationDays() (int, bool) {
	if !isSet(j.DateStarted) || !isSet(j.DateCompleted) {
		return 0, false
	}
	return j.DateCompleted.DaysSince(*j.DateStarted), true
}

// FinancialYear is based on the acceptance date.
func (j Job) FinancialYear() string {
	return FinancialYear(j.DateAccepted)
}

// Clone returns a deep copy.
func (j Job) Clone() Job {
	c := j
	c.ScheduledDate = cloneDate(j.ScheduledDate)
	c.DateStarted = cloneDate(j.DateStarted)
	c.DateCompleted = cloneDate(j.DateCompleted)
	c.DateInvoiced = cloneDate(j.DateInvoiced)
	if j.ActualCosts != nil {
		c.ActualCosts = append([]string(nil), j.ActualCosts...)
	}
	return c
}
