// Copyright 2025 James Ross
package simtypes

// Segment is one labeled phase of a mission's timeline (preflight,
// mount, transit_in, flight, transit_out, postflight, turnaround).
type Segment struct {
	Name  string  `json:"name"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// CrewAssignment records one crew member's shift within a mission or
// duty record.
type CrewAssignment struct {
	ID    string  `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Shift int     `json:"shift"`
}

// MissionCrew groups a mission's crew assignments by MOS.
type MissionCrew struct {
	Pilots []CrewAssignment `json:"pilots"`
	SOs    []CrewAssignment `json:"sos"`
	Intel  []CrewAssignment `json:"intel"`
}

// RejectionKind names the first resource check that failed for a
// rejected mission.
type RejectionKind string

const (
	RejectNone     RejectionKind = ""
	RejectPayload  RejectionKind = "payload"
	RejectAircraft RejectionKind = "aircraft"
	RejectPilot    RejectionKind = "pilot"
	RejectSO       RejectionKind = "so"
	RejectIntel    RejectionKind = "intel"
)

// TimelineEventKind discriminates the union stored in Result.Timeline.
type TimelineEventKind string

const (
	EventMission        TimelineEventKind = "mission"
	EventDuty            TimelineEventKind = "duty"
	EventRejection       TimelineEventKind = "rejection"
	EventUnfilledDuty    TimelineEventKind = "unfilled_duty"
)

// TimelineEvent is one emitted record — a mission, a duty, a mission
// rejection, or an unfilled duty. Only the fields relevant to Kind are
// populated.
type TimelineEvent struct {
	Kind TimelineEventKind `json:"kind"`
	Time float64           `json:"time"`

	// mission / rejection
	Unit        string          `json:"unit,omitempty"`
	MissionType string          `json:"mission_type,omitempty"`
	Segments    []Segment       `json:"segments,omitempty"`
	Crew        MissionCrew     `json:"crew,omitempty"`
	Rejection   RejectionKind   `json:"rejection,omitempty"`

	// duty / unfilled_duty
	DutyType DutyType          `json:"duty_type,omitempty"`
	DutyCrew []CrewAssignment  `json:"duty_crew,omitempty"`
	MOS      MOS               `json:"mos,omitempty"`
}

// MissionCounters tallies mission outcomes.
type MissionCounters struct {
	Requested int `json:"requested"`
	Started   int `json:"started"`
	Completed int `json:"completed"`
	Rejected  int `json:"rejected"`
}

// RejectionCounters tallies rejections by the resource kind that
// first failed.
type RejectionCounters struct {
	Aircraft int `json:"aircraft"`
	Pilot    int `json:"pilot"`
	SO       int `json:"so"`
	Intel    int `json:"intel"`
	Payload  int `json:"payload"`
}

// DutyCounters tallies duty-dispatch outcomes.
type DutyCounters struct {
	Requested int `json:"requested"`
	Filled    int `json:"filled"`
	Unfilled  int `json:"unfilled"`
}

// AvailabilityFactors reports the per-MOS scalar used to project raw
// headcount to effective headcount, for reporting only.
type AvailabilityFactors struct {
	Pilot float64 `json:"pilot"`
	SO    float64 `json:"so"`
	Intel float64 `json:"intel"`
}

// UnitUtilization reports per-unit resource utilization and headcount
// framing.
type UnitUtilization struct {
	Aircraft           float64             `json:"aircraft"`
	Pilot              float64             `json:"pilot"`
	SO                 float64             `json:"so"`
	Intel              float64             `json:"intel"`
	AvailabilityFactors AvailabilityFactors `json:"availability_factors"`
	InitialCrew        map[MOS]int         `json:"initial_crew"`
	EffectiveCrew      map[MOS]int         `json:"effective_crew"`
	PeakConcurrent     int                 `json:"peak_concurrent"`
}

// MissionTypeCounters tallies outcomes for a single mission type.
type MissionTypeCounters struct {
	Requested int `json:"requested"`
	Started   int `json:"started"`
	Completed int `json:"completed"`
	Rejected  int `json:"rejected"`
}

// AvailabilityPoint is one sample of the availability timeline: the
// expected unavailability per MOS at a point in the horizon.
type AvailabilityPoint struct {
	TimeHours     float64            `json:"time_hours"`
	Unavailable   map[MOS]float64    `json:"unavailable"` // fraction unavailable, per MOS
}

// Result is the output of a single DES run (spec.md §3 "Per-run
// Result").
type Result struct {
	Horizon     float64                        `json:"horizon"`
	Missions    MissionCounters                `json:"missions"`
	Rejections  RejectionCounters              `json:"rejections"`
	Duties      DutyCounters                   `json:"duties"`
	Utilization map[string]UnitUtilization     `json:"utilization"`
	ByType      map[string]MissionTypeCounters `json:"by_type"`
	Timeline    []TimelineEvent                `json:"timeline"`
	AvailabilityTimeline []AvailabilityPoint   `json:"availability_timeline"`
	InitialResources DerivedResources          `json:"initial_resources"`
}
