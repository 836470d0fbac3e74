// Copyright 2025 James Ross
package simtypes

// MOS names one of the three occupational specialty roles the core
// recognizes.
type MOS string

const (
	MOSPilot MOS = "pilot"
	MOSSO    MOS = "so"
	MOSIntel MOS = "intel"
)

// AllMOS lists every recognized MOS, in a fixed, stable order — used
// to build each unit's crew queues in the kernel and to validate the
// MOS column of staffing rows in the state loader.
var AllMOS = []MOS{MOSPilot, MOSSO, MOSIntel}

// DutyType names one of the three duty kinds.
type DutyType string

const (
	DutyODO    DutyType = "ODO"
	DutySDO    DutyType = "SDO"
	DutySDNCO  DutyType = "SDNCO"
)

// CrewDistribution controls candidate ordering within tryAcquireShifts.
type CrewDistribution string

const (
	DistConcentrate CrewDistribution = "concentrate"
	DistRotate      CrewDistribution = "rotate"
	DistRandom      CrewDistribution = "random"
)

// DemandSpec describes how mission-demand events for one mission type
// are generated: either a deterministic cadence or a Poisson process.
type DemandSpec struct {
	MissionType   string   `json:"mission_type"`
	EveryHours    *float64 `json:"every_hours,omitempty"`
	StartAtHours  *float64 `json:"start_at_hours,omitempty"`
	RatePerHour   *float64 `json:"rate_per_hour,omitempty"`
}

// IsDeterministic reports whether this spec uses the fixed-cadence
// form rather than the Poisson form.
func (d DemandSpec) IsDeterministic() bool { return d.EveryHours != nil }

// CrewRotationSpec splits a mission's crew-hold window into multiple
// shifts instead of one continuous hold.
type CrewRotationSpec struct {
	Enabled         bool      `json:"enabled"`
	ShiftHours      []float64 `json:"shift_hours"`
	ForceSequential bool      `json:"force_sequential"`
}

// RequiredAircrew gives the headcount required per MOS for a mission
// type. Zero entries mean that MOS is not required.
type RequiredAircrew struct {
	Pilot int `json:"pilot"`
	SO    int `json:"so"`
	Intel int `json:"intel"`
}

// Count returns the required headcount for the given MOS.
func (r RequiredAircrew) Count(m MOS) int {
	switch m {
	case MOSPilot:
		return r.Pilot
	case MOSSO:
		return r.SO
	case MOSIntel:
		return r.Intel
	default:
		return 0
	}
}

// MissionTypeSpec is the scenario's per-mission-type configuration.
type MissionTypeSpec struct {
	RequiredAircrew    RequiredAircrew   `json:"required_aircrew"`
	RequiredPayload    map[string]int    `json:"required_payload"` // payload type -> count
	FlightTime         Distribution      `json:"flight_time"`
	TransitIn          *Distribution     `json:"transit_in,omitempty"`
	TransitOut         *Distribution     `json:"transit_out,omitempty"`
	CrewRotation       *CrewRotationSpec `json:"crew_rotation,omitempty"`
	CrewDistribution   CrewDistribution  `json:"crew_distribution,omitempty"`
}

// ProcessTimes are the shared, mission-type-independent phase
// durations (preflight, postflight, turnaround, per-payload mount).
type ProcessTimes struct {
	Preflight       Distribution            `json:"preflight"`
	Postflight      Distribution            `json:"postflight"`
	Turnaround      Distribution            `json:"turnaround"`
	PayloadMountByType map[string]Distribution `json:"payload_mount_by_type"`
}

// DutySpec configures one duty type (ODO, SDO or SDNCO).
type DutySpec struct {
	Enabled             bool     `json:"enabled"`
	ShiftsPerDay        int      `json:"shifts_per_day"`
	HoursPerShift       float64  `json:"hours_per_shift"`
	StartHour           float64  `json:"start_hour"`
	EligibleMOS         []MOS    `json:"eligible_mos"`
	DutyRecoveryHours   float64  `json:"duty_recovery_hours"`
	RespectWorkSchedule bool     `json:"respect_work_schedule"`
}

// DutyRequirements bundles the three duty-type specs.
type DutyRequirements struct {
	ODO   DutySpec `json:"odo"`
	SDO   DutySpec `json:"sdo"`
	SDNCO DutySpec `json:"sdnco"`
}

// Lookahead configures the forward scan used to reserve crew ahead of
// imminent duty events during mission dispatch.
type Lookahead struct {
	Enabled bool    `json:"enabled"`
	Hours   float64 `json:"hours"`
}

// WorkSchedule describes a crew's days-on/days-off cycle and shift
// split.
type WorkSchedule struct {
	DaysOn          int     `json:"days_on"`
	DaysOff         int     `json:"days_off"`
	DailyStartHour  float64 `json:"daily_start_hour"`
	StaggerDays     float64 `json:"stagger_days"`
	SplitEnabled    bool    `json:"split_enabled"`
	SplitPercent    float64 `json:"split_percent"` // percent assigned to shift 1
}

// PersonnelAvailability is the per-MOS availability-factor block used
// by the availability timeline (reporting only — the simulation models
// unavailability via scheduled events, not via this scalar).
type PersonnelAvailability struct {
	WorkSchedule          WorkSchedule `json:"work_schedule"`
	AnnualCommitmentDays  float64      `json:"annual_commitment_days"`
	QuarterlyCommitmentDays float64    `json:"quarterly_commitment_days"`
	MonthlyCommitmentDays float64      `json:"monthly_commitment_days"`
	DailyCrewRestHours    float64      `json:"daily_crew_rest_hours"`
}

// UnitPolicy controls cross-unit mission assignment.
type UnitPolicy struct {
	MissionSplit map[string]float64 `json:"mission_split"` // unit -> fraction in [0,1]
	RoundRobin   bool               `json:"round_robin"`
}

// Scenario is the simulator's immutable input (spec §3).
type Scenario struct {
	HorizonHours          float64                      `json:"horizon_hours"`
	MissionTypes          map[string]MissionTypeSpec   `json:"mission_types"`
	Demand                []DemandSpec                 `json:"demand"`
	ProcessTimes          ProcessTimes                 `json:"process_times"`
	HoldCrewDuringProcess bool                         `json:"hold_crew_during_process_times"`
	DutyRequirements      DutyRequirements              `json:"duty_requirements"`
	Lookahead             Lookahead                     `json:"lookahead"`
	PersonnelAvailability map[MOS]PersonnelAvailability `json:"personnel_availability"`
	UnitPolicy            UnitPolicy                    `json:"unit_policy"`
}

// Clone returns a deep copy of the scenario, used both by the purity
// test (§8) and by the Monte Carlo driver's per-iteration projection.
func (s Scenario) Clone() Scenario {
	c := s
	c.MissionTypes = make(map[string]MissionTypeSpec, len(s.MissionTypes))
	for k, v := range s.MissionTypes {
		cv := v
		if v.RequiredPayload != nil {
			cv.RequiredPayload = make(map[string]int, len(v.RequiredPayload))
			for pk, pv := range v.RequiredPayload {
				cv.RequiredPayload[pk] = pv
			}
		}
		if v.TransitIn != nil {
			ti := *v.TransitIn
			cv.TransitIn = &ti
		}
		if v.TransitOut != nil {
			to := *v.TransitOut
			cv.TransitOut = &to
		}
		if v.CrewRotation != nil {
			cr := *v.CrewRotation
			cr.ShiftHours = append([]float64(nil), v.CrewRotation.ShiftHours...)
			cv.CrewRotation = &cr
		}
		c.MissionTypes[k] = cv
	}

	c.Demand = append([]DemandSpec(nil), s.Demand...)

	c.ProcessTimes = s.ProcessTimes
	if s.ProcessTimes.PayloadMountByType != nil {
		c.ProcessTimes.PayloadMountByType = make(map[string]Distribution, len(s.ProcessTimes.PayloadMountByType))
		for k, v := range s.ProcessTimes.PayloadMountByType {
			c.ProcessTimes.PayloadMountByType[k] = v
		}
	}

	c.DutyRequirements = s.DutyRequirements
	c.DutyRequirements.ODO.EligibleMOS = append([]MOS(nil), s.DutyRequirements.ODO.EligibleMOS...)
	c.DutyRequirements.SDO.EligibleMOS = append([]MOS(nil), s.DutyRequirements.SDO.EligibleMOS...)
	c.DutyRequirements.SDNCO.EligibleMOS = append([]MOS(nil), s.DutyRequirements.SDNCO.EligibleMOS...)

	if s.PersonnelAvailability != nil {
		c.PersonnelAvailability = make(map[MOS]PersonnelAvailability, len(s.PersonnelAvailability))
		for k, v := range s.PersonnelAvailability {
			c.PersonnelAvailability[k] = v
		}
	}

	if s.UnitPolicy.MissionSplit != nil {
		c.UnitPolicy.MissionSplit = make(map[string]float64, len(s.UnitPolicy.MissionSplit))
		for k, v := range s.UnitPolicy.MissionSplit {
			c.UnitPolicy.MissionSplit[k] = v
		}
	}

	return c
}
