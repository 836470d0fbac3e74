// Copyright 2025 James Ross
package simtypes

// Table is the uniform shape every state-snapshot table shares:
// column names plus rows of string-keyed values. Only four tables are
// ever read (units, aircraft, payload, staffing) — the rest of a real
// snapshot is opaque to the core and ignored.
type Table struct {
	Fields []string                 `json:"fields"`
	Rows   []map[string]interface{} `json:"rows"`
}

// StateSnapshot is the subset of a scenario-run's persisted state the
// core consumes. Everything else in a real snapshot (views the
// front-end renders, audit tables, …) is out of scope per spec.md §1.
type StateSnapshot struct {
	Units    Table `json:"units"`
	Aircraft Table `json:"aircraft"`
	Payload  Table `json:"payload"`
	Staffing Table `json:"staffing"`
}

// DerivedResources is what the state loader produces from a
// StateSnapshot plus overrides: the per-unit counted resources the
// kernel initializes its pools and queues from.
type DerivedResources struct {
	Units          []string
	AircraftByUnit map[string]int
	PayloadByUnit  map[string]map[string]int // unit -> payload type -> count
	StaffingByUnit map[string]map[MOS]int    // unit -> MOS -> count
}

// Clone returns a deep copy, used when a Monte Carlo iteration needs
// its own mutable resource baseline.
func (d DerivedResources) Clone() DerivedResources {
	out := DerivedResources{
		Units:          append([]string(nil), d.Units...),
		AircraftByUnit: make(map[string]int, len(d.AircraftByUnit)),
		PayloadByUnit:  make(map[string]map[string]int, len(d.PayloadByUnit)),
		StaffingByUnit: make(map[string]map[MOS]int, len(d.StaffingByUnit)),
	}
	for k, v := range d.AircraftByUnit {
		out.AircraftByUnit[k] = v
	}
	for unit, byType := range d.PayloadByUnit {
		m := make(map[string]int, len(byType))
		for t, c := range byType {
			m[t] = c
		}
		out.PayloadByUnit[unit] = m
	}
	for unit, byMOS := range d.StaffingByUnit {
		m := make(map[MOS]int, len(byMOS))
		for mos, c := range byMOS {
			m[mos] = c
		}
		out.StaffingByUnit[unit] = m
	}
	return out
}

// UnitOverride replaces the state-derived counts for a single unit.
// Absent (nil) fields fall back to the state-derived value.
type UnitOverride struct {
	Aircraft      *int           `json:"aircraft,omitempty"`
	Pilot         *int           `json:"pilot,omitempty"`
	SO            *int           `json:"so,omitempty"`
	Intel         *int           `json:"intel,omitempty"`
	PayloadByType map[string]int `json:"payload_by_type,omitempty"`
}

// Overrides is the top-level override document (spec.md §6).
type Overrides struct {
	Units map[string]UnitOverride `json:"units"`
}

// Clone deep-copies the overrides document.
func (o *Overrides) Clone() *Overrides {
	if o == nil {
		return nil
	}
	out := &Overrides{Units: make(map[string]UnitOverride, len(o.Units))}
	for unit, ov := range o.Units {
		cv := ov
		if ov.Aircraft != nil {
			v := *ov.Aircraft
			cv.Aircraft = &v
		}
		if ov.Pilot != nil {
			v := *ov.Pilot
			cv.Pilot = &v
		}
		if ov.SO != nil {
			v := *ov.SO
			cv.SO = &v
		}
		if ov.Intel != nil {
			v := *ov.Intel
			cv.Intel = &v
		}
		if ov.PayloadByType != nil {
			cv.PayloadByType = make(map[string]int, len(ov.PayloadByType))
			for k, v := range ov.PayloadByType {
				cv.PayloadByType[k] = v
			}
		}
		out.Units[unit] = cv
	}
	return out
}
