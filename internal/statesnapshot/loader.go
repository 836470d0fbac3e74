// Package statesnapshot loads the tabular state snapshot and
// resource-override document described in spec §§4.10 and 6, deriving
// the per-unit resource counts the kernel initializes its pools and
// queues from. Grounded on the teacher's storage-backends tabular
// scan style (internal/storage-backends), generalized from a
// key-value store scan to a fixed four-table snapshot shape.
package statesnapshot

import (
	"fmt"

	"github.com/flyingrobots/squadron-sim/internal/simtypes"
)

const statusFMC = "FMC"

// Load derives the per-unit resource counts from a state snapshot: the
// unit roster, the count of Fully-Mission-Capable aircraft per unit,
// payload counts by type, and staffing counts by MOS.
func Load(snapshot simtypes.StateSnapshot) (simtypes.DerivedResources, error) {
	units, unitSet, err := loadUnits(snapshot.Units)
	if err != nil {
		return simtypes.DerivedResources{}, err
	}

	aircraft, err := loadAircraft(snapshot.Aircraft, unitSet)
	if err != nil {
		return simtypes.DerivedResources{}, err
	}

	payload, err := loadPayload(snapshot.Payload, unitSet)
	if err != nil {
		return simtypes.DerivedResources{}, err
	}

	staffing, err := loadStaffing(snapshot.Staffing, unitSet)
	if err != nil {
		return simtypes.DerivedResources{}, err
	}

	return simtypes.DerivedResources{
		Units:          units,
		AircraftByUnit: aircraft,
		PayloadByUnit:  payload,
		StaffingByUnit: staffing,
	}, nil
}

func loadUnits(t simtypes.Table) ([]string, map[string]bool, error) {
	if len(t.Rows) == 0 {
		return nil, nil, invalidState("units table is empty")
	}
	var units []string
	seen := map[string]bool{}
	for i, row := range t.Rows {
		unit, err := requireString(row, "unit", "units", i)
		if err != nil {
			return nil, nil, err
		}
		if !seen[unit] {
			seen[unit] = true
			units = append(units, unit)
		}
	}
	return units, seen, nil
}

func loadAircraft(t simtypes.Table, units map[string]bool) (map[string]int, error) {
	out := make(map[string]int, len(units))
	for i, row := range t.Rows {
		unit, err := requireString(row, "unit", "aircraft", i)
		if err != nil {
			return nil, err
		}
		if !units[unit] {
			return nil, invalidState(fmt.Sprintf("aircraft row %d references unknown unit %q", i, unit))
		}
		status, err := requireString(row, "status", "aircraft", i)
		if err != nil {
			return nil, err
		}
		if status == statusFMC {
			out[unit]++
		}
	}
	return out, nil
}

func loadPayload(t simtypes.Table, units map[string]bool) (map[string]map[string]int, error) {
	out := make(map[string]map[string]int, len(units))
	for i, row := range t.Rows {
		unit, err := requireString(row, "unit", "payload", i)
		if err != nil {
			return nil, err
		}
		if !units[unit] {
			return nil, invalidState(fmt.Sprintf("payload row %d references unknown unit %q", i, unit))
		}
		payloadType, err := requireString(row, "type", "payload", i)
		if err != nil {
			return nil, err
		}
		count, err := requireInt(row, "count", "payload", i)
		if err != nil {
			return nil, err
		}
		if out[unit] == nil {
			out[unit] = map[string]int{}
		}
		out[unit][payloadType] += count
	}
	return out, nil
}

func loadStaffing(t simtypes.Table, units map[string]bool) (map[string]map[simtypes.MOS]int, error) {
	out := make(map[string]map[simtypes.MOS]int, len(units))
	for i, row := range t.Rows {
		unit, err := requireString(row, "unit", "staffing", i)
		if err != nil {
			return nil, err
		}
		if !units[unit] {
			return nil, invalidState(fmt.Sprintf("staffing row %d references unknown unit %q", i, unit))
		}
		mosStr, err := requireString(row, "mos", "staffing", i)
		if err != nil {
			return nil, err
		}
		mos := simtypes.MOS(mosStr)
		if !isRecognizedMOS(mos) {
			return nil, invalidState(fmt.Sprintf("staffing row %d has unrecognized mos %q", i, mosStr))
		}
		count, err := requireInt(row, "count", "staffing", i)
		if err != nil {
			return nil, err
		}
		if out[unit] == nil {
			out[unit] = map[simtypes.MOS]int{}
		}
		out[unit][mos] += count
	}
	return out, nil
}

func isRecognizedMOS(m simtypes.MOS) bool {
	for _, candidate := range simtypes.AllMOS {
		if candidate == m {
			return true
		}
	}
	return false
}

// ApplyOverrides replaces the state-derived counts for each unit named
// in overrides. Unlisted fields, and units absent from overrides,
// fall back to the state-derived values. Payload overrides merge
// key-by-key rather than replacing the whole map.
func ApplyOverrides(base simtypes.DerivedResources, overrides *simtypes.Overrides) simtypes.DerivedResources {
	out := base.Clone()
	if overrides == nil {
		return out
	}
	for unit, ov := range overrides.Units {
		if ov.Aircraft != nil {
			out.AircraftByUnit[unit] = *ov.Aircraft
		}
		if out.StaffingByUnit[unit] == nil {
			out.StaffingByUnit[unit] = map[simtypes.MOS]int{}
		}
		if ov.Pilot != nil {
			out.StaffingByUnit[unit][simtypes.MOSPilot] = *ov.Pilot
		}
		if ov.SO != nil {
			out.StaffingByUnit[unit][simtypes.MOSSO] = *ov.SO
		}
		if ov.Intel != nil {
			out.StaffingByUnit[unit][simtypes.MOSIntel] = *ov.Intel
		}
		if len(ov.PayloadByType) > 0 {
			if out.PayloadByUnit[unit] == nil {
				out.PayloadByUnit[unit] = map[string]int{}
			}
			for t, c := range ov.PayloadByType {
				out.PayloadByUnit[unit][t] = c
			}
		}
	}
	return out
}

func requireString(row map[string]interface{}, field, table string, idx int) (string, error) {
	v, ok := row[field]
	if !ok {
		return "", invalidState(fmt.Sprintf("%s row %d missing field %q", table, idx, field))
	}
	s, ok := v.(string)
	if !ok {
		return "", invalidState(fmt.Sprintf("%s row %d field %q is not a string", table, idx, field))
	}
	return s, nil
}

func requireInt(row map[string]interface{}, field, table string, idx int) (int, error) {
	v, ok := row[field]
	if !ok {
		return 0, invalidState(fmt.Sprintf("%s row %d missing field %q", table, idx, field))
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, invalidState(fmt.Sprintf("%s row %d field %q is not a number", table, idx, field))
	}
}

func invalidState(msg string) error {
	return simtypes.NewSimError(simtypes.InvalidState, msg, nil)
}
