// Copyright 2025 James Ross
package statesnapshot

import (
	"testing"

	"github.com/flyingrobots/squadron-sim/internal/simtypes"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() simtypes.StateSnapshot {
	return simtypes.StateSnapshot{
		Units: simtypes.Table{Rows: []map[string]interface{}{
			{"unit": "alpha"}, {"unit": "bravo"},
		}},
		Aircraft: simtypes.Table{Rows: []map[string]interface{}{
			{"unit": "alpha", "status": "FMC"},
			{"unit": "alpha", "status": "NMC"},
			{"unit": "bravo", "status": "FMC"},
		}},
		Payload: simtypes.Table{Rows: []map[string]interface{}{
			{"unit": "alpha", "type": "pod", "count": 2.0},
		}},
		Staffing: simtypes.Table{Rows: []map[string]interface{}{
			{"unit": "alpha", "mos": "pilot", "count": 4.0},
			{"unit": "bravo", "mos": "so", "count": 3.0},
		}},
	}
}

func TestLoadDerivesResources(t *testing.T) {
	d, err := Load(sampleSnapshot())
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "bravo"}, d.Units)
	require.Equal(t, 1, d.AircraftByUnit["alpha"])
	require.Equal(t, 1, d.AircraftByUnit["bravo"])
	require.Equal(t, 2, d.PayloadByUnit["alpha"]["pod"])
	require.Equal(t, 4, d.StaffingByUnit["alpha"][simtypes.MOSPilot])
}

func TestLoadRejectsEmptyUnits(t *testing.T) {
	_, err := Load(simtypes.StateSnapshot{})
	require.Error(t, err)
	var simErr *simtypes.SimError
	require.ErrorAs(t, err, &simErr)
	require.Equal(t, simtypes.InvalidState, simErr.Kind)
}

func TestLoadRejectsUnknownUnitReference(t *testing.T) {
	snap := sampleSnapshot()
	snap.Aircraft.Rows = append(snap.Aircraft.Rows, map[string]interface{}{"unit": "charlie", "status": "FMC"})
	_, err := Load(snap)
	require.Error(t, err)
}

func TestLoadRejectsUnrecognizedMOS(t *testing.T) {
	snap := sampleSnapshot()
	snap.Staffing.Rows = append(snap.Staffing.Rows, map[string]interface{}{"unit": "alpha", "mos": "cook", "count": 1.0})
	_, err := Load(snap)
	require.Error(t, err)
}

func TestApplyOverridesReplacesListedFieldsOnly(t *testing.T) {
	d, err := Load(sampleSnapshot())
	require.NoError(t, err)
	pilots := 9
	overrides := &simtypes.Overrides{Units: map[string]simtypes.UnitOverride{
		"alpha": {Pilot: &pilots},
	}}
	out := ApplyOverrides(d, overrides)
	require.Equal(t, 9, out.StaffingByUnit["alpha"][simtypes.MOSPilot])
	require.Equal(t, 1, out.AircraftByUnit["alpha"])
}

func TestApplyOverridesNilIsNoop(t *testing.T) {
	d, err := Load(sampleSnapshot())
	require.NoError(t, err)
	out := ApplyOverrides(d, nil)
	require.Equal(t, d, out)
}

func TestApplyOverridesPayloadMergesByKey(t *testing.T) {
	d, err := Load(sampleSnapshot())
	require.NoError(t, err)
	overrides := &simtypes.Overrides{Units: map[string]simtypes.UnitOverride{
		"alpha": {PayloadByType: map[string]int{"flare": 5}},
	}}
	out := ApplyOverrides(d, overrides)
	require.Equal(t, 5, out.PayloadByUnit["alpha"]["flare"])
	require.Equal(t, 2, out.PayloadByUnit["alpha"]["pod"])
}
