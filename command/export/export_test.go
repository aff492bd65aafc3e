package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `{"result": [
	{"iss": "ISS-1", "sector": "Mecánica", "fecha_ejecucion": "2025-02-01", "ot": "OT-1", "duracion": "2:00", "costo_mo_total": 100},
	{"iss": "ISS-2", "sector": "Eléctrica", "fecha_ejecucion": "2025-03-01", "ot": "OT-2", "duracion": "1:00", "costo_mo_total": 500}
]}`

func TestRunWritesAllFiles(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "db.json")
	require.NoError(t, os.WriteFile(in, []byte(fixture), 0o644))
	dir := filepath.Join(tmp, "out")

	require.NoError(t, Run([]string{"-in", in, "-dir", dir}))

	expected := []string{
		"ticket.csv", "ot.csv", "kpis.csv", "pareto.csv",
		"sector_cost.csv", "sector_hours.csv", "sector_ots.csv",
		"techs_per_ot.csv", "top_ots_cost.csv", "top_ots_hours.csv",
		"ticket_cost.csv", "ticket_hours.csv", "ticket_ots.csv",
		"avg_cost_per_ot.csv", "subject_cost.csv", "subject_tickets.csv", "subject_ots.csv",
	}
	for _, name := range expected {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoErrorf(t, err, "missing %s", name)
	}

	// Row order in series files is the ranking order.
	f, err := os.Open(filepath.Join(dir, "sector_cost.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"sector", "cost"}, records[0])
	assert.Equal(t, []string{"Eléctrica", "500"}, records[1])
	assert.Equal(t, []string{"Mecánica", "100"}, records[2])
}

func TestRunDateFilter(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "db.json")
	require.NoError(t, os.WriteFile(in, []byte(fixture), 0o644))
	dir := filepath.Join(tmp, "out")

	require.NoError(t, Run([]string{"-in", in, "-dir", dir, "-from", "2025-02-15"}))

	f, err := os.Open(filepath.Join(dir, "sector_cost.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Eléctrica", records[1][0])
}

func TestRunMissingInput(t *testing.T) {
	assert.Error(t, Run([]string{"-in", filepath.Join(t.TempDir(), "absent.json"), "-dir", t.TempDir()}))
}
