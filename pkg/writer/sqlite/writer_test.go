package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/TAGKey/pkg/calculation"
	"github.com/ChrisMcGann/TAGKey/pkg/config"
	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/distance"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
	"github.com/ChrisMcGann/TAGKey/pkg/indices"
	"github.com/ChrisMcGann/TAGKey/pkg/pipeline"
)

func replicate(name string, sn123, sn2 []float64) *frame.RawFrame {
	labels := []string{"16:0", "18:1Δ9c", "18:2Δ9c,12c"}
	f := &frame.RawFrame{Name: name, Pool: frame.PoolSN2}
	for i, label := range labels {
		f.Rows = append(f.Rows, frame.RawRow{
			Label:     label,
			FattyAcid: core.MustParseFattyAcid(label),
			SN123:     sn123[i],
			Partial:   sn2[i],
		})
	}
	return f
}

func analysis(t *testing.T, settings *config.Settings) *pipeline.Analysis {
	t.Helper()
	e, err := pipeline.New(pipeline.Options{})
	require.NoError(t, err)
	a, err := e.Analyze(context.Background(), []*frame.RawFrame{
		replicate("a", []float64{0.2, 0.5, 0.3}, []float64{0.02, 0.6, 0.38}),
		replicate("b", []float64{0.22, 0.48, 0.3}, []float64{0.03, 0.58, 0.39}),
	}, settings)
	require.NoError(t, err)
	return a
}

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestWriteAnalysis(t *testing.T) {
	settings := config.Default()
	a := analysis(t, settings)

	path := filepath.Join(t.TempDir(), "out.db")
	w, err := NewWriter(path)
	require.NoError(t, err)
	w.Description = "sunflower"
	w.Settings = settings
	require.NoError(t, w.WriteAnalysis(a))
	require.NoError(t, w.Finalize())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 3, count(t, db, "CalculationTable"))
	assert.Equal(t, len(a.Composition.Rows)*len(settings.Compositions), count(t, db, "CompositionTable"))
	assert.Equal(t, len(a.Composition.Triacylglycerols()), count(t, db, "SpeciesTable"))
	assert.Equal(t, (len(indices.Names())+len(indices.BiodieselNames()))*3, count(t, db, "IndexTable"))
	assert.Equal(t, 3, count(t, db, "FattyAcidPropertyTable"))
	assert.Equal(t, len(a.Properties.Triacylglycerols), count(t, db, "TriacylglycerolPropertyTable"))
	assert.Equal(t, 9, count(t, db, "CorrelationTable"))
	assert.Equal(t, len(distance.Metrics)*2*2, count(t, db, "DistanceTable"))
	assert.Equal(t, 1, count(t, db, "HeaderTable"))

	var (
		label  string
		mean   sql.NullFloat64
		sample []byte
	)
	require.NoError(t, db.QueryRow(
		"SELECT Label, SN123Mean, SN123Sample FROM CalculationTable WHERE RowId = 1",
	).Scan(&label, &mean, &sample))
	assert.Equal(t, "16:0", label)
	row := a.Calculation.Rows[0]
	assert.Equal(t, row.SN123.Mean, mean)
	assert.Equal(t, row.SN123.Sample, DecodeSample(sample))

	var (
		correlation sql.NullFloat64
		chaddock    string
	)
	require.NoError(t, db.QueryRow(
		"SELECT Correlation, Chaddock FROM CorrelationTable WHERE Label1 = ? AND Label2 = ?", "16:0", "16:0",
	).Scan(&correlation, &chaddock))
	assert.Equal(t, a.Correlations.Values[0][0], correlation)
	assert.Equal(t, calculation.Interpret(a.Correlations.Values[0][0]), chaddock)

	var distinct int
	require.NoError(t, db.QueryRow("SELECT COUNT(DISTINCT Metric) FROM DistanceTable").Scan(&distinct))
	assert.Equal(t, len(distance.Metrics), distinct)

	var description, version, encoded string
	require.NoError(t, db.QueryRow(
		"SELECT Description, SourceVersion, Settings FROM HeaderTable",
	).Scan(&description, &version, &encoded))
	assert.Equal(t, "sunflower", description)
	assert.Equal(t, pipeline.Version, version)
	assert.Contains(t, encoded, "method: VanderWal")
}

func TestSampleBlob(t *testing.T) {
	sample := []frame.Float{frame.Some(1.5), frame.Null, frame.Some(-2)}
	blob := encodeSample(sample)
	assert.Len(t, blob, 24)
	assert.Equal(t, sample, DecodeSample(blob))
	assert.Empty(t, DecodeSample(nil))
}

func TestNullsAreStoredAsNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nulls.db")
	w, err := NewWriter(path)
	require.NoError(t, err)

	calc := &frame.CalcFrame{Replicates: 1, Rows: []frame.CalcRow{{
		Label:     "16:0",
		FattyAcid: core.Saturated(16),
		SN123:     frame.Single(frame.Some(1)),
	}}}
	require.NoError(t, w.WriteCalculation(calc))
	require.NoError(t, w.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var deviation, enrichment sql.NullFloat64
	require.NoError(t, db.QueryRow(
		"SELECT SN123StandardDeviation, EnrichmentMean FROM CalculationTable",
	).Scan(&deviation, &enrichment))
	assert.False(t, deviation.Valid)
	assert.False(t, enrichment.Valid)
}
