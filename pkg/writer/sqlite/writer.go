// Package sqlite provides SQLite database writing for analysis results
package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/TAGKey/pkg/calculation"
	"github.com/ChrisMcGann/TAGKey/pkg/config"
	"github.com/ChrisMcGann/TAGKey/pkg/distance"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
	"github.com/ChrisMcGann/TAGKey/pkg/indices"
	"github.com/ChrisMcGann/TAGKey/pkg/pipeline"
	"github.com/ChrisMcGann/TAGKey/pkg/properties"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"
	// Schema version written to HeaderTable
	schemaVersion = 1
)

// Writer handles writing analysis frames to SQLite database files
type Writer struct {
	db         *sql.DB
	outputPath string

	calculationStmt *sql.Stmt
	compositionStmt *sql.Stmt
	speciesStmt     *sql.Stmt
	indexStmt       *sql.Stmt
	fattyAcidStmt   *sql.Stmt
	tagStmt         *sql.Stmt
	correlationStmt *sql.Stmt
	distanceStmt    *sql.Stmt

	rowID     int
	speciesID int

	// Header fields written by Finalize.
	Description string
	Settings    *config.Settings
}

// NewWriter creates a new SQLite writer
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		rowID:      1,
		speciesID:  1,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS CalculationTable (
		RowId INTEGER PRIMARY KEY,
		Label TEXT NOT NULL,
		FattyAcid TEXT NOT NULL,
		Standard BOOL,
		Threshold BOOL,
		SN123Mean DOUBLE,
		SN123StandardDeviation DOUBLE,
		SN123Sample BLOB,
		SN13Mean DOUBLE,
		SN13StandardDeviation DOUBLE,
		SN13Sample BLOB,
		SN2Mean DOUBLE,
		SN2StandardDeviation DOUBLE,
		SN2Sample BLOB,
		EnrichmentMean DOUBLE,
		EnrichmentStandardDeviation DOUBLE,
		SelectivityMean DOUBLE,
		SelectivityStandardDeviation DOUBLE
	);

	CREATE TABLE IF NOT EXISTS CompositionTable (
		CompositionId INTEGER NOT NULL,
		Level INTEGER NOT NULL,
		Scheme TEXT NOT NULL,
		Key TEXT NOT NULL,
		Threshold BOOL,
		Mean DOUBLE,
		StandardDeviation DOUBLE,
		Sample BLOB,
		PRIMARY KEY (CompositionId, Level)
	);

	CREATE TABLE IF NOT EXISTS SpeciesTable (
		SpeciesId INTEGER PRIMARY KEY,
		CompositionId INTEGER,
		SN1 TEXT,
		SN2 TEXT,
		SN3 TEXT,
		Triacylglycerol TEXT,
		Threshold BOOL,
		Mean DOUBLE,
		StandardDeviation DOUBLE,
		Sample BLOB
	);

	CREATE TABLE IF NOT EXISTS IndexTable (
		Name TEXT NOT NULL,
		Kind TEXT NOT NULL,
		Position TEXT NOT NULL,
		Mean DOUBLE,
		StandardDeviation DOUBLE,
		Sample BLOB,
		PRIMARY KEY (Name, Position)
	);

	CREATE TABLE IF NOT EXISTS FattyAcidPropertyTable (
		Label TEXT NOT NULL,
		FattyAcid TEXT NOT NULL,
		MolarRefraction DOUBLE,
		MolarVolume DOUBLE,
		RefractiveIndex DOUBLE,
		Viscosity DOUBLE,
		Temperature DOUBLE
	);

	CREATE TABLE IF NOT EXISTS TriacylglycerolPropertyTable (
		Triacylglycerol TEXT NOT NULL,
		Label TEXT,
		Viscosity DOUBLE,
		Temperature DOUBLE,
		Polymorph TEXT,
		MeltingEnthalpy DOUBLE,
		MeltingPoint DOUBLE
	);

	CREATE TABLE IF NOT EXISTS CorrelationTable (
		Label1 TEXT NOT NULL,
		Label2 TEXT NOT NULL,
		Method TEXT NOT NULL,
		Position TEXT NOT NULL,
		Correlation DOUBLE,
		Chaddock TEXT,
		PRIMARY KEY (Label1, Label2)
	);

	CREATE TABLE IF NOT EXISTS DistanceTable (
		Metric TEXT NOT NULL,
		Position TEXT NOT NULL,
		Replicate1 INTEGER NOT NULL,
		Replicate2 INTEGER NOT NULL,
		Value DOUBLE,
		PRIMARY KEY (Metric, Replicate1, Replicate2)
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		Description TEXT,
		SourceVersion TEXT,
		Settings TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	statements := []struct {
		name  string
		stmt  **sql.Stmt
		query string
	}{
		{"calculation", &w.calculationStmt, `
			INSERT INTO CalculationTable (
				RowId, Label, FattyAcid, Standard, Threshold,
				SN123Mean, SN123StandardDeviation, SN123Sample,
				SN13Mean, SN13StandardDeviation, SN13Sample,
				SN2Mean, SN2StandardDeviation, SN2Sample,
				EnrichmentMean, EnrichmentStandardDeviation,
				SelectivityMean, SelectivityStandardDeviation
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`},
		{"composition", &w.compositionStmt, `
			INSERT INTO CompositionTable (
				CompositionId, Level, Scheme, Key, Threshold, Mean, StandardDeviation, Sample
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`},
		{"species", &w.speciesStmt, `
			INSERT INTO SpeciesTable (
				SpeciesId, CompositionId, SN1, SN2, SN3, Triacylglycerol,
				Threshold, Mean, StandardDeviation, Sample
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`},
		{"index", &w.indexStmt, `
			INSERT INTO IndexTable (Name, Kind, Position, Mean, StandardDeviation, Sample)
			VALUES (?, ?, ?, ?, ?, ?)`},
		{"fatty acid property", &w.fattyAcidStmt, `
			INSERT INTO FattyAcidPropertyTable (
				Label, FattyAcid, MolarRefraction, MolarVolume, RefractiveIndex, Viscosity, Temperature
			) VALUES (?, ?, ?, ?, ?, ?, ?)`},
		{"triacylglycerol property", &w.tagStmt, `
			INSERT INTO TriacylglycerolPropertyTable (
				Triacylglycerol, Label, Viscosity, Temperature, Polymorph, MeltingEnthalpy, MeltingPoint
			) VALUES (?, ?, ?, ?, ?, ?, ?)`},
		{"correlation", &w.correlationStmt, `
			INSERT INTO CorrelationTable (Label1, Label2, Method, Position, Correlation, Chaddock)
			VALUES (?, ?, ?, ?, ?, ?)`},
		{"distance", &w.distanceStmt, `
			INSERT INTO DistanceTable (Metric, Position, Replicate1, Replicate2, Value)
			VALUES (?, ?, ?, ?, ?)`},
	}

	for _, s := range statements {
		stmt, err := w.db.Prepare(s.query)
		if err != nil {
			return fmt.Errorf("failed to prepare %s statement: %w", s.name, err)
		}
		*s.stmt = stmt
	}
	return nil
}

// WriteCalculation writes every row of a calculation frame
func (w *Writer) WriteCalculation(calc *frame.CalcFrame) error {
	for i, row := range calc.Rows {
		_, err := w.calculationStmt.Exec(
			i+1,                               // RowId
			row.Label,                         // Label
			row.FattyAcid.String(),            // FattyAcid
			row.Standard.Mask,                 // Standard
			row.Threshold,                     // Threshold
			row.SN123.Mean,                    // SN123Mean
			row.SN123.StandardDeviation,       // SN123StandardDeviation
			encodeSample(row.SN123.Sample),    // SN123Sample
			row.SN13.Mean,                     // SN13Mean
			row.SN13.StandardDeviation,        // SN13StandardDeviation
			encodeSample(row.SN13.Sample),     // SN13Sample
			row.SN2.Mean,                      // SN2Mean
			row.SN2.StandardDeviation,         // SN2StandardDeviation
			encodeSample(row.SN2.Sample),      // SN2Sample
			row.Enrichment.Mean,               // EnrichmentMean
			row.Enrichment.StandardDeviation,  // EnrichmentStandardDeviation
			row.Selectivity.Mean,              // SelectivityMean
			row.Selectivity.StandardDeviation, // SelectivityStandardDeviation
		)
		if err != nil {
			return fmt.Errorf("failed to insert calculation row %q: %w", row.Label, err)
		}
	}
	return nil
}

// WriteComposition writes every composition row with one entry per scheme
// level and the species it groups
func (w *Writer) WriteComposition(comp *frame.CompFrame) error {
	for _, row := range comp.Rows {
		id := w.rowID
		for level, scheme := range comp.Schemes {
			value := row.Values[level]
			_, err := w.compositionStmt.Exec(
				id,
				level,
				scheme.Code(),
				row.Keys[level].String(),
				row.Threshold,
				value.Mean,
				value.StandardDeviation,
				encodeSample(value.Sample),
			)
			if err != nil {
				return fmt.Errorf("failed to insert composition row %d: %w", id, err)
			}
		}

		for _, sp := range row.Species {
			_, err := w.speciesStmt.Exec(
				w.speciesID,
				id,
				sp.Label[0],
				sp.Label[1],
				sp.Label[2],
				sp.Triacylglycerol.String(),
				sp.Threshold,
				sp.Value.Mean,
				sp.Value.StandardDeviation,
				encodeSample(sp.Value.Sample),
			)
			if err != nil {
				return fmt.Errorf("failed to insert species %s: %w", sp.Triacylglycerol, err)
			}
			w.speciesID++
		}
		w.rowID++
	}
	return nil
}

// WriteIndices writes indices and biodiesel properties for every position
func (w *Writer) WriteIndices(idx *indices.Frame) error {
	groups := []struct {
		kind string
		list []indices.Index
	}{
		{"index", idx.Indices},
		{"biodiesel", idx.Biodiesel},
	}
	for _, g := range groups {
		for _, index := range g.list {
			for _, p := range frame.Positions {
				cell := index.Get(p)
				_, err := w.indexStmt.Exec(
					index.Name, g.kind, p.String(),
					cell.Mean, cell.StandardDeviation, encodeSample(cell.Sample),
				)
				if err != nil {
					return fmt.Errorf("failed to insert index %s: %w", index.Name, err)
				}
			}
		}
	}
	return nil
}

// WriteProperties writes fatty acid and triacylglycerol property predictions
func (w *Writer) WriteProperties(props *properties.Frame) error {
	for _, fa := range props.FattyAcids {
		_, err := w.fattyAcidStmt.Exec(
			fa.Label,
			fa.FattyAcid.String(),
			frame.Some(fa.Hammond.MolarRefraction),
			frame.Some(fa.Hammond.MolarVolume),
			frame.Some(fa.Hammond.RefractiveIndex),
			frame.Some(fa.Viscosity),
			props.Temperature,
		)
		if err != nil {
			return fmt.Errorf("failed to insert fatty acid property %q: %w", fa.Label, err)
		}
	}
	for _, tag := range props.Triacylglycerols {
		_, err := w.tagStmt.Exec(
			tag.Triacylglycerol.String(),
			strings.Join(tag.Label[:], "/"),
			frame.Some(tag.Viscosity),
			props.Temperature,
			string(tag.Melting.Polymorph),
			frame.Some(tag.Melting.Enthalpy),
			frame.Some(tag.Melting.Temperature),
		)
		if err != nil {
			return fmt.Errorf("failed to insert triacylglycerol property %s: %w", tag.Triacylglycerol, err)
		}
	}
	return nil
}

// WriteCorrelations writes every cell of a correlation matrix with its
// Chaddock interpretation
func (w *Writer) WriteCorrelations(corrs *calculation.Correlations) error {
	for i, row := range corrs.Values {
		for j, r := range row {
			_, err := w.correlationStmt.Exec(
				corrs.Labels[i],
				corrs.Labels[j],
				string(corrs.Method),
				corrs.Position.String(),
				r,
				calculation.Interpret(r),
			)
			if err != nil {
				return fmt.Errorf("failed to insert correlation %s/%s: %w", corrs.Labels[i], corrs.Labels[j], err)
			}
		}
	}
	return nil
}

// WriteDistances writes every metric between every pair of replicates.
// Replicates are numbered from 1.
func (w *Writer) WriteDistances(dists *distance.Frame) error {
	for _, matrix := range dists.Matrices {
		for i, row := range matrix.Values {
			for j, v := range row {
				_, err := w.distanceStmt.Exec(string(matrix.Metric), dists.Position.String(), i+1, j+1, v)
				if err != nil {
					return fmt.Errorf("failed to insert %s: %w", matrix.Metric, err)
				}
			}
		}
	}
	return nil
}

// WriteAnalysis writes every frame of a pipeline run. Nil frames are skipped.
func (w *Writer) WriteAnalysis(a *pipeline.Analysis) error {
	if a.Calculation != nil {
		if err := w.WriteCalculation(a.Calculation); err != nil {
			return err
		}
	}
	if a.Composition != nil {
		if err := w.WriteComposition(a.Composition); err != nil {
			return err
		}
	}
	if a.Indices != nil {
		if err := w.WriteIndices(a.Indices); err != nil {
			return err
		}
	}
	if a.Properties != nil {
		if err := w.WriteProperties(a.Properties); err != nil {
			return err
		}
	}
	if a.Correlations != nil {
		if err := w.WriteCorrelations(a.Correlations); err != nil {
			return err
		}
	}
	if a.Distances != nil {
		if err := w.WriteDistances(a.Distances); err != nil {
			return err
		}
	}
	return nil
}

// encodeSample encodes replicate values as a little-endian float64 blob.
// Null values are stored as NaN.
func encodeSample(sample []frame.Float) []byte {
	buf := make([]byte, len(sample)*8)
	for i, v := range sample {
		value := math.NaN()
		if v.Valid {
			value = v.Float64
		}
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(value))
	}
	return buf
}

// DecodeSample reverses encodeSample.
func DecodeSample(blob []byte) []frame.Float {
	out := make([]frame.Float, len(blob)/8)
	for i := range out {
		out[i] = frame.Some(math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:])))
	}
	return out
}

// Finalize writes the header table and closes the database
func (w *Writer) Finalize() error {
	var settings string
	if w.Settings != nil {
		var buf bytes.Buffer
		if err := w.Settings.Encode(&buf); err != nil {
			return fmt.Errorf("failed to encode settings: %w", err)
		}
		settings = buf.String()
	}

	_, err := w.db.Exec(`
		INSERT INTO HeaderTable (version, CreationDate, Description, SourceVersion, Settings)
		VALUES (?, ?, ?, ?, ?)
	`, schemaVersion, time.Now().Format(headerDateFormat), w.Description, pipeline.Version, settings)
	if err != nil {
		return fmt.Errorf("failed to insert header: %w", err)
	}

	// Close prepared statements
	for _, stmt := range []*sql.Stmt{
		w.calculationStmt, w.compositionStmt, w.speciesStmt,
		w.indexStmt, w.fattyAcidStmt, w.tagStmt,
		w.correlationStmt, w.distanceStmt,
	} {
		if stmt != nil {
			stmt.Close()
		}
	}

	// Close database
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}
