package dataset

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strconv"

	"gocer/domain/core"
	"gocer/domain/registry"
	"gocer/domain/sample"

	"gonum.org/v1/gonum/mat"
)

//go:embed data/iris.csv
var irisCSV []byte

// DefaultClassColumn is the header holding class names
const DefaultClassColumn = "species"

// Store is an in-memory data source. It is read-only after construction and safe
// for concurrent Get calls.
type Store struct {
	variables  []registry.Variable
	colIndex   map[registry.Variable]int
	classOrder []registry.Class
	rows       map[registry.Class][][]float64
	protocols  map[registry.Protocol]ProtocolDef
	logger     *slog.Logger
}

// LoadEmbedded loads the bundled Iris table with the default protocols
func LoadEmbedded(logger *slog.Logger) (*Store, error) {
	table, err := ReadCSV(bytes.NewReader(irisCSV))
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded iris data: %w", err)
	}
	return NewStore(table, DefaultClassColumn, DefaultProtocols(), logger)
}

// LoadFile loads a CSV or XLSX file with the default protocols
func LoadFile(path string, logger *slog.Logger) (*Store, error) {
	table, err := NewDataReader(path, logger).ReadData()
	if err != nil {
		return nil, err
	}
	return NewStore(table, DefaultClassColumn, DefaultProtocols(), logger)
}

// NewStore indexes a table by class. Every column other than classColumn must be
// numeric.
func NewStore(table *Table, classColumn string, protocols map[registry.Protocol]ProtocolDef, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	classColumn = NormalizeHeader(classColumn)

	for name, def := range protocols {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("protocol %q: %w", name, err)
		}
	}

	s := &Store{
		colIndex:  make(map[registry.Variable]int),
		rows:      make(map[registry.Class][][]float64),
		protocols: protocols,
		logger:    logger.With("component", "dataset"),
	}

	foundClass := false
	for _, h := range table.Headers {
		if h == classColumn {
			foundClass = true
			continue
		}
		v := registry.Variable(h)
		if _, dup := s.colIndex[v]; dup {
			return nil, fmt.Errorf("duplicate column %q", h)
		}
		s.colIndex[v] = len(s.variables)
		s.variables = append(s.variables, v)
	}
	if !foundClass {
		return nil, fmt.Errorf("class column %q not found in headers %v", classColumn, table.Headers)
	}

	for i, row := range table.Rows {
		class := registry.Class(row[classColumn])
		if class == "" {
			return nil, fmt.Errorf("row %d: empty class", i+2)
		}
		values := make([]float64, len(s.variables))
		for j, v := range s.variables {
			f, err := strconv.ParseFloat(row[string(v)], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", i+2, v, err)
			}
			values[j] = f
		}
		if _, ok := s.rows[class]; !ok {
			s.classOrder = append(s.classOrder, class)
		}
		s.rows[class] = append(s.rows[class], values)
	}

	s.logger.Debug("data source indexed",
		"variables", len(s.variables), "classes", len(s.classOrder), "rows", len(table.Rows))
	return s, nil
}

// Variables returns the numeric columns in file order
func (s *Store) Variables() []registry.Variable {
	return append([]registry.Variable(nil), s.variables...)
}

// Classes returns the classes in order of first appearance
func (s *Store) Classes() []registry.Class {
	return append([]registry.Class(nil), s.classOrder...)
}

// CheckRegistry verifies that every protocol, class and variable the registry
// names can be served.
func (s *Store) CheckRegistry(r *registry.Registry) error {
	for _, p := range r.Protocols() {
		if _, ok := s.protocols[p]; !ok {
			return core.NewDataUnavailableError(core.ErrUnknownProtocol, string(p))
		}
	}
	for _, c := range r.Classes() {
		if _, ok := s.rows[c]; !ok {
			return core.NewDataUnavailableError(core.ErrUnknownClass, string(c))
		}
	}
	for _, v := range r.Variables() {
		if _, ok := s.colIndex[v]; !ok {
			return core.NewDataUnavailableError(core.ErrUnknownVariable, string(v))
		}
	}
	return nil
}

// Get returns the requested columns of each class restricted to the protocol's
// split. A class with no samples in range yields an entry with a nil matrix.
func (s *Store) Get(ctx context.Context, protocol registry.Protocol, split registry.Split, classes []registry.Class, variables []registry.Variable) (*sample.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	def, ok := s.protocols[protocol]
	if !ok {
		return nil, core.NewDataUnavailableError(core.ErrUnknownProtocol, string(protocol))
	}
	rng, ok := def.Range(split)
	if !ok {
		return nil, core.NewDataUnavailableError(core.ErrUnknownSplit, string(split))
	}

	cols := make([]int, len(variables))
	for i, v := range variables {
		idx, ok := s.colIndex[v]
		if !ok {
			return nil, core.NewDataUnavailableError(core.ErrUnknownVariable, string(v))
		}
		cols[i] = idx
	}

	entries := make([]sample.Entry, 0, len(classes))
	for _, c := range classes {
		all, ok := s.rows[c]
		if !ok {
			return nil, core.NewDataUnavailableError(core.ErrUnknownClass, string(c))
		}

		lo, hi := clamp(rng.Start, len(all)), clamp(rng.End, len(all))
		entry := sample.Entry{Class: c}
		if hi > lo && len(cols) > 0 {
			x := mat.NewDense(hi-lo, len(cols), nil)
			for r := lo; r < hi; r++ {
				for j, col := range cols {
					x.Set(r-lo, j, all[r][col])
				}
			}
			entry.X = x
		}
		entries = append(entries, entry)
	}

	return sample.NewGroup(variables, entries)
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
