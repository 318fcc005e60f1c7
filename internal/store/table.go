// Package store owns the tabular files the pipeline reads work from and
// writes outcomes into. Tables are comma-delimited with the canonical header
// zipcode,state,address,city; a row is pending while its address/city fields
// are empty. Shards never share an output file, so all writes here are
// single-writer full rewrites.
package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Header is the canonical column set for master and shard tables.
var Header = []string{"zipcode", "state", "address", "city"}

// Sentinel values persisted in place of an address when a unit did not
// resolve to a valid hit.
const (
	SentinelNotFound = "Not Found"
	SentinelError    = "Error"
)

// Status is the terminal classification of one work unit.
type Status string

const (
	StatusValid    Status = "valid"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// WorkUnit is one (zipcode, state) pair to resolve. Immutable once selected.
type WorkUnit struct {
	Zipcode string
	State   string
}

func (u WorkUnit) String() string {
	return u.Zipcode + "/" + u.State
}

// Outcome is the resolved result for one work unit. Produced once, never
// mutated; the store merges it into the owning row.
type Outcome struct {
	Unit        WorkUnit
	AddressLine string
	City        string
	Status      Status
	ErrorDetail string
}

// ResolvedFields returns the address/city cell values to persist, applying
// the sentinel values for non-valid outcomes.
func (o Outcome) ResolvedFields() (addr, city string) {
	switch o.Status {
	case StatusValid:
		return o.AddressLine, o.City
	case StatusNotFound:
		return SentinelNotFound, SentinelNotFound
	default:
		return SentinelError, SentinelError
	}
}

// Row is one persisted record.
type Row struct {
	Zipcode string
	State   string
	Address string
	City    string
}

// Pending reports whether the row still needs scraping.
func (r Row) Pending() bool {
	return strings.TrimSpace(r.Address) == "" || strings.TrimSpace(r.City) == ""
}

type rowKey struct{ zip, state string }

func keyOf(zip, state string) rowKey {
	return rowKey{zip: strings.TrimSpace(zip), state: strings.ToUpper(strings.TrimSpace(state))}
}

// Table is an in-memory copy of one table file. Mutations stay in memory
// until Save rewrites the file, which is what gives the runner its
// checkpoint-granular durability.
type Table struct {
	path  string
	rows  []Row
	index map[rowKey]int
}

// Load reads the table at path, creating a header-only file first when none
// exists. Malformed rows are repaired in memory the same way Repair does on
// disk: short rows are backfilled, rows without a usable key are dropped.
func Load(path string) (*Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeRows(path, nil); err != nil {
			return nil, fmt.Errorf("create table %s: %w", path, err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}

	t := &Table{path: path, rows: rows, index: make(map[rowKey]int, len(rows))}
	for i, r := range rows {
		t.index[keyOf(r.Zipcode, r.State)] = i
	}
	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns a copy of the data rows in file order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Lookup returns the row for a unit, if present.
func (t *Table) Lookup(u WorkUnit) (Row, bool) {
	i, ok := t.index[keyOf(u.Zipcode, u.State)]
	if !ok {
		return Row{}, false
	}
	return t.rows[i], true
}

// Upsert overwrites the address/city of the row owning the outcome's key.
// The row must already exist: the master table pre-owns every key, so a miss
// means the outcome belongs to another shard or a stale selection. It
// returns false on a miss and the outcome is dropped by the caller.
func (t *Table) Upsert(o Outcome) bool {
	i, ok := t.index[keyOf(o.Unit.Zipcode, o.Unit.State)]
	if !ok {
		return false
	}
	addr, city := o.ResolvedFields()
	t.rows[i].Address = addr
	t.rows[i].City = city
	return true
}

// Append adds a row for a unit not yet in the table with empty address/city.
// Used only while seeding a shard output table.
func (t *Table) Append(u WorkUnit) {
	k := keyOf(u.Zipcode, u.State)
	if _, ok := t.index[k]; ok {
		return
	}
	t.index[k] = len(t.rows)
	t.rows = append(t.rows, Row{Zipcode: strings.TrimSpace(u.Zipcode), State: strings.ToUpper(strings.TrimSpace(u.State))})
}

// Save rewrites the whole table file.
func (t *Table) Save() error {
	return writeRows(t.path, t.rows)
}

// Repair rewrites the table at path with the canonical header, short rows
// backfilled to four fields, and rows without a usable key dropped. Row
// order is preserved. Missing files become header-only tables.
func Repair(path string) error {
	t, err := Load(path)
	if err != nil {
		return err
	}
	return t.Save()
}

// Seed ensures the shard output table at path contains one pending row per
// selected unit, preserving rows already present from a previous run.
func Seed(path string, units []WorkUnit) (*Table, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		t.Append(u)
	}
	if err := t.Save(); err != nil {
		return nil, err
	}
	return t, nil
}

func readRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var rows []Row
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			if isHeader(rec) {
				continue
			}
		}
		row, ok := repairRecord(rec)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// isHeader recognizes both the 4-column canonical header and the 2-column
// zipcode,state master variant.
func isHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(rec[0]), "zipcode")
}

// repairRecord backfills short records to four fields and rejects records
// whose key is unusable.
func repairRecord(rec []string) (Row, bool) {
	fields := make([]string, 4)
	for i := 0; i < len(rec) && i < 4; i++ {
		fields[i] = strings.TrimSpace(rec[i])
	}
	if fields[0] == "" || fields[1] == "" {
		return Row{}, false
	}
	return Row{
		Zipcode: fields[0],
		State:   strings.ToUpper(fields[1]),
		Address: fields[2],
		City:    fields[3],
	}, true
}

func writeRows(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.Zipcode, r.State, r.Address, r.City}); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
