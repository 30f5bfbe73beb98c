package hackathon

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrMissingColumns is returned for CSV input without a title or a
// description column.
var ErrMissingColumns = errors.New("missing required columns")

var columnAliases = map[string]string{
	"desc": "description",
	"name": "title",
}

// csvRow mirrors the columns of a hackathon CSV file. List columns hold
// comma separated values.
type csvRow struct {
	Title        string `mapstructure:"title"`
	Description  string `mapstructure:"description"`
	Requirements string `mapstructure:"requirements"`
	Prize        string `mapstructure:"prize"`
	Criteria     string `mapstructure:"criteria"`
	Deadline     string `mapstructure:"deadline"`
	Keywords     string `mapstructure:"keywords"`
	URL          string `mapstructure:"url"`
}

func LoadCSV(path string) (*Hackathons, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hackathons csv: %w", err)
	}
	defer file.Close()

	hackathons, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return hackathons, nil
}

// ReadCSV parses hackathons from CSV with a header row. Header names are
// case-insensitive; "desc" and "name" stand in for missing "description" and
// "title" columns. Rows without a title or description are dropped, as are
// repeated (title, description) pairs.
func ReadCSV(r io.Reader) (*Hackathons, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := normalizeHeader(header)
	if missing := missingColumns(columns); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	hackathons := &Hackathons{}
	seen := make(map[[2]string]struct{})

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		values := make(map[string]string, len(columns))
		for i, column := range columns {
			if column == "" || i >= len(record) {
				continue
			}
			values[column] = strings.TrimSpace(record[i])
		}

		var row csvRow
		if err := mapstructure.Decode(values, &row); err != nil {
			return nil, fmt.Errorf("decode line %d: %w", line, err)
		}

		if row.Title == "" || row.Description == "" {
			continue
		}

		key := [2]string{row.Title, row.Description}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		hackathons.Items = append(hackathons.Items, row.toHackathon())
	}

	return hackathons, nil
}

func (r csvRow) toHackathon() *Hackathon {
	h := &Hackathon{
		Title:        r.Title,
		Description:  r.Description,
		Requirements: splitList(r.Requirements),
		Prize:        r.Prize,
		Criteria:     r.Criteria,
		Deadline:     r.Deadline,
		Keywords:     splitList(r.Keywords),
		URL:          r.URL,
	}
	applyDefaults(h)
	return h
}

func applyDefaults(h *Hackathon) {
	if h.Prize == "" {
		h.Prize = DefaultPrize
	}
	if h.Deadline == "" {
		h.Deadline = DefaultDeadline
	}
	if h.Requirements == nil {
		h.Requirements = []string{}
	}
	if h.Keywords == nil {
		h.Keywords = []string{}
	}
}

func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	present := make(map[string]bool, len(header))
	for i, name := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(name))
		present[columns[i]] = true
	}

	for i, name := range columns {
		if canonical, ok := columnAliases[name]; ok && !present[canonical] {
			columns[i] = canonical
			present[canonical] = true
		}
	}

	// Keep the first occurrence of a repeated column.
	taken := make(map[string]bool, len(columns))
	for i, name := range columns {
		if taken[name] {
			columns[i] = ""
			continue
		}
		taken[name] = true
	}

	return columns
}

func missingColumns(columns []string) []string {
	var missing []string
	for _, required := range []string{"title", "description"} {
		found := false
		for _, c := range columns {
			if c == required {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, required)
		}
	}
	return missing
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
