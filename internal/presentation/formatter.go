package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Format selects how results are rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates an output format name. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	format Format
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer, format Format) *Formatter {
	if format == "" {
		format = FormatTable
	}
	return &Formatter{
		writer: writer,
		format: format,
	}
}

// Format returns the formatter's output format.
func (f *Formatter) Format() Format {
	return f.format
}

// encode writes v as JSON or YAML. It reports false in table mode.
func (f *Formatter) encode(v any) (bool, error) {
	switch f.format {
	case FormatJSON:
		encoder := json.NewEncoder(f.writer)
		encoder.SetIndent("", "  ")
		return true, encoder.Encode(v)
	case FormatYAML:
		encoder := yaml.NewEncoder(f.writer)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return true, err
		}
		return true, encoder.Close()
	default:
		return false, nil
	}
}

func (f *Formatter) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(f.writer, format, args...)
	return err
}

// FormatAdded reports a registered datatype.
func (f *Formatter) FormatAdded(dto EntryDTO) error {
	if ok, err := f.encode(dto); ok {
		return err
	}
	if dto.Created {
		if err := f.printf("Created dataset %s\n", dto.Dataset); err != nil {
			return err
		}
	}
	return f.printf("Added %s to %s: %s\n", dto.Datatype, dto.Dataset, dto.Path)
}

// FormatPath prints a resolved path. In table mode only the path is printed so
// the output can be used in shell substitutions.
func (f *Formatter) FormatPath(dto EntryDTO) error {
	if ok, err := f.encode(dto); ok {
		return err
	}
	return f.printf("%s\n", dto.Path)
}

// FormatRemoved reports a removed datatype.
func (f *Formatter) FormatRemoved(dto EntryDTO) error {
	if ok, err := f.encode(dto); ok {
		return err
	}
	return f.printf("Removed %s from %s\n", dto.Datatype, dto.Dataset)
}

// FormatCreated reports an explicit dataset creation.
func (f *Formatter) FormatCreated(dto CreateDTO) error {
	if ok, err := f.encode(dto); ok {
		return err
	}
	if !dto.Created {
		return f.printf("Dataset %s already exists at %s\n", dto.Dataset, dto.ConfigPath)
	}
	return f.printf("Created dataset %s from template %s at %s\n", dto.Dataset, dto.Template, dto.ConfigPath)
}

// FormatCleared reports a cleared dataset.
func (f *Formatter) FormatCleared(dto ClearDTO) error {
	if ok, err := f.encode(dto); ok {
		return err
	}
	return f.printf("Cleared %d datatype(s) from %s\n", len(dto.Removed), dto.Dataset)
}

// FormatDatatypes lists a dataset's datatypes, one per line.
func (f *Formatter) FormatDatatypes(dto DatatypesDTO) error {
	if ok, err := f.encode(dto); ok {
		return err
	}
	return f.printf("%s\n", strings.Join(dto.Datatypes, "\n"))
}

// FormatTemplates lists the bundled template names.
func (f *Formatter) FormatTemplates(names []string) error {
	if names == nil {
		names = []string{}
	}
	if ok, err := f.encode(map[string][]string{"templates": names}); ok {
		return err
	}
	if len(names) == 0 {
		return f.printf("%s\n", mutedStyle.Render("No templates"))
	}
	return f.printf("%s\n", strings.Join(names, "\n"))
}

// FormatOverview renders every dataset with its entries. Table mode prints one
// row per entry; datasets without data get a single placeholder row.
func (f *Formatter) FormatOverview(dtos []DatasetDTO) error {
	if dtos == nil {
		dtos = []DatasetDTO{}
	}
	if ok, err := f.encode(dtos); ok {
		return err
	}
	if len(dtos) == 0 {
		return f.printf("%s\n", mutedStyle.Render("No datasets registered"))
	}

	rows := make([][]string, 0, len(dtos))
	for _, d := range dtos {
		if len(d.Datatypes) == 0 {
			rows = append(rows, []string{d.Name, "-", "-"})
			continue
		}
		for _, dt := range d.Datatypes {
			rows = append(rows, []string{d.Name, dt, d.Data[dt]})
		}
	}
	return f.printf("%s\n", renderTable([]string{"DATASET", "DATATYPE", "PATH"}, rows))
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}
