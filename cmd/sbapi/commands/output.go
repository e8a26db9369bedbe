package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/smartbusiness/api2-go/internal/constants"
	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

func isOutputFormat(format string) bool {
	return slices.Contains([]string{constants.FormatTable, constants.FormatJSON, constants.FormatYAML}, format)
}

// renderResponse writes the response body in the configured output format,
// after applying --query when one is given.
func renderResponse(cmd *cobra.Command, resp *sbapi.Response) error {
	out := cmd.OutOrStdout()

	if resp == nil || resp.IsEmpty() {
		_, _ = fmt.Fprintln(out, "OK")

		return nil
	}

	var (
		data any
		err  error
	)

	if query := viper.GetString("query"); query != "" {
		data, err = resp.Search(query)
	} else {
		err = resp.Decode(&data)
	}

	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	return renderValue(out, viper.GetString("output"), data)
}

func renderValue(out io.Writer, format string, data any) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(data)
	case constants.FormatYAML:
		return yaml.NewEncoder(out).Encode(data)
	case constants.FormatTable, "":
		return renderTable(out, data)
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, format)
	}
}

func renderTable(out io.Writer, data any) error {
	switch value := data.(type) {
	case map[string]any:
		return renderObject(out, value)
	case []any:
		if rows, ok := objectRows(value); ok {
			return renderRows(out, rows)
		}

		for _, item := range value {
			_, _ = fmt.Fprintln(out, formatCell(item))
		}

		return nil
	default:
		_, _ = fmt.Fprintln(out, formatCell(value))

		return nil
	}
}

func renderObject(out io.Writer, object map[string]any) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	for _, key := range sortedKeys(object) {
		_ = table.Append([]string{key, formatCell(object[key])})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func renderRows(out io.Writer, rows []map[string]any) error {
	seen := make(map[string]bool)

	var columns []string

	for _, row := range rows {
		for _, key := range sortedKeys(row) {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}

	// id first, the rest alphabetically
	sort.SliceStable(columns, func(i, j int) bool {
		return columns[i] == "id" && columns[j] != "id"
	})

	headers := make([]any, len(columns))
	for i, column := range columns {
		headers[i] = column
	}

	table := tablewriter.NewWriter(out)
	table.Header(headers...)

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, column := range columns {
			cells[i] = formatCell(row[column])
		}

		_ = table.Append(cells)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// objectRows returns items as objects when every item is one.
func objectRows(items []any) ([]map[string]any, bool) {
	if len(items) == 0 {
		return nil, false
	}

	rows := make([]map[string]any, 0, len(items))

	for _, item := range items {
		row, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}

		rows = append(rows, row)
	}

	return rows, true
}

func sortedKeys(object map[string]any) []string {
	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func formatCell(value any) string {
	var text string

	switch v := value.(type) {
	case nil:
		return ""
	case string:
		text = v
	case bool:
		text = strconv.FormatBool(v)
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return constants.NotAvailable
		}

		text = string(encoded)
	}

	return truncate(text, constants.StringTruncationLength)
}

func truncate(text string, length int) string {
	runes := []rune(text)
	if len(runes) <= length {
		return text
	}

	return string(runes[:length-3]) + "..."
}
