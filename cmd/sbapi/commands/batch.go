package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/smartbusiness/api2-go/internal/client"
	"github.com/smartbusiness/api2-go/internal/constants"
	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

// Static errors for err113 compliance.
var (
	ErrBatchFileRequired = errors.New("--from-file is required")
	ErrUnknownResource   = errors.New("unknown resource")
	ErrBatchIncomplete   = errors.New("some batch operations failed")
)

// batchEntry is one operation of a batch file.
type batchEntry struct {
	ID        string          `yaml:"id"`
	Resource  string          `yaml:"resource"`
	Operation sbapi.Operation `yaml:"operation"`
	Contact   int             `yaml:"contact"`
	ItemID    int             `yaml:"item_id"`
	IDs       []int           `yaml:"ids"`
	Payload   sbapi.Payload   `yaml:"payload"`
}

// batchSummary is the printable outcome of one operation.
type batchSummary struct {
	ID       string `json:"id"              yaml:"id"`
	Status   int    `json:"status"          yaml:"status"`
	Success  bool   `json:"success"         yaml:"success"`
	Duration string `json:"duration"        yaml:"duration"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand() *cobra.Command {
	var (
		file        string
		concurrency int
		timeout     time.Duration
		transaction bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run several operations from a file",
		Long: `Run the operations listed in a YAML or JSON file concurrently.

Each entry names a resource, an operation (list, get, create, update, delete)
and its arguments:

  - id: new-group
    resource: contact-groups
    operation: create
    payload: {name: VIP}
  - resource: addresses
    contact: 10
    operation: delete
    ids: [3, 4]

With --transaction, items created by the batch are deleted again when any
operation fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return ErrBatchFileRequired
			}

			entries, err := readBatchFile(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			apiClient, err := clientFactory(contextOf(cmd))
			if err != nil {
				return err
			}

			operations, err := buildBatchOperations(apiClient, entries)
			if err != nil {
				return err
			}

			executor := sbapi.NewBatchExecutor(concurrency)
			if timeout > 0 {
				executor.SetTimeout(timeout)
			}

			var results []sbapi.BatchResult

			if transaction {
				batch := sbapi.NewBatchTransaction(executor)
				for _, operation := range operations {
					batch.Add(operation)
				}

				results, err = batch.Execute(contextOf(cmd))
			} else {
				results, err = executor.Execute(contextOf(cmd), operations)
			}

			renderErr := renderBatchResults(cmd.OutOrStdout(), viper.GetString("output"), results)
			if err != nil {
				return err
			}

			if renderErr != nil {
				return renderErr
			}

			for _, result := range results {
				if !result.Success {
					return ErrBatchIncomplete
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "from-file", "f", "", "batch file (- for stdin)")
	cmd.Flags().IntVar(&concurrency, "concurrency", constants.DefaultBatchConcurrency, "operations run at once")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "timeout of each operation")
	cmd.Flags().BoolVar(&transaction, "transaction", false, "delete created items when an operation fails")

	return cmd
}

func readBatchFile(file string, stdin io.Reader) ([]batchEntry, error) {
	var (
		raw []byte
		err error
	)

	if file == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		// file is supplied by the user on the command line
		// #nosec G304
		raw, err = os.ReadFile(file)
	}

	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}

	var entries []batchEntry

	err = yaml.Unmarshal(raw, &entries)
	if err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}

	return entries, nil
}

// buildBatchOperations resolves the target resource of every entry.
func buildBatchOperations(apiClient sbapi.Client, entries []batchEntry) ([]sbapi.BatchOperation, error) {
	parents := make(map[string]bool)
	for _, def := range client.Definitions() {
		parents[def.Name] = def.Parent != ""
	}

	operations := make([]sbapi.BatchOperation, 0, len(entries))

	for index, entry := range entries {
		accessor, ok := resourceAccessors[entry.Resource]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownResource, entry.Resource)
		}

		if parents[entry.Resource] && entry.Contact <= 0 {
			return nil, fmt.Errorf("entry %d (%s): %w", index+1, entry.Resource, constants.ErrContactRequired)
		}

		id := entry.ID
		if id == "" {
			id = strconv.Itoa(index + 1)
		}

		operations = append(operations, sbapi.BatchOperation{
			ID:      id,
			Type:    entry.Operation,
			Target:  accessor(apiClient, entry.Contact),
			ItemID:  entry.ItemID,
			ItemIDs: entry.IDs,
			Payload: entry.Payload,
		})
	}

	return operations, nil
}

func renderBatchResults(out io.Writer, format string, results []sbapi.BatchResult) error {
	summaries := make([]batchSummary, 0, len(results))

	for _, result := range results {
		summary := batchSummary{
			ID:       result.ID,
			Success:  result.Success,
			Duration: result.Duration.Round(time.Millisecond).String(),
		}

		if result.Response != nil {
			summary.Status = result.Response.StatusCode()
		}

		if result.Error != nil {
			summary.Error = result.Error.Error()
		}

		summaries = append(summaries, summary)
	}

	if format != constants.FormatTable && format != "" {
		return renderValue(out, format, summaries)
	}

	table := tablewriter.NewWriter(out)
	table.Header("ID", "Status", "Success", "Duration", "Error")

	for _, summary := range summaries {
		status := constants.NotAvailable
		if summary.Status != 0 {
			status = strconv.Itoa(summary.Status)
		}

		_ = table.Append([]string{summary.ID, status, strconv.FormatBool(summary.Success), summary.Duration, summary.Error})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
