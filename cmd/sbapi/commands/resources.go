package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartbusiness/api2-go/internal/client"
	"github.com/smartbusiness/api2-go/internal/constants"
	"github.com/smartbusiness/api2-go/internal/endpoint"
	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

// clientFactory creates the API client used by resource commands.
var clientFactory = CreateClient

// resourceAccessors return the resource named by a definition. Contact-scoped
// resources are bound to contactID.
var resourceAccessors = map[string]func(c sbapi.Client, contactID int) any{
	client.ResourceUnits:         func(c sbapi.Client, _ int) any { return c.Units() },
	client.ResourceBankAccounts:  func(c sbapi.Client, _ int) any { return c.BankAccounts() },
	client.ResourceExchangeRates: func(c sbapi.Client, _ int) any { return c.ExchangeRates() },
	client.ResourceContactGroups: func(c sbapi.Client, _ int) any { return c.ContactGroups() },
	client.ResourceContacts:      func(c sbapi.Client, _ int) any { return c.Contacts() },
	client.ResourceAddresses: func(c sbapi.Client, contactID int) any {
		addresses := c.Addresses()
		addresses.SetContactID(contactID)

		return addresses
	},
	client.ResourcePeople: func(c sbapi.Client, contactID int) any {
		people := c.People()
		people.SetContactID(contactID)

		return people
	},
}

var resourceDescriptions = map[string]string{
	client.ResourceUnits:         "catalog units",
	client.ResourceBankAccounts:  "bank accounts",
	client.ResourceExchangeRates: "exchange rates",
	client.ResourceContactGroups: "contact groups",
	client.ResourceContacts:      "contacts",
	client.ResourceAddresses:     "addresses of a contact",
	client.ResourcePeople:        "people of a contact",
}

// NewResourceCommands creates one command per API resource with a subcommand
// per supported operation.
func NewResourceCommands() []*cobra.Command {
	definitions := client.Definitions()
	commands := make([]*cobra.Command, 0, len(definitions))

	for _, def := range definitions {
		commands = append(commands, newResourceCommand(def))
	}

	return commands
}

func newResourceCommand(def *endpoint.Definition) *cobra.Command {
	description := resourceDescriptions[def.Name]

	cmd := &cobra.Command{
		Use:   def.Name,
		Short: "Manage " + description,
		Long:  "List, show, create, update and delete " + description + " (as supported by the API)",
	}

	if def.Parent != "" {
		cmd.PersistentFlags().Int("contact", 0, "ID of the contact the resource belongs to (required)")
	}

	for _, op := range def.Capabilities() {
		switch op {
		case sbapi.OperationList:
			cmd.AddCommand(newListCommand(def))
		case sbapi.OperationGet:
			cmd.AddCommand(newGetCommand(def))
		case sbapi.OperationCreate:
			cmd.AddCommand(newCreateCommand(def))
		case sbapi.OperationUpdate:
			cmd.AddCommand(newUpdateCommand(def))
		case sbapi.OperationDelete:
			cmd.AddCommand(newDeleteCommand(def))
		}
	}

	return cmd
}

// resolveResource creates a client and returns the resource of def.
func resolveResource(cmd *cobra.Command, def *endpoint.Definition) (any, error) {
	contactID := 0

	if def.Parent != "" {
		value, err := cmd.Flags().GetInt("contact")
		if err != nil || value <= 0 {
			return nil, constants.ErrContactRequired
		}

		contactID = value
	}

	apiClient, err := clientFactory(contextOf(cmd))
	if err != nil {
		return nil, err
	}

	accessor, ok := resourceAccessors[def.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", sbapi.ErrUnsupportedOperation, def.Name)
	}

	return accessor(apiClient, contactID), nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

func newListCommand(def *endpoint.Definition) *cobra.Command {
	var (
		page    int
		perPage int
		sort    []string
		fields  []string
		filters []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + resourceDescriptions[def.Name],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := sbapi.NewListParameters().
				WithPage(page).
				WithPerPage(perPage).
				WithSort(sort...).
				WithFields(fields...)

			for _, filter := range filters {
				key, value, ok := strings.Cut(filter, "=")
				if !ok || key == "" {
					return fmt.Errorf("%w: %q", constants.ErrInvalidFilter, filter)
				}

				params.WithFilter(key, value)
			}

			resource, err := resolveResource(cmd, def)
			if err != nil {
				return err
			}

			lister, ok := resource.(sbapi.Lister)
			if !ok {
				return fmt.Errorf("%w: list %s", sbapi.ErrUnsupportedOperation, def.Name)
			}

			resp, err := lister.List(contextOf(cmd), params)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", def.Name, err)
			}

			return renderResponse(cmd, resp)
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", constants.StandardPageSize, "results per page")
	cmd.Flags().StringSliceVar(&sort, "sort", nil, "sort keys, prefix with - for descending order")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "fields to return")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "filter as key=value (repeatable)")

	return cmd
}

func newGetCommand(def *endpoint.Definition) *cobra.Command {
	var (
		fields []string
		expand []string
	)

	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show one of the " + resourceDescriptions[def.Name],
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			resource, err := resolveResource(cmd, def)
			if err != nil {
				return err
			}

			getter, ok := resource.(sbapi.Getter)
			if !ok {
				return fmt.Errorf("%w: get %s", sbapi.ErrUnsupportedOperation, def.Name)
			}

			params := sbapi.NewGetParameters().WithFields(fields...).WithExpand(expand...)

			resp, err := getter.Get(contextOf(cmd), id, params)
			if err != nil {
				return fmt.Errorf("failed to get %s %d: %w", def.Name, id, err)
			}

			return renderResponse(cmd, resp)
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "fields to return")
	cmd.Flags().StringSliceVar(&expand, "expand", nil, "related objects to embed")

	return cmd
}

func newCreateCommand(def *endpoint.Definition) *cobra.Command {
	var data, file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create one of the " + resourceDescriptions[def.Name],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(data, file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			resource, err := resolveResource(cmd, def)
			if err != nil {
				return err
			}

			creator, ok := resource.(sbapi.Creator)
			if !ok {
				return fmt.Errorf("%w: create %s", sbapi.ErrUnsupportedOperation, def.Name)
			}

			resp, err := creator.Create(contextOf(cmd), payload)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", def.Name, err)
			}

			return renderResponse(cmd, resp)
		},
	}

	addPayloadFlags(cmd, &data, &file)

	return cmd
}

func newUpdateCommand(def *endpoint.Definition) *cobra.Command {
	var data, file string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update one of the " + resourceDescriptions[def.Name],
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			payload, err := readPayload(data, file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			resource, err := resolveResource(cmd, def)
			if err != nil {
				return err
			}

			updater, ok := resource.(sbapi.Updater)
			if !ok {
				return fmt.Errorf("%w: update %s", sbapi.ErrUnsupportedOperation, def.Name)
			}

			resp, err := updater.Update(contextOf(cmd), id, payload)
			if err != nil {
				return fmt.Errorf("failed to update %s %d: %w", def.Name, id, err)
			}

			return renderResponse(cmd, resp)
		},
	}

	addPayloadFlags(cmd, &data, &file)

	return cmd
}

func newDeleteCommand(def *endpoint.Definition) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID [ID...]",
		Short: "Delete " + resourceDescriptions[def.Name],
		Long:  "Delete one or more items in a single request. IDs may be separated by spaces or commas.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			resource, err := resolveResource(cmd, def)
			if err != nil {
				return err
			}

			deleter, ok := resource.(sbapi.Deleter)
			if !ok {
				return fmt.Errorf("%w: delete %s", sbapi.ErrUnsupportedOperation, def.Name)
			}

			resp, err := deleter.Delete(contextOf(cmd), ids)
			if err != nil {
				return fmt.Errorf("failed to delete %s: %w", def.Name, err)
			}

			return renderResponse(cmd, resp)
		},
	}
}

func addPayloadFlags(cmd *cobra.Command, data, file *string) {
	cmd.Flags().StringVarP(data, "data", "d", "", "payload as a JSON or YAML object")
	cmd.Flags().StringVarP(file, "from-file", "f", "", "read the payload from a file (- for stdin)")
	cmd.MarkFlagsMutuallyExclusive("data", "from-file")
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", constants.ErrInvalidID, raw)
	}

	return id, nil
}

func parseIDs(args []string) ([]int, error) {
	var ids []int

	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}

			id, err := parseID(part)
			if err != nil {
				return nil, err
			}

			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no ids given", constants.ErrInvalidID)
	}

	return ids, nil
}
