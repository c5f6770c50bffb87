package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/abgdnv/inventory/internal/record"
	"github.com/abgdnv/inventory/internal/report"
	"github.com/abgdnv/inventory/internal/service"
	"github.com/spf13/cobra"
)

func newDisplayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "display <kind>",
		Aliases: []string{"list"},
		Short:   "Print the records of an inventory",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			list, err := s.svc.List(cmd.Context(), kind, 0, 0)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			records := make([]record.Record, len(list))
			for i, r := range list {
				records[i] = record.Record{ID: r.ID, Name: r.Name, Quantity: r.Quantity, Price: r.Price}
			}
			return report.WriteTable(cmd.OutOrStdout(), records)
		},
	}
}

func newReportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "report <kind>",
		Short: "Print the value report of an inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			rep, err := s.svc.Report(cmd.Context(), kind, time.Now())
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			return report.WriteReport(cmd.OutOrStdout(), *rep)
		},
	}
}

func newAddCmd(opts *options) *cobra.Command {
	var dto service.RecordCreateDto
	cmd := &cobra.Command{
		Use:   "add <kind>",
		Short: "Add a record (admin)",
		Long: `Add a record with the next free id.

Examples:
  inventoryctl add raw_material --name "Linen" --quantity 40 --price 310.50`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			created, err := s.svc.Add(cmd.Context(), s.role, kind, dto)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), created)
			}
			printf(cmd.OutOrStdout(), "%s added with ID %d.\n", kind.Title(), created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&dto.Name, "name", "", "record name (required)")
	cmd.Flags().IntVar(&dto.Quantity, "quantity", 0, "quantity, greater than 0 (required)")
	cmd.Flags().Float64Var(&dto.Price, "price", 0, "unit price, greater than 0 (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("quantity")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newEditCmd(opts *options) *cobra.Command {
	var dto service.RecordEditDto
	cmd := &cobra.Command{
		Use:   "edit <kind> <id>",
		Short: "Change a record; employees may only change the quantity",
		Long: `Change the given fields of a record. Fields that are not given keep their value.

Examples:
  inventoryctl edit product 3 --quantity 140
  inventoryctl edit raw_material 1 --name "Organic Cotton" --price 180`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}
			id, err := parseIDArg(args[1])
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			updated, err := s.svc.Edit(cmd.Context(), s.role, kind, id, dto)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), updated)
			}
			printf(cmd.OutOrStdout(), "%s %d updated.\n", kind.Title(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&dto.Name, "name", "", "new name")
	cmd.Flags().IntVar(&dto.Quantity, "quantity", 0, "new quantity")
	cmd.Flags().Float64Var(&dto.Price, "price", 0, "new unit price")
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete a record (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}
			id, err := parseIDArg(args[1])
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			if err := s.svc.Delete(cmd.Context(), s.role, kind, id); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s %d deleted.\n", kind.Title(), id)
			return nil
		},
	}
}

func parseIDArg(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
