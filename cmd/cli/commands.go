package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/salonledger/internal/adapter/http/dto"
	"github.com/iho/salonledger/internal/infrastructure/postgres"
)

func rateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Operational exchange rate",
	}

	var source, capturedBy string

	setCmd := &cobra.Command{
		Use:   "set VALUE",
		Short: "Set the operational rate in ARS per USD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rate dto.RateResponse
			req := dto.SetRateRequest{Value: args[0], Source: source, CapturedBy: capturedBy}

			if err := newAPIClient().post(cmd.Context(), "/api/v1/rates", req, &rate); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), rate)
		},
	}
	setCmd.Flags().StringVar(&source, "source", "manual", "Rate source (manual or external)")
	setCmd.Flags().StringVar(&capturedBy, "by", "", "Who captured the rate")
	_ = setCmd.MarkFlagRequired("by")

	currentCmd := &cobra.Command{
		Use:   "current",
		Short: "Show the operational rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rate dto.RateResponse
			if err := newAPIClient().get(cmd.Context(), "/api/v1/rates/current", &rate); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), rate)
		},
	}

	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent rates, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rates []dto.RateResponse
			path := "/api/v1/rates/history?limit=" + strconv.Itoa(limit)

			if err := newAPIClient().get(cmd.Context(), path, &rates); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), rates)
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of rates")

	convertCmd := &cobra.Command{
		Use:   "convert AMOUNT CURRENCY",
		Short: "Convert an amount to the other currency at the operational rate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var conv dto.ConversionResponse
			q := url.Values{"amount": {args[0]}, "currency": {args[1]}}

			if err := newAPIClient().get(cmd.Context(), "/api/v1/rates/convert?"+q.Encode(), &conv); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), conv)
		},
	}

	cmd.AddCommand(setCmd, currentCmd, historyCmd, convertCmd)

	return cmd
}

func comandaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comanda",
		Short: "Comanda operations",
	}

	createCmd := &cobra.Command{
		Use:   "create FILE",
		Short: "Create a comanda from a JSON file (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dto.CreateComandaRequest
			if err := readJSONFile(cmd, args[0], &req); err != nil {
				return err
			}

			var comanda dto.ComandaResponse
			if err := newAPIClient().post(cmd.Context(), "/api/v1/comandas", req, &comanda); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), comanda)
		},
	}

	amendCmd := &cobra.Command{
		Use:   "amend ID FILE",
		Short: "Replace the items and payments of a pending comanda",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dto.AmendComandaRequest
			if err := readJSONFile(cmd, args[1], &req); err != nil {
				return err
			}

			var comanda dto.ComandaResponse
			if err := newAPIClient().put(cmd.Context(), "/api/v1/comandas/"+url.PathEscape(args[0]), req, &comanda); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), comanda)
		},
	}

	getCmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show a comanda",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var comanda dto.ComandaResponse
			if err := newAPIClient().get(cmd.Context(), "/api/v1/comandas/"+url.PathEscape(args[0]), &comanda); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), comanda)
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate ID",
		Short: "Validate a pending comanda",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var comanda dto.ComandaResponse
			path := "/api/v1/comandas/" + url.PathEscape(args[0]) + "/validate"

			if err := newAPIClient().post(cmd.Context(), path, struct{}{}, &comanda); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "comanda #%d %s at rate %s\n",
				comanda.SequenceNumber, comanda.ValidationState, orDash(comanda.SettlementRate))

			return nil
		},
	}

	var cancelledBy string

	cancelCmd := &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a comanda that has not been transferred",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var comanda dto.ComandaResponse
			path := "/api/v1/comandas/" + url.PathEscape(args[0]) + "/cancel"

			if err := newAPIClient().post(cmd.Context(), path, dto.CancelComandaRequest{CancelledBy: cancelledBy}, &comanda); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "comanda #%d cancelled by %s\n", comanda.SequenceNumber, comanda.CancelledBy)

			return nil
		},
	}
	cancelCmd.Flags().StringVar(&cancelledBy, "by", "", "Who cancels the comanda")
	_ = cancelCmd.MarkFlagRequired("by")

	cmd.AddCommand(createCmd, amendCmd, getCmd, validateCmd, cancelCmd)

	return cmd
}

func cashBoxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "box",
		Short: "Cash box listings and reconciliation",
	}

	var from, to, kind, state, unit, groupBy string

	addRange := func(c *cobra.Command) {
		c.Flags().StringVar(&from, "from", "", "Start of range (RFC3339 or YYYY-MM-DD)")
		c.Flags().StringVar(&to, "to", "", "End of range (RFC3339 or YYYY-MM-DD)")
	}

	query := func() string {
		q := url.Values{}
		for k, v := range map[string]string{"from": from, "to": to, "kind": kind, "state": state, "business_unit": unit} {
			if v != "" {
				q.Set(k, v)
			}
		}

		if len(q) == 0 {
			return ""
		}

		return "?" + q.Encode()
	}

	comandasCmd := &cobra.Command{
		Use:   "comandas BOX",
		Short: "List the comandas of a cash box with currency totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var list dto.ComandaListResponse
			if err := newAPIClient().get(cmd.Context(), boxPath(args[0], "/comandas")+query(), &list); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), list)
		},
	}
	addRange(comandasCmd)
	comandasCmd.Flags().StringVar(&kind, "kind", "", "income or expense")
	comandasCmd.Flags().StringVar(&state, "state", "", "Validation state")
	comandasCmd.Flags().StringVar(&unit, "business-unit", "", "Business unit")

	candidatesCmd := &cobra.Command{
		Use:   "candidates BOX",
		Short: "List validated comandas not yet transferred",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var list dto.ComandaListResponse
			if err := newAPIClient().get(cmd.Context(), boxPath(args[0], "/candidates")+query(), &list); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), list)
		},
	}
	addRange(candidatesCmd)

	summaryCmd := &cobra.Command{
		Use:   "summary BOX",
		Short: "Reconcile a cash box, optionally grouped by business unit or staff",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient()

			switch groupBy {
			case "":
				var summary dto.SummaryResponse
				if err := client.get(cmd.Context(), boxPath(args[0], "/summary")+query(), &summary); err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), summary)
			case "unit", "staff":
				suffix := "/summary/business-units"
				if groupBy == "staff" {
					suffix = "/summary/staff"
				}

				var groups []dto.GroupSummaryResponse
				if err := client.get(cmd.Context(), boxPath(args[0], suffix)+query(), &groups); err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), groups)
			default:
				return fmt.Errorf("unknown grouping %q: use unit or staff", groupBy)
			}
		},
	}
	addRange(summaryCmd)
	summaryCmd.Flags().StringVar(&kind, "kind", "", "income or expense")
	summaryCmd.Flags().StringVar(&unit, "business-unit", "", "Business unit")
	summaryCmd.Flags().StringVar(&groupBy, "by", "", "Group by unit or staff")

	cmd.AddCommand(comandasCmd, candidatesCmd, summaryCmd)

	return cmd
}

func transferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Petty to main cash transfers",
	}

	var (
		box          string
		performedBy  string
		observations string
		usd, ars     string
		from, to     string
		ids          []string
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Move validated comandas to the main box; --usd/--ars make it partial",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.TransferRequest{
				PerformedBy:  performedBy,
				Observations: observations,
				From:         from,
				To:           to,
				ComandaIDs:   ids,
				Partial:      usd != "" || ars != "",
				RequestedUSD: usd,
				RequestedARS: ars,
			}

			var result dto.TransferResultResponse
			if err := newAPIClient().post(cmd.Context(), boxPath(box, "/transfers"), req, &result); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Record == nil {
				fmt.Fprintln(out, "nothing to transfer")
				return nil
			}

			fmt.Fprintf(out, "transfer %s moved %d comandas: USD %s ARS %s (residual USD %s ARS %s)\n",
				result.Record.ID, result.Moved,
				result.Record.TotalUSD, result.Record.TotalARS,
				result.Record.ResidualUSD, result.Record.ResidualARS)

			return nil
		},
	}
	runCmd.Flags().StringVar(&box, "box", "petty", "Source cash box")
	runCmd.Flags().StringVar(&performedBy, "by", "", "Who performs the transfer")
	runCmd.Flags().StringVar(&observations, "note", "", "Observations")
	runCmd.Flags().StringVar(&usd, "usd", "", "USD amount to move")
	runCmd.Flags().StringVar(&ars, "ars", "", "ARS amount to move")
	runCmd.Flags().StringSliceVar(&ids, "comanda", nil, "Move only these comandas")
	runCmd.Flags().StringVar(&from, "from", "", "Start of range (RFC3339 or YYYY-MM-DD)")
	runCmd.Flags().StringVar(&to, "to", "", "End of range (RFC3339 or YYYY-MM-DD)")
	_ = runCmd.MarkFlagRequired("by")

	var limit, offset int

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List transfers touching a cash box, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []dto.TransferRecordResponse
			path := fmt.Sprintf("%s?limit=%d&offset=%d", boxPath(box, "/transfers"), limit, offset)

			if err := newAPIClient().get(cmd.Context(), path, &records); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPERFORMED\tBY\tCOMANDAS\tUSD\tARS\tPARTIAL")

			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%t\n",
					truncate(r.ID, 12), r.PerformedAt.Format("2006-01-02 15:04"), truncate(r.PerformedBy, 16),
					len(r.ComandaIDs), r.TotalUSD, r.TotalARS, r.Partial)
			}

			return w.Flush()
		},
	}
	listCmd.Flags().StringVar(&box, "box", "petty", "Cash box")
	listCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	getCmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show a transfer record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var record dto.TransferRecordResponse
			if err := newAPIClient().get(cmd.Context(), "/api/v1/transfers/"+url.PathEscape(args[0]), &record); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), record)
		},
	}

	cmd.AddCommand(runCmd, listCmd, getCmd)

	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.PersistentFlags().StringVar(&path, "path", "migrations", "Directory holding the migration files")

	logger := func(cmd *cobra.Command) zerolog.Logger {
		return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}

			return postgres.RunMigrations(databaseURL, path, logger(cmd))
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}

			return postgres.RunMigrationsDown(databaseURL, path, logger(cmd))
		},
	}

	cmd.AddCommand(upCmd, downCmd)

	return cmd
}

func boxPath(box, suffix string) string {
	return "/api/v1/cash-boxes/" + url.PathEscape(box) + suffix
}

func readJSONFile(cmd *cobra.Command, name string, v any) error {
	var dec *json.Decoder

	if name == "-" {
		dec = json.NewDecoder(cmd.InOrStdin())
	} else {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()

		dec = json.NewDecoder(f)
	}

	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
