package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gestaozabele/ouvidoria/internal/backend"
	"github.com/gestaozabele/ouvidoria/internal/config"
	"github.com/gestaozabele/ouvidoria/internal/export"
	"github.com/gestaozabele/ouvidoria/internal/ouvidoria"
)

type options struct {
	apiURL  string
	timeout time.Duration
	query   string
	asJSON  bool
	out     string
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("ouvidoriactl")
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "ouvidoriactl",
		Short:         "Consulta e exporta os cadastros da ouvidoria",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api", "", "URL base do backend (padrão: API_BASE_URL)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "tempo máximo da operação")

	root.AddCommand(newListCmd(opts), newExportCmd(opts), newPingCmd(opts))
	return root
}

func (o *options) catalog() (*catalog, *backend.Client, error) {
	base := strings.TrimSpace(o.apiURL)
	if base == "" {
		base = config.APIBaseURLFromEnv()
	}
	client, err := backend.New(backend.Config{BaseURL: base, Timeout: o.timeout})
	if err != nil {
		return nil, nil, err
	}
	return newCatalog(ouvidoria.NewAPI(client)), client, nil
}

func newListCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <recurso>",
		Short: "Lista um recurso (cargos, orgaos, funcionarios, ocorrencias, servicos, avaliacoes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, err := opts.catalog()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			sheet, err := cat.sheet(ctx, args[0], opts.query)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), sheet)
			}
			return writeTable(cmd.OutOrStdout(), sheet)
		},
	}
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "filtro de busca")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "saída em JSON")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <recurso>...",
		Short: "Exporta um ou mais recursos para uma planilha XLSX",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, err := opts.catalog()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			sheets := make([]export.Sheet, 0, len(args))
			for _, name := range args {
				sheet, err := cat.sheet(ctx, name, opts.query)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				sheets = append(sheets, sheet)
			}

			out := opts.out
			if out == "" {
				out = strings.Join(args, "_") + ".xlsx"
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.Write(f, sheets...); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			log.Info().Str("arquivo", out).Int("abas", len(sheets)).Msg("planilha gerada")
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "filtro de busca aplicado a todas as abas")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "arquivo de saída")
	return cmd
}

func newPingCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Verifica se o backend responde",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := opts.catalog()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			if err := client.Ping(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backend ok: %s\n", client.BaseURL())
			return nil
		},
	}
}

func writeTable(w io.Writer, sheet export.Sheet) error {
	if len(sheet.Rows) == 0 {
		_, err := fmt.Fprintln(w, "nenhum registro encontrado")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(sheet.Headers, "\t"))
	for _, row := range sheet.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, sheet export.Sheet) error {
	items := make([]map[string]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		item := make(map[string]string, len(row))
		for i, value := range row {
			item[sheet.Headers[i]] = value
		}
		items = append(items, item)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
