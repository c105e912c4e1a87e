package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/margaritamap/margarita/internal/app"
	"github.com/margaritamap/margarita/internal/config"
	"github.com/margaritamap/margarita/internal/domain/geo"
	"github.com/margaritamap/margarita/internal/domain/search/request"
	"github.com/margaritamap/margarita/internal/domain/search/result"
	"github.com/margaritamap/margarita/internal/domain/search/scope"
	logpkg "github.com/margaritamap/margarita/internal/logger"
	venuerepo "github.com/margaritamap/margarita/internal/repository/venue"
	chiTransport "github.com/margaritamap/margarita/internal/transport/chi"
	"github.com/margaritamap/margarita/internal/version"
)

// cli holds state shared by the subcommands, filled in by the root PersistentPreRunE.
type cli struct {
	cfg     config.Config
	logger  *zap.Logger
	timeout time.Duration
}

func main() {
	c := &cli{}
	if err := newRootCmd(c).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "margarita-search",
		Short:         "Rank nearby Mexican restaurants and margarita bars",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			env := config.GetEnv()
			cfg, err := config.Load(env)
			if err != nil {
				return err
			}
			logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			c.cfg = cfg
			c.logger = logger
			return nil
		},
	}
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "overall command timeout")

	root.AddCommand(createSearchCmd(c))
	root.AddCommand(createAddressCmd(c))
	root.AddCommand(createSyncVenuesCmd(c))
	return root
}

func createSearchCmd(c *cli) *cobra.Command {
	var (
		lat, lng  float64
		name      string
		scopeFlag string
		radius    int
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search around a coordinate",
		Example: `  margarita-search search --lat 30.2672 --lng -97.7431
  margarita-search search --lat 30.2672 --lng -97.7431 --name "Chuy's"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := request.New(geo.NewPoint(lat, lng), scope.Scope(scopeFlag), radius, name)
			if err != nil {
				return fmt.Errorf("invalid search: %w", err)
			}
			return c.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				res, err := a.Search.Search(ctx, &req)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), &res)
			})
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "origin latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "origin longitude")
	cmd.Flags().StringVar(&name, "name", "", "restaurant name filter (switches to a named search)")
	cmd.Flags().StringVar(&scopeFlag, "scope", "", "nearby, zip or named (default by name filter)")
	cmd.Flags().IntVar(&radius, "radius", 0, "query radius in meters (default by scope)")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func createAddressCmd(c *cli) *cobra.Command {
	var (
		name      string
		scopeFlag string
		radius    int
	)
	cmd := &cobra.Command{
		Use:   "address [zip, city or street address]",
		Short: "Geocode an address and search around it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				res, err := a.Search.SearchAddress(ctx, args[0], scope.Scope(scopeFlag), radius, name)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), &res)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "restaurant name filter")
	cmd.Flags().StringVar(&scopeFlag, "scope", "", "nearby, zip or named (zip codes default to zip)")
	cmd.Flags().IntVar(&radius, "radius", 0, "query radius in meters (default by scope)")
	return cmd
}

func createSyncVenuesCmd(c *cli) *cobra.Command {
	var (
		dsn   string
		addrs []string
	)
	cmd := &cobra.Command{
		Use:   "sync-venues",
		Short: "Copy located venues from Postgres into Valkey hashes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				dsn = c.cfg.VenueStore.DSN
			}
			if len(addrs) == 0 {
				addrs = c.cfg.VenueStore.Addrs
			}
			if len(addrs) == 0 {
				addrs = c.cfg.Cache.Addrs
			}
			if dsn == "" || len(addrs) == 0 {
				return fmt.Errorf("sync-venues needs a postgres dsn and valkey addrs (flags or config)")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
			defer cancel()
			return syncVenues(ctx, c, dsn, addrs, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "source postgres DSN (default venue_store.dsn)")
	cmd.Flags().StringSliceVar(&addrs, "addrs", nil,
		"target valkey addresses (default venue_store.addrs, then cache.addrs)")
	return cmd
}

func syncVenues(ctx context.Context, c *cli, dsn string, addrs []string, out io.Writer) error {
	readiness := time.Duration(c.cfg.VenueStore.ReadinessTimeout) * time.Second

	pg, err := app.OpenPostgres(ctx, dsn, readiness)
	if err != nil {
		return err
	}
	defer pg.Close()

	vk, err := app.OpenValkey(ctx, addrs, c.cfg.VenueStore.Password, readiness)
	if err != nil {
		return err
	}
	defer vk.Close()

	places, err := venuerepo.NewPostgres(pg, c.logger).ListLocated(ctx)
	if err != nil {
		return fmt.Errorf("read venues: %w", err)
	}
	written, err := venuerepo.NewValkey(vk, c.cfg.VenueStore.KeyPrefix, c.logger).Put(ctx, places)
	if err != nil {
		return fmt.Errorf("write venues: %w", err)
	}

	c.logger.Info("Venues synced", zap.Int("read", len(places)), zap.Int("written", written))
	_, err = fmt.Fprintf(out, "synced %d of %d venues\n", written, len(places))
	return err
}

// withApp wires the services, runs fn under the command timeout, and releases connections.
func (c *cli) withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	a, err := app.New(ctx, &c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.Close()
	defer func() { _ = c.logger.Sync() }()

	return fn(ctx, a)
}

func printResult(w io.Writer, res *result.RankedResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(chiTransport.NewSearchResponse(res))
}
