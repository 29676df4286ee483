package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/asclepius/internal/config"
	"github.com/UnknownOlympus/asclepius/internal/dataset"
	"github.com/UnknownOlympus/asclepius/internal/geo"
	"github.com/UnknownOlympus/asclepius/internal/models"
	"github.com/UnknownOlympus/asclepius/internal/service"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once the root command has loaded it.
type app struct {
	cfg *config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "asclepius",
		Short:         "Clinic locations: distances, nearest clinics and seeding",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.cfg = config.MustLoad()
			a.log = setupLogger(a.cfg.Env, cmd.ErrOrStderr())
		},
	}

	root.AddCommand(
		newSeedCmd(a),
		newDistanceCmd(a),
		newNearestCmd(a),
		newServeCmd(a),
	)

	return root
}

// errPointArgs is returned when points are passed both positionally and through flags.
var errPointArgs = errors.New("points must be given either as arguments or as flags, not both")

// pointArgs returns the positional points, or the named flag values when there are none.
// A negative latitude reads as a shorthand flag, so southern points go through the
// named flags (--from=-33.86,151.2) or after a "--" separator.
func pointArgs(args []string, named ...string) ([]string, error) {
	if len(args) == 0 {
		args = named
	} else {
		for _, value := range named {
			if value != "" {
				return nil, errPointArgs
			}
		}
	}

	if len(args) != len(named) {
		return nil, fmt.Errorf("expected %d points, got %d", len(named), len(args))
	}
	for idx, value := range args {
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("point #%d is missing", idx+1)
		}
	}

	return args, nil
}

func newDistanceCmd(a *app) *cobra.Command {
	var (
		validate       bool
		fromArg, toArg string
	)

	cmd := &cobra.Command{
		Use:   "distance LAT1,LON1 LAT2,LON2",
		Short: "Print the great-circle distance between two points in kilometers",
		Example: "  asclepius distance 37.7749,-122.4194 3.139,101.6869\n" +
			"  asclepius distance --from=-33.8688,151.2093 --to=3.139,101.6869\n" +
			"  asclepius distance -- -33.8688,151.2093 3.139,101.6869",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := pointArgs(args, fromArg, toArg)
			if err != nil {
				return err
			}

			from, err := models.ParseGeoPoint(points[0])
			if err != nil {
				return fmt.Errorf("failed to parse start point: %w", err)
			}
			to, err := models.ParseGeoPoint(points[1])
			if err != nil {
				return fmt.Errorf("failed to parse end point: %w", err)
			}

			var km float64
			if validate {
				km, err = geo.ValidatedDistance(from, to)
				if err != nil {
					return err
				}
			} else {
				km = geo.Distance(from, to)
			}

			a.log.DebugContext(cmd.Context(), "Distance computed", "from", from.String(), "to", to.String(), "km", km)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%.2f km\n", km)
			return err
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "reject coordinates outside the valid latitude/longitude ranges")
	cmd.Flags().StringVar(&fromArg, "from", "", "start point as LAT,LON, instead of the first argument")
	cmd.Flags().StringVar(&toArg, "to", "", "end point as LAT,LON, instead of the second argument")

	return cmd
}

func newNearestCmd(a *app) *cobra.Command {
	var (
		limit    int
		radiusKm float64
		atArg    string
	)

	cmd := &cobra.Command{
		Use:   "nearest LAT,LON",
		Short: "List the clinics closest to a point",
		Example: "  asclepius nearest --limit 3 1.5451,103.7952\n" +
			"  asclepius nearest --at=-1.5,103.7",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := pointArgs(args, atArg)
			if err != nil {
				return err
			}

			at, err := models.ParseGeoPoint(points[0])
			if err != nil {
				return fmt.Errorf("failed to parse query point: %w", err)
			}

			locator, err := a.locator()
			if err != nil {
				return err
			}

			ranked, err := locator.Nearest(at, limit, radiusKm)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(ranked) == 0 {
				_, err = fmt.Fprintln(out, "no clinics found")
				return err
			}
			for i, rc := range ranked {
				if _, err = fmt.Fprintf(out, "%2d. %8.2f km  %s (%s)\n", i+1, rc.DistanceKm, rc.Name, rc.Type); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "maximum number of clinics to list, 0 for all")
	cmd.Flags().Float64Var(&radiusKm, "radius-km", 0, "only list clinics within this distance, 0 for no limit")
	cmd.Flags().StringVar(&atArg, "at", "", "query point as LAT,LON, instead of the argument")

	return cmd
}

// seeds returns the configured data file contents or the built-in list.
func (a *app) seeds() ([]models.ClinicSeed, error) {
	if strings.TrimSpace(a.cfg.DataFile) == "" {
		return dataset.Default(), nil
	}

	seeds, err := dataset.Load(a.cfg.DataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load data file: %w", err)
	}
	return seeds, nil
}

// locator builds a Locator from the seeds that already carry coordinates.
func (a *app) locator() (*service.Locator, error) {
	seeds, err := a.seeds()
	if err != nil {
		return nil, err
	}
	if err = dataset.Validate(seeds); err != nil {
		return nil, err
	}

	located := make([]models.ClinicSeed, 0, len(seeds))
	for _, seed := range seeds {
		if seed.HasLocation() {
			located = append(located, seed)
		}
	}
	if skipped := len(seeds) - len(located); skipped > 0 {
		a.log.Warn("Clinics without coordinates are not ranked, run seed to geocode them", "count", skipped)
	}
	if len(located) == 0 {
		return nil, errors.New("no clinics with coordinates in the data file")
	}

	clinics, err := dataset.ToRecords(located, dataset.RecordOptions{ImageURL: a.cfg.ImageURL})
	if err != nil {
		return nil, fmt.Errorf("failed to build clinic records: %w", err)
	}
	return service.NewLocator(clinics), nil
}
