package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kayaan/driver-gtm/internal/cities"
	"github.com/kayaan/driver-gtm/internal/dat"
	"github.com/kayaan/driver-gtm/internal/filtering"
	"github.com/kayaan/driver-gtm/internal/fleet"
	"github.com/kayaan/driver-gtm/internal/gtm"
	"github.com/kayaan/driver-gtm/internal/logger"
	"github.com/kayaan/driver-gtm/internal/usdot"
)

const PromptExit = "exit"

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search drivers interactively and rank loads for one of them",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("top", 10, "how many ranked loads to show per driver")
	viper.BindPFlag("top", runCmd.Flags().Lookup("top"))
}

// run is the interactive dispatcher flow: search capacity, pick a driver,
// rank the freight around it.
func run(_ *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting driver-gtm", zap.String("version", version))

	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config.Search == nil || config.Search.City == "" || config.Search.State == "" {
		logger.Fatal("a search city and state are required under the search section")
	}

	params, err := getScoringParams()
	if err != nil {
		logger.Fatal("getting scoring parameters", zap.Error(err))
	}

	creds, err := resolveCredentials(config.DAT)
	if err != nil {
		logger.Fatal("loading load board credentials",
			zap.Error(err),
			zap.String("hint", "set DAT_USERNAME, DAT_PASSWORD and DAT_USER or the dat section of the configuration file"),
		)
	}

	db, err := cities.Load()
	if err != nil {
		logger.Fatal("loading the city database", zap.Error(err))
	}

	registry := usdot.New(logger, resolveAppToken(config.USDOT))
	resolver := fleet.NewResolver(registry, logger)
	provider := gtm.NewProvider(logger, db, params, resolver, creds)

	environment := viper.GetString("environment")
	service, err := provider.Service(environment, creds)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	logger.Info("starting the driver search",
		zap.String("city", config.Search.City),
		zap.String("state", config.Search.State),
		zap.String("environment", environment),
	)

	result, err := service.SearchDrivers(ctx, &gtm.SearchRequest{
		City:              config.Search.City,
		State:             config.Search.State,
		EquipmentTypes:    config.Search.EquipmentTypes,
		LoadType:          config.Search.LoadType,
		Limit:             config.Search.Limit,
		DestinationStates: config.Search.DestinationStates,
		MaxDeadheadMiles:  config.Search.MaxDeadhead,
	})
	if err != nil {
		logger.Fatal("driver search failed", zap.Error(err))
	}

	if len(result.Drivers) == 0 {
		logger.Info("exiting", zap.String("reason", "no drivers left after filters"))
		return
	}

	logger.Info("drivers found",
		zap.Int("count", len(result.Drivers)),
		zap.Int("total_available", result.TotalAvailable),
	)

	for {
		driver, err := pickDriver(result.Drivers)
		if err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := rankForDriver(ctx, service, config, driver, viper.GetInt("top")); err != nil {
			logger.Fatal("ranking loads", zap.Error(err))
		}
	}
}

func pickDriver(drivers []*dat.Driver) (*dat.Driver, error) {
	items := make([]string, 0, len(drivers)+1)
	for _, driver := range drivers {
		items = append(items, driverLabel(driver))
	}
	items = append(items, PromptExit)

	prompt := promptui.Select{
		Label: "Choose a driver and press ENTER",
		Items: items,
		Size:  15,
	}

	index, selected, err := prompt.Run()
	if err != nil {
		return nil, err
	}
	if selected == PromptExit {
		return nil, errExit
	}

	return drivers[index], nil
}

func driverLabel(driver *dat.Driver) string {
	fleetNote := "fleet unverified"
	if driver.Fleet != nil && driver.Fleet.Resolution == fleet.ResolutionKnown && driver.Fleet.TruckUnits.Known {
		fleetNote = fmt.Sprintf("%d trucks", driver.Fleet.TruckUnits.Value)
	}

	return fmt.Sprintf("%s / %s, %s / %s / %s",
		driver.CompanyName(),
		driver.OriginCity(), driver.OriginState(),
		driver.EquipmentType(),
		fleetNote,
	)
}

// loadRequestFor builds the ranking request from the driver's posting. The
// driver's own availability window constrains the pickup filter; a garbled
// window ranks unconstrained rather than failing the whole flow.
func loadRequestFor(config *Config, driver *dat.Driver) *gtm.LoadRequest {
	window, err := filtering.ParseWindow(driver.Availability)
	if err != nil {
		window = filtering.TimeWindow{}
	}

	return &gtm.LoadRequest{
		City:              driver.OriginCity(),
		State:             driver.OriginState(),
		EquipmentTypes:    []string{driver.EquipmentType()},
		LoadType:          config.Search.LoadType,
		Limit:             config.Search.Limit,
		Availability:      window,
		DestinationStates: config.Search.DestinationStates,
		MaxDeadheadMiles:  config.Search.MaxDeadhead,
	}
}

func rankForDriver(ctx context.Context, service *gtm.Service, config *Config, driver *dat.Driver, top int) error {
	result, err := service.RankLoads(ctx, loadRequestFor(config, driver))
	if err != nil {
		return err
	}

	if len(result.Loads) == 0 {
		fmt.Printf("no loads left after filters for %s\n", driver.CompanyName())
		return nil
	}

	if top <= 0 || top > len(result.Loads) {
		top = len(result.Loads)
	}

	fmt.Printf("\ntop %d loads for %s (%s, %s):\n", top, driver.CompanyName(), driver.OriginCity(), driver.OriginState())
	for i, item := range result.Loads[:top] {
		load := item.Load
		fmt.Printf("%2d. [%3d %-9s] %s, %s -> %s, %s / %.0f mi / $%.2f per mi (%s) / profit $%.0f\n",
			i+1,
			item.Composite.Score,
			item.Composite.Recommendation,
			load.OriginCity(), load.OriginState(),
			load.DestinationCity(), load.DestinationState(),
			load.TotalMiles(),
			item.Profit.RatePerMile,
			item.Profit.RateSource,
			item.Profit.Profit,
		)
	}
	fmt.Println()

	return nil
}
