package cli

import (
	"context"
	"fmt"
	"time"

	"dealership/internal/config"
	"dealership/internal/database"
	"dealership/internal/redis"
	"dealership/internal/repository"
	"dealership/internal/services"
	"dealership/internal/validation"

	"github.com/spf13/cobra"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Show or change the exchange rates",
}

var ratesGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the stored exchange rates",
	RunE:  runRatesGet,
}

var ratesSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store new exchange rates",
	Long: `Store new exchange rates. A rate left unset keeps its stored value.
Both rates must be greater than zero.`,
	Example: `  dealership rates set --dzd-usdt 250 --krw-usdt 1380`,
	RunE:    runRatesSet,
}

func init() {
	rootCmd.AddCommand(ratesCmd)
	ratesCmd.AddCommand(ratesGetCmd)
	ratesCmd.AddCommand(ratesSetCmd)

	ratesSetCmd.Flags().Float64("dzd-usdt", 0, "DZD per 1 USDT")
	ratesSetCmd.Flags().Float64("krw-usdt", 0, "KRW per 1 USDT")
	ratesSetCmd.Flags().String("by", "cli", "Recorded as the author of the change")
}

// settingsFromConfig opens the database and returns the settings service
// with an in-process cache. The returned func closes the database.
func settingsFromConfig() (services.SettingsService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	repos := repository.New(db)
	svc := services.NewSettingsService(repos.Settings, redis.NewMemory(), time.Duration(cfg.RatesCacheTTL)*time.Second, defaultRates(cfg))
	return svc, func() { database.Close(db) }, nil
}

func runRatesGet(cmd *cobra.Command, args []string) error {
	svc, closeDB, err := settingsFromConfig()
	if err != nil {
		return err
	}
	defer closeDB()

	rates, err := svc.LoadRates(cmd.Context())
	if err != nil {
		return err
	}
	printRates(cmd, rates)
	return nil
}

func runRatesSet(cmd *cobra.Command, args []string) error {
	dzd, _ := cmd.Flags().GetFloat64("dzd-usdt")
	krw, _ := cmd.Flags().GetFloat64("krw-usdt")
	by, _ := cmd.Flags().GetString("by")
	if !cmd.Flags().Changed("dzd-usdt") && !cmd.Flags().Changed("krw-usdt") {
		return fmt.Errorf("nothing to set: pass --dzd-usdt and/or --krw-usdt")
	}

	svc, closeDB, err := settingsFromConfig()
	if err != nil {
		return err
	}
	defer closeDB()

	rates, err := updatedRates(cmd.Context(), svc, cmd, dzd, krw)
	if err != nil {
		return err
	}
	if err := validation.Struct(rates); err != nil {
		return err
	}
	if err := svc.SaveRates(cmd.Context(), rates, by); err != nil {
		return err
	}
	printRates(cmd, rates)
	return nil
}

func updatedRates(ctx context.Context, svc services.SettingsService, cmd *cobra.Command, dzd, krw float64) (services.ExchangeRates, error) {
	rates, err := svc.LoadRates(ctx)
	if err != nil {
		return rates, err
	}
	if cmd.Flags().Changed("dzd-usdt") {
		rates.DZDPerUSDT = dzd
	}
	if cmd.Flags().Changed("krw-usdt") {
		rates.KRWPerUSDT = krw
	}
	return rates, nil
}

func printRates(cmd *cobra.Command, rates services.ExchangeRates) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "1 USDT = %g DZD\n", rates.DZDPerUSDT)
	fmt.Fprintf(out, "1 USDT = %g KRW\n", rates.KRWPerUSDT)
}
