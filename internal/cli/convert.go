package cli

import (
	"fmt"
	"strings"

	"dealership/internal/currency"
	"dealership/internal/services"

	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <amount>",
	Short: "Convert an amount between DZD, USDT and KRW",
	Long: `Convert an amount with the stored exchange rates, or with the rates
given on the command line. When both rate flags are set the database is
not opened.`,
	Example: `  dealership convert 13500000 --mode krw_to_dzd
  dealership convert 1000 --mode usdt_to_dzd --dzd-usdt 250 --krw-usdt 1380`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().String("mode", string(currency.USDTToDZD), "One of "+modeList())
	convertCmd.Flags().Float64("dzd-usdt", 0, "DZD per 1 USDT")
	convertCmd.Flags().Float64("krw-usdt", 0, "KRW per 1 USDT")
}

func modeList() string {
	names := make([]string, len(currency.Modes))
	for i, m := range currency.Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func runConvert(cmd *cobra.Command, args []string) error {
	modeFlag, _ := cmd.Flags().GetString("mode")
	mode, ok := currency.ParseMode(modeFlag)
	if !ok {
		return fmt.Errorf("unknown mode %q, expected one of %s", modeFlag, modeList())
	}

	dzd, _ := cmd.Flags().GetFloat64("dzd-usdt")
	krw, _ := cmd.Flags().GetFloat64("krw-usdt")

	rates := services.ExchangeRates{DZDPerUSDT: dzd, KRWPerUSDT: krw}
	if !cmd.Flags().Changed("dzd-usdt") || !cmd.Flags().Changed("krw-usdt") {
		svc, closeDB, err := settingsFromConfig()
		if err != nil {
			return err
		}
		defer closeDB()
		if rates, err = updatedRates(cmd.Context(), svc, cmd, dzd, krw); err != nil {
			return err
		}
	}

	v, ok := currency.Convert(args[0], mode, rates.Currency())
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "not available")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), currency.Format(v))
	return nil
}
