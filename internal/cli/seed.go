package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/olist-warehouse/internal/datagen"
	"github.com/pgEdge/olist-warehouse/internal/logging"
)

var (
	seedOrders    int
	seedCustomers int
	seedProducts  int
	seedSellers   int
	seedRandom    uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate synthetic Olist-shaped source datasets",
	Long: `Write a complete set of synthetic source CSVs into the source directory,
using the Olist dataset's file names and headers. Useful for exercising
the pipeline without the real dataset.

Example:
  olist-warehouse seed --source ./data --orders 5000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedOrders > 0 {
			cfg.Seed.Orders = seedOrders
		}
		if seedCustomers > 0 {
			cfg.Seed.Customers = seedCustomers
		}
		if seedProducts > 0 {
			cfg.Seed.Products = seedProducts
		}
		if seedSellers > 0 {
			cfg.Seed.Sellers = seedSellers
		}
		if seedRandom != 0 {
			cfg.Seed.RandomSeed = seedRandom
		}
		if err := cfg.ValidateSeed(); err != nil {
			return err
		}

		logging.Info().
			Int("orders", cfg.Seed.Orders).
			Str("source", cfg.Source).
			Msg("Generating source datasets")

		seeder := datagen.NewSeeder(datagen.Spec{
			Orders:     cfg.Seed.Orders,
			Customers:  cfg.Seed.Customers,
			Products:   cfg.Seed.Products,
			Sellers:    cfg.Seed.Sellers,
			RandomSeed: cfg.Seed.RandomSeed,
		})
		return seeder.Run(cfg.Source)
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedOrders, "orders", 0, "number of orders to generate")
	seedCmd.Flags().IntVar(&seedCustomers, "customers", 0, "number of customers to generate")
	seedCmd.Flags().IntVar(&seedProducts, "products", 0, "number of products to generate")
	seedCmd.Flags().IntVar(&seedSellers, "sellers", 0, "number of sellers to generate")
	seedCmd.Flags().Uint64Var(&seedRandom, "random-seed", 0, "seed for reproducible generation")
}
