//-------------------------------------------------------------------------
//
// Olist Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pgEdge/olist-warehouse/internal/extract"
	"github.com/pgEdge/olist-warehouse/internal/logging"
	"github.com/pgEdge/olist-warehouse/internal/staging"
)

const timestampLayout = "2006-01-02 15:04:05"

// Product categories in the dataset's Portuguese naming with their English
// translations. pc_gamer deliberately has no translation entry, matching the
// real dataset's untranslated categories.
var categories = []struct {
	name    string
	english string
}{
	{"informatica_acessorios", "computers_accessories"},
	{"cama_mesa_banho", "bed_bath_table"},
	{"esporte_lazer", "sports_leisure"},
	{"moveis_decoracao", "furniture_decor"},
	{"beleza_saude", "health_beauty"},
	{"brinquedos", "toys"},
	{"relogios_presentes", "watches_gifts"},
	{"pc_gamer", ""},
}

var paymentTypes = []string{"credit_card", "boleto", "voucher", "debit_card"}

var orderStatuses = []string{
	"delivered", "delivered", "delivered", "delivered",
	"shipped", "invoiced", "canceled",
}

// Spec controls how much synthetic data the Seeder produces.
type Spec struct {
	Orders    int
	Customers int
	Products  int
	Sellers   int

	// RandomSeed makes generation reproducible when non-zero.
	RandomSeed uint64
}

// Seeder writes a complete set of Olist-shaped source CSVs.
type Seeder struct {
	faker *Faker
	spec  Spec
}

// NewSeeder creates a Seeder for the given spec.
func NewSeeder(spec Spec) *Seeder {
	f := NewFaker()
	if spec.RandomSeed != 0 {
		f = NewFakerWithSeed(spec.RandomSeed)
	}
	return &Seeder{faker: f, spec: spec}
}

// Run writes all nine source datasets into dir using the dataset's original
// file names and headers.
func (s *Seeder) Run(dir string) error {
	start := time.Now()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create source directory: %w", err)
	}

	sellerIDs := make([]string, s.spec.Sellers)
	sellerRows := make([][]string, s.spec.Sellers)
	geoRows := make([][]string, 0, s.spec.Sellers)
	for i := range sellerIDs {
		sellerIDs[i] = s.faker.HexID()
		zip := strconv.Itoa(s.faker.ZipPrefix())
		city := s.faker.City()
		state := s.faker.State()
		sellerRows[i] = []string{sellerIDs[i], zip, city, state}
		geoRows = append(geoRows, []string{
			zip,
			fmt.Sprintf("%.6f", s.faker.Float64(-33.7, 5.2)),
			fmt.Sprintf("%.6f", s.faker.Float64(-73.9, -34.8)),
			city,
			state,
		})
	}

	productIDs := make([]string, s.spec.Products)
	productRows := make([][]string, s.spec.Products)
	for i := range productIDs {
		productIDs[i] = s.faker.HexID()
		category := Choose(s.faker, categories).name
		if s.faker.Int(1, 50) == 1 {
			// A few products carry no category at all.
			category = ""
		}
		productRows[i] = []string{
			productIDs[i],
			category,
			strconv.Itoa(s.faker.Int(20, 70)),
			strconv.Itoa(s.faker.Int(100, 3000)),
			strconv.Itoa(s.faker.Int(1, 6)),
			strconv.Itoa(s.faker.Int(50, 30000)),
			strconv.Itoa(s.faker.Int(5, 100)),
			strconv.Itoa(s.faker.Int(2, 100)),
			strconv.Itoa(s.faker.Int(5, 100)),
		}
	}

	customerIDs := make([]string, s.spec.Customers)
	customerRows := make([][]string, s.spec.Customers)
	for i := range customerIDs {
		customerIDs[i] = s.faker.HexID()
		customerRows[i] = []string{
			customerIDs[i],
			s.faker.HexID(),
			strconv.Itoa(s.faker.ZipPrefix()),
			s.faker.City(),
			s.faker.State(),
		}
	}

	rangeStart := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2018, 8, 31, 23, 59, 59, 0, time.UTC)

	orderRows := make([][]string, 0, s.spec.Orders)
	itemRows := make([][]string, 0, s.spec.Orders*2)
	paymentRows := make([][]string, 0, s.spec.Orders*2)
	reviewRows := make([][]string, 0, s.spec.Orders)
	for i := 0; i < s.spec.Orders; i++ {
		orderID := s.faker.HexID()
		purchase := s.faker.DateRange(rangeStart, rangeEnd)
		approved := purchase.Add(time.Duration(s.faker.Int(1, 48)) * time.Hour)
		carrier := approved.Add(time.Duration(s.faker.Int(12, 96)) * time.Hour)
		delivered := carrier.Add(time.Duration(s.faker.Int(24, 240)) * time.Hour)
		estimate := purchase.AddDate(0, 0, s.faker.Int(10, 40))

		orderRows = append(orderRows, []string{
			orderID,
			customerIDs[i%len(customerIDs)],
			Choose(s.faker, orderStatuses),
			purchase.Format(timestampLayout),
			approved.Format(timestampLayout),
			carrier.Format(timestampLayout),
			delivered.Format(timestampLayout),
			estimate.Format(timestampLayout),
		})

		items := s.faker.Int(1, 3)
		var orderTotal float64
		for item := 1; item <= items; item++ {
			price := s.faker.Price(10, 500)
			freight := s.faker.Price(5, 60)
			orderTotal += price + freight
			itemRows = append(itemRows, []string{
				orderID,
				strconv.Itoa(item),
				Choose(s.faker, productIDs),
				Choose(s.faker, sellerIDs),
				purchase.AddDate(0, 0, 7).Format(timestampLayout),
				fmt.Sprintf("%.2f", price),
				fmt.Sprintf("%.2f", freight),
			})
		}

		installments := s.faker.Int(1, 2)
		for seq := 1; seq <= installments; seq++ {
			value := orderTotal / float64(installments)
			paymentRows = append(paymentRows, []string{
				orderID,
				strconv.Itoa(seq),
				Choose(s.faker, paymentTypes),
				strconv.Itoa(s.faker.Int(1, 10)),
				fmt.Sprintf("%.2f", value),
			})
		}

		if s.faker.Int(1, 10) <= 7 {
			title, message := "", ""
			if s.faker.Bool() {
				title = s.faker.Sentence(3)
			}
			if s.faker.Bool() {
				message = s.faker.Sentence(12)
			}
			reviewRows = append(reviewRows, []string{
				s.faker.HexID(),
				orderID,
				strconv.Itoa(s.faker.Int(1, 5)),
				title,
				message,
				purchase.AddDate(0, 0, 10).Format(timestampLayout),
				purchase.AddDate(0, 0, 12).Format(timestampLayout),
			})
		}
	}

	translationRows := make([][]string, 0, len(categories))
	for _, c := range categories {
		if c.english != "" {
			translationRows = append(translationRows, []string{c.name, c.english})
		}
	}

	datasets := []struct {
		def  staging.TableDef
		rows [][]string
	}{
		{staging.Customers, customerRows},
		{staging.Geolocation, geoRows},
		{staging.OrderItems, itemRows},
		{staging.OrderPayments, paymentRows},
		{staging.OrderReviews, reviewRows},
		{staging.Orders, orderRows},
		{staging.Products, productRows},
		{staging.Sellers, sellerRows},
		{staging.CategoryTranslation, translationRows},
	}
	for _, ds := range datasets {
		path := filepath.Join(dir, extract.SourceFile(ds.def))
		if err := writeCSV(path, ds.def.Columns, ds.rows); err != nil {
			return err
		}
	}

	logging.Info().
		Int("orders", len(orderRows)).
		Int("items", len(itemRows)).
		Int("customers", len(customerRows)).
		Int("products", len(productRows)).
		Int("sellers", len(sellerRows)).
		Dur("elapsed", time.Since(start)).
		Msg("Seeded source datasets")

	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
