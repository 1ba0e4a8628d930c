//-------------------------------------------------------------------------
//
// Olist Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen generates synthetic Olist-shaped source datasets so the
// pipeline can be exercised without the real extracts.
package datagen

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

const hexDigits = "0123456789abcdef"

// Faker provides fake data generation using gofakeit.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a new Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a new Faker with a specific seed for reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// HexID generates a 32-character lowercase hex identifier, the shape of
// every Olist business key.
func (f *Faker) HexID() string {
	b := make([]byte, 32)
	for i := range b {
		b[i] = hexDigits[f.faker.IntRange(0, 15)]
	}
	return string(b)
}

// City generates a random city name.
func (f *Faker) City() string {
	return f.faker.City()
}

// State generates a random two-letter state abbreviation.
func (f *Faker) State() string {
	return f.faker.StateAbr()
}

// ZipPrefix generates a five-digit zip code prefix.
func (f *Faker) ZipPrefix() int {
	return f.faker.IntRange(1003, 99990)
}

// Price generates a random price in the given range.
func (f *Faker) Price(min, max float64) float64 {
	return f.faker.Price(min, max)
}

// Int generates a random integer in the given range (inclusive).
func (f *Faker) Int(min, max int) int {
	return f.faker.IntRange(min, max)
}

// Float64 generates a random float in the given range.
func (f *Faker) Float64(min, max float64) float64 {
	return f.faker.Float64Range(min, max)
}

// Bool generates a random boolean.
func (f *Faker) Bool() bool {
	return f.faker.Bool()
}

// Sentence generates a sentence with the given word count.
func (f *Faker) Sentence(wordCount int) string {
	return f.faker.Sentence(wordCount)
}

// DateRange generates a random time between start and end.
func (f *Faker) DateRange(start, end time.Time) time.Time {
	return f.faker.DateRange(start, end)
}

// Choose returns a random element from the given slice.
func Choose[T any](f *Faker, items []T) T {
	return items[f.faker.IntRange(0, len(items)-1)]
}
