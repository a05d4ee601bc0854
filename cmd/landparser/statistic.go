package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mishannn/landparser-go/internal/summary"
)

func nullableInt32(v *int) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}

// statisticArgs binds a summary row in the Go types the clickhouse driver expects for apartment_price_summary columns.
func statisticArgs(timestamp time.Time, row summary.Row) []any {
	return []any{
		timestamp.UTC(),
		row.District,
		row.Neighborhood,
		row.Name,
		nullableInt32(row.Year),
		nullableInt32(row.Units),
		row.Area,
		uint32(row.Sale.Count),
		row.Sale.Median,
		uint32(row.Lease.Count),
		row.Lease.Median,
		row.Gap,
	}
}

func saveStatistic(db *sql.DB, timestamp time.Time, statistic []summary.Row) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("can't begin statistic tx: %w", err)
	}
	defer tx.Rollback()

	batch, err := tx.Prepare("INSERT INTO apartment_price_summary (date_time, district, neighborhood, complex_name, completion_year, household_count, supply_area, sale_count, sale_median, lease_count, lease_median, gap) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("can't prepare statistic SQL: %w", err)
	}
	defer batch.Close()

	for _, row := range statistic {
		_, err := batch.Exec(statisticArgs(timestamp, row)...)
		if err != nil {
			return fmt.Errorf("can't write statistic row: %w", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("can't write statistic data: %w", err)
	}

	return nil
}
