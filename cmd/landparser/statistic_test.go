package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/column"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishannn/landparser-go/internal/summary"
)

const insertStatistic = `INSERT INTO apartment_price_summary`

func testSummary() []summary.Row {
	year, units := 2015, 500
	saleMedian, gap := 9e8, 4e8
	leaseMedian := 5e8

	return []summary.Row{
		{
			District: "강남구", Neighborhood: "역삼동", Name: "래미안", Year: &year, Units: &units, Area: "84A",
			Sale:  summary.Stats{Count: 1, Median: &saleMedian},
			Lease: summary.Stats{Count: 1, Median: &leaseMedian},
			Gap:   &gap,
		},
		{District: "강남구", Neighborhood: "역삼동", Name: "자이", Area: "59B"},
	}
}

func TestSaveStatistic(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.FixedZone("KST", 9*60*60))

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(insertStatistic)
	prep.ExpectExec().
		WithArgs(ts.UTC(), "강남구", "역삼동", "래미안", int64(2015), int64(500), "84A", int64(1), 9e8, int64(1), 5e8, 4e8).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs(ts.UTC(), "강남구", "역삼동", "자이", nil, nil, "59B", int64(0), nil, int64(0), nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, saveStatistic(db, ts, testSummary()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveStatistic_RowError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectPrepare(insertStatistic).ExpectExec().WillReturnError(errors.New("table is read only"))
	mock.ExpectRollback()

	err = saveStatistic(db, time.Now(), testSummary())
	assert.ErrorContains(t, err, "can't write statistic row")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveStatistic_BeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err = saveStatistic(db, time.Now(), testSummary())
	assert.ErrorContains(t, err, "can't begin statistic tx")
}

var statisticColumns = []struct {
	name string
	typ  column.Type
}{
	{"date_time", "DateTime"},
	{"district", "String"},
	{"neighborhood", "String"},
	{"complex_name", "String"},
	{"completion_year", "Nullable(Int32)"},
	{"household_count", "Nullable(Int32)"},
	{"supply_area", "String"},
	{"sale_count", "UInt32"},
	{"sale_median", "Nullable(Float64)"},
	{"lease_count", "UInt32"},
	{"lease_median", "Nullable(Float64)"},
	{"gap", "Nullable(Float64)"},
}

func TestStatisticArgs_MatchClickHouseColumns(t *testing.T) {
	migration, err := embedMigrations.ReadFile("migrations/00001_create_apartment_price_summary.sql")
	require.NoError(t, err)

	for _, c := range statisticColumns {
		assert.True(t, strings.Contains(string(migration), c.name+" "+string(c.typ)), c.name)
	}

	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, row := range testSummary() {
		args := statisticArgs(ts, row)
		require.Len(t, args, len(statisticColumns))

		for i, c := range statisticColumns {
			col, err := c.typ.Column(c.name, nil)
			require.NoError(t, err)
			assert.NoError(t, col.AppendRow(args[i]), "%s <- %T", c.name, args[i])
		}
	}
}
