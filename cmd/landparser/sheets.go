package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/mishannn/landparser-go/internal/summary"
	"github.com/mishannn/landparser-go/internal/utils"
)

const sheetsAppendBatchSize = 500

func sheetValues(t time.Time, areaName string, rows []summary.Row) [][]any {
	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		value := []any{t.UTC().Format(time.DateTime), areaName}
		for _, v := range row.Values() {
			if v == nil {
				v = ""
			}
			value = append(value, v)
		}
		values = append(values, value)
	}
	return values
}

func saveSummaryToSheets(ctx context.Context, credentialsFilePath string, spreadsheetId string, dataRange string, t time.Time, areaName string, rows []summary.Row) error {
	b, err := os.ReadFile(credentialsFilePath)
	if err != nil {
		return fmt.Errorf("can't read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(b, "https://www.googleapis.com/auth/spreadsheets")
	if err != nil {
		return fmt.Errorf("can't read JWT config from json: %w", err)
	}
	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return fmt.Errorf("can't create sheets service: %w", err)
	}

	for _, chunk := range utils.Chunks(sheetValues(t, areaName, rows), sheetsAppendBatchSize) {
		if len(chunk) == 0 {
			continue
		}

		vr := sheets.ValueRange{Values: chunk}
		_, err = srv.Spreadsheets.Values.Append(spreadsheetId, dataRange, &vr).ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("can't write data to sheet: %w", err)
		}
	}

	return nil
}
