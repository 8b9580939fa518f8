package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const admissionSheetTitle = "Applicants"

// AdmissionExporter scrapes the admissions list from the school website and
// mirrors it into a Google spreadsheet worksheet.
type AdmissionExporter struct {
	url           string
	spreadsheetID string
	service       *sheets.Service
	client        *http.Client
}

func NewAdmissionExporter(ctx context.Context, url, spreadsheetID, credentialsFile string) (*AdmissionExporter, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading google credentials: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}
	service, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &AdmissionExporter{
		url:           url,
		spreadsheetID: spreadsheetID,
		service:       service,
		client:        &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Export scrapes the list and rewrites the worksheet, creating it on first
// run. Returns the number of exported rows.
func (a *AdmissionExporter) Export(ctx context.Context) (int, error) {
	rows, err := a.scrape()
	if err != nil {
		return 0, err
	}
	sheetID, err := a.ensureSheet(ctx)
	if err != nil {
		return 0, err
	}

	values := &sheets.ValueRange{Values: rows}
	_, err = a.service.Spreadsheets.Values.
		Update(a.spreadsheetID, admissionSheetTitle+"!A1", values).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("writing sheet values: %w", err)
	}

	// Bold the header row.
	_, err = a.service.Spreadsheets.BatchUpdate(a.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			RepeatCell: &sheets.RepeatCellRequest{
				Range:  &sheets.GridRange{SheetId: sheetID, StartRowIndex: 0, EndRowIndex: 1},
				Cell:   &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true}}},
				Fields: "userEnteredFormat.textFormat.bold",
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("formatting sheet: %w", err)
	}
	return len(rows), nil
}

// scrape pulls the admissions table and normalizes each cell into trimmed,
// space-collapsed text.
func (a *AdmissionExporter) scrape() ([][]interface{}, error) {
	resp, err := a.client.Get(a.url)
	if err != nil {
		return nil, fmt.Errorf("fetching admission page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching admission page: status %s", resp.Status)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing admission page: %w", err)
	}

	var rows [][]interface{}
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		var row []interface{}
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, strings.Join(strings.Fields(cell.Text()), " "))
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})
	if len(rows) == 0 {
		return nil, &NotFoundError{Kind: "admission table", ID: a.url}
	}
	return rows, nil
}

// ensureSheet returns the worksheet ID, creating the worksheet when missing.
func (a *AdmissionExporter) ensureSheet(ctx context.Context) (int64, error) {
	spreadsheet, err := a.service.Spreadsheets.Get(a.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("reading spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == admissionSheetTitle {
			return sheet.Properties.SheetId, nil
		}
	}

	reply, err := a.service.Spreadsheets.BatchUpdate(a.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: admissionSheetTitle}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("creating worksheet: %w", err)
	}
	return reply.Replies[0].AddSheet.Properties.SheetId, nil
}
