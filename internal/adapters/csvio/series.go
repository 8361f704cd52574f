package csvio

// series.go — carga de la serie histórica {fecha, precio, ahr999} desde CSV.
//
// Formato esperado: una fila por día, columnas date,btc_price,ahr999. La
// cabecera es opcional y la columna ahr999 puede venir vacía: esas filas se
// cargan con NaN y domain.EnrichSeries puede completarlas después.

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/ahrbot/internal/domain"
)

// dateLayouts son los formatos de fecha aceptados, en orden de preferencia.
var dateLayouts = []string{"20060102", "2006-01-02", "2006/01/02"}

// LoadSeries lee la serie histórica del CSV en path, en orden de archivo.
func LoadSeries(path string) ([]domain.SeriesRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvio.LoadSeries: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvio.LoadSeries: parse %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csvio.LoadSeries: %q is empty", path)
	}

	series := make([]domain.SeriesRow, 0, len(records))
	for i, record := range records {
		if i == 0 && isHeader(record) {
			continue
		}
		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("csvio.LoadSeries: %q line %d: %w", path, i+1, err)
		}
		series = append(series, row)
	}

	return series, nil
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	_, err := parseDate(record[0])
	return err != nil
}

func parseRow(record []string) (domain.SeriesRow, error) {
	if len(record) < 2 {
		return domain.SeriesRow{}, fmt.Errorf("expected at least date,price, got %d columns", len(record))
	}

	date, err := parseDate(record[0])
	if err != nil {
		return domain.SeriesRow{}, err
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return domain.SeriesRow{}, fmt.Errorf("price %q: %w", record[1], err)
	}

	indicator := math.NaN()
	if len(record) >= 3 && strings.TrimSpace(record[2]) != "" {
		indicator, err = strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return domain.SeriesRow{}, fmt.Errorf("indicator %q: %w", record[2], err)
		}
	}

	return domain.SeriesRow{Date: date, Price: price, Indicator: indicator}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
