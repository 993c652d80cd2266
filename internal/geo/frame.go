package geo

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"churn-dashboard/internal/storage"
)

const (
	colGeography    = "Geography"
	colExited       = "Exited"
	colCreditScore  = "CreditScore"
	colAge          = "Age"
	colBalance      = "Balance"
	colTenure       = "Tenure"
	colActiveMember = "IsActiveMember"
)

var requiredColumns = []string{colGeography, colExited, colCreditScore, colAge, colBalance, colTenure, colActiveMember}

// Frame holds the per-country aggregates of the customer dataset. It is
// immutable once loaded.
type Frame struct {
	stats map[string]CountryStats
}

type accumulator struct {
	total, churned, active            int
	creditScore, age, balance, tenure float64
}

func LoadDataset(ctx context.Context, provider storage.Provider, bucket, key string) (*Frame, error) {
	data, err := provider.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	frame, err := ParseDataset(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing dataset %s/%s: %w", bucket, key, err)
	}

	slog.Info("loaded churn dataset", "bucket", bucket, "key", key, "countries", len(frame.stats))
	return frame, nil
}

func ParseDataset(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset is empty")
		}
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("dataset is missing column %s", name)
		}
	}

	acc := make(map[string]*accumulator)
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		country, ok := countryByName(strings.TrimSpace(record[cols[colGeography]]))
		if !ok {
			skipped++
			continue
		}

		values := make(map[string]float64, len(requiredColumns)-1)
		for _, name := range requiredColumns[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[cols[name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s value %q", line, name, record[cols[name]])
			}
			values[name] = v
		}

		a, ok := acc[country.ISO]
		if !ok {
			a = &accumulator{}
			acc[country.ISO] = a
		}
		a.total++
		if values[colExited] == 1 {
			a.churned++
		}
		if values[colActiveMember] == 1 {
			a.active++
		}
		a.creditScore += values[colCreditScore]
		a.age += values[colAge]
		a.balance += values[colBalance]
		a.tenure += values[colTenure]
	}

	if skipped > 0 {
		slog.Warn("skipped dataset rows with unmapped geography", "rows", skipped)
	}

	frame := &Frame{stats: make(map[string]CountryStats, len(acc))}
	for iso, a := range acc {
		country, _ := CountryByISO(iso)
		n := float64(a.total)
		frame.stats[iso] = CountryStats{
			ISO:              iso,
			Country:          country.Name,
			TotalCustomers:   a.total,
			ChurnedCustomers: a.churned,
			ChurnRate:        float64(a.churned) / n,
			AvgCreditScore:   a.creditScore / n,
			AvgAge:           a.age / n,
			AvgBalance:       a.balance / n,
			AvgTenure:        a.tenure / n,
			ActiveMemberRate: float64(a.active) / n,
		}
	}
	return frame, nil
}

func (f *Frame) Stats(iso string) (CountryStats, bool) {
	s, ok := f.stats[iso]
	return s, ok
}

type Point struct {
	ISO     string
	Country string
	Value   float64
}

// Series is the data behind one choropleth render.
type Series struct {
	Metric Metric
	Label  string
	Points []Point
}

func (f *Frame) Series(metric Metric) (Series, error) {
	label, err := metric.Label()
	if err != nil {
		return Series{}, err
	}

	series := Series{Metric: metric, Label: label, Points: []Point{}}
	for _, c := range Countries {
		s, ok := f.stats[c.ISO]
		if !ok {
			continue
		}
		v, err := s.Value(metric)
		if err != nil {
			return Series{}, err
		}
		series.Points = append(series.Points, Point{ISO: c.ISO, Country: c.Name, Value: v})
	}
	return series, nil
}
