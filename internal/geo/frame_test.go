package geo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"churn-dashboard/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDataset = `RowNumber,CustomerId,Surname,CreditScore,Geography,Gender,Age,Tenure,Balance,NumOfProducts,HasCrCard,IsActiveMember,EstimatedSalary,Exited
1,15634602,Hargrave,619,France,Female,42,2,0.00,1,1,1,101348.88,1
2,15647311,Hill,608,Spain,Female,41,1,83807.86,1,0,1,112542.58,0
3,15619304,Onio,502,France,Female,42,8,159660.80,3,1,0,113931.57,1
4,15701354,Boni,699,France,Female,39,1,0.00,2,0,0,93826.63,0
5,15737888,Mitchell,850,Spain,Female,43,2,125510.82,1,1,1,79084.10,0
6,15574012,Chu,645,Germany,Male,44,8,113755.78,2,1,0,149756.71,1
7,15592531,Bartlett,822,Italy,Male,50,7,0.00,2,1,1,10062.80,0
`

func loadTestFrame(t *testing.T) *Frame {
	t.Helper()
	frame, err := ParseDataset(strings.NewReader(testDataset))
	require.NoError(t, err)
	return frame
}

func TestParseDatasetAggregates(t *testing.T) {
	frame := loadTestFrame(t)

	fra, ok := frame.Stats("FRA")
	require.True(t, ok)
	assert.Equal(t, "France", fra.Country)
	assert.Equal(t, 3, fra.TotalCustomers)
	assert.Equal(t, 2, fra.ChurnedCustomers)
	assert.InDelta(t, 2.0/3.0, fra.ChurnRate, 1e-9)
	assert.InDelta(t, (619.0+502+699)/3, fra.AvgCreditScore, 1e-9)
	assert.InDelta(t, 41.0, fra.AvgAge, 1e-9)
	assert.InDelta(t, 159660.80/3, fra.AvgBalance, 1e-6)
	assert.InDelta(t, 11.0/3, fra.AvgTenure, 1e-9)
	assert.InDelta(t, 1.0/3, fra.ActiveMemberRate, 1e-9)

	esp, ok := frame.Stats("ESP")
	require.True(t, ok)
	assert.Equal(t, 0, esp.ChurnedCustomers)
	assert.Equal(t, 1.0, esp.ActiveMemberRate)

	// Rows from unmapped markets are skipped.
	_, ok = frame.Stats("ITA")
	assert.False(t, ok)
}

func TestParseDatasetErrors(t *testing.T) {
	_, err := ParseDataset(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ParseDataset(strings.NewReader("Geography,Exited\nFrance,1\n"))
	assert.ErrorContains(t, err, "missing column")

	_, err = ParseDataset(strings.NewReader("Geography,Exited,CreditScore,Age,Balance,Tenure,IsActiveMember\nFrance,1,abc,40,0,1,1\n"))
	assert.ErrorContains(t, err, "CreditScore")
}

func TestSeries(t *testing.T) {
	frame := loadTestFrame(t)

	series, err := frame.Series(TotalCustomers)
	require.NoError(t, err)
	assert.Equal(t, "Total Customers", series.Label)
	assert.Equal(t, []Point{
		{ISO: "FRA", Country: "France", Value: 3},
		{ISO: "DEU", Country: "Germany", Value: 1},
		{ISO: "ESP", Country: "Spain", Value: 2},
	}, series.Points)

	_, err = frame.Series("Avg_Salary")
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestSeriesCoversEveryMetric(t *testing.T) {
	frame := loadTestFrame(t)
	for _, opt := range MetricOptions() {
		series, err := frame.Series(opt.Value)
		require.NoError(t, err, opt.Value)
		assert.Len(t, series.Points, 3)
	}
}

func TestDetails(t *testing.T) {
	frame := loadTestFrame(t)

	details, err := frame.Details("ESP")
	require.NoError(t, err)
	assert.Equal(t, "Spain", details.Country)
	assert.Equal(t, []DetailRow{
		{"Total Customers", "2"},
		{"Churned Customers", "0"},
		{"Churn Rate", "0.0%"},
		{"Avg. Credit Score", "729.0"},
		{"Avg. Age", "42.0"},
		{"Avg. Balance", "$104,659.34"},
		{"Avg. Tenure", "1.5 years"},
		{"Active Member Rate", "100.0%"},
	}, details.Rows)

	_, err = frame.Details("GBR")
	assert.ErrorIs(t, err, ErrCountryNotAvailable)
}

func TestDetailsKnownCountryWithoutRows(t *testing.T) {
	frame, err := ParseDataset(strings.NewReader("Geography,Exited,CreditScore,Age,Balance,Tenure,IsActiveMember\nFrance,1,600,40,0,1,1\n"))
	require.NoError(t, err)

	_, err = frame.Details("DEU")
	assert.ErrorIs(t, err, ErrCountryNotAvailable)
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "datasets"), os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "datasets", "churn.csv"), []byte(testDataset), 0o600))

	provider, err := storage.NewLocalProvider(dir)
	require.NoError(t, err)

	frame, err := LoadDataset(context.Background(), provider, "datasets", "churn.csv")
	require.NoError(t, err)
	_, ok := frame.Stats("DEU")
	assert.True(t, ok)

	_, err = LoadDataset(context.Background(), provider, "datasets", "missing.csv")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}
