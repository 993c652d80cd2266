package geo

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrCountryNotAvailable = errors.New("country data not available")
	ErrUnknownMetric       = errors.New("unknown metric")
)

type Country struct {
	ISO  string
	Name string
}

// Countries lists the markets covered by the dataset, in map order.
var Countries = []Country{
	{ISO: "FRA", Name: "France"},
	{ISO: "DEU", Name: "Germany"},
	{ISO: "ESP", Name: "Spain"},
}

func CountryByISO(iso string) (Country, bool) {
	i := slices.IndexFunc(Countries, func(c Country) bool { return c.ISO == iso })
	if i < 0 {
		return Country{}, false
	}
	return Countries[i], true
}

func countryByName(name string) (Country, bool) {
	i := slices.IndexFunc(Countries, func(c Country) bool { return c.Name == name })
	if i < 0 {
		return Country{}, false
	}
	return Countries[i], true
}

type Metric string

const (
	TotalCustomers   Metric = "Total_Customers"
	ChurnedCustomers Metric = "Churned_Customers"
	ChurnRate        Metric = "Churn_Rate"
	AvgCreditScore   Metric = "Avg_Credit_Score"
	AvgAge           Metric = "Avg_Age"
	AvgBalance       Metric = "Avg_Balance"
	AvgTenure        Metric = "Avg_Tenure"
	ActiveMemberRate Metric = "Active_Member_Rate"
)

type MetricOption struct {
	Value Metric
	Label string
}

var metricOptions = []MetricOption{
	{ChurnRate, "Churn Rate"},
	{TotalCustomers, "Total Customers"},
	{ChurnedCustomers, "Churned Customers"},
	{AvgCreditScore, "Avg. Credit Score"},
	{AvgAge, "Avg. Age"},
	{AvgBalance, "Avg. Balance"},
	{AvgTenure, "Avg. Tenure"},
	{ActiveMemberRate, "Active Member Rate"},
}

func MetricOptions() []MetricOption {
	return slices.Clone(metricOptions)
}

func (m Metric) Label() (string, error) {
	for _, opt := range metricOptions {
		if opt.Value == m {
			return opt.Label, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, string(m))
}

// CountryStats aggregates the customers of one country.
type CountryStats struct {
	ISO              string
	Country          string
	TotalCustomers   int
	ChurnedCustomers int
	ChurnRate        float64
	AvgCreditScore   float64
	AvgAge           float64
	AvgBalance       float64
	AvgTenure        float64
	ActiveMemberRate float64
}

func (s CountryStats) Value(m Metric) (float64, error) {
	switch m {
	case TotalCustomers:
		return float64(s.TotalCustomers), nil
	case ChurnedCustomers:
		return float64(s.ChurnedCustomers), nil
	case ChurnRate:
		return s.ChurnRate, nil
	case AvgCreditScore:
		return s.AvgCreditScore, nil
	case AvgAge:
		return s.AvgAge, nil
	case AvgBalance:
		return s.AvgBalance, nil
	case AvgTenure:
		return s.AvgTenure, nil
	case ActiveMemberRate:
		return s.ActiveMemberRate, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, string(m))
	}
}
