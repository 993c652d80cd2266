package geo

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type DetailRow struct {
	Metric string
	Value  string
}

type CountryDetails struct {
	ISO     string
	Country string
	Rows    []DetailRow
	Stats   CountryStats
}

// Details returns the table shown when a country is clicked on the map.
func (f *Frame) Details(iso string) (CountryDetails, error) {
	country, ok := CountryByISO(iso)
	if !ok {
		return CountryDetails{}, fmt.Errorf("%w: %q", ErrCountryNotAvailable, iso)
	}
	s, ok := f.stats[country.ISO]
	if !ok {
		return CountryDetails{}, fmt.Errorf("%w: no customers for %s", ErrCountryNotAvailable, country.Name)
	}

	p := message.NewPrinter(language.English)
	return CountryDetails{
		ISO:     country.ISO,
		Country: country.Name,
		Rows: []DetailRow{
			{"Total Customers", p.Sprintf("%d", s.TotalCustomers)},
			{"Churned Customers", p.Sprintf("%d", s.ChurnedCustomers)},
			{"Churn Rate", p.Sprintf("%.1f%%", s.ChurnRate*100)},
			{"Avg. Credit Score", p.Sprintf("%.1f", s.AvgCreditScore)},
			{"Avg. Age", p.Sprintf("%.1f", s.AvgAge)},
			{"Avg. Balance", p.Sprintf("$%.2f", s.AvgBalance)},
			{"Avg. Tenure", p.Sprintf("%.1f years", s.AvgTenure)},
			{"Active Member Rate", p.Sprintf("%.1f%%", s.ActiveMemberRate*100)},
		},
		Stats: s,
	}, nil
}
