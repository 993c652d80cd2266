package api

type Model struct {
	Id   string
	Name string
}

type PredictRequest struct {
	ModelId string
	Fields  map[string]any
}

// PredictForm mirrors the fields of the prediction page when they are sent as a
// query string or url-encoded form.
type PredictForm struct {
	ModelId      string `schema:"model_id"`
	CreditScore  string `schema:"credit_score"`
	Gender       string `schema:"gender"`
	Age          string `schema:"age"`
	Balance      string `schema:"balance"`
	Products     string `schema:"products"`
	HasCard      string `schema:"has_card"`
	Tenure       string `schema:"tenure"`
	ActiveMember string `schema:"active_member"`
	Salary       string `schema:"salary"`
	Country      string `schema:"country"`
}

func (f PredictForm) Fields() map[string]any {
	fields := map[string]any{
		"credit_score":  f.CreditScore,
		"gender":        f.Gender,
		"age":           f.Age,
		"balance":       f.Balance,
		"has_card":      f.HasCard,
		"tenure":        f.Tenure,
		"active_member": f.ActiveMember,
		"salary":        f.Salary,
		"country":       f.Country,
	}
	if f.Products != "" {
		fields["products"] = f.Products
	}
	return fields
}

type MapQuery struct {
	Metric string `schema:"metric"`
}
