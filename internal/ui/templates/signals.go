package templates

import "encoding/json"

// Signals is the datastar signal set of the page. Every SSE request carries
// it back as the current filter state.
type Signals struct {
	Region      string `json:"region"`
	State       string `json:"state"`
	Category    string `json:"category"`
	SubCategory string `json:"subCategory"`
	From        string `json:"from"`
	To          string `json:"to"`
	Compare     bool   `json:"compare"`
	KPI         string `json:"kpi"`
}

func (s Signals) FilterState() FilterState {
	return FilterState(s)
}

func SignalsOf(state FilterState) Signals {
	return Signals(state)
}

func SignalsJSON(state FilterState) ([]byte, error) {
	s := SignalsOf(state)
	s.Region = orAll(s.Region)
	s.State = orAll(s.State)
	s.Category = orAll(s.Category)
	s.SubCategory = orAll(s.SubCategory)
	return json.Marshal(s)
}
