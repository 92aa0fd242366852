package models

import "time"

type Transaction struct {
	OrderID     string
	OrderDate   time.Time
	Region      string
	State       string
	Category    string
	SubCategory string
	ProductName string
	Sales       float64
	Quantity    int
	Profit      float64
}

// Measures are the three summable base measures of a set of transactions.
type Measures struct {
	Sales    float64 `json:"sales"`
	Quantity int     `json:"quantity"`
	Profit   float64 `json:"profit"`
}

func (m *Measures) Add(tx Transaction) {
	m.Sales += tx.Sales
	m.Quantity += tx.Quantity
	m.Profit += tx.Profit
}

// MarginRate is profit over sales, 0 when there are no sales.
func (m Measures) MarginRate() float64 {
	if m.Sales == 0 {
		return 0
	}
	return m.Profit / m.Sales
}

type GroupRow struct {
	Key        string  `json:"key"`
	Sales      float64 `json:"sales"`
	Quantity   int     `json:"quantity"`
	Profit     float64 `json:"profit"`
	MarginRate float64 `json:"margin_rate"`
}

func (g GroupRow) Measures() Measures {
	return Measures{Sales: g.Sales, Quantity: g.Quantity, Profit: g.Profit}
}

type TimePoint struct {
	Date       time.Time `json:"date"`
	Sales      float64   `json:"sales"`
	Quantity   int       `json:"quantity"`
	Profit     float64   `json:"profit"`
	MarginRate float64   `json:"margin_rate"`
}

func (p TimePoint) Measures() Measures {
	return Measures{Sales: p.Sales, Quantity: p.Quantity, Profit: p.Profit}
}

type SunburstNode struct {
	Category    string  `json:"category"`
	SubCategory string  `json:"sub_category"`
	Sales       float64 `json:"sales"`
	Quantity    int     `json:"quantity"`
	Profit      float64 `json:"profit"`
	MarginRate  float64 `json:"margin_rate"`
}
