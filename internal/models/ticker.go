package models

type TickerSnapshot struct {
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"timestamp"`
	Datetime  string  `json:"datetime"`
	Last      float64 `json:"last"`
	Volume    float64 `json:"volume"`
}

type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}
