package models

type TempRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Forecast struct {
	Date        string    `json:"date"`
	Temp        TempRange `json:"temp"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}

type LocationWeather struct {
	City      string     `json:"city"`
	Country   string     `json:"country"`
	Forecasts []Forecast `json:"forecasts"`
	IsMock    bool       `json:"isMock"`
}
