package models

type ResolutionMetadata struct {
	Destinations  int                 `json:"destinations"`
	ImageSources  map[ImageSource]int `json:"imageSources"`
	MockWeather   int                 `json:"mockWeather"`
	ResolveTimeMs int64               `json:"resolveTimeMs"`
}

// RecommendationResponse is a fully resolved bundle with its images and
// forecasts keyed by destination name.
type RecommendationResponse struct {
	Survey          SurveyInput                `json:"survey"`
	Metadata        ResolutionMetadata         `json:"metadata"`
	Recommendations Bundle                     `json:"recommendations"`
	Images          map[string]ImageResult     `json:"images"`
	Weather         map[string]LocationWeather `json:"weather"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
