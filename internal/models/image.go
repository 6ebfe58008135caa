package models

type ImageSource string

const (
	SourceUnsplash ImageSource = "unsplash"
	SourcePixabay  ImageSource = "pixabay"
	SourceDefault  ImageSource = "default"
)

type Attribution struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

type ImageResult struct {
	URL         string      `json:"url"`
	Attribution Attribution `json:"attribution"`
	Source      ImageSource `json:"source"`
}
