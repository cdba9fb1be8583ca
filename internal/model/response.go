package model

// Response is a generic struct for API responses
type Response struct {
	Data    interface{} `json:"data,omitempty"`
	Error   *string     `json:"error,omitempty"`
	Message string      `json:"message"`
}

// Background is the decorative image chosen for a reading.
type Background struct {
	ImageURL string `json:"imageUrl"`
	Gradient string `json:"gradient"`
	// Source is "search" when the image came from image search, "static" otherwise.
	Source string `json:"source"`
}

// WeatherView is everything the UI needs to render one reading.
type WeatherView struct {
	Reading    WeatherReading `json:"reading"`
	Location   string         `json:"location"`
	DemoMode   bool           `json:"demoMode"`
	Condition  Condition      `json:"displayCondition"`
	Background Background     `json:"background"`
	Webcam     *Webcam        `json:"webcam,omitempty"`
	RadarURL   string         `json:"radarUrl"`
	RequestID  string         `json:"requestId,omitempty"`
}
