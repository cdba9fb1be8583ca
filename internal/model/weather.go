package model

import "fmt"

// Condition is the upstream weather[0].main category. Values outside the
// known set are carried through unchanged.
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionDrizzle      Condition = "Drizzle"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionSnow         Condition = "Snow"
	ConditionMist         Condition = "Mist"
	ConditionFog          Condition = "Fog"
	ConditionHaze         Condition = "Haze"
)

type PrecipitationKind string

const (
	PrecipitationSnow PrecipitationKind = "Snow"
	PrecipitationRain PrecipitationKind = "Rain"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Precipitation is the amount that fell over the last WindowHours (1 or 3).
type Precipitation struct {
	Kind        PrecipitationKind `json:"kind"`
	AmountMm    float64           `json:"amountMm"`
	WindowHours int               `json:"windowHours"`
}

// WeatherReading is the normalized snapshot handed to the view layer, whether
// it came from the live API or the demo catalog.
type WeatherReading struct {
	CityName      string         `json:"cityName"`
	CountryCode   string         `json:"countryCode"`
	Coordinates   Coordinates    `json:"coordinates"`
	Condition     Condition      `json:"conditionCategory"`
	Description   string         `json:"conditionDescription"`
	TemperatureC  float64        `json:"temperatureC"`
	FeelsLikeC    float64        `json:"feelsLikeC"`
	HumidityPct   int            `json:"humidityPct"`
	PressureHpa   int            `json:"pressureHpa"`
	WindSpeedMs   float64        `json:"windSpeedMs"`
	CloudinessPct int            `json:"cloudinessPct"`
	VisibilityM   *int           `json:"visibilityM,omitempty"`
	Precipitation *Precipitation `json:"precipitation,omitempty"`
	SunriseEpochS int64          `json:"sunriseEpochS"`
	SunsetEpochS  int64          `json:"sunsetEpochS"`
}

// Location returns the "City, CC" label shown above a reading.
func (w WeatherReading) Location() string {
	if w.CountryCode == "" {
		return w.CityName
	}
	return fmt.Sprintf("%s, %s", w.CityName, w.CountryCode)
}

// Clone returns a deep copy so callers cannot mutate shared optional fields.
func (w WeatherReading) Clone() WeatherReading {
	if w.VisibilityM != nil {
		v := *w.VisibilityM
		w.VisibilityM = &v
	}
	if w.Precipitation != nil {
		p := *w.Precipitation
		w.Precipitation = &p
	}
	return w
}

// Webcam is a live-camera embed for a city.
type Webcam struct {
	DisplayName string `json:"displayName"`
	EmbedURL    string `json:"embedUrl"`
	SourceLabel string `json:"sourceLabel"`
}
