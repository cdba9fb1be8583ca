package repository

import "github.com/fakhrymubarak/weather-lookup/internal/model"

// Normalize maps an OpenWeatherMap body onto the reading shape used by the UI.
// Snow wins over rain, and the 1h volume over the 3h one.
func Normalize(data *model.OpenWeatherMapResponse) model.WeatherReading {
	reading := model.WeatherReading{
		CityName:      data.Name,
		CountryCode:   data.Sys.Country,
		Coordinates:   model.Coordinates{Lat: data.Coord.Lat, Lon: data.Coord.Lon},
		TemperatureC:  data.Main.Temp,
		FeelsLikeC:    data.Main.FeelsLike,
		HumidityPct:   data.Main.Humidity,
		PressureHpa:   data.Main.Pressure,
		WindSpeedMs:   data.Wind.Speed,
		CloudinessPct: data.Clouds.All,
		SunriseEpochS: data.Sys.Sunrise,
		SunsetEpochS:  data.Sys.Sunset,
	}
	if len(data.Weather) > 0 {
		reading.Condition = model.Condition(data.Weather[0].Main)
		reading.Description = data.Weather[0].Description
	}
	if data.Visibility != nil {
		v := *data.Visibility
		reading.VisibilityM = &v
	}
	if p := precipitation(model.PrecipitationSnow, data.Snow); p != nil {
		reading.Precipitation = p
	} else {
		reading.Precipitation = precipitation(model.PrecipitationRain, data.Rain)
	}
	return reading
}

func precipitation(kind model.PrecipitationKind, volumes map[string]float64) *model.Precipitation {
	if volumes == nil {
		return nil
	}
	if v, ok := volumes["1h"]; ok {
		return &model.Precipitation{Kind: kind, AmountMm: v, WindowHours: 1}
	}
	if v, ok := volumes["3h"]; ok {
		return &model.Precipitation{Kind: kind, AmountMm: v, WindowHours: 3}
	}
	return nil
}
