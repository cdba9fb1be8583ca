package background

import (
	"github.com/fakhrymubarak/weather-lookup/internal/model"
)

// Gradient darkens any background so the card text stays readable.
const Gradient = "linear-gradient(rgba(0, 0, 0, 0.4), rgba(0, 0, 0, 0.6))"

var staticImages = map[model.Condition]string{
	model.ConditionClear:        "https://images.unsplash.com/photo-1601297183305-6df142704ea2?w=1920&q=80",
	model.ConditionClouds:       "https://images.unsplash.com/photo-1534088568595-a066f410bcda?w=1920&q=80",
	model.ConditionRain:         "https://images.unsplash.com/photo-1519692933481-e162a57d6721?w=1920&q=80",
	model.ConditionDrizzle:      "https://images.unsplash.com/photo-1556485689-33e55ab56127?w=1920&q=80",
	model.ConditionThunderstorm: "https://images.unsplash.com/photo-1605727216801-e27ce1d0cc28?w=1920&q=80",
	model.ConditionSnow:         "https://images.unsplash.com/photo-1491002052546-bf38f186af56?w=1920&q=80",
	model.ConditionMist:         "https://images.unsplash.com/photo-1487621167305-5d248087c724?w=1920&q=80",
	model.ConditionFog:          "https://images.unsplash.com/photo-1485236715568-ddc5ee6ca227?w=1920&q=80",
	model.ConditionHaze:         "https://images.unsplash.com/photo-1500740516770-92bd004b996e?w=1920&q=80",
}

var searchTerms = map[model.Condition]string{
	model.ConditionClear:        "sunny clear sky blue",
	model.ConditionClouds:       "cloudy sky clouds",
	model.ConditionRain:         "rain rainy weather",
	model.ConditionDrizzle:      "drizzle light rain",
	model.ConditionThunderstorm: "thunderstorm lightning storm",
	model.ConditionSnow:         "snow winter snowy",
	model.ConditionMist:         "misty fog morning",
	model.ConditionFog:          "foggy fog mist",
	model.ConditionHaze:         "hazy atmosphere",
}

// few clouds read as sunny
const clearSkyCloudiness = 20

// DisplayCondition is the condition used for decoration: Clouds below 20%
// cloudiness is shown as Clear.
func DisplayCondition(r model.WeatherReading) model.Condition {
	if r.Condition == model.ConditionClouds && r.CloudinessPct < clearSkyCloudiness {
		return model.ConditionClear
	}
	return r.Condition
}

// StaticImage returns the bundled image for cond, Clear for unknown conditions.
func StaticImage(cond model.Condition) string {
	if url, ok := staticImages[cond]; ok {
		return url
	}
	return staticImages[model.ConditionClear]
}

// SearchQuery builds the image-search text for cond, with city appended when set.
func SearchQuery(cond model.Condition, city string) string {
	q, ok := searchTerms[cond]
	if !ok {
		q = "weather sky"
	}
	if city != "" {
		q += " " + city
	}
	return q
}
