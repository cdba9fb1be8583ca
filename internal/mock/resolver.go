// Package mock synthesizes readings for demo mode from the city catalog.
package mock

import (
	"github.com/fakhrymubarak/weather-lookup/internal/catalog"
	"github.com/fakhrymubarak/weather-lookup/internal/model"
)

// Resolver returns canned readings. The zero value is ready to use.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the catalog reading for cityName, or the default city's
// reading when cityName is empty or unknown. Output depends only on input.
func (Resolver) Resolve(cityName string) model.WeatherReading {
	if e, ok := catalog.Lookup(cityName); ok {
		return e.Reading
	}
	return catalog.DefaultReading()
}
