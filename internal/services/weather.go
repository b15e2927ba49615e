package services

import (
	"context"
	"math/rand"
	"time"
)

var weatherPhrases = []string{
	"It looks like a sunny day out there",
	"It seems a little cloudy today",
	"I hear it might rain later, so stay dry",
	"It's a bit chilly today",
	"The weather looks pleasant today",
}

// WeatherService supplies the small talk used in greetings
type WeatherService struct {
	pick func(n int) int
}

// NewWeatherService creates a weather service that picks a random phrase
func NewWeatherService() *WeatherService {
	return &WeatherService{pick: rand.Intn}
}

// TimeOfDay returns morning, afternoon or evening for the given time
func (w *WeatherService) TimeOfDay(now time.Time) string {
	switch hour := now.Hour(); {
	case hour < 12:
		return "morning"
	case hour < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

// WeatherPhrase returns a canned weather remark
func (w *WeatherService) WeatherPhrase(ctx context.Context) string {
	return weatherPhrases[w.pick(len(weatherPhrases))]
}
