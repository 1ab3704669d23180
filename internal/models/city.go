package models

import "time"

// Location is one entry of the provider's location directory. It maps a
// human location name to the numeric city id used by all other lookups.
type Location struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// CityDetail is the resolved record for a city, including qibla metrics.
type CityDetail struct {
	ID                   int       `json:"id"`
	Name                 string    `json:"name"`
	Code                 string    `json:"code,omitempty"`
	GeographicQiblaAngle string    `json:"geographic_qibla_angle"`
	DistanceToKaaba      string    `json:"distance_to_kaaba"`
	QiblaAngle           string    `json:"qibla_angle"`
	City                 string    `json:"city"`
	CityEn               string    `json:"city_en,omitempty"`
	Country              string    `json:"country"`
	CountryEn            string    `json:"country_en"`
	CachedAt             time.Time `json:"cached_at"`
}

// CityEid holds a city's eid prayer times.
type CityEid struct {
	CityID         int    `json:"city_id"`
	EidAlAdhaHijri string `json:"eid_al_adha_hijri"`
	EidAlAdhaDate  string `json:"eid_al_adha_date"`
	EidAlAdhaTime  string `json:"eid_al_adha_time"`
	EidAlFitrHijri string `json:"eid_al_fitr_hijri"`
	EidAlFitrDate  string `json:"eid_al_fitr_date"`
	EidAlFitrTime  string `json:"eid_al_fitr_time"`
}

// Degree is the last known device bearing towards the qibla. A single row
// exists and is replaced on every location fix.
type Degree struct {
	Value     float64   `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
