package store

import (
	"encoding/json"
	"fmt"

	"lezioni/internal/core"
)

// Serialized shape of the settings document. Amounts travel as integer
// cents so the document stays exact regardless of locale.
type settingsDoc struct {
	Sports  []sportDoc `json:"sports"`
	TaxRate float64    `json:"taxRate"`
}

type sportDoc struct {
	ID          string                      `json:"id"`
	Name        string                      `json:"name"`
	LessonTypes []namedDoc                  `json:"lessonTypes"`
	Locations   []namedDoc                  `json:"locations"`
	Prices      map[string]int64            `json:"prices"`
	Costs       map[string]map[string]int64 `json:"costs"`
}

type namedDoc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EncodeSettings serializes the settings document for storage.
func EncodeSettings(s core.Settings) ([]byte, error) {
	s = s.Normalize()
	doc := settingsDoc{TaxRate: s.TaxRate, Sports: make([]sportDoc, 0, len(s.Sports))}
	for _, sp := range s.Sports {
		sd := sportDoc{
			ID:          sp.ID,
			Name:        sp.Name,
			LessonTypes: make([]namedDoc, 0, len(sp.LessonTypes)),
			Locations:   make([]namedDoc, 0, len(sp.Locations)),
			Prices:      make(map[string]int64, len(sp.Prices)),
			Costs:       make(map[string]map[string]int64, len(sp.Costs)),
		}
		for _, lt := range sp.LessonTypes {
			sd.LessonTypes = append(sd.LessonTypes, namedDoc{ID: lt.ID, Name: lt.Name})
		}
		for _, loc := range sp.Locations {
			sd.Locations = append(sd.Locations, namedDoc{ID: loc.ID, Name: loc.Name})
		}
		for ltID, price := range sp.Prices {
			sd.Prices[ltID] = price.Cents
		}
		for locID, row := range sp.Costs {
			costs := make(map[string]int64, len(row))
			for ltID, cost := range row {
				costs[ltID] = cost.Cents
			}
			sd.Costs[locID] = costs
		}
		doc.Sports = append(doc.Sports, sd)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return out, nil
}

// DecodeSettings parses a stored settings document. The result is
// normalized, so missing collections come back empty rather than nil.
func DecodeSettings(data []byte) (core.Settings, error) {
	var doc settingsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return core.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	s := core.Settings{TaxRate: doc.TaxRate, Sports: make([]core.SportSetting, 0, len(doc.Sports))}
	for _, sd := range doc.Sports {
		sp := core.SportSetting{
			ID:          sd.ID,
			Name:        sd.Name,
			LessonTypes: make([]core.LessonTypeConfig, 0, len(sd.LessonTypes)),
			Locations:   make([]core.LocationConfig, 0, len(sd.Locations)),
			Prices:      make(map[string]core.Money, len(sd.Prices)),
			Costs:       make(map[string]map[string]core.Money, len(sd.Costs)),
		}
		for _, lt := range sd.LessonTypes {
			sp.LessonTypes = append(sp.LessonTypes, core.LessonTypeConfig{ID: lt.ID, Name: lt.Name})
		}
		for _, loc := range sd.Locations {
			sp.Locations = append(sp.Locations, core.LocationConfig{ID: loc.ID, Name: loc.Name})
		}
		for ltID, cents := range sd.Prices {
			sp.Prices[ltID] = core.Money{Cents: cents}
		}
		for locID, row := range sd.Costs {
			costs := make(map[string]core.Money, len(row))
			for ltID, cents := range row {
				costs[ltID] = core.Money{Cents: cents}
			}
			sp.Costs[locID] = costs
		}
		s.Sports = append(s.Sports, sp)
	}
	return s.Normalize(), nil
}
