package core

// Normalize returns a copy of the settings with every optional field made
// safe to use: nil slices become empty, nil maps become empty maps and the
// tax rate is clamped into [0,100]. Persisted documents may predate newer
// fields, so every read from a store passes through here before the
// aggregation code sees the value.
func (s Settings) Normalize() Settings {
	out := s.Clone()
	if out.Sports == nil {
		out.Sports = []SportSetting{}
	}
	for i := range out.Sports {
		sp := &out.Sports[i]
		if sp.LessonTypes == nil {
			sp.LessonTypes = []LessonTypeConfig{}
		}
		if sp.Locations == nil {
			sp.Locations = []LocationConfig{}
		}
		if sp.Prices == nil {
			sp.Prices = map[string]Money{}
		}
		if sp.Costs == nil {
			sp.Costs = map[string]map[string]Money{}
		}
	}
	if out.TaxRate < 0 {
		out.TaxRate = 0
	}
	if out.TaxRate > 100 {
		out.TaxRate = 100
	}
	return out
}
