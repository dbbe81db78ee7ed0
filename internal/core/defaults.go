package core

func cents(euros int64) Money {
	return Money{Cents: euros * 100}
}

// DefaultSettings is the seed configuration for a fresh account and for the
// demo backend: two sports with their lesson types, locations, unit prices
// and the per-location cost matrix.
func DefaultSettings() Settings {
	return Settings{
		Sports: []SportSetting{
			{
				ID:   "tennis",
				Name: "Tennis",
				LessonTypes: []LessonTypeConfig{
					{ID: "t-single", Name: "Singola"},
					{ID: "t-double", Name: "Doppia"},
					{ID: "t-group", Name: "Gruppo Tennis"},
				},
				Locations: []LocationConfig{
					{ID: "sede-a", Name: "Sede Principale A"},
					{ID: "sede-b", Name: "Sede Secondaria B"},
				},
				Prices: map[string]Money{
					"t-single": cents(30),
					"t-double": cents(40),
					"t-group":  cents(60),
				},
				Costs: map[string]map[string]Money{
					"sede-a": {
						"t-single": cents(10),
						"t-double": cents(12),
						"t-group":  cents(15),
					},
					"sede-b": {
						"t-single": cents(15),
						"t-double": cents(18),
						"t-group":  cents(20),
					},
				},
			},
			{
				ID:   "padel",
				Name: "Padel",
				LessonTypes: []LessonTypeConfig{
					{ID: "p-double", Name: "Partita Doppia"},
					{ID: "p-group", Name: "Lezione Gruppo"},
				},
				Locations: []LocationConfig{
					{ID: "padel-center", Name: "Padel Center"},
				},
				Prices: map[string]Money{
					"p-double": cents(35),
					"p-group":  cents(55),
				},
				Costs: map[string]map[string]Money{
					"padel-center": {
						"p-double": cents(20),
						"p-group":  cents(25),
					},
				},
			},
		},
	}
}
