package taxonomy

// Default returns the built-in taxonomy used when TAXONOMY_PATH is not set.
// Category weights are points out of 100.
func Default() Taxonomy {
	return Taxonomy{
		Categories: []Category{
			{
				Name:   "Technical Skills",
				Weight: 40,
				Keywords: []Keyword{
					{Term: "python", Weight: 2},
					{Term: "javascript", Weight: 2},
					{Term: "sql", Weight: 2},
					{Term: "git", Weight: 1},
					{Term: "docker", Weight: 1},
					{Term: "api", Weight: 1},
					{Term: "cloud", Weight: 1},
					{Term: "testing", Weight: 1},
				},
			},
			{
				Name:   "Experience",
				Weight: 30,
				Keywords: []Keyword{
					{Term: "developed", Weight: 2},
					{Term: "managed", Weight: 2},
					{Term: "led", Weight: 1},
					{Term: "designed", Weight: 1},
					{Term: "delivered", Weight: 1},
					{Term: "improved", Weight: 1},
				},
			},
			{
				Name:   "Education",
				Weight: 15,
				Keywords: []Keyword{
					{Term: "degree", Weight: 2},
					{Term: "bachelor", Weight: 1},
					{Term: "master", Weight: 1},
					{Term: "certification", Weight: 1},
				},
			},
			{
				Name:   "Soft Skills",
				Weight: 15,
				Keywords: []Keyword{
					{Term: "communication", Weight: 2},
					{Term: "teamwork", Weight: 1},
					{Term: "leadership", Weight: 1},
					{Term: "collaboration", Weight: 1},
				},
			},
		},
	}
}
