package memory

import "docrepo/internal/model"

// SeedDocuments returns the published documents every fresh process starts with.
func SeedDocuments() []model.Document {
	return []model.Document{
		{
			ID:          1,
			Title:       "Crop Protection Guide",
			Description: "Comprehensive guide on crop protection",
			Department:  "Agriculture",
			Level:       "Level 5",
			DocType:     "Notes",
			Status:      model.StatusPublished,
			Date:        "2025-01-20",
			SubmittedBy: "System",
		},
		{
			ID:          2,
			Title:       "Business Plans",
			Description: "Guide to creating business plans",
			Department:  "Business",
			Level:       "Level 6",
			DocType:     "Curriculum",
			Status:      model.StatusPublished,
			Date:        "2025-01-18",
			SubmittedBy: "System",
		},
		{
			ID:          3,
			Title:       "Python Basics",
			Description: "Introduction to Python programming",
			Department:  "ICT",
			Level:       "Level 4",
			DocType:     "Notes",
			Status:      model.StatusPublished,
			Date:        "2025-01-22",
			SubmittedBy: "System",
		},
	}
}
