package models

// CategoryStat is the number of visible templates in a category.
type CategoryStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TagStat is the number of visible templates carrying a tag.
type TagStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
