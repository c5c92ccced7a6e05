package domain

// SliderBounds describes the year-range control.
type SliderBounds struct {
	Min     int       `json:"min"`
	Max     int       `json:"max"`
	Default YearRange `json:"default"`
}

// SampleRow is the display form of a paper in the data sample table.
type SampleRow struct {
	ID                string `json:"cord_uid,omitempty"`
	Title             string `json:"title"`
	PublishTime       string `json:"publish_time"`
	Year              int    `json:"year"`
	Journal           string `json:"journal,omitempty"`
	Source            string `json:"source_x,omitempty"`
	AbstractWordCount int    `json:"abstract_word_count"`
}

// Chart is a rendered PNG, base64 encoded for JSON transport.
type Chart struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// ExplorerView is everything the dashboard shows for one year range.
type ExplorerView struct {
	Range           YearRange    `json:"range"`
	Matched         int          `json:"matched"`
	Sample          []SampleRow  `json:"sample"`
	YearCounts      []YearCount  `json:"year_counts"`
	TopJournals     []ValueCount `json:"top_journals"`
	YearChart       *Chart       `json:"year_chart"`
	JournalChart    *Chart       `json:"journal_chart"`
	WordCloud       *Chart       `json:"word_cloud,omitempty"`
	WordCloudNotice string       `json:"word_cloud_notice,omitempty"`
}
