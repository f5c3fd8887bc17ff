package api

// Recommendation is the immutable value returned by the recommendation service.
type Recommendation struct {
	Title      string
	Summary    string
	Blurb      string
	Metadata   *BookMetadata
	Candidates []CandidateBook
}

// BookMetadata describes the chosen book.
type BookMetadata struct {
	Author string
	Year   int
	Genres []string
	Themes []string
}

// CandidateBook is one ranked retrieval candidate. Display-only; the service
// order is preserved and never re-sorted client-side.
type CandidateBook struct {
	Title  string
	Author string
	Genres []string
	Themes []string
}

// Wire shapes mirror the service JSON exactly; exported types above stay
// decoupled from field spelling on the wire.

type recommendationWire struct {
	Title            string          `json:"title"`
	DetailedSummary  string          `json:"detailed_summary"`
	AssistantMessage string          `json:"assistant_message"`
	Reason           string          `json:"reason"`
	Metadata         *metadataWire   `json:"metadata"`
	Candidates       []candidateWire `json:"candidates"`
}

type metadataWire struct {
	Author string   `json:"author"`
	Year   int      `json:"year"`
	Genres []string `json:"genres"`
	Themes []string `json:"themes"`
}

type candidateWire struct {
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Genres []string `json:"genres"`
	Themes []string `json:"themes"`
}

type summaryWire struct {
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	DetailedSummary string   `json:"detailed_summary"`
	Genres          []string `json:"genres"`
	Themes          []string `json:"themes"`
	Year            int      `json:"year"`
}

func (w recommendationWire) toRecommendation() Recommendation {
	blurb := w.AssistantMessage
	if blurb == "" {
		blurb = w.Reason
	}

	rec := Recommendation{
		Title:   w.Title,
		Summary: w.DetailedSummary,
		Blurb:   blurb,
	}
	if w.Metadata != nil {
		rec.Metadata = &BookMetadata{
			Author: w.Metadata.Author,
			Year:   w.Metadata.Year,
			Genres: w.Metadata.Genres,
			Themes: w.Metadata.Themes,
		}
	}
	for _, c := range w.Candidates {
		rec.Candidates = append(rec.Candidates, CandidateBook{
			Title:  c.Title,
			Author: c.Author,
			Genres: c.Genres,
			Themes: c.Themes,
		})
	}
	return rec
}

func (w summaryWire) toRecommendation() Recommendation {
	return Recommendation{
		Title:   w.Title,
		Summary: w.DetailedSummary,
		Metadata: &BookMetadata{
			Author: w.Author,
			Year:   w.Year,
			Genres: w.Genres,
			Themes: w.Themes,
		},
	}
}
