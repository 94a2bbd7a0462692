package registry

// Movie is one record of the film register. The id is assigned by the
// register and never changes; every other field mirrors the upstream data.
// PosterPath is the single locally owned field, written once by the poster
// cache and never cleared.
type Movie struct {
	ID              int64
	CardNumber      string
	Title           string
	ForeignTitle    string
	Studio          string
	ProductionYear  string // free text upstream, not always numeric
	Director        string
	ScriptAuthor    string
	Composer        string
	DurationMinutes int
	DurationHours   int
	AgeCategory     string
	AgeLimit        int
	Annotation      string
	Country         string
	PosterPath      string
}

// Candidate pairs a register id with its title for matching.
type Candidate struct {
	ID    int64
	Title string
}
