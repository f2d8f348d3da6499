package ai

// Profile holds the identity fields extracted from a document. Each field
// is independently optional; the empty string means the field was absent.
type Profile struct {
	Name        string
	Email       string
	Phone       string
	Address     string
	Institution string
	Website     string
}

// Empty reports whether no profile field was extracted.
func (p Profile) Empty() bool {
	return p == Profile{}
}

// ExtractedEntry is a single dated item found in a chunk. Title is required;
// all other fields are optional.
type ExtractedEntry struct {
	Title       string
	Description string
	Date        string
	Location    string
	URL         string
}

// ExtractedCategory is a named group of entries, e.g. "Publications".
type ExtractedCategory struct {
	Name    string
	Entries []ExtractedEntry
}

// Extraction is the structured result of extracting one chunk of text.
type Extraction struct {
	Profile    Profile
	Categories []ExtractedCategory
}

// EmptyExtraction returns the degraded result used when a chunk cannot be
// extracted: no profile, no categories.
func EmptyExtraction() *Extraction {
	return &Extraction{}
}
