package pubmed

// Candidate is one bibliographic record returned by a PubMed search.
type Candidate struct {
	PMID    string
	Title   string
	Authors []string
	Journal string
	Date    string
	DOI     string
}

// URL returns the canonical PubMed page for the candidate.
func (c Candidate) URL() string {
	if c.PMID == "" {
		return ""
	}
	return "https://pubmed.ncbi.nlm.nih.gov/" + c.PMID + "/"
}
