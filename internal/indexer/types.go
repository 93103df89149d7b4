package indexer

// Chunk is one embeddable section of a report.
type Chunk struct {
	Index       int    // position within the report, from 0
	HeadingPath string // "# Report Title > ## Heading"
	Text        string
}

// EmbedText is the text that is embedded and stored for retrieval. The
// heading path carries the report title so excerpts stay attributable.
func (c Chunk) EmbedText() string {
	return c.HeadingPath + "\n" + c.Text
}
