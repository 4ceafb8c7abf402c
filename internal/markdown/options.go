package markdown

// HeadingStyle selects how headings are emitted.
type HeadingStyle int

const (
	HeadingATX    HeadingStyle = iota // "## Heading"
	HeadingSetext                     // underlined with = or -, levels 1-2 only
)

// CodeBlockStyle selects how code blocks are emitted.
type CodeBlockStyle int

const (
	CodeFenced   CodeBlockStyle = iota // triple-backtick fences
	CodeIndented                       // four-space indentation
)

// LinkStyle selects how links are emitted.
type LinkStyle int

const (
	LinksInline    LinkStyle = iota // [text](url)
	LinksReference                  // [text][1] with trailing definitions
)

// Options configures one conversion. The zero value is usable: defaults
// are filled in before validation.
type Options struct {
	HeadingStyle      HeadingStyle
	BulletMarker      byte   // '-', '*' or '+'
	CodeBlockStyle    CodeBlockStyle
	StrongDelimiter   string // "**" or "__"
	EmphasisDelimiter string // "*" or "_"
	LinkStyle         LinkStyle

	// BaseURL resolves relative link and image targets.
	BaseURL string

	// PreserveWhitespace disables whitespace collapsing outside
	// preformatted blocks.
	PreserveWhitespace bool

	// SpanFill is placed in cells synthesized during rowspan
	// normalization. Empty by default; set a visible continuation
	// marker if downstream consumers expect one.
	SpanFill string

	// ChunkSize is the node-count threshold above which the scheduler
	// switches from direct to chunked processing.
	ChunkSize int

	// GroupBudget bounds the cumulative rendered-content size (bytes of
	// source text) of one chunk group.
	GroupBudget int

	// CacheCapacity bounds the per-call fragment cache (entries).
	CacheCapacity int

	// Streaming makes Convert produce a lazy fragment sequence instead
	// of a single string.
	Streaming bool
}

const (
	defaultChunkSize     = 2048
	defaultGroupBudget   = 32 * 1024
	defaultCacheCapacity = 128
)

// WithDefaults returns a copy of o with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	switch o.BulletMarker {
	case '-', '*', '+':
	default:
		o.BulletMarker = '-'
	}
	if o.StrongDelimiter == "" {
		o.StrongDelimiter = "**"
	}
	if o.EmphasisDelimiter == "" {
		o.EmphasisDelimiter = "*"
	}
	if o.ChunkSize == 0 {
		o.ChunkSize = defaultChunkSize
	}
	if o.GroupBudget == 0 {
		o.GroupBudget = defaultGroupBudget
	}
	if o.CacheCapacity == 0 {
		o.CacheCapacity = defaultCacheCapacity
	}
	return o
}

// Validate rejects internally inconsistent budgets. Call after
// WithDefaults.
func (o Options) Validate() error {
	if o.ChunkSize <= 0 {
		return &ResourceError{Field: "ChunkSize", Reason: "must be positive"}
	}
	if o.GroupBudget <= 0 {
		return &ResourceError{Field: "GroupBudget", Reason: "must be positive"}
	}
	if o.CacheCapacity < 0 {
		return &ResourceError{Field: "CacheCapacity", Reason: "must not be negative"}
	}
	if o.StrongDelimiter != "**" && o.StrongDelimiter != "__" {
		return &ResourceError{Field: "StrongDelimiter", Reason: "must be ** or __"}
	}
	if o.EmphasisDelimiter != "*" && o.EmphasisDelimiter != "_" {
		return &ResourceError{Field: "EmphasisDelimiter", Reason: "must be * or _"}
	}
	return nil
}
