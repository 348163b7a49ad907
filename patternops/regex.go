package patternops

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lumenscan/lumenscan/compiler"
	"github.com/lumenscan/lumenscan/rules"
)

// regexCacheKey identifies a compiled regex by its joined source text and
// its option flags, matching "cache by (joined_text, options)".
type regexCacheKey struct {
	joined  string
	options string
}

type regexCacheEntry struct {
	re  *regexp.Regexp
	err error // non-nil means this key is a cached compile failure
}

// RegexCache is the thread-safe, bounded compiled-regex cache shared across
// every RegexWithIndex call in a process. A sentinel entry with err set is
// stored for failed compilations so repeated evaluation doesn't re-attempt
// (and re-log) a broken pattern every time.
type RegexCache struct {
	mu      sync.Mutex
	cache   *lru.Cache[regexCacheKey, regexCacheEntry]
	warned  map[regexCacheKey]bool
	logger  Logger
}

// Logger is the minimal interface used to log a compile-failure warning
// once per pattern. Satisfied by *output.Logger.
type Logger interface {
	Warning(format string, args ...interface{})
}

// DefaultRegexCacheSize bounds the number of distinct compiled regexes kept
// resident; rule catalogs rarely exceed a few thousand distinct patterns.
const DefaultRegexCacheSize = 4096

// NewRegexCache builds an empty cache bounded to DefaultRegexCacheSize
// entries.
func NewRegexCache(logger Logger) *RegexCache {
	c, _ := lru.New[regexCacheKey, regexCacheEntry](DefaultRegexCacheSize)
	return &RegexCache{cache: c, warned: make(map[regexCacheKey]bool), logger: logger}
}

func (rc *RegexCache) compile(joined, options string) (*regexp.Regexp, error) {
	key := regexCacheKey{joined: joined, options: options}

	rc.mu.Lock()
	if entry, ok := rc.cache.Get(key); ok {
		rc.mu.Unlock()
		return entry.re, entry.err
	}
	rc.mu.Unlock()

	re, err := regexp.Compile(options + joined)
	entry := regexCacheEntry{re: re, err: err}

	rc.mu.Lock()
	rc.cache.Add(key, entry)
	alreadyWarned := rc.warned[key]
	if err != nil && !alreadyWarned {
		rc.warned[key] = true
	}
	rc.mu.Unlock()

	if err != nil && !alreadyWarned && rc.logger != nil {
		rc.logger.Warning("regex compile failed for %q: %v", joined, err)
	}
	return re, err
}

// RegexWithIndex joins clause.Data with "|" into a single regex (options "i"
// for case-insensitive, "m" for multiline), runs it over content (optionally
// restricted to pre-projected boundaries), and emits one capture per match.
// A failed compilation caches the failure and yields no captures.
func RegexWithIndex(cache *RegexCache, content string, c *compiler.Clause, restrictTo []rules.Boundary) []Capture {
	labelIdx, err := strconv.Atoi(c.Label)
	if err != nil {
		labelIdx = 0
	}
	if len(c.Data) == 0 {
		return nil
	}
	joined := strings.Join(c.Data, "|")
	options := regexOptions(c.Arguments)

	re, err := cache.compile(joined, options)
	if err != nil || re == nil {
		return nil
	}

	var out []Capture
	for _, space := range restrictSpaces(content, restrictTo) {
		matches := re.FindAllStringIndex(space.text, -1)
		for _, m := range matches {
			start, end := m[0], m[1]
			if start == end {
				// An empty match carries no positional information about
				// where in the boundary it fired; skip it rather than
				// emit a zero-length capture at an arbitrary offset.
				continue
			}
			out = append(out, Capture{
				PatternIndex: labelIdx,
				Boundary:     rules.Boundary{Index: space.base + start, Length: end - start},
			})
		}
	}
	return out
}

func regexOptions(modifiers []string) string {
	var flags strings.Builder
	for _, m := range modifiers {
		switch m {
		case "i":
			flags.WriteByte('i')
		case "m":
			flags.WriteByte('m')
		}
	}
	if flags.Len() == 0 {
		return ""
	}
	return "(?" + flags.String() + ")"
}
