// Package lang maps file names and extensions to language metadata: a
// display name, comment delimiters, and a coarse file type classification.
// It is consulted by the text container to decide how to find comments and
// by the rule processor to select applies-to rules.
package lang

import (
	"path/filepath"
	"strings"
)

// FileType coarsely classifies a file. The processor uses FileTypeBuild to
// relax tag de-dup for build files when AllowAllTagsInBuildFiles is set.
type FileType string

const (
	FileTypeCode     FileType = "code"
	FileTypeBuild    FileType = "build"
	FileTypeManifest FileType = "manifest"
	FileTypeUnknown  FileType = "unknown"
)

// Info describes one registered language: its canonical name and how
// comments are written in it.
type Info struct {
	Name string

	// CommentPrefix/CommentSuffix delimit a multi-line comment, e.g. "/*" "*/".
	// Both empty means the language has no multi-line comment form.
	CommentPrefix string
	CommentSuffix string

	// InlineComment starts a comment running to end-of-line, e.g. "//" or "#".
	// Empty means the language has no inline comment form.
	InlineComment string

	FileType FileType
}

// HasMultiLineComment reports whether the language defines a block-comment
// delimiter pair.
func (i Info) HasMultiLineComment() bool {
	return i.CommentPrefix != "" && i.CommentSuffix != ""
}

// HasInlineComment reports whether the language defines a to-end-of-line
// comment marker.
func (i Info) HasInlineComment() bool {
	return i.InlineComment != ""
}

// HasComments reports whether the language has any recognized comment form.
// The text container treats languages without one as "everything is code".
func (i Info) HasComments() bool {
	return i.HasMultiLineComment() || i.HasInlineComment()
}

var byExtension = map[string]Info{
	".go":    {Name: "go", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "//", FileType: FileTypeCode},
	".c":     {Name: "c", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "//", FileType: FileTypeCode},
	".h":     {Name: "c", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "//", FileType: FileTypeCode},
	".cc":    {Name: "cpp", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "//", FileType: FileTypeCode},
	".cpp":   {Name: "cpp", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "//", FileType: FileTypeCode},
	".hpp":   {Name: "cpp", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "//", FileType: FileTypeCode},
	".java":  {Name: "java", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "//", FileType: FileTypeCode},
	".kt":    {Name: "kotlin", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "//", FileType: FileTypeCode},
	".cs":    {Name: "csharp", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "//", FileType: FileTypeCode},
	".js":    {Name: "javascript", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "//", FileType: FileTypeCode},
	".jsx":   {Name: "javascript", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "//", FileType: FileTypeCode},
	".ts":    {Name: "typescript", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "//", FileType: FileTypeCode},
	".tsx":   {Name: "typescript", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "//", FileType: FileTypeCode},
	".rs":    {Name: "rust", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "//", FileType: FileTypeCode},
	".py":    {Name: "python", InlineComment: "#", FileType: FileTypeCode},
	".rb":    {Name: "ruby", CommentPrefix: "=begin", CommentSuffix: "=end", InlineComment: "#", FileType: FileTypeCode},
	".sh":    {Name: "shell", InlineComment: "#", FileType: FileTypeCode},
	".bash":  {Name: "shell", InlineComment: "#", FileType: FileTypeCode},
	".yml":   {Name: "yaml", InlineComment: "#", FileType: FileTypeManifest},
	".yaml":  {Name: "yaml", InlineComment: "#", FileType: FileTypeManifest},
	".toml":  {Name: "toml", InlineComment: "#", FileType: FileTypeManifest},
	".xml":   {Name: "xml", CommentPrefix: "<!--", CommentSuffix: "-->", FileType: FileTypeManifest},
	".html":  {Name: "html", CommentPrefix: "<!--", CommentSuffix: "-->", FileType: FileTypeCode},
	".json":  {Name: "json", FileType: FileTypeManifest},
	".sql":   {Name: "sql", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "--", FileType: FileTypeCode},
	".tf":    {Name: "hcl", InlineComment: "#", FileType: FileTypeManifest},
	".proto": {Name: "proto", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "//", FileType: FileTypeCode},
}

var byFileName = map[string]Info{
	"pom.xml":            {Name: "xml", CommentPrefix: "<!--", CommentSuffix: "-->", FileType: FileTypeManifest},
	"package.json":       {Name: "json", FileType: FileTypeManifest},
	"go.mod":             {Name: "gomod", InlineComment: "//", FileType: FileTypeManifest},
	"dockerfile":         {Name: "dockerfile", InlineComment: "#", FileType: FileTypeBuild},
	"makefile":           {Name: "makefile", InlineComment: "#", FileType: FileTypeBuild},
	"docker-compose.yml": {Name: "yaml", InlineComment: "#", FileType: FileTypeBuild},
}

// FromFileName resolves a path to its language Info. An exact filename match
// (case-insensitive, base name only) wins over an extension match. When
// neither table has an entry, found is false and the zero Info is returned.
func FromFileName(path string) (info Info, found bool) {
	base := strings.ToLower(filepath.Base(path))
	if i, ok := byFileName[base]; ok {
		return i, true
	}
	ext := strings.ToLower(filepath.Ext(base))
	if i, ok := byExtension[ext]; ok {
		return i, true
	}
	return Info{}, false
}

// Register adds or overrides a language entry keyed by extension (including
// the leading dot). Intended for caller-supplied YAML/JSON language tables;
// the core ships only the built-in table above.
func Register(ext string, info Info) {
	byExtension[strings.ToLower(ext)] = info
}

// RegisterFileName adds or overrides a language entry keyed by an exact,
// case-insensitive base file name (e.g. "Dockerfile").
func RegisterFileName(name string, info Info) {
	byFileName[strings.ToLower(name)] = info
}
