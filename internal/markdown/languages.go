package markdown

import "github.com/temirov/copier/internal/utils"

var languageByExtension = map[string]string{
	"js":       "javascript",
	"ts":       "typescript",
	"jsx":      "jsx",
	"tsx":      "tsx",
	"py":       "python",
	"rb":       "ruby",
	"java":     "java",
	"go":       "go",
	"rs":       "rust",
	"c":        "c",
	"cpp":      "cpp",
	"cc":       "cpp",
	"cxx":      "cpp",
	"cs":       "csharp",
	"php":      "php",
	"html":     "html",
	"css":      "css",
	"scss":     "scss",
	"sass":     "scss",
	"json":     "json",
	"md":       "markdown",
	"markdown": "markdown",
	"yml":      "yaml",
	"yaml":     "yaml",
	"sh":       "bash",
	"bash":     "bash",
	"sql":      "sql",
	"xml":      "xml",
}

// LanguageTag returns the fence language for a path. Unknown extensions fall back to the
// lower-cased extension itself and paths without an extension get no tag.
func LanguageTag(path string) string {
	extension := utils.Extension(path)
	if language, known := languageByExtension[extension]; known {
		return language
	}
	return extension
}
