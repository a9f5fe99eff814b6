package repotree

import (
	"path/filepath"
	"strings"
)

// extensionToLanguage maps file extensions to language names.
var extensionToLanguage = map[string]string{
	".go":     "Go",
	".py":     "Python",
	".pyi":    "Python",
	".ts":     "TypeScript",
	".tsx":    "TypeScript",
	".mts":    "TypeScript",
	".js":     "JavaScript",
	".jsx":    "JavaScript",
	".mjs":    "JavaScript",
	".cjs":    "JavaScript",
	".java":   "Java",
	".rs":     "Rust",
	".c":      "C",
	".h":      "C",
	".cpp":    "C++",
	".cc":     "C++",
	".hpp":    "C++",
	".cs":     "C#",
	".rb":     "Ruby",
	".php":    "PHP",
	".swift":  "Swift",
	".kt":     "Kotlin",
	".kts":    "Kotlin",
	".scala":  "Scala",
	".sh":     "Shell",
	".bash":   "Shell",
	".sql":    "SQL",
	".html":   "HTML",
	".htm":    "HTML",
	".css":    "CSS",
	".scss":   "CSS",
	".vue":    "Vue",
	".svelte": "Svelte",
	".dart":   "Dart",
	".ex":     "Elixir",
	".exs":    "Elixir",
	".lua":    "Lua",
	".pl":     "Perl",
	".yaml":   "YAML",
	".yml":    "YAML",
	".json":   "JSON",
	".toml":   "TOML",
	".md":     "Markdown",
	".proto":  "Protobuf",
}

// filenameToLanguage maps exact filenames to language names.
var filenameToLanguage = map[string]string{
	"Dockerfile": "Dockerfile",
	"Makefile":   "Makefile",
	"Gemfile":    "Ruby",
	"Rakefile":   "Ruby",
}

// codeLanguages are languages the structure extractor can produce
// functions/classes for; everything else is config or prose.
var codeLanguages = map[string]bool{
	"Go": true, "Python": true, "TypeScript": true, "JavaScript": true,
	"Java": true, "Rust": true, "C": true, "C++": true, "C#": true,
	"Ruby": true, "PHP": true, "Swift": true, "Kotlin": true, "Scala": true,
	"Vue": true, "Svelte": true, "Dart": true, "Elixir": true, "Lua": true,
	"Perl": true, "Shell": true,
}

// DetectLanguage returns the language for a filename based on its extension
// or exact name, or "unknown" for unrecognized files.
func DetectLanguage(filename string) string {
	base := filepath.Base(filename)
	if lang, ok := filenameToLanguage[base]; ok {
		return lang
	}
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" {
		return "unknown"
	}
	if lang, ok := extensionToLanguage[ext]; ok {
		return lang
	}
	return "unknown"
}

// IsCodeLanguage reports whether lang is a programming language (as opposed
// to config, markup, or unknown).
func IsCodeLanguage(lang string) bool {
	return codeLanguages[lang]
}
