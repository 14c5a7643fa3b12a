package language

import (
	"sort"
	"strings"
)

// Language represents a supported language.
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
	// Pivot marks the intermediate language all sources are translated into.
	Pivot bool `json:"-"`
}

const (
	// DefaultSource is used when a request omits its language.
	DefaultSource = "kn"
	// PivotCode is the language the classifier and generators read.
	PivotCode = "en"
)

// Languages is a map of supported languages code -> Language.
var Languages = map[string]Language{
	"kn": {Code: "kn", Name: "Kannada", NativeName: "ಕನ್ನಡ"},
	"en": {Code: "en", Name: "English", NativeName: "English", Pivot: true},
}

// GetLanguage returns the language for code, ignoring case and surrounding space.
func GetLanguage(code string) (Language, bool) {
	lang, ok := Languages[strings.ToLower(strings.TrimSpace(code))]
	return lang, ok
}

// Resolve accepts a code or an English name ("Kannada") and returns the language.
func Resolve(input string) (Language, bool) {
	if lang, ok := GetLanguage(input); ok {
		return lang, true
	}
	needle := strings.TrimSpace(input)
	for _, l := range Languages {
		if strings.EqualFold(l.Name, needle) || l.NativeName == needle {
			return l, true
		}
	}
	return Language{}, false
}

// GetSupportedLanguages returns every language sorted by Name.
func GetSupportedLanguages() []Language {
	entries := make([]Language, 0, len(Languages))
	for _, v := range Languages {
		entries = append(entries, v)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// SourceLanguages returns the languages a request may be written in,
// excluding the pivot.
func SourceLanguages() []Language {
	var out []Language
	for _, l := range GetSupportedLanguages() {
		if !l.Pivot {
			out = append(out, l)
		}
	}
	return out
}
