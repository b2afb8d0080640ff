package config

import (
	"strings"

	"golang.org/x/text/language"
)

var defaultLanguageTag = language.MustParse(defaultLanguage)

// LanguageConfig wraps the configured report language
type LanguageConfig struct {
	tag language.Tag
}

// ParseLanguage parses an ISO language tag. Empty or unparseable tags fall
// back to zh-CN, the language of the built-in report.
func ParseLanguage(langTag string) *LanguageConfig {
	if langTag == "" {
		return &LanguageConfig{tag: defaultLanguageTag}
	}
	tag, err := language.Parse(langTag)
	if err != nil {
		tag, err = language.Parse(strings.ReplaceAll(strings.ToLower(langTag), "_", "-"))
		if err != nil {
			tag = defaultLanguageTag
		}
	}
	return &LanguageConfig{tag: tag}
}

// Tag returns the underlying language tag
func (lc *LanguageConfig) Tag() language.Tag {
	return lc.tag
}

// String returns the language tag as a string (e.g., "en", "zh-CN")
func (lc *LanguageConfig) String() string {
	return lc.tag.String()
}
