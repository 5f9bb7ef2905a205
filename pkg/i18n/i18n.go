package i18n

import (
	"embed"
	"encoding/json"
	"path"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// I18nSupport localizes user-facing API messages.
type I18nSupport struct {
	bundle    *i18n.Bundle
	languages []language.Tag
	matcher   language.Matcher
}

// NewI18nSupport loads every embedded locale file.
func NewI18nSupport(defaultLang string) (*I18nSupport, error) {
	bundle := i18n.NewBundle(language.MustParse(defaultLang))
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		p := path.Join("locales", e.Name())
		buf, err := localeFS.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if _, err := bundle.ParseMessageFileBytes(buf, p); err != nil {
			return nil, err
		}
	}
	tags := bundle.LanguageTags()
	return &I18nSupport{bundle: bundle, languages: tags, matcher: language.NewMatcher(tags)}, nil
}

// Match picks the supported language closest to the requested ones.
func (i *I18nSupport) Match(requested ...string) string {
	var wanted []language.Tag
	for _, r := range requested {
		if r == "" {
			continue
		}
		if tags, _, err := language.ParseAcceptLanguage(r); err == nil {
			wanted = append(wanted, tags...)
		}
	}
	if len(wanted) == 0 {
		return i.languages[0].String()
	}
	_, idx, _ := i.matcher.Match(wanted...)
	return i.languages[idx].String()
}

// T translates id, falling back to fallback when the id is unknown.
func (i *I18nSupport) T(languageTag, id, fallback string, templateData map[string]interface{}) string {
	localizer := i18n.NewLocalizer(i.bundle, languageTag)
	translation, err := localizer.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{ID: id, Other: fallback},
		TemplateData:   templateData,
	})
	if err != nil || translation == "" {
		return fallback
	}
	return translation
}
