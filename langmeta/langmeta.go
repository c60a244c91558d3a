// Package langmeta provides language display metadata (native names and
// emoji flags) for status and summary output, keyed by BCP-47 codes.
package langmeta

import "strings"

// Meta describes language display metadata.
type Meta struct {
	Name string
	Flag string
}

// Registry contains canonical language metadata.
// Android qualifiers and locale variants are resolved in Resolve().
var Registry = map[string]Meta{
	"ar":      {Name: "العربية", Flag: "🇸🇦"},
	"be":      {Name: "Беларуская", Flag: "🇧🇾"},
	"bg":      {Name: "Български", Flag: "🇧🇬"},
	"ca":      {Name: "Català", Flag: "🇪🇸"},
	"cs":      {Name: "Čeština", Flag: "🇨🇿"},
	"da":      {Name: "Dansk", Flag: "🇩🇰"},
	"de":      {Name: "Deutsch", Flag: "🇩🇪"},
	"el":      {Name: "Ελληνικά", Flag: "🇬🇷"},
	"en":      {Name: "English", Flag: "🇺🇸"},
	"en-GB":   {Name: "English (UK)", Flag: "🇬🇧"},
	"es":      {Name: "Español", Flag: "🇪🇸"},
	"es-MX":   {Name: "Español (México)", Flag: "🇲🇽"},
	"et":      {Name: "Eesti", Flag: "🇪🇪"},
	"fa":      {Name: "فارسی", Flag: "🇮🇷"},
	"fi":      {Name: "Suomi", Flag: "🇫🇮"},
	"fr":      {Name: "Français", Flag: "🇫🇷"},
	"fr-CA":   {Name: "Français (Canada)", Flag: "🇨🇦"},
	"he":      {Name: "עברית", Flag: "🇮🇱"},
	"hi":      {Name: "हिन्दी", Flag: "🇮🇳"},
	"hr":      {Name: "Hrvatski", Flag: "🇭🇷"},
	"hu":      {Name: "Magyar", Flag: "🇭🇺"},
	"id":      {Name: "Bahasa Indonesia", Flag: "🇮🇩"},
	"it":      {Name: "Italiano", Flag: "🇮🇹"},
	"ja":      {Name: "日本語", Flag: "🇯🇵"},
	"kk":      {Name: "Қазақ тілі", Flag: "🇰🇿"},
	"ko":      {Name: "한국어", Flag: "🇰🇷"},
	"lt":      {Name: "Lietuvių", Flag: "🇱🇹"},
	"lv":      {Name: "Latviešu", Flag: "🇱🇻"},
	"nb":      {Name: "Norsk bokmål", Flag: "🇳🇴"},
	"nl":      {Name: "Nederlands", Flag: "🇳🇱"},
	"pl":      {Name: "Polski", Flag: "🇵🇱"},
	"pt":      {Name: "Português", Flag: "🇵🇹"},
	"pt-BR":   {Name: "Português (Brasil)", Flag: "🇧🇷"},
	"ro":      {Name: "Română", Flag: "🇷🇴"},
	"ru":      {Name: "Русский", Flag: "🇷🇺"},
	"sk":      {Name: "Slovenčina", Flag: "🇸🇰"},
	"sl":      {Name: "Slovenščina", Flag: "🇸🇮"},
	"sr":      {Name: "Српски", Flag: "🇷🇸"},
	"sr-Latn": {Name: "Srpski (latinica)", Flag: "🇷🇸"},
	"sv":      {Name: "Svenska", Flag: "🇸🇪"},
	"th":      {Name: "ไทย", Flag: "🇹🇭"},
	"tr":      {Name: "Türkçe", Flag: "🇹🇷"},
	"uk":      {Name: "Українська", Flag: "🇺🇦"},
	"vi":      {Name: "Tiếng Việt", Flag: "🇻🇳"},
	"zh-CN":   {Name: "简体中文", Flag: "🇨🇳"},
	"zh-TW":   {Name: "繁體中文", Flag: "🇹🇼"},
}

// legacy maps obsolete ISO 639 codes still used by Android resource
// folders to their current form.
var legacy = map[string]string{
	"in": "id",
	"iw": "he",
	"ji": "yi",
}

// canonicalize turns locale spellings into BCP-47 form:
// "pt_br" -> "pt-BR", "pt-rBR" -> "pt-BR", "b+sr+Latn" -> "sr-Latn",
// "iw" -> "he".
func canonicalize(lang string) string {
	s := strings.TrimSpace(lang)
	if strings.HasPrefix(s, "b+") {
		s = strings.ReplaceAll(strings.TrimPrefix(s, "b+"), "+", "-")
	}
	s = strings.ReplaceAll(s, "_", "-")
	if s == "" {
		return ""
	}

	parts := strings.Split(s, "-")
	parts[0] = strings.ToLower(parts[0])
	if v, ok := legacy[parts[0]]; ok {
		parts[0] = v
	}
	for i := 1; i < len(parts); i++ {
		p := parts[i]
		switch {
		case len(p) == 3 && (p[0] == 'r' || p[0] == 'R'):
			// Android region qualifier
			parts[i] = strings.ToUpper(p[1:])
		case len(p) == 4:
			// script subtag
			parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
		default:
			parts[i] = strings.ToUpper(p)
		}
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort language metadata for language codes,
// supporting variants like pt_BR, pt-rBR, b+sr+Latn and base fallbacks.
func Resolve(lang string) Meta {
	if m, ok := Registry[lang]; ok {
		return m
	}
	normalized := canonicalize(lang)
	if m, ok := Registry[normalized]; ok {
		return m
	}
	if base, _, ok := strings.Cut(normalized, "-"); ok {
		if m, ok := Registry[base]; ok {
			return m
		}
	}
	return Meta{Name: lang, Flag: ""}
}

// Label returns "Name (code)", or just the code for unknown languages.
func Label(lang string) string {
	m := Resolve(lang)
	if m.Name == lang {
		return lang
	}
	return m.Name + " (" + lang + ")"
}
