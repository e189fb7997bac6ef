// Package i18n holds the user-visible strings linklens writes into pages:
// anchor tooltips and preview notices, in English and Japanese.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	keyAnchorFound   = "anchor.found"
	keyAnchorMissing = "anchor.missing"
	keyBroken        = "link.broken"
	keyBlocked       = "preview.blocked"
	keyLoadError     = "preview.loadError"
)

// supported lists the catalog languages; the first one is the fallback.
var supported = []language.Tag{language.English, language.Japanese}

var messages = map[language.Tag]map[string]string{
	language.English: {
		keyAnchorFound:   "Reference target exists: %s",
		keyAnchorMissing: "Reference not found: %s",
		keyBroken:        "Broken link (status: %d)",
		keyBlocked:       "This site does not allow previews.",
		keyLoadError:     "An error occurred while loading the preview.",
	},
	language.Japanese: {
		keyAnchorFound:   "参照IDが存在します: %s",
		keyAnchorMissing: "参照IDが見つかりません: %s",
		keyBroken:        "リンク切れ（ステータス: %d）",
		keyBlocked:       "このサイトはプレビューを許可していません。",
		keyLoadError:     "プレビューの読み込み中にエラーが発生しました。",
	},
}

var (
	cat     = buildCatalog()
	matcher = language.NewMatcher(supported)
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(supported[0]))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Translator formats messages for one language.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Translator for the closest supported match of lang
// (a BCP 47 tag such as "ja" or "en-US"). Unknown tags fall back to English.
func New(lang string) *Translator {
	tag := supported[0]
	if parsed, err := language.Parse(lang); err == nil {
		_, idx, _ := matcher.Match(parsed)
		tag = supported[idx]
	}
	return &Translator{tag: tag, printer: message.NewPrinter(tag, message.Catalog(cat))}
}

// Language returns the selected language tag.
func (t *Translator) Language() language.Tag {
	return t.tag
}

// AnchorFound is the tooltip of a same-page anchor whose target exists.
func (t *Translator) AnchorFound(href string) string {
	return t.printer.Sprintf(keyAnchorFound, href)
}

// AnchorMissing is the tooltip of a same-page anchor whose target is missing.
func (t *Translator) AnchorMissing(href string) string {
	return t.printer.Sprintf(keyAnchorMissing, href)
}

// Broken is the tooltip of a broken link.
func (t *Translator) Broken(status int) string {
	return t.printer.Sprintf(keyBroken, status)
}

// PreviewBlocked is the notice for previews that are blocked or empty.
func (t *Translator) PreviewBlocked() string {
	return t.printer.Sprintf(keyBlocked)
}

// PreviewLoadError is the notice for previews that failed to load.
func (t *Translator) PreviewLoadError() string {
	return t.printer.Sprintf(keyLoadError)
}
