package grammar

import (
	"strings"

	"github.com/samber/oops"

	"github.com/g5becks/apidoc/internal/md"
	"github.com/g5becks/apidoc/internal/model"
)

// extractMetainfo reads the metainfo bullets of a heading (since:,
// experimental, langs: with nested alias-<lang>: entries) and collects the
// remaining prose children as doc comments. A missing since: bullet is fatal:
// every public entry must be dated.
func extractMetainfo(heading *md.Node, opts Options) (model.Metainfo, []string, error) {
	var (
		info     model.Metainfo
		comments []string
	)

	for _, child := range heading.Children {
		if child.IsListItem(md.ListBullet) {
			consumed, err := consumeMetaBullet(&info, child, heading.Text, opts)
			if err != nil {
				return model.Metainfo{}, nil, err
			}
			if consumed {
				continue
			}
		}

		if child.Kind == md.KindHeading {
			continue
		}
		if child.IsListItem(md.ListDefault) {
			continue
		}
		if child.Text != "" {
			comments = append(comments, child.Text)
		}
	}

	if info.Since == "" {
		return model.Metainfo{}, nil, oops.
			Code("MISSING_SINCE").
			With("heading", heading.Text).
			Hint("Add a `since: vX.Y` bullet under the heading").
			Errorf("missing since version for %q", heading.Text)
	}

	return info, comments, nil
}

func consumeMetaBullet(info *model.Metainfo, bullet *md.Node, heading string, opts Options) (bool, error) {
	text := bullet.Text

	switch {
	case strings.HasPrefix(text, "since:"):
		if info.Since == "" {
			info.Since = strings.TrimSpace(strings.TrimPrefix(text, "since:"))
		}
		return true, nil

	case text == "experimental":
		info.Experimental = true
		return true, nil

	case strings.HasPrefix(text, "langs:"):
		return true, consumeLangs(info, bullet, heading, opts)

	case strings.HasPrefix(text, "extends:"):
		// Consumed by the class pass; keep it out of the doc comments.
		return true, nil
	}

	return false, nil
}

func consumeLangs(info *model.Metainfo, bullet *md.Node, heading string, opts Options) error {
	trailing := strings.TrimSpace(strings.TrimPrefix(bullet.Text, "langs:"))

	if trailing != "" {
		for _, lang := range strings.Split(trailing, ",") {
			lang = strings.TrimSpace(lang)
			if lang == "" {
				continue
			}
			if err := opts.checkLanguage(lang, heading); err != nil {
				return err
			}
			info.Langs.Only = append(info.Langs.Only, lang)
		}
	}

	for _, child := range bullet.Children {
		name, found := strings.CutPrefix(child.Text, "alias-")
		if !found {
			continue
		}

		lang, alias, ok := strings.Cut(name, ":")
		if !ok {
			continue
		}

		lang = strings.TrimSpace(lang)
		if err := opts.checkLanguage(lang, heading); err != nil {
			return err
		}

		if info.Langs.Aliases == nil {
			info.Langs.Aliases = make(map[string]string)
		}
		info.Langs.Aliases[lang] = strings.TrimSpace(alias)
	}

	return nil
}
