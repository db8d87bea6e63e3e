package grammar

import (
	"slices"

	"github.com/samber/oops"

	"github.com/g5becks/apidoc/internal/model"
)

// overrideAction is the outcome of resolving a duplicate declaration against
// the entity already on the class or argument list.
type overrideAction int

const (
	// actionInsert: the declarations target disjoint language sets, so the
	// candidate is a genuinely distinct entity.
	actionInsert overrideAction = iota
	// actionTypeOverride: record the candidate's type per language on the
	// existing entity (members).
	actionTypeOverride
	// actionDeclarationOverride: record the candidate as a per-language full
	// declaration replacement on the existing entity (arguments).
	actionDeclarationOverride
)

// resolveOverride reconciles a candidate declaration with an existing entity
// of the same identity. Argument-level candidates must carry an explicit
// langs restriction, since there is no way to know which language's
// declaration an unrestricted duplicate should replace.
func resolveOverride(existing, candidate *model.Member, argLevel bool) (overrideAction, error) {
	existingOnly := existing.Metainfo.Langs.Only
	candidateOnly := candidate.Metainfo.Langs.Only

	if argLevel && len(candidateOnly) == 0 {
		return 0, oops.
			Code("OVERRIDE_NEEDS_LANGS").
			With("argument", candidate.Name).
			Hint("Add a `langs: <lang>` bullet to the overriding declaration").
			Errorf("argument override for %q must declare target languages", candidate.Name)
	}

	if len(existingOnly) == 0 && len(candidateOnly) == 0 {
		return 0, oops.
			Code("DUPLICATE_MEMBER").
			With("kind", string(candidate.Kind)).
			With("name", candidate.Name).
			Errorf("duplicate declaration for %s %q", candidate.Kind, candidate.Name)
	}

	if len(existingOnly) == 0 || len(candidateOnly) == 0 || isSubset(candidateOnly, existingOnly) {
		if argLevel {
			return actionDeclarationOverride, nil
		}
		return actionTypeOverride, nil
	}

	if intersects(candidateOnly, existingOnly) {
		return 0, oops.
			Code("AMBIGUOUS_OVERRIDE").
			With("kind", string(candidate.Kind)).
			With("name", candidate.Name).
			With("existing_langs", existingOnly).
			With("candidate_langs", candidateOnly).
			Hint("Split the declaration so each language set is a subset or disjoint").
			Errorf("ambiguous language override for %s %q", candidate.Kind, candidate.Name)
	}

	return actionInsert, nil
}

// applyOverride records the candidate against the existing entity according
// to the resolved action.
func applyOverride(existing, candidate *model.Member, action overrideAction) {
	switch action {
	case actionTypeOverride:
		for _, lang := range candidate.Metainfo.Langs.Only {
			if existing.Metainfo.Langs.Types == nil {
				existing.Metainfo.Langs.Types = make(map[string]*model.Type)
			}
			existing.Metainfo.Langs.Types[lang] = candidate.Type
		}

	case actionDeclarationOverride:
		for _, lang := range candidate.Metainfo.Langs.Only {
			if existing.Metainfo.Langs.Overrides == nil {
				existing.Metainfo.Langs.Overrides = make(map[string]*model.Member)
			}
			existing.Metainfo.Langs.Overrides[lang] = candidate
		}

	case actionInsert:
		// Caller appends the candidate instead.
	}
}

func isSubset(inner, outer []string) bool {
	for _, lang := range inner {
		if !slices.Contains(outer, lang) {
			return false
		}
	}
	return len(inner) > 0
}

func intersects(a, b []string) bool {
	return slices.ContainsFunc(a, func(lang string) bool {
		return slices.Contains(b, lang)
	})
}
