// Package ui renders the documentation model for the terminal.
package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/g5becks/apidoc/internal/model"
)

// RenderClassList prints one row per class, or the raw model slice as JSON.
func RenderClassList(classes []*model.Class, jsonOut bool) error {
	if jsonOut {
		return renderJSON(classes)
	}

	writer := table.NewWriter()
	writer.SetOutputMirror(os.Stdout)
	writer.SetStyle(table.StyleRounded)
	writer.AppendHeader(table.Row{"CLASS", "EXTENDS", "MEMBERS", "SINCE"})

	for _, class := range classes {
		writer.AppendRow(table.Row{
			class.Name,
			class.Extends,
			len(class.Members),
			class.Metainfo.Since,
		})
	}

	writer.Render()
	return nil
}

// RenderMemberList prints one row per member of the class, or the member
// slice as JSON.
func RenderMemberList(class *model.Class, jsonOut bool) error {
	if jsonOut {
		return renderJSON(class.Members)
	}

	writer := table.NewWriter()
	writer.SetOutputMirror(os.Stdout)
	writer.SetStyle(table.StyleRounded)
	writer.AppendHeader(table.Row{"KIND", "NAME", "TYPE", "ARGS", "SINCE", "FLAGS"})

	for _, member := range class.Members {
		writer.AppendRow(table.Row{
			string(member.Kind),
			member.Name,
			typeName(member.Type),
			len(member.Args),
			member.Metainfo.Since,
			MemberFlags(member),
		})
	}

	writer.Render()
	return nil
}

func typeName(t *model.Type) string {
	if t == nil {
		return ""
	}
	return t.Name
}

// MemberFlags summarizes a member's modifiers for the FLAGS column.
func MemberFlags(member *model.Member) string {
	var flags []string
	if member.Async {
		flags = append(flags, "async")
	}
	if !member.Required {
		flags = append(flags, "optional")
	}
	if member.Metainfo.Experimental {
		flags = append(flags, "experimental")
	}
	if len(member.Metainfo.Langs.Only) > 0 {
		flags = append(flags, "langs:"+strings.Join(member.Metainfo.Langs.Only, ","))
	}
	return strings.Join(flags, " ")
}

func renderJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}
