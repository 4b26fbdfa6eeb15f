package tl

import (
	"strings"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

// FormatFunction renders a function back into a schema line.
func FormatFunction(fn domain.FunctionDefinition) string {
	return formatLine(fn.Name, fn.ID, fn.Parameters, fn.ReturnType)
}

// FormatConstructor renders a constructor of type typ back into a schema line.
func FormatConstructor(c domain.Constructor, typ string) string {
	return formatLine(c.Name, c.ID, c.Parameters, typ)
}

// FormatParameter renders one parameter as a name:type token.
func FormatParameter(p domain.Parameter) string {
	if p.IsOptional {
		return p.Name + ":" + p.FlagName + "." + p.FlagOffset + "?" + p.Type
	}
	return p.Name + ":" + p.Type
}

func formatLine(name, id string, params []domain.Parameter, result string) string {
	var b strings.Builder
	b.WriteString(name)
	if id != "" {
		b.WriteByte('#')
		b.WriteString(id)
	}
	for _, p := range params {
		b.WriteByte(' ')
		b.WriteString(FormatParameter(p))
	}
	b.WriteString(" = ")
	b.WriteString(result)
	b.WriteByte(';')
	return b.String()
}
