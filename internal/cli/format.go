package cli

import (
	"github.com/fatih/color"

	"github.com/magabrotheeeer/phytocheck/internal/catalog"
	"github.com/magabrotheeeer/phytocheck/internal/models"
)

var (
	colorHeader = color.New(color.FgCyan, color.Bold).SprintFunc()
	colorFaint  = color.New(color.Faint).SprintFunc()
	colorOK     = color.New(color.FgGreen).SprintFunc()
	colorWarn   = color.New(color.FgYellow, color.Bold).SprintFunc()
	colorError  = color.New(color.FgRed, color.Bold).SprintFunc()
)

var classificationColors = map[models.Classification]*color.Color{
	models.ClassHomologated:      color.New(color.FgGreen),
	models.ClassWithdrawn:        color.New(color.FgRed),
	models.ClassHomologatedCMR:   color.New(color.FgYellow),
	models.ClassHomologatedToxic: color.New(color.FgHiRed, color.Bold),
}

// badge возвращает подпись классификации в её цвете.
func badge(c models.Classification) string {
	label := catalog.Label(c)
	if label == "" {
		label = c.String()
	}
	if col, ok := classificationColors[c]; ok {
		return col.Sprint(label)
	}
	return label
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
