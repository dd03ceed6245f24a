package catalog

import "github.com/magabrotheeeer/phytocheck/internal/models"

// Presentation - метаданные отображения классификации.
type Presentation struct {
	Label   string
	Color   string
	BgColor string
}

var presentations = map[models.Classification]Presentation{
	models.ClassHomologated:      {Label: "Homologated", Color: "#22C55E", BgColor: "#F0FDF4"},
	models.ClassWithdrawn:        {Label: "Withdrawn", Color: "#EF4444", BgColor: "#FEF2F2"},
	models.ClassHomologatedCMR:   {Label: "Homologated — CMR", Color: "#F59E0B", BgColor: "#FFFBEB"},
	models.ClassHomologatedToxic: {Label: "Homologated — Toxic", Color: "#DC2626", BgColor: "#FEF2F2"},
}

// Present возвращает подпись и цвета классификации. Для неизвестного значения
// возвращается пустая структура и false.
func Present(c models.Classification) (Presentation, bool) {
	p, ok := presentations[c]
	return p, ok
}

// Label возвращает подпись классификации.
func Label(c models.Classification) string {
	return presentations[c].Label
}

// Color возвращает основной цвет классификации.
func Color(c models.Classification) string {
	return presentations[c].Color
}

// BgColor возвращает светлый фоновый цвет классификации.
func BgColor(c models.Classification) string {
	return presentations[c].BgColor
}
