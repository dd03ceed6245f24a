package models

// Classification - итоговая категория препарата. Значения совпадают
// с токенами, которые сохраняются в снимках склада.
type Classification string

const (
	ClassHomologated      Classification = "homologue"
	ClassWithdrawn        Classification = "retire"
	ClassHomologatedCMR   Classification = "homologue_cmr"
	ClassHomologatedToxic Classification = "homologue_toxique"
)

// Classifications перечисляет все допустимые значения в порядке отображения.
var Classifications = []Classification{
	ClassHomologated,
	ClassWithdrawn,
	ClassHomologatedCMR,
	ClassHomologatedToxic,
}

// Valid проверяет, что значение входит в перечисление.
func (c Classification) Valid() bool {
	switch c {
	case ClassHomologated, ClassWithdrawn, ClassHomologatedCMR, ClassHomologatedToxic:
		return true
	}
	return false
}

func (c Classification) String() string {
	return string(c)
}
