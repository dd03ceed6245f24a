package catalog

import "github.com/magabrotheeeer/phytocheck/internal/models"

// Коды CMR: канцерогенные, мутагенные, токсичные для репродукции.
var cmrCodes = codeSet(
	"H340", "H341", // мутагены
	"H350", "H351", // канцерогены
	"H360", "H360D", "H360Df", "H360F", "H360FD", "H360Fd",
	"H361", "H361d", "H361f", "H361fd", "H362",
)

// Коды высокой острой токсичности.
var toxicCodes = codeSet(
	"H300", "H301", // при проглатывании
	"H310", "H311", // при контакте с кожей
	"H330", "H331", // при вдыхании
	"H304",
	"H370", "H371", // органы-мишени, однократное воздействие
	"H372", "H373", // органы-мишени, многократное воздействие
)

func codeSet(codes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

// IsCMRCode сообщает, относится ли код к CMR.
func IsCMRCode(code string) bool {
	_, ok := cmrCodes[code]
	return ok
}

// IsToxicCode сообщает, относится ли код к острой токсичности.
func IsToxicCode(code string) bool {
	_, ok := toxicCodes[code]
	return ok
}

// Classify вычисляет классификацию препарата. Правила применяются по порядку,
// побеждает первое сработавшее: отзыв, затем CMR, затем токсичность.
// Флаги IsCMR и IsToxic вычисляются независимо от порядка правил.
func Classify(product models.ProductRecord, phrases []models.RiskPhrase) models.ClassifiedProduct {
	var isCMR, isToxic bool
	for _, p := range phrases {
		if IsCMRCode(p.Code) {
			isCMR = true
		}
		if IsToxicCode(p.Code) {
			isToxic = true
		}
	}

	var class models.Classification
	switch {
	case product.IsWithdrawn():
		class = models.ClassWithdrawn
	case isCMR:
		class = models.ClassHomologatedCMR
	case isToxic:
		class = models.ClassHomologatedToxic
	default:
		class = models.ClassHomologated
	}

	if phrases == nil {
		phrases = []models.RiskPhrase{}
	}

	return models.ClassifiedProduct{
		ProductRecord:  product,
		Classification: class,
		RiskPhrases:    phrases,
		IsCMR:          isCMR,
		IsToxic:        isToxic,
	}
}
