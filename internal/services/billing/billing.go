// Package billing сопоставляет список активных покупок платформы с правом на Premium.
// Список покупок, возвращаемый магазином, считается источником истины:
// локально срок действия подписки не вычисляется.
package billing

import (
	"errors"
	"strings"
	"time"

	"github.com/magabrotheeeer/phytocheck/internal/models"
)

// Platform - платформа установки.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformWeb     Platform = "web"
)

// Идентификаторы продуктов в магазинах.
const (
	AndroidProductPremium  = "phytocheck_premium"
	AndroidBasePlanMonthly = "monthly"
	AndroidBasePlanYearly  = "yearly"

	IOSProductMonthly = "phytocheck.premium.monthly"
	IOSProductYearly  = "phytocheck.premium.yearly"
)

// ErrPlatformNotSupported возвращается для платформ без встроенных покупок.
var ErrPlatformNotSupported = errors.New("in-app purchases are not supported on this platform")

// Purchase - активная покупка, как её сообщает магазин.
type Purchase struct {
	ProductID       string    `json:"productId"`
	BasePlanID      string    `json:"basePlanId,omitempty"`
	TransactionDate time.Time `json:"transactionDate"`
}

// Verdict - результат проверки покупок.
type Verdict struct {
	Active           bool
	SubscriptionType models.SubscriptionType
	TransactionDate  time.Time
}

// PremiumStatus возвращает сохраняемое представление вердикта.
func (v Verdict) PremiumStatus() models.PremiumStatus {
	return models.PremiumStatus{
		IsPremium:        v.Active,
		SubscriptionType: v.SubscriptionType,
		TransactionDate:  v.TransactionDate,
	}
}

// ParsePlatform разбирает название платформы без учёта регистра.
func ParsePlatform(s string) Platform {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformAndroid:
		return PlatformAndroid
	case PlatformIOS:
		return PlatformIOS
	default:
		return PlatformWeb
	}
}

// IsPlatformSupported сообщает, поддерживает ли платформа встроенные покупки.
func IsPlatformSupported(p Platform) bool {
	return p == PlatformAndroid || p == PlatformIOS
}

// Resolve вычисляет вердикт по списку активных покупок. На Android ищется
// продукт phytocheck_premium, тип подписки берётся из base plan (неизвестный
// план считается месячным). На iOS месячный продукт проверяется раньше годового.
// Пустой список или отсутствие подходящей покупки дают неактивный вердикт.
func Resolve(platform Platform, purchases []Purchase) (Verdict, error) {
	var (
		found   *Purchase
		subType models.SubscriptionType
	)

	switch platform {
	case PlatformAndroid:
		for i := range purchases {
			if purchases[i].ProductID != AndroidProductPremium {
				continue
			}
			found = &purchases[i]
			subType = models.SubscriptionMonthly
			if found.BasePlanID == AndroidBasePlanYearly {
				subType = models.SubscriptionYearly
			}
			break
		}
	case PlatformIOS:
		if p := find(purchases, IOSProductMonthly); p != nil {
			found, subType = p, models.SubscriptionMonthly
		} else if p := find(purchases, IOSProductYearly); p != nil {
			found, subType = p, models.SubscriptionYearly
		}
	default:
		return Verdict{}, ErrPlatformNotSupported
	}

	if found == nil {
		return Verdict{Active: false, SubscriptionType: models.SubscriptionNone}, nil
	}
	return Verdict{
		Active:           true,
		SubscriptionType: subType,
		TransactionDate:  found.TransactionDate,
	}, nil
}

func find(purchases []Purchase, productID string) *Purchase {
	for i := range purchases {
		if purchases[i].ProductID == productID {
			return &purchases[i]
		}
	}
	return nil
}
