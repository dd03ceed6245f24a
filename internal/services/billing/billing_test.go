package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/phytocheck/internal/models"
)

func TestResolve(t *testing.T) {
	tx := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		platform  Platform
		purchases []Purchase
		want      Verdict
	}{
		{
			name:     "android годовой план",
			platform: PlatformAndroid,
			purchases: []Purchase{
				{ProductID: "other"},
				{ProductID: AndroidProductPremium, BasePlanID: AndroidBasePlanYearly, TransactionDate: tx},
			},
			want: Verdict{Active: true, SubscriptionType: models.SubscriptionYearly, TransactionDate: tx},
		},
		{
			name:      "android неизвестный план считается месячным",
			platform:  PlatformAndroid,
			purchases: []Purchase{{ProductID: AndroidProductPremium, BasePlanID: "weekly", TransactionDate: tx}},
			want:      Verdict{Active: true, SubscriptionType: models.SubscriptionMonthly, TransactionDate: tx},
		},
		{
			name:      "android продукт iOS не подходит",
			platform:  PlatformAndroid,
			purchases: []Purchase{{ProductID: IOSProductMonthly}},
			want:      Verdict{},
		},
		{
			name:     "ios месячный важнее годового",
			platform: PlatformIOS,
			purchases: []Purchase{
				{ProductID: IOSProductYearly, TransactionDate: tx.Add(time.Hour)},
				{ProductID: IOSProductMonthly, TransactionDate: tx},
			},
			want: Verdict{Active: true, SubscriptionType: models.SubscriptionMonthly, TransactionDate: tx},
		},
		{
			name:      "ios годовой",
			platform:  PlatformIOS,
			purchases: []Purchase{{ProductID: IOSProductYearly, TransactionDate: tx}},
			want:      Verdict{Active: true, SubscriptionType: models.SubscriptionYearly, TransactionDate: tx},
		},
		{
			name:     "пустой список",
			platform: PlatformIOS,
			want:     Verdict{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.platform, tt.purchases)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Web(t *testing.T) {
	_, err := Resolve(PlatformWeb, []Purchase{{ProductID: AndroidProductPremium}})
	assert.ErrorIs(t, err, ErrPlatformNotSupported)
	assert.False(t, IsPlatformSupported(PlatformWeb))
	assert.True(t, IsPlatformSupported(PlatformAndroid))
	assert.True(t, IsPlatformSupported(PlatformIOS))
}

func TestParsePlatform(t *testing.T) {
	assert.Equal(t, PlatformAndroid, ParsePlatform(" Android "))
	assert.Equal(t, PlatformIOS, ParsePlatform("IOS"))
	assert.Equal(t, PlatformWeb, ParsePlatform("windows"))
}

func TestVerdict_PremiumStatus(t *testing.T) {
	tx := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	v := Verdict{Active: true, SubscriptionType: models.SubscriptionYearly, TransactionDate: tx}
	assert.Equal(t, models.PremiumStatus{IsPremium: true, SubscriptionType: models.SubscriptionYearly, TransactionDate: tx}, v.PremiumStatus())
}
