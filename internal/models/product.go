// Package models содержит доменные структуры справочника препаратов,
// складского учёта пользователя и статуса подписки.
package models

// Статусы препарата в справочнике. Значения совпадают с токенами выгрузки.
const (
	StatusAuthorized = "AUTORISE"
	StatusWithdrawn  = "RETIRE"
)

// ProductRecord описывает препарат из справочника. Запись неизменяема
// и загружается один раз при старте.
type ProductRecord struct {
	ID                string `json:"amm"`               // Номер AMM, используется как первичный ключ
	Name              string `json:"nom"`               // Торговое название
	SecondaryNames    string `json:"nomsSecondaires"`   // Дополнительные названия
	Holder            string `json:"titulaire"`         // Владелец разрешения
	UsageRange        string `json:"gammeUsage"`        // Область применения
	ActiveSubstances  string `json:"substancesActives"` // Действующие вещества
	Functions         string `json:"fonctions"`         // Назначение (гербицид, фунгицид и т.д.)
	Formulation       string `json:"formulation"`       // Препаративная форма
	Status            string `json:"etat"`              // AUTORISE или RETIRE
	WithdrawalDate    string `json:"dateRetrait"`       // Дата отзыва, строка для отображения
	AuthorizationDate string `json:"dateAutorisation"`  // Дата выдачи разрешения, строка для отображения
}

// IsWithdrawn сообщает, отозвано ли разрешение препарата.
func (p ProductRecord) IsWithdrawn() bool {
	return p.Status == StatusWithdrawn
}

// RiskPhrase - фраза опасности (H-фраза) препарата.
type RiskPhrase struct {
	Code  string `json:"code"`    // Код, например H351
	Label string `json:"libelle"` // Текстовое описание
}

// ClassifiedProduct - препарат вместе с вычисленной классификацией.
// Никогда не сохраняется как источник истины, пересчитывается при каждом чтении.
type ClassifiedProduct struct {
	ProductRecord
	Classification Classification `json:"classification"`
	RiskPhrases    []RiskPhrase   `json:"riskPhrases"`
	IsCMR          bool           `json:"isCMR"`
	IsToxic        bool           `json:"isToxique"`
}
