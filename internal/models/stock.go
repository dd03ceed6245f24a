package models

import (
	"encoding/json"
	"time"
)

// Unit - единица измерения количества на складе.
type Unit string

const (
	UnitLiters    Unit = "L"
	UnitKilograms Unit = "Kg"
)

// ParseUnit разбирает единицу измерения. Неизвестные значения считаются литрами.
func ParseUnit(s string) Unit {
	switch s {
	case "Kg", "kg", "KG", "kilograms":
		return UnitKilograms
	default:
		return UnitLiters
	}
}

// Snapshot - замороженная копия полей препарата на момент добавления на склад.
// Поля неэкспортируемые: снимок создаётся только через NewSnapshot и
// не пересчитывается при обновлении справочника.
type Snapshot struct {
	productID      string
	name           string
	classification Classification
	holder         string
	functions      string
	status         string
}

// NewSnapshot копирует поля классифицированного препарата.
func NewSnapshot(p ClassifiedProduct) Snapshot {
	return Snapshot{
		productID:      p.ID,
		name:           p.Name,
		classification: p.Classification,
		holder:         p.Holder,
		functions:      p.Functions,
		status:         p.Status,
	}
}

func (s Snapshot) ProductID() string              { return s.productID }
func (s Snapshot) Name() string                   { return s.name }
func (s Snapshot) Classification() Classification { return s.classification }
func (s Snapshot) Holder() string                 { return s.holder }
func (s Snapshot) Functions() string              { return s.functions }
func (s Snapshot) Status() string                 { return s.status }

type snapshotJSON struct {
	ProductID      string         `json:"product_id"`
	Name           string         `json:"name"`
	Classification Classification `json:"classification"`
	Holder         string         `json:"holder"`
	Functions      string         `json:"functions"`
	Status         string         `json:"status"`
}

// MarshalJSON сериализует снимок для хранения.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		ProductID:      s.productID,
		Name:           s.name,
		Classification: s.classification,
		Holder:         s.holder,
		Functions:      s.functions,
		Status:         s.status,
	})
}

// UnmarshalJSON восстанавливает снимок из хранилища.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Snapshot{
		productID:      raw.ProductID,
		name:           raw.Name,
		classification: raw.Classification,
		holder:         raw.Holder,
		functions:      raw.Functions,
		status:         raw.Status,
	}
	return nil
}

// StockItem - позиция склада пользователя. На один productID приходится
// не более одной позиции, это обеспечивает сервис склада.
type StockItem struct {
	Product       Snapshot  `json:"product"`
	SecondaryName string    `json:"secondary_name,omitempty"` // Название, по которому препарат был найден
	AddedAt       time.Time `json:"added_at"`
	Quantity      float64   `json:"quantity"`
	Unit          Unit      `json:"unit"`
}

// ProductID возвращает AMM препарата позиции.
func (i StockItem) ProductID() string {
	return i.Product.ProductID()
}

// StockStats - агрегированная статистика склада по классификациям снимков.
type StockStats struct {
	Total       int `json:"total"`
	Homologated int `json:"homologated"`
	Withdrawn   int `json:"withdrawn"`
	CMR         int `json:"cmr"`
	Toxic       int `json:"toxic"`
}
