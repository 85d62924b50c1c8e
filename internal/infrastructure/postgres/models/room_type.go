package models

type RoomTypeModel struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	BaseRate  float64
	Capacity  int
	UnitCount int
}

func (RoomTypeModel) TableName() string { return "room_types" }

type InventoryUnitModel struct {
	ID         string `gorm:"primaryKey"`
	RoomTypeID string `gorm:"index"`
	Status     string
}

func (InventoryUnitModel) TableName() string { return "inventory_units" }
