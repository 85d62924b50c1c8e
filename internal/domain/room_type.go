package domain

import "context"

type RoomType struct {
	ID        string
	Name      string
	BaseRate  float64
	Capacity  int
	UnitCount int
}

type UnitStatus string

const (
	UnitAvailable    UnitStatus = "available"
	UnitOutOfService UnitStatus = "out_of_service"
)

type InventoryUnit struct {
	ID         string
	RoomTypeID string
	Status     UnitStatus
}

type RoomTypeRepository interface {
	GetRoomTypes(ctx context.Context) ([]*RoomType, error)
	GetRoomTypeByID(ctx context.Context, roomTypeID string) (*RoomType, error)
	GetInventoryUnits(ctx context.Context, roomTypeID string) ([]*InventoryUnit, error)
}
