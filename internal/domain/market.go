package domain

type CommercialMode string

const (
	ModeNet        CommercialMode = "net"
	ModeCommission CommercialMode = "commission"
)

// SalesSettings drives tier pricing. Rates are percentages (20 == 20%).
type SalesSettings struct {
	Mode              CommercialMode `json:"mode"`
	MarkupRate        float64        `json:"markupRate"`
	CommissionRate    float64        `json:"commissionRate"`
	AgencyMarginShare float64        `json:"agencyMarginShare"`
}

// RoomOverride is a per-room-type override declared by a market or season.
// Each value only counts when its Use flag is set; otherwise the level inherits.
type RoomOverride struct {
	RoomTypeID     int64               `json:"roomTypeId"`
	UsePricingType bool                `json:"usePricingType"`
	PricingType    PricingType         `json:"pricingType,omitempty"`
	UseMultipliers bool                `json:"useMultipliers"`
	Multipliers    *MultiplierTemplate `json:"multipliers,omitempty"`
	UseMinAdults   bool                `json:"useMinAdults"`
	MinAdults      int                 `json:"minAdults,omitempty"`
}

type ChildAgeOverride struct {
	Use    bool       `json:"use"`
	Groups []AgeGroup `json:"groups,omitempty"`
}

type Market struct {
	ID            int64            `json:"id"`
	HotelID       int64            `json:"hotelId"`
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	Currency      string           `json:"currency"`
	Countries     []string         `json:"countries,omitempty"`
	Sales         SalesSettings    `json:"sales"`
	RoomOverrides []RoomOverride   `json:"roomOverrides,omitempty"`
	ChildAges     ChildAgeOverride `json:"childAges"`
}

// RoomOverride returns the override declared for roomTypeID, if any.
func (m *Market) RoomOverride(roomTypeID int64) (RoomOverride, bool) {
	if m == nil {
		return RoomOverride{}, false
	}
	return findRoomOverride(m.RoomOverrides, roomTypeID)
}

func findRoomOverride(list []RoomOverride, roomTypeID int64) (RoomOverride, bool) {
	for _, o := range list {
		if o.RoomTypeID == roomTypeID {
			return o, true
		}
	}
	return RoomOverride{}, false
}
