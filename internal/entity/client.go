package entity

const (
	ColClientNumber = "client_number"
	ColSector       = "sector"
	ColName         = "name"
	ColAddress      = "address"
	ColPhone        = "phone"
	ColSealNumber   = "seal_number"
)

func ClientColumns() []string {
	return []string{ColClientNumber, ColSector, ColName, ColAddress, ColPhone, ColSealNumber}
}

type Client struct {
	Ref        int64  `json:"-"`
	Number     string `json:"number"`
	Sector     string `json:"sector"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	SealNumber string `json:"sealNumber"`
}

// ClientUpdate carries the fields an edit changes; nil fields are left untouched.
type ClientUpdate struct {
	Sector     *string `json:"sector"`
	Name       *string `json:"name"`
	Address    *string `json:"address"`
	Phone      *string `json:"phone"`
	SealNumber *string `json:"sealNumber"`
}

func (u ClientUpdate) IsEmpty() bool {
	return u.Sector == nil && u.Name == nil && u.Address == nil && u.Phone == nil && u.SealNumber == nil
}
