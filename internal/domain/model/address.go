package model

import "time"

// 配送先住所
// 1ユーザーにつきis_default=trueは1件だけ
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//宛名
	Name string `gorm:"type:varchar(50);not null" json:"name"`

	//電話番号
	Phone string `gorm:"type:varchar(20);not null" json:"phone"`

	//省・市・区
	Province string `gorm:"type:varchar(50);not null" json:"province"`
	City     string `gorm:"type:varchar(50);not null" json:"city"`
	Region   string `gorm:"type:varchar(50);not null" json:"region"`

	//番地など
	DetailAddress string `gorm:"type:varchar(255);not null" json:"detail_address"`

	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (a Address) FullAddress() string {
	return a.Province + a.City + a.Region + a.DetailAddress
}

// 注文に焼き付ける住所のコピー
type AddressSnapshot struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Province      string `json:"province"`
	City          string `json:"city"`
	Region        string `json:"region"`
	DetailAddress string `json:"detail_address"`
	FullAddress   string `json:"full_address"`
}

func (a Address) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		Name:          a.Name,
		Phone:         a.Phone,
		Province:      a.Province,
		City:          a.City,
		Region:        a.Region,
		DetailAddress: a.DetailAddress,
		FullAddress:   a.FullAddress(),
	}
}
