package repository

import "time"

// Module is a row of the module table
type Module struct {
	ModuleCode  string `gorm:"column:module_code;primaryKey;size:32" json:"module_code"`
	ModuleName  string `gorm:"column:module_name;size:255" json:"module_name"`
	Description string `gorm:"column:description;type:text" json:"description"`
}

func (Module) TableName() string {
	return "module"
}

// Review is a row of the user_reviews table
type Review struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ElectiveCode string    `gorm:"column:Elective_Code;size:32;index" json:"Elective_Code"`
	Rating       int       `gorm:"column:rating" json:"rating"`
	Review       string    `gorm:"column:review;type:text" json:"review"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Review) TableName() string {
	return "user_reviews"
}
