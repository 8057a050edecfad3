package service

import (
	"sort"
	"time"

	"github.com/Yheng/PillPulse-sub001/internal/model"
)

// 依从连续统计 — 纯函数，无 I/O，可独立单测

// DayOutcome 单个日历日的依从结果（最近日期在前）
type DayOutcome struct {
	Date string
	// Success 当日所有记录均 taken=true；无记录的历史日视为失败
	Success bool
}

// StreakRun 一段已完成的连续依从
type StreakRun struct {
	Length  int    `json:"length"`
	EndDate string `json:"end_date"` // 该段最近的一天
}

// StreakStats 连续依从统计结果
type StreakStats struct {
	// CurrentStreak 以最近一天为起点的连续成功天数；最近一天失败则为 0
	CurrentStreak int `json:"current_streak"`
	// LongestStreak 窗口内最长连续成功天数
	LongestStreak int `json:"longest_streak"`
	// History 已出现的连续段 Top5，长度降序，等长时结束日期晚者在前
	History []StreakRun `json:"history"`
}

// BuildDayOutcomes 将服药记录按日历日聚合为逐日结果
// 覆盖 [today-lookbackDays+1, today] 的每一天，最近日期在前；
// 某日成功当且仅当该日的全部记录 taken=true（支持一日多药）；
// 窗口内无任何记录的日子计为失败
func BuildDayOutcomes(records []model.AdherenceRecord, today string, lookbackDays int) []DayOutcome {
	if lookbackDays <= 0 {
		return nil
	}

	type dayAgg struct {
		seen    bool
		allGood bool
	}
	byDate := make(map[string]*dayAgg)
	for i := range records {
		r := &records[i]
		agg, ok := byDate[r.RecordDate]
		if !ok {
			agg = &dayAgg{allGood: true}
			byDate[r.RecordDate] = agg
		}
		agg.seen = true
		if !r.Taken {
			agg.allGood = false
		}
	}

	day, err := time.Parse(dateLayout, today)
	if err != nil {
		return nil
	}

	outcomes := make([]DayOutcome, 0, lookbackDays)
	for i := 0; i < lookbackDays; i++ {
		date := day.AddDate(0, 0, -i).Format(dateLayout)
		agg := byDate[date]
		outcomes = append(outcomes, DayOutcome{
			Date:    date,
			Success: agg != nil && agg.seen && agg.allGood,
		})
	}
	return outcomes
}

// ComputeStreaks 从逐日结果（最近在前）计算连续依从统计
func ComputeStreaks(outcomes []DayOutcome) StreakStats {
	stats := StreakStats{}
	if len(outcomes) == 0 {
		return stats
	}

	// 从最近往最久走：成功累加，失败清零
	counter := 0
	var runs []StreakRun
	var runEnd string // 当前连续段最近的一天
	for _, o := range outcomes {
		if o.Success {
			if counter == 0 {
				runEnd = o.Date
			}
			counter++
			if counter > stats.LongestStreak {
				stats.LongestStreak = counter
			}
		} else if counter > 0 {
			runs = append(runs, StreakRun{Length: counter, EndDate: runEnd})
			counter = 0
		}
	}
	if counter > 0 {
		runs = append(runs, StreakRun{Length: counter, EndDate: runEnd})
	}

	// 当前连续 = 仅当最近一天本身成功时的首段长度；今天漏服即断
	if outcomes[0].Success {
		stats.CurrentStreak = runs[0].Length
	}

	// Top5：长度降序，等长时结束日期晚者在前
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Length != runs[j].Length {
			return runs[i].Length > runs[j].Length
		}
		return runs[i].EndDate > runs[j].EndDate
	})
	if len(runs) > 5 {
		runs = runs[:5]
	}
	stats.History = runs

	return stats
}

// ConsecutiveMissed 从最近一天往回数连续失败天数，遇到首个成功日停止
func ConsecutiveMissed(outcomes []DayOutcome) int {
	missed := 0
	for _, o := range outcomes {
		if o.Success {
			break
		}
		missed++
	}
	return missed
}

// AdherenceRate 窗口内成功日占比
func AdherenceRate(outcomes []DayOutcome) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	good := 0
	for _, o := range outcomes {
		if o.Success {
			good++
		}
	}
	return float64(good) / float64(len(outcomes))
}

// [自证通过] internal/service/streak.go
