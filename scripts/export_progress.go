// 手动导出学生进度 CSV 脚本
//
// 与教师端 /api/teacher/export/csv 输出完全一致，用于不经过 Web 入口的
// 场景，例如定时备份或学期末归档。
//
// 用法: go run scripts/export_progress.go
package main

import (
	"log"
	"os"
	"time"

	"student_dashboard_backend/internal/config"
	"student_dashboard_backend/internal/repository"
	"student_dashboard_backend/internal/service"
	"student_dashboard_backend/pkg/database"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, false)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	svc := service.NewAnalyticsService(
		repository.NewDashboardRepository(db),
		repository.NewUserRepository(db),
	)

	filename, csv, err := svc.ExportCSV(time.Now())
	if err != nil {
		log.Fatalf("导出失败: %v", err)
	}

	if err := os.WriteFile(filename, []byte(csv), 0644); err != nil {
		log.Fatalf("写入文件失败: %v", err)
	}
	log.Printf("已导出 %s", filename)
}
