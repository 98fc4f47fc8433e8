package database

import (
	"fmt"
	"log"
	"student_dashboard_backend/internal/config"
	"student_dashboard_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, mode string, forceMigrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release 模式默认跳过自动迁移，需通过 -migrate 显式触发
	if mode != "release" || forceMigrate {
		err = db.AutoMigrate(
			&model.User{},
			&model.Session{},
			&model.Progress{},
		)

		if err != nil {
			return nil, err
		}

		log.Println("Database migration completed")

		if err := seedDemoData(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// seedDemoData 空库时写入演示账号和学习单元（默认密码 password123）
func seedDemoData(db *gorm.DB) error {
	var userCount int64
	db.Model(&model.User{}).Count(&userCount)
	if userCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		demoUsers := []model.User{
			{Email: "john.doe@student.edu", Password: string(hash), Role: model.Student, FirstName: "John", LastName: "Doe"},
			{Email: "jane.smith@student.edu", Password: string(hash), Role: model.Student, FirstName: "Jane", LastName: "Smith"},
			{Email: "mike.johnson@student.edu", Password: string(hash), Role: model.Student, FirstName: "Mike", LastName: "Johnson"},
			{Email: "sarah.teacher@school.edu", Password: string(hash), Role: model.Teacher, FirstName: "Sarah", LastName: "Williams"},
			{Email: "robert.teacher@school.edu", Password: string(hash), Role: model.Teacher, FirstName: "Robert", LastName: "Brown"},
		}
		for _, u := range demoUsers {
			if err := db.Create(&u).Error; err != nil {
				return err
			}
		}
	}

	var sessionCount int64
	db.Model(&model.Session{}).Count(&sessionCount)
	if sessionCount == 0 {
		demoSessions := []model.Session{
			{Title: "Introduction to Mindful Learning", Description: "Foundations of attention and study habits"},
			{Title: "Goal Setting Workshop", Description: "Defining achievable weekly learning goals"},
			{Title: "Reflective Writing Basics", Description: "How to write a useful learning reflection"},
			{Title: "Peer Feedback Session", Description: "Giving and receiving constructive feedback"},
		}
		for _, s := range demoSessions {
			if err := db.Create(&s).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
