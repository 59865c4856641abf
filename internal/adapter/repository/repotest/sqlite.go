// Package repotest opens throwaway SQLite databases for repository and usecase tests.
package repotest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
)

// NewDB returns an isolated in-memory database with the schema migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&entities.User{},
		&entities.Meeting{},
		&entities.Task{},
		&entities.Integration{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedUser inserts an active password user.
func SeedUser(t testing.TB, db *gorm.DB, email string) *entities.User {
	t.Helper()
	u := entities.NewUser(email, nil, "hash")
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedMeeting inserts a meeting for owner in the given status.
func SeedMeeting(t testing.TB, db *gorm.DB, ownerID uuid.UUID, status entities.MeetingStatus) *entities.Meeting {
	t.Helper()
	m := entities.NewMeeting(ownerID, "Weekly sync", "audio/"+uuid.NewString()+".mp3", "audio/mpeg", false)
	m.Status = status
	if err := db.Omit("Tasks").Create(m).Error; err != nil {
		t.Fatalf("seed meeting: %v", err)
	}
	return m
}

// SeedTask inserts a task under meeting in the given status.
func SeedTask(t testing.TB, db *gorm.DB, meeting *entities.Meeting, position int, status entities.TaskStatus) *entities.Task {
	t.Helper()
	task := entities.NewTask(meeting.ID, meeting.OwnerID, position, fmt.Sprintf("Task %d", position), entities.TaskPriorityMedium)
	task.Status = status
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}
