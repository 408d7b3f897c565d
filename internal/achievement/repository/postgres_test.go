package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"psychaid/backend/internal/achievement/domain"
)

func TestPostgresExercise_MarkCompleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewPostgresExerciseRepository(db)

	q := regexp.QuoteMeta(`UPDATE exercises SET completed = TRUE WHERE id = $1 AND user_id = $2 AND NOT completed`)
	mock.ExpectExec(q).WithArgs("e1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("e1", "u1").WillReturnResult(sqlmock.NewResult(0, 0))

	if changed, err := repo.MarkCompleted(context.Background(), "e1", "u1"); err != nil || !changed {
		t.Fatalf("first MarkCompleted = %v, %v", changed, err)
	}
	if changed, err := repo.MarkCompleted(context.Background(), "e1", "u1"); err != nil || changed {
		t.Fatalf("second MarkCompleted = %v, %v", changed, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresExercise_CompletedTotals(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*), COALESCE(SUM(duration_minutes), 0) FROM exercises`)).
		WithArgs("u1", "meditation").
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(3, 45))
	got, err := NewPostgresExerciseRepository(db).CompletedTotals(context.Background(), "u1", "meditation")
	if err != nil || got != (domain.Totals{Count: 3, Minutes: 45}) {
		t.Fatalf("CompletedTotals = %+v, %v", got, err)
	}
}

func TestPostgresAchievement_AwardOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewPostgresAchievementRepository(db)
	a := &domain.Achievement{ID: "a1", UserID: "u1", Title: "Meditation Beginner", Category: "meditation", CreatedAt: time.Now().UTC()}

	q := regexp.QuoteMeta(`ON CONFLICT (user_id, title) DO NOTHING`)
	mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 0))

	if ok, err := repo.Award(context.Background(), a); err != nil || !ok {
		t.Fatalf("first Award = %v, %v", ok, err)
	}
	if ok, err := repo.Award(context.Background(), a); err != nil || ok {
		t.Fatalf("second Award = %v, %v", ok, err)
	}
}
