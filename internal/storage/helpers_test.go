package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/learning-platform/internal/migrations"
	"github.com/magabrotheeeer/learning-platform/internal/models"
)

// testDataFactory inserts fixtures straight into the database.
type testDataFactory struct {
	storage *Storage
}

func newTestDataFactory(s *Storage) *testDataFactory {
	return &testDataFactory{storage: s}
}

func (f *testDataFactory) createProfile(t *testing.T, role string, createdAt time.Time) uuid.UUID {
	id := uuid.New()
	_, err := f.storage.DB.Exec(`INSERT INTO profiles (id, email, full_name, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		id, id.String()[:8]+"@example.com", "Test "+role, role, createdAt)
	require.NoError(t, err)
	return id
}

func (f *testDataFactory) createPackage(t *testing.T, name string, price string, months int, active bool) *models.Package {
	p, err := f.storage.CreatePackage(context.Background(), models.Package{
		Name:           name,
		Price:          decimal.RequireFromString(price),
		DurationMonths: months,
		Features:       []string{"Video lessons"},
		IsActive:       active,
	})
	require.NoError(t, err)
	return p
}

func (f *testDataFactory) createQuiz(t *testing.T) (*models.Subject, *models.Quiz) {
	ctx := context.Background()
	sub, err := f.storage.CreateSubject(ctx, "Physics", "Mechanics")
	require.NoError(t, err)
	q, err := f.storage.CreateQuiz(ctx, models.Quiz{SubjectID: sub.ID, Title: "Kinematics"})
	require.NoError(t, err)
	return sub, q
}

func (f *testDataFactory) createQuestion(t *testing.T, quizID uuid.UUID, correct string, points int) *models.Question {
	q, err := f.storage.CreateQuestion(context.Background(), models.Question{
		QuizID:        quizID,
		Question:      "Pick " + correct,
		OptionA:       "a",
		OptionB:       "b",
		OptionC:       "c",
		OptionD:       "d",
		CorrectAnswer: correct,
		Points:        points,
	})
	require.NoError(t, err)
	return q
}

// testVerification reads state back for assertions.
type testVerification struct {
	storage *Storage
}

func newTestVerification(s *Storage) *testVerification {
	return &testVerification{storage: s}
}

func (v *testVerification) activeEntitlements(t *testing.T, userID uuid.UUID) int {
	var n int
	err := v.storage.DB.QueryRow(
		`SELECT COUNT(*) FROM user_packages WHERE user_id = $1 AND is_active`, userID).Scan(&n)
	require.NoError(t, err)
	return n
}

func (v *testVerification) resultRows(t *testing.T, userID, quizID uuid.UUID) int {
	var n int
	err := v.storage.DB.QueryRow(
		`SELECT COUNT(*) FROM results WHERE user_id = $1 AND quiz_id = $2`, userID, quizID).Scan(&n)
	require.NoError(t, err)
	return n
}

// setupTestDatabase starts a postgres container and applies the project migrations.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var s *Storage
	for i := 0; i < 5; i++ {
		s, err = New(ctx, dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to connect to database")

	root, err := filepath.Abs("../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(s.DB, filepath.Join(root, "migrations")))

	// seeded packages would interfere with ordering assertions
	_, err = s.DB.Exec(`DELETE FROM packages`)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return s, cleanup
}
