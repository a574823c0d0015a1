package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"jobportal-backend/internal/config"
	m "jobportal-backend/internal/model"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// Exported test users, profiles and jobs
var (
	TestAdminUser         m.User
	TestSeekerUser1       m.User
	TestSeekerUser2       m.User
	TestProviderUser1     m.User
	TestProviderUser2     m.User
	TestEmployerAdminUser m.User
	TestOutsiderUser      m.User

	TestSeeker1 m.JobSeekerProfile
	TestSeeker2 m.JobSeekerProfile

	// TestEmployer1 is owned by TestProviderUser1 and administered by TestEmployerAdminUser.
	TestEmployer1 m.EmployerProfile
	// TestEmployer2 is owned by TestProviderUser2.
	TestEmployer2 m.EmployerProfile

	TestJobPublished m.Job
	TestJobDraft     m.Job
	TestJobExpired   m.Job
	TestJobOther     m.Job

	TestResume1 m.Resume

	// Add exported plain password
	TestSeedPassword = "SeedPass123!"

	seedHash string
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	// Database configuration
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	db, err := NewDBInstance(config.DBConfig{
		Host:             dbHost,
		Port:             dbPort.Port(),
		Name:             dbName,
		ConnectionString: fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	})
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts the shared fixtures every package test relies on.
func seedTestData(db *DBinstanceStruct) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestSeedPassword), bcrypt.MinCost)
	if err != nil {
		return err
	}
	seedHash = string(hash)

	users := []*m.User{&TestAdminUser, &TestSeekerUser1, &TestSeekerUser2, &TestProviderUser1, &TestProviderUser2, &TestEmployerAdminUser, &TestOutsiderUser}
	specs := []struct {
		email string
		role  m.Role
		first string
	}{
		{"admin@example.com", m.RoleAdmin, "Ada"},
		{"seeker1@example.com", m.RoleJobSeeker, "Alice"},
		{"seeker2@example.com", m.RoleJobSeeker, "Bob"},
		{"provider1@example.com", m.RoleJobProvider, "Carol"},
		{"provider2@example.com", m.RoleJobProvider, "Dan"},
		{"recruiter@example.com", m.RoleJobProvider, "Erin"},
		{"outsider@example.com", m.RoleJobProvider, "Frank"},
	}
	for i, s := range specs {
		*users[i] = m.User{
			Email:         s.email,
			PasswordHash:  ptr(seedHash),
			Role:          s.role,
			EmailVerified: true,
			FirstName:     s.first,
			LastName:      "Tester",
		}
		if err := db.Create(users[i]).Error; err != nil {
			return err
		}
	}

	TestSeeker1 = m.JobSeekerProfile{
		UserID: TestSeekerUser1.ID,
		EditableSeekerInfo: m.EditableSeekerInfo{
			DesiredTitle:   "Backend Engineer",
			Skills:         []m.Skill{{Category: "language", Work: "Go", Confidence: 90}, {Category: "database", Work: "PostgreSQL", Confidence: 75}},
			ProfileVisible: true,
		},
	}
	TestSeeker2 = m.JobSeekerProfile{
		UserID:             TestSeekerUser2.ID,
		EditableSeekerInfo: m.EditableSeekerInfo{DesiredTitle: "Data Analyst", ProfileVisible: true},
	}
	if err := db.Create(&TestSeeker1).Error; err != nil {
		return err
	}
	if err := db.Create(&TestSeeker2).Error; err != nil {
		return err
	}

	TestEmployer1 = m.EmployerProfile{OwnerID: TestProviderUser1.ID, Name: "Acme Corp", Location: "Bangkok"}
	TestEmployer2 = m.EmployerProfile{OwnerID: TestProviderUser2.ID, Name: "Globex", Location: "Remote"}
	if err := db.Create(&TestEmployer1).Error; err != nil {
		return err
	}
	if err := db.Create(&TestEmployer2).Error; err != nil {
		return err
	}
	if err := db.Create(&m.EmployerAdmin{EmployerID: TestEmployer1.ID, UserID: TestEmployerAdminUser.ID}).Error; err != nil {
		return err
	}

	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	nextMonth := now.Add(30 * 24 * time.Hour)
	salaryLow, salaryHigh := 40000, 60000

	TestJobPublished = m.Job{
		EmployerID: TestEmployer1.ID,
		Slug:       "senior-go-developer-" + suffix(),
		Status:     m.JobPublished,
		PostedAt:   &now,
		EditableJobInfo: m.EditableJobInfo{
			Title:           "Senior Go Developer",
			Description:     "Build APIs in Go",
			Location:        "Bangkok",
			JobType:         m.JobTypeFullTime,
			ExperienceLevel: m.ExperienceSenior,
			SalaryMin:       &salaryLow,
			SalaryMax:       &salaryHigh,
			Currency:        "THB",
			Tags:            pq.StringArray{"go", "backend"},
			ExpiresAt:       &nextMonth,
		},
	}
	TestJobDraft = m.Job{
		EmployerID:      TestEmployer1.ID,
		Slug:            "draft-role-" + suffix(),
		Status:          m.JobDraft,
		EditableJobInfo: m.EditableJobInfo{Title: "Draft Role", JobType: m.JobTypeContract},
	}
	TestJobExpired = m.Job{
		EmployerID: TestEmployer1.ID,
		Slug:       "expired-role-" + suffix(),
		Status:     m.JobPublished,
		PostedAt:   &yesterday,
		EditableJobInfo: m.EditableJobInfo{
			Title:     "Expired Role",
			Location:  "Bangkok",
			ExpiresAt: &yesterday,
		},
	}
	TestJobOther = m.Job{
		EmployerID: TestEmployer2.ID,
		Slug:       "remote-data-engineer-" + suffix(),
		Status:     m.JobPublished,
		PostedAt:   &now,
		EditableJobInfo: m.EditableJobInfo{
			Title:           "Remote Data Engineer",
			Location:        "Anywhere",
			Remote:          true,
			JobType:         m.JobTypePartTime,
			ExperienceLevel: m.ExperienceMid,
			Tags:            pq.StringArray{"data"},
		},
	}
	for _, j := range []*m.Job{&TestJobPublished, &TestJobDraft, &TestJobExpired, &TestJobOther} {
		if err := db.Create(j).Error; err != nil {
			return err
		}
	}

	TestResume1 = m.Resume{
		JobSeekerID:     TestSeeker1.ID,
		FileName:        "alice.pdf",
		MimeType:        "application/pdf",
		Size:            2048,
		Fingerprint:     "seed-fingerprint",
		ParseStatus:     m.ParsePending,
		UploadExpiresAt: now.Add(time.Hour),
	}
	TestResume1.ID = uuid.New()
	TestResume1.FileKey = fmt.Sprintf("resumes/%s/%s.pdf", TestSeeker1.ID, TestResume1.ID)
	return db.Create(&TestResume1).Error
}

// CreateTestUser inserts a verified user with TestSeedPassword and a unique email.
// Job seekers also get their profile.
func CreateTestUser(db *DBinstanceStruct, role m.Role) (m.User, *m.JobSeekerProfile, error) {
	u := m.User{
		Email:         fmt.Sprintf("%s-%s@example.com", strings.ToLower(string(role)), suffix()),
		PasswordHash:  ptr(seedHash),
		Role:          role,
		EmailVerified: true,
		FirstName:     "Temp",
	}
	if err := db.Create(&u).Error; err != nil {
		return u, nil, err
	}
	if role != m.RoleJobSeeker {
		return u, nil, nil
	}
	p := m.JobSeekerProfile{UserID: u.ID}
	if err := db.Create(&p).Error; err != nil {
		return u, nil, err
	}
	return u, &p, nil
}

// CreateTestEmployer inserts an employer owned by owner.
func CreateTestEmployer(db *DBinstanceStruct, owner uuid.UUID) (m.EmployerProfile, error) {
	e := m.EmployerProfile{OwnerID: owner, Name: "Employer " + suffix()}
	return e, db.Create(&e).Error
}

// CreateTestJob inserts a job with the given status under employerID.
func CreateTestJob(db *DBinstanceStruct, employerID uuid.UUID, status m.JobStatus) (m.Job, error) {
	now := time.Now()
	j := m.Job{
		EmployerID:      employerID,
		Slug:            "job-" + suffix(),
		Status:          status,
		EditableJobInfo: m.EditableJobInfo{Title: "Temp Job", Location: "Chiang Mai"},
	}
	if status == m.JobPublished {
		j.PostedAt = &now
	}
	return j, db.Create(&j).Error
}

// CreateTestResume inserts an uploaded resume for seekerID.
func CreateTestResume(db *DBinstanceStruct, seekerID uuid.UUID) (m.Resume, error) {
	r := m.Resume{
		ID:              uuid.New(),
		JobSeekerID:     seekerID,
		FileName:        "cv.pdf",
		MimeType:        "application/pdf",
		Size:            1024,
		Fingerprint:     suffix(),
		ParseStatus:     m.ParsePending,
		UploadExpiresAt: time.Now().Add(time.Hour),
	}
	r.FileKey = fmt.Sprintf("resumes/%s/%s.pdf", seekerID, r.ID)
	return r, db.Create(&r).Error
}

func suffix() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[len(id)-8:]
}

func ptr[T any](v T) *T {
	return &v
}
