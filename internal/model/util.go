package model

import "github.com/google/uuid"

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// CascadeOrder lists the tables removed by an account deletion, children first.
var CascadeOrder = []string{
	"application_status_events",
	"applications",
	"resumes",
	"jobs",
	"employer_admins",
	"employer_profiles",
	"job_seeker_profiles",
	"refresh_tokens",
	"password_reset_tokens",
	"email_verifications",
	"notifications",
	"users",
}
