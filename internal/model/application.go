package model

import "time"

// Status is the lifecycle state of an application.
type Status string

const (
	StatusSubmitted   Status = "Submitted"
	StatusUnderReview Status = "Under Review"
	StatusSelected    Status = "Selected"
	StatusRejected    Status = "Rejected"
)

// StatusFilterAll is the list filter sentinel that disables status matching.
const StatusFilterAll = "all"

// Department is reported on every candidate dashboard entry.
// TODO: replace with a per-position department once positions are modelled.
const Department = "Engineering"

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusSubmitted, StatusUnderReview, StatusSelected, StatusRejected}

// ParseStatus returns the canonical Status for s, or false if s is not one.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Application represents one candidate submission
type Application struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Address   *string `json:"address,omitempty"`

	Degree         string  `json:"degree"`
	University     string  `json:"university"`
	GraduationYear int     `json:"graduationYear"`
	GPA            *string `json:"gpa,omitempty"`

	Position     string  `json:"position"`
	Experience   int     `json:"experience"` // years
	Skills       string  `json:"skills"`
	LinkedInURL  *string `json:"linkedinUrl,omitempty"`
	PortfolioURL *string `json:"portfolioUrl,omitempty"`

	CoverLetter string `json:"coverLetter"`
	ResumePath  string `json:"resumePath"` // public path under /uploads

	Status      Status    `json:"status"`
	AppliedDate time.Time `json:"appliedDate"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// SubmitApplicationRequest is the multipart form of POST /api/applications.
// No status field: new applications always start as Submitted.
type SubmitApplicationRequest struct {
	FirstName string `form:"firstName" binding:"required"`
	LastName  string `form:"lastName" binding:"required"`
	Email     string `form:"email" binding:"required,email"`
	Phone     string `form:"phone" binding:"required"`
	Address   string `form:"address"`

	Degree         string `form:"degree" binding:"required"`
	University     string `form:"university" binding:"required"`
	GraduationYear int    `form:"graduationYear" binding:"required,min=1900,max=2100"`
	GPA            string `form:"gpa"`

	Position     string `form:"position" binding:"required"`
	Experience   *int   `form:"experience" binding:"required,min=0,max=80"`
	Skills       string `form:"skills" binding:"required"`
	LinkedInURL  string `form:"linkedinUrl" binding:"omitempty,url"`
	PortfolioURL string `form:"portfolioUrl" binding:"omitempty,url"`

	CoverLetter string `form:"coverLetter" binding:"required"`
}

// UpdateStatusRequest is the body of PATCH /api/admin/applications/:id/status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SubmittedApplication is returned after a successful submission
type SubmittedApplication struct {
	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	AppliedDate time.Time `json:"appliedDate"`
}

// StatusChange is returned after an admin status update
type StatusChange struct {
	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// AdminListQuery is the raw query string of GET /api/admin/applications.
// Absent Page and Limit fall back to the defaults.
type AdminListQuery struct {
	Status string `form:"status"`
	Search string `form:"search"`
	Page   *int   `form:"page"`
	Limit  *int   `form:"limit"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// AdminApplicationFilters holds the normalised admin list query
type AdminApplicationFilters struct {
	Status *Status // nil means all statuses
	Search string
	Page   int
	Limit  int
}

// Offset is the number of rows skipped for the requested page.
func (f AdminApplicationFilters) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// Submitter is the owning account's identity joined into admin listings.
type Submitter struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// CandidateSummary is one row of the admin application list
type CandidateSummary struct {
	ID            string     `json:"id"`
	CandidateName string     `json:"candidateName"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Position      string     `json:"position"`
	Skills        string     `json:"skills"`
	Experience    int        `json:"experience"`
	Status        Status     `json:"status"`
	AppliedDate   time.Time  `json:"appliedDate"`
	ResumePath    string     `json:"resumePath"`
	SubmittedBy   *Submitter `json:"submittedBy,omitempty"`
}

// ApplicationPage is the admin list response
type ApplicationPage struct {
	Applications      []CandidateSummary `json:"applications"`
	TotalPages        int                `json:"totalPages"`
	CurrentPage       int                `json:"currentPage"`
	TotalApplications int64              `json:"totalApplications"`
}

// StatusCounts is the admin stats response
type StatusCounts struct {
	TotalApplications int64 `json:"totalApplications"`
	Submitted         int64 `json:"submitted"`
	UnderReview       int64 `json:"underReview"`
	Selected          int64 `json:"selected"`
	Rejected          int64 `json:"rejected"`
}

// DashboardUser is the account block of the candidate dashboard
type DashboardUser struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// DashboardApplication is one entry of the candidate dashboard
type DashboardApplication struct {
	ID          string    `json:"id"`
	Position    string    `json:"position"`
	Status      Status    `json:"status"`
	AppliedDate time.Time `json:"appliedDate"`
	Department  string    `json:"department"`
}

// DashboardStats are computed from the candidate's own applications
type DashboardStats struct {
	TotalApplications int `json:"totalApplications"`
	UnderReview       int `json:"underReview"`
	Selected          int `json:"selected"`
}

// CandidateDashboard is the candidate dashboard response
type CandidateDashboard struct {
	User         DashboardUser          `json:"user"`
	Applications []DashboardApplication `json:"applications"`
	Stats        DashboardStats         `json:"stats"`
}
