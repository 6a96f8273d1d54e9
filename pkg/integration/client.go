package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-resume-backend/internal/domain"
)

// Client is a stateless implementation of domain.IntegrationSource backed by
// the public platform APIs. Credentials travel with each call; the client
// holds no per-user state.
type Client struct {
	http *http.Client

	// Base URLs are fields so tests can point the client at a local server.
	GitHubBaseURL   string
	LinkedInBaseURL string
	CourseraBaseURL string
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		http:            &http.Client{Timeout: timeout},
		GitHubBaseURL:   "https://api.github.com",
		LinkedInBaseURL: "https://api.linkedin.com/v2",
		CourseraBaseURL: "https://api.coursera.org/api",
	}
}

const githubPageSize = 50

type githubRepo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	HTMLURL     string    `json:"html_url"`
	Language    string    `json:"language"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FetchGitHubProjects lists the token owner's repositories, following
// pagination until an empty page.
func (c *Client) FetchGitHubProjects(ctx context.Context, accessToken string) ([]domain.Project, error) {
	var projects []domain.Project
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/user/repos?page=%d&per_page=%d", c.GitHubBaseURL, page, githubPageSize)
		var repos []githubRepo
		if err := c.getJSON(ctx, url, accessToken, map[string]string{
			"Accept": "application/vnd.github.v3+json",
		}, &repos); err != nil {
			return nil, err
		}
		if len(repos) == 0 {
			return projects, nil
		}
		for _, repo := range repos {
			p := domain.Project{
				Title:       repo.Name,
				Description: repo.Description,
				ProjectURL:  repo.HTMLURL,
				GithubURL:   repo.HTMLURL,
				StartDate:   repo.CreatedAt,
			}
			updated := repo.UpdatedAt
			p.EndDate = &updated
			if repo.Language != "" {
				p.Skills = []string{repo.Language}
			}
			projects = append(projects, p)
		}
	}
}

type linkedinDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type linkedinPosition struct {
	Title   string `json:"title"`
	Company struct {
		Name string `json:"name"`
	} `json:"company"`
	StartDate *linkedinDate `json:"startDate"`
	EndDate   *linkedinDate `json:"endDate"`
}

// FetchLinkedInExperience maps the member's positions to experience entries.
func (c *Client) FetchLinkedInExperience(ctx context.Context, accessToken string) ([]domain.Experience, error) {
	headers := map[string]string{"X-Restli-Protocol-Version": "2.0.0"}

	// Profile call validates the token scope before positions are requested.
	var profile struct {
		ID string `json:"id"`
	}
	if err := c.getJSON(ctx, c.LinkedInBaseURL+"/me", accessToken, headers, &profile); err != nil {
		return nil, err
	}

	var positions struct {
		Elements []linkedinPosition `json:"elements"`
	}
	if err := c.getJSON(ctx, c.LinkedInBaseURL+"/me/positions", accessToken, headers, &positions); err != nil {
		return nil, err
	}

	experience := make([]domain.Experience, 0, len(positions.Elements))
	for _, pos := range positions.Elements {
		e := domain.Experience{
			Position:       pos.Title,
			Company:        pos.Company.Name,
			EmploymentType: domain.EmploymentFullTime,
		}
		if pos.StartDate != nil {
			e.StartDate = monthStart(*pos.StartDate)
		}
		if pos.EndDate != nil {
			end := monthStart(*pos.EndDate)
			e.EndDate = &end
		} else {
			e.Current = true
		}
		experience = append(experience, e)
	}
	return experience, nil
}

type courseraCertificate struct {
	Name        string    `json:"name"`
	Partner     string    `json:"partnerName"`
	CompletedAt time.Time `json:"completedAt"`
	VerifyURL   string    `json:"verifyUrl"`
	VerifyCode  string    `json:"verifyCode"`
}

// FetchCourseraCertificates lists the learner's course certificates.
func (c *Client) FetchCourseraCertificates(ctx context.Context, accessToken string) ([]domain.Certification, error) {
	var payload struct {
		Elements []courseraCertificate `json:"elements"`
	}
	if err := c.getJSON(ctx, c.CourseraBaseURL+"/certificates.v1", accessToken, nil, &payload); err != nil {
		return nil, err
	}

	certs := make([]domain.Certification, 0, len(payload.Elements))
	for _, element := range payload.Elements {
		issuer := element.Partner
		if issuer == "" {
			issuer = "Coursera"
		}
		certs = append(certs, domain.Certification{
			Name:                element.Name,
			IssuingOrganization: issuer,
			IssueDate:           element.CompletedAt,
			CredentialID:        element.VerifyCode,
			CredentialURL:       element.VerifyURL,
		})
	}
	return certs, nil
}

func (c *Client) getJSON(ctx context.Context, url, accessToken string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func monthStart(d linkedinDate) time.Time {
	month := d.Month
	if month == 0 {
		month = 1
	}
	return time.Date(d.Year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}
