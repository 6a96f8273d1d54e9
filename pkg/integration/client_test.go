package integration_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-resume-backend/pkg/integration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchGitHubProjects(t *testing.T) {
	t.Run("Follows pagination until an empty page", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
			assert.Equal(t, "/user/repos", r.URL.Path)

			switch r.URL.Query().Get("page") {
			case "1":
				fmt.Fprint(w, `[
					{"name": "gateway", "description": "API gateway", "html_url": "https://github.com/u/gateway", "language": "Go", "created_at": "2023-01-15T00:00:00Z", "updated_at": "2024-06-01T00:00:00Z"},
					{"name": "dotfiles", "html_url": "https://github.com/u/dotfiles", "created_at": "2022-03-01T00:00:00Z", "updated_at": "2022-03-02T00:00:00Z"}
				]`)
			default:
				fmt.Fprint(w, `[]`)
			}
		}))
		defer srv.Close()

		c := integration.NewClient(2 * time.Second)
		c.GitHubBaseURL = srv.URL

		projects, err := c.FetchGitHubProjects(context.Background(), "gh-token")
		require.NoError(t, err)
		require.Len(t, projects, 2)

		assert.Equal(t, "gateway", projects[0].Title)
		assert.Equal(t, "https://github.com/u/gateway", projects[0].GithubURL)
		assert.Equal(t, []string{"Go"}, projects[0].Skills)
		assert.Equal(t, 2023, projects[0].StartDate.Year())
		assert.Empty(t, projects[1].Skills)
	})

	t.Run("Propagates non-2xx responses", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := integration.NewClient(2 * time.Second)
		c.GitHubBaseURL = srv.URL

		_, err := c.FetchGitHubProjects(context.Background(), "expired")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status 401")
	})
}

func TestFetchLinkedInExperience(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me":
			fmt.Fprint(w, `{"id": "abc123"}`)
		case "/me/positions":
			fmt.Fprint(w, `{"elements": [
				{"title": "Backend Engineer", "company": {"name": "Acme"}, "startDate": {"year": 2021, "month": 4}, "endDate": {"year": 2023, "month": 9}},
				{"title": "Staff Engineer", "company": {"name": "Beta"}, "startDate": {"year": 2023, "month": 10}}
			]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := integration.NewClient(2 * time.Second)
	c.LinkedInBaseURL = srv.URL

	experience, err := c.FetchLinkedInExperience(context.Background(), "li-token")
	require.NoError(t, err)
	require.Len(t, experience, 2)

	first := experience[0]
	assert.Equal(t, "Backend Engineer", first.Position)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, time.Date(2021, time.April, 1, 0, 0, 0, 0, time.UTC), first.StartDate)
	require.NotNil(t, first.EndDate)
	assert.False(t, first.Current)

	second := experience[1]
	assert.Nil(t, second.EndDate)
	assert.True(t, second.Current)
}

func TestFetchCourseraCertificates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/certificates.v1", r.URL.Path)
		fmt.Fprint(w, `{"elements": [
			{"name": "Machine Learning", "partnerName": "Stanford", "completedAt": "2024-02-10T00:00:00Z", "verifyUrl": "https://coursera.org/verify/XYZ", "verifyCode": "XYZ"},
			{"name": "Go Basics", "completedAt": "2023-08-01T00:00:00Z"}
		]}`)
	}))
	defer srv.Close()

	c := integration.NewClient(2 * time.Second)
	c.CourseraBaseURL = srv.URL

	certs, err := c.FetchCourseraCertificates(context.Background(), "co-token")
	require.NoError(t, err)
	require.Len(t, certs, 2)

	assert.Equal(t, "Stanford", certs[0].IssuingOrganization)
	assert.Equal(t, "XYZ", certs[0].CredentialID)
	// missing partner falls back to the platform name
	assert.Equal(t, "Coursera", certs[1].IssuingOrganization)
}
