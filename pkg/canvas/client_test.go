package canvas

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		BaseURL: server.URL,
		Token:   "test-token",
		Timeout: 2 * time.Second,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	return client
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{Token: "token"})
	require.Error(t, err)

	_, err = New(Config{BaseURL: "canvas.example.edu"})
	require.Error(t, err)
}

func TestNormalizeBaseURL(t *testing.T) {
	cases := map[string]string{
		"canvas.example.edu":          "https://canvas.example.edu",
		"canvas.example.edu/":         "https://canvas.example.edu",
		"https://canvas.example.edu/": "https://canvas.example.edu",
		"http://localhost:3000":       "http://localhost:3000",
		" canvas.example.edu ":        "https://canvas.example.edu",
	}
	for raw, want := range cases {
		require.Equal(t, want, normalizeBaseURL(raw), "input %q", raw)
	}
}

func TestGetCourseSendsAuthAndDecodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/courses/42", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.Contains(t, r.URL.Query()["include[]"], "syllabus_body")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 42, "name": "Biology 101"}`))
	})

	course, err := client.GetCourse(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, int64(42), course.ID)
	require.Equal(t, "Biology 101", course.Name)
}

func TestGetStudentSubmissionsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/courses/42/students/submissions", r.URL.Path)
		require.Equal(t, []string{"self"}, r.URL.Query()["student_ids[]"])
		require.Contains(t, r.URL.Query()["include[]"], "assignment")

		w.Write([]byte(`[{"assignment_id": 1, "score": 88.5}]`))
	})

	submissions, err := client.GetStudentSubmissionsForCourse(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, submissions, 1)
	require.NotNil(t, submissions[0].Score)
	require.InDelta(t, 88.5, *submissions[0].Score, 0.0001)
}

func TestGetCourseClassifiesErrors(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		sentinel    error
		recoverable bool
	}{
		{"not found", http.StatusNotFound, ErrNotFound, true},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized, true},
		{"forbidden", http.StatusForbidden, ErrForbidden, true},
		{"server error", http.StatusBadGateway, ErrNetwork, true},
		{"unprocessable", http.StatusUnprocessableEntity, nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tc.status)
			})

			_, err := client.GetCourse(context.Background(), 42)
			require.Error(t, err)
			if tc.sentinel != nil {
				require.ErrorIs(t, err, tc.sentinel)
			}
			require.Equal(t, tc.recoverable, IsRecoverable(err))

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tc.status, apiErr.StatusCode)
			require.Equal(t, "nope", apiErr.Detail)
		})
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	client, err := New(Config{BaseURL: addr, Token: "token", Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = client.GetCourses(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNetwork)
	require.True(t, IsRecoverable(err))
}

func TestGetAssignmentGroupsDecodesWeights(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/courses/42/assignment_groups", r.URL.Path)
		w.Write([]byte(`[{"id": 10, "name": "Labs", "group_weight": 30}]`))
	})

	groups, err := client.GetAssignmentGroups(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, "Labs", groups[0].Name)
	require.InDelta(t, 30.0, groups[0].GroupWeight, 0.0001)
}
