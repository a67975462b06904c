package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	canvasDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "glide",
		Subsystem: "canvas",
		Name:      "request_duration_seconds",
		Help:      "Duration of Canvas API requests",
	}, []string{"endpoint"})

	canvasFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "glide",
		Subsystem: "canvas",
		Name:      "request_failures_total",
		Help:      "Number of failed Canvas API requests",
	}, []string{"endpoint", "class"})
)

// Config defines configuration options for the Canvas client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client talks to the Canvas LMS REST API on behalf of a single student
// token. All methods are safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	tracer  trace.Tracer
	logger  zerolog.Logger
}

// New builds a Canvas client from the provided configuration.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("canvas base url is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("canvas access token is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Client{
		baseURL: normalizeBaseURL(cfg.BaseURL),
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
		tracer:  otel.Tracer("github.com/useglide/glide/pkg/canvas"),
		logger:  cfg.Logger.With().Str("component", "canvas_client").Logger(),
	}, nil
}

func normalizeBaseURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}

// GetCourses lists the student's active courses.
func (c *Client) GetCourses(ctx context.Context) ([]Course, error) {
	query := url.Values{}
	query.Set("enrollment_state", "active")
	query.Add("include[]", "term")
	query.Add("include[]", "total_students")

	var courses []Course
	if err := c.get(ctx, "/api/v1/courses", query, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// GetCourse fetches detailed information for a single course, including
// its syllabus body.
func (c *Client) GetCourse(ctx context.Context, courseID int64) (Course, error) {
	query := url.Values{}
	query.Add("include[]", "term")
	query.Add("include[]", "syllabus_body")

	var course Course
	endpoint := fmt.Sprintf("/api/v1/courses/%d", courseID)
	if err := c.get(ctx, endpoint, query, &course); err != nil {
		return Course{}, err
	}
	return course, nil
}

// GetCourseGrades fetches a course with enrollment total scores attached,
// which is where Canvas publishes the student's current grade.
func (c *Client) GetCourseGrades(ctx context.Context, courseID int64) (Course, error) {
	query := url.Values{}
	query.Add("include[]", "total_scores")
	query.Add("include[]", "current_grading_period_scores")

	var course Course
	endpoint := fmt.Sprintf("/api/v1/courses/%d", courseID)
	if err := c.get(ctx, endpoint, query, &course); err != nil {
		return Course{}, err
	}
	return course, nil
}

// GetAssignments lists every assignment in a course.
func (c *Client) GetAssignments(ctx context.Context, courseID int64) ([]Assignment, error) {
	var assignments []Assignment
	endpoint := fmt.Sprintf("/api/v1/courses/%d/assignments", courseID)
	if err := c.get(ctx, endpoint, nil, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// GetAssignment fetches a single assignment.
func (c *Client) GetAssignment(ctx context.Context, courseID, assignmentID int64) (Assignment, error) {
	var assignment Assignment
	endpoint := fmt.Sprintf("/api/v1/courses/%d/assignments/%d", courseID, assignmentID)
	if err := c.get(ctx, endpoint, nil, &assignment); err != nil {
		return Assignment{}, err
	}
	return assignment, nil
}

// GetSubmissions lists every submission for an assignment, across the
// whole class.
func (c *Client) GetSubmissions(ctx context.Context, courseID, assignmentID int64) ([]Submission, error) {
	var submissions []Submission
	endpoint := fmt.Sprintf("/api/v1/courses/%d/assignments/%d/submissions", courseID, assignmentID)
	if err := c.get(ctx, endpoint, nil, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

// GetStudentSubmission fetches the authenticated student's submission for
// one assignment.
func (c *Client) GetStudentSubmission(ctx context.Context, courseID, assignmentID int64) (Submission, error) {
	var submission Submission
	endpoint := fmt.Sprintf("/api/v1/courses/%d/assignments/%d/submissions/self", courseID, assignmentID)
	if err := c.get(ctx, endpoint, nil, &submission); err != nil {
		return Submission{}, err
	}
	return submission, nil
}

// GetStudentSubmissionsForCourse lists all of the student's submissions
// in a course, with each submission's assignment embedded.
func (c *Client) GetStudentSubmissionsForCourse(ctx context.Context, courseID int64) ([]Submission, error) {
	query := url.Values{}
	query.Add("student_ids[]", "self")
	query.Add("include[]", "assignment")

	var submissions []Submission
	endpoint := fmt.Sprintf("/api/v1/courses/%d/students/submissions", courseID)
	if err := c.get(ctx, endpoint, query, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

// GetAssignmentGroups lists a course's weighted assignment groups.
func (c *Client) GetAssignmentGroups(ctx context.Context, courseID int64) ([]AssignmentGroup, error) {
	query := url.Values{}
	query.Add("include[]", "assignments")

	var groups []AssignmentGroup
	endpoint := fmt.Sprintf("/api/v1/courses/%d/assignment_groups", courseID)
	if err := c.get(ctx, endpoint, query, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (c *Client) get(parent context.Context, endpoint string, query url.Values, out interface{}) error {
	ctx, span := c.tracer.Start(parent, "canvas.get", trace.WithAttributes(
		attribute.String("endpoint", endpoint),
	))
	defer span.End()

	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("canvas: build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	canvasDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		canvasFailures.WithLabelValues(endpoint, "transport").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: %s: %v", ErrNetwork, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Detail:     strings.TrimSpace(string(body)),
		}
		canvasFailures.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, apiErr.Error())
		c.logger.Warn().Str("endpoint", endpoint).Int("status", resp.StatusCode).Msg("canvas request rejected")
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		canvasFailures.WithLabelValues(endpoint, "decode").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("canvas: decode %s response: %w", endpoint, err)
	}

	return nil
}
