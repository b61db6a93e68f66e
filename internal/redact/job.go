package redact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
)

// Job states reported by the service.
const (
	StatePending   = "pending"
	StateActive    = "active"
	StateCompleted = "completed"
	StateFailed    = "failed"
	StateCancelled = "cancelled"
)

// DefaultRegion is used when a job names no region.
const DefaultRegion = "germany"

// JobArgs configures what a job redacts.
type JobArgs struct {
	Region                     string
	Face                       bool
	LicensePlate               bool
	FaceDeterminationThreshold float64
	LPDeterminationThreshold   float64
}

func (a JobArgs) query() url.Values {
	region := a.Region
	if region == "" {
		region = DefaultRegion
	}
	q := url.Values{}
	q.Set("region", region)
	q.Set("face", strconv.FormatBool(a.Face))
	q.Set("license_plate", strconv.FormatBool(a.LicensePlate))
	q.Set("face_determination_threshold", strconv.FormatFloat(a.FaceDeterminationThreshold, 'f', -1, 64))
	q.Set("lp_determination_threshold", strconv.FormatFloat(a.LPDeterminationThreshold, 'f', -1, 64))
	return q
}

// JobStatus is the state of a job.
type JobStatus struct {
	OutputID string `json:"output_id"`
	State    string `json:"state"`
	Error    string `json:"error,omitempty"`
}

// Finished reports whether the job reached a terminal state.
func (s JobStatus) Finished() bool {
	return s.State != StatePending && s.State != StateActive
}

// Job is a job started on the service.
type Job struct {
	OutputID string
	client   *Client
}

// StartJob uploads the archive read from r as filename and starts a job.
// The multipart body is streamed from r while the request is sent.
func (c *Client) StartJob(ctx context.Context, r io.Reader, filename string, args JobArgs) (*Job, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		pw.CloseWithError(writeArchivePart(mw, r, filename))
	}()
	// The writer must not outlive the call: r belongs to the caller.
	defer func() {
		pr.Close()
		<-done
	}()

	endpoint := c.baseURL + jobsPath + "?" + args.query().Encode()
	resp, err := c.do(ctx, http.MethodPost, endpoint, pr, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	if err := expectOK(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var started struct {
		OutputID string `json:"output_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		return nil, fmt.Errorf("decode job response: %w", err)
	}
	if started.OutputID == "" {
		return nil, fmt.Errorf("service returned no output id for %s", filename)
	}

	ctxlog.FromContext(ctx).Debug("Redaction job started.", "output_id", started.OutputID, "archive", filename)
	return &Job{OutputID: started.OutputID, client: c}, nil
}

// writeArchivePart writes r as the "file" part of mw and closes mw.
func writeArchivePart(mw *multipart.Writer, r io.Reader, filename string) error {
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("read archive %s: %w", filename, err)
	}
	return mw.Close()
}

func (j *Job) url() string {
	return j.client.baseURL + jobsPath + "/" + url.PathEscape(j.OutputID)
}

// Status fetches the current state of the job.
func (j *Job) Status(ctx context.Context) (JobStatus, error) {
	resp, err := j.client.do(ctx, http.MethodGet, j.url()+"/status", nil, "")
	if err != nil {
		return JobStatus{}, err
	}
	if err := expectOK(resp); err != nil {
		return JobStatus{}, err
	}
	defer resp.Body.Close()

	var st JobStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return JobStatus{}, fmt.Errorf("decode job status: %w", err)
	}
	if st.OutputID == "" {
		st.OutputID = j.OutputID
	}
	return st, nil
}

// WaitUntilFinished polls the job until it reaches a terminal state.
func (j *Job) WaitUntilFinished(ctx context.Context) (JobStatus, error) {
	logger := ctxlog.FromContext(ctx)
	for {
		st, err := j.Status(ctx)
		if err != nil {
			return JobStatus{}, err
		}
		if st.Finished() {
			logger.Debug("Redaction job finished.", "output_id", j.OutputID, "state", st.State)
			return st, nil
		}

		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-time.After(j.client.pollInterval):
		}
	}
}

// Download writes the job result to path.
func (j *Job) Download(ctx context.Context, path string) (err error) {
	resp, err := j.client.do(ctx, http.MethodGet, j.url(), nil, "")
	if err != nil {
		return err
	}
	if err := expectOK(resp); err != nil {
		return err
	}
	defer resp.Body.Close()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("download result of job %s: %w", j.OutputID, err)
	}
	return nil
}

// JobFailedError reports a job that finished in a state other than
// completed.
type JobFailedError struct {
	OutputID string
	State    string
	Reason   string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("redaction job %s ended in state %s: %s", e.OutputID, e.State, e.Reason)
}

// RedactFile runs one job for the archive at src and stores the result at
// dst.
func (c *Client) RedactFile(ctx context.Context, src, dst string, args JobArgs) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	job, err := c.StartJob(ctx, f, filepath.Base(src), args)
	f.Close()
	if err != nil {
		return err
	}

	st, err := job.WaitUntilFinished(ctx)
	if err != nil {
		return err
	}
	if st.State != StateCompleted {
		return &JobFailedError{OutputID: job.OutputID, State: st.State, Reason: st.Error}
	}
	return job.Download(ctx, dst)
}
