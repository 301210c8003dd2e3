package ingest

import (
	"errors"
	"fmt"

	"catchup-server/internal/domain/entity"
)

// Sentinel errors for ingestion failures.
var (
	// ErrFetchFailed is matched by every *FetchError.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrParseStructure is matched by every *ParseStructureError.
	ErrParseStructure = errors.New("unrecognized document structure")

	// ErrRunInProgress is matched by every *RunInProgressError.
	ErrRunInProgress = errors.New("ingestion run in progress")
)

// RunInProgressError is returned by Job.Run when a run of the same source has
// not finished yet. Nothing was fetched or stored.
type RunInProgressError struct {
	Source entity.NewsSource
}

func (e *RunInProgressError) Error() string {
	return fmt.Sprintf("ingest %s: a run is already in progress", e.Source)
}

func (e *RunInProgressError) Unwrap() error { return ErrRunInProgress }

// FetchError reports a failed upstream request.
// StatusCode is set when the upstream answered with a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetchFailed}
	}
	return []error{ErrFetchFailed, e.Err}
}

// ParseStructureError reports an upstream document that cannot be parsed at all,
// as opposed to individual items that are skipped.
type ParseStructureError struct {
	Source string
	Reason string
	Err    error
}

func (e *ParseStructureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Source, e.Reason)
}

func (e *ParseStructureError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParseStructure}
	}
	return []error{ErrParseStructure, e.Err}
}

// Stage names the step of an ingestion run that failed.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageParse   Stage = "parse"
	StagePersist Stage = "persist"
)

// JobError is returned by Job.Run and Job.Collect for run-level failures.
// Err is a *FetchError, a *ParseStructureError or a *repository.PersistenceError.
type JobError struct {
	Source entity.NewsSource
	Stage  Stage
	Err    error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("ingest %s: %s: %v", e.Source, e.Stage, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}
