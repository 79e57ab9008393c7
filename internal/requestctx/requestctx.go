// Package requestctx carries correlation ids through a context so log lines
// from HTTP requests and background job runs can be tied back together.
package requestctx

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	jobRunKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

// WithJobRun tags ctx with the job_runs row a background job is writing to.
func WithJobRun(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, jobRunKey, runID)
}

func GetJobRun(ctx context.Context) string {
	if value, ok := ctx.Value(jobRunKey).(string); ok {
		return value
	}
	return ""
}

// Correlation returns the request id, or "job:<run id>" inside a job run.
func Correlation(ctx context.Context) string {
	if id := GetRequestID(ctx); id != "" {
		return id
	}
	if run := GetJobRun(ctx); run != "" {
		return "job:" + run
	}
	return ""
}
