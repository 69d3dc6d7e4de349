package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// ReportReader reads back the points written by the Influx metrics sink.
type ReportReader struct {
	org    string
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewReportReader creates a reader for the bucket. The server must be reachable.
func NewReportReader(url, org, bucket, token string) *ReportReader {
	c := influxdb2.NewClient(url, token)
	return &ReportReader{org: org, bucket: bucket, client: c, query: c.QueryAPI(org)}
}

// EnsureBucket creates the organisation and bucket when the container was
// not initialised with them.
func (r *ReportReader) EnsureBucket(ctx context.Context) error {
	org, err := r.client.OrganizationsAPI().FindOrganizationByName(ctx, r.org)
	if err != nil || org == nil {
		if org, err = r.client.OrganizationsAPI().CreateOrganizationWithName(ctx, r.org); err != nil {
			return fmt.Errorf("create org: %w", err)
		}
	}
	if b, err := r.client.BucketsAPI().FindBucketByName(ctx, r.bucket); err == nil && b != nil {
		return nil
	}
	if _, err := r.client.BucketsAPI().CreateBucketWithName(ctx, org, r.bucket); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// Values returns the values of one field of a measurement for a vehicle
// over the last hour, oldest first.
func (r *ReportReader) Values(ctx context.Context, measurement, field, vehicleID string) ([]any, error) {
	flux := fmt.Sprintf(`from(bucket:%q)
  |> range(start: -1h)
  |> filter(fn: (r) => r._measurement == %q and r._field == %q and r.vehicle_id == %q)
  |> sort(columns: ["_time"])`, r.bucket, measurement, field, vehicleID)
	res, err := r.query.Query(ctx, flux)
	if err != nil {
		return nil, err
	}
	defer res.Close()
	var out []any
	for res.Next() {
		out = append(out, res.Record().Value())
	}
	return out, res.Err()
}

// Close releases the underlying client resources.
func (r *ReportReader) Close() { r.client.Close() }
