// Package deploy builds a front-end project and publishes its output to an
// S3 bucket configured for static website hosting.
//
// The pipeline is strictly linear:
//
//	Start -> Built -> BucketEnsured -> WebsiteConfigured -> PolicyApplied -> Uploaded -> Done
//
// and any failing step moves it to Failed. Nothing is retried or rolled back.
package deploy

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/arencloud/sitedeploy/internal/config"
	"github.com/arencloud/sitedeploy/internal/logging"
	"github.com/arencloud/sitedeploy/internal/s3"
)

// Storage is the object-storage control and data plane used by the Deployer.
type Storage interface {
	CreateBucket(ctx context.Context, name, region string) error
	PutWebsite(ctx context.Context, name, indexDoc, errorDoc string) error
	PutPolicy(ctx context.Context, name, policy string) error
	Upload(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
}

var _ Storage = (*s3.Client)(nil)

// Builder produces the output directory.
type Builder interface {
	Build(ctx context.Context) error
}

// Recorder persists the outcome of a run.
type Recorder interface {
	Record(ctx context.Context, res *Result) error
}

// Stage is a point reached in the deploy pipeline.
type Stage string

const (
	StageStart             Stage = "start"
	StageBuilt             Stage = "built"
	StageBucketEnsured     Stage = "bucket_ensured"
	StageWebsiteConfigured Stage = "website_configured"
	StagePolicyApplied     Stage = "policy_applied"
	StageUploaded          Stage = "uploaded"
	StageDone              Stage = "done"
	StageFailed            Stage = "failed"
)

// step names the work done when leaving a stage
var step = map[Stage]string{
	StageStart:             "build",
	StageBuilt:             "ensure bucket",
	StageBucketEnsured:     "configure website",
	StageWebsiteConfigured: "apply public policy",
	StagePolicyApplied:     "upload",
	StageUploaded:          "finish",
}

// StageError reports which step failed. Stage is the last stage reached.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return step[e.Stage] + ": " + e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

// Target is the fixed configuration for one deploy.
type Target struct {
	Bucket        string
	Region        string
	IndexDocument string
	ErrorDocument string
	OutputDir     string
	SkipBuild     bool
}

// TargetFromConfig builds the Target described by cfg.
func TargetFromConfig(cfg *config.Config) Target {
	return Target{
		Bucket:        cfg.BucketName,
		Region:        cfg.Region,
		IndexDocument: cfg.IndexDocument,
		ErrorDocument: cfg.ErrorDocument,
		OutputDir:     cfg.DistPath(),
		SkipBuild:     cfg.SkipBuild,
	}
}

// Result is the outcome of one Run.
type Result struct {
	Bucket  string
	Region  string
	URL     string
	Stage   Stage
	Objects []UploadItem
	Bytes   int64
	Started time.Time
	Ended   time.Time
	Err     error
}

// Deployer runs the deploy pipeline for a single Target.
type Deployer struct {
	target   Target
	store    Storage
	builder  Builder
	recorder Recorder
	logger   logging.Logger
}

// New returns a Deployer; empty index and error documents default to index.html.
func New(target Target, store Storage, builder Builder, logger logging.Logger) *Deployer {
	if target.IndexDocument == "" {
		target.IndexDocument = "index.html"
	}
	if target.ErrorDocument == "" {
		target.ErrorDocument = "index.html"
	}
	return &Deployer{target: target, store: store, builder: builder, logger: logger}
}

// WithRecorder makes Run hand every result, successful or not, to r.
func (d *Deployer) WithRecorder(r Recorder) *Deployer {
	d.recorder = r
	return d
}

// WebsiteURL is the public website endpoint of bucket in region.
func WebsiteURL(bucket, region string) string {
	return fmt.Sprintf("http://%s.s3-website.%s.amazonaws.com", bucket, region)
}

func (d *Deployer) Build(ctx context.Context) error {
	if d.target.SkipBuild || d.builder == nil {
		d.logger.Info("build skipped")
		return nil
	}
	d.logger.Info("building the project")
	return d.builder.Build(ctx)
}

// EnsureBucket creates the bucket; a bucket already owned by the caller counts as success.
func (d *Deployer) EnsureBucket(ctx context.Context, name, region string) error {
	err := d.store.CreateBucket(ctx, name, region)
	switch {
	case err == nil:
		d.logger.Info("bucket created", "bucket", name, "region", region)
		return nil
	case s3.IsBucketOwned(err):
		d.logger.Info("bucket already exists", "bucket", name)
		return nil
	}
	d.logger.Error("error creating bucket", "bucket", name, "error", s3.APIMessage(err))
	return fmt.Errorf("create bucket %s: %w", name, err)
}

func (d *Deployer) ConfigureWebsite(ctx context.Context, name string) error {
	if err := d.store.PutWebsite(ctx, name, d.target.IndexDocument, d.target.ErrorDocument); err != nil {
		d.logger.Error("error configuring website", "bucket", name, "error", s3.APIMessage(err))
		return fmt.Errorf("configure website %s: %w", name, err)
	}
	d.logger.Info("website hosting enabled", "bucket", name, "index", d.target.IndexDocument, "error", d.target.ErrorDocument)
	return nil
}

func (d *Deployer) ApplyPublicPolicy(ctx context.Context, name string) error {
	policy, err := PublicReadPolicy(name)
	if err != nil {
		return fmt.Errorf("encode policy: %w", err)
	}
	if err := d.store.PutPolicy(ctx, name, policy); err != nil {
		d.logger.Error("error setting bucket policy", "bucket", name, "error", s3.APIMessage(err))
		return fmt.Errorf("set bucket policy %s: %w", name, err)
	}
	d.logger.Info("public read policy applied", "bucket", name)
	return nil
}

// Run executes the whole pipeline and returns the website URL in the result.
// On failure the returned error is a *StageError and the result's Stage is StageFailed.
func (d *Deployer) Run(ctx context.Context) (*Result, error) {
	t := d.target
	res := &Result{Bucket: t.Bucket, Region: t.Region, Stage: StageStart, Started: time.Now()}
	err := d.run(ctx, res)
	res.Ended = time.Now()
	if err != nil {
		err = &StageError{Stage: res.Stage, Err: err}
		res.Stage = StageFailed
		res.Err = err
		d.logger.Error("deployment failed", "bucket", t.Bucket, "error", err)
	}
	if d.recorder != nil {
		// an interrupted run must still be recorded
		if rerr := d.recorder.Record(context.WithoutCancel(ctx), res); rerr != nil {
			d.logger.Error("failed to record deployment", "error", rerr)
		}
	}
	return res, err
}

func (d *Deployer) run(ctx context.Context, res *Result) error {
	t := d.target
	if err := d.Build(ctx); err != nil {
		return err
	}
	res.Stage = StageBuilt
	if err := d.EnsureBucket(ctx, t.Bucket, t.Region); err != nil {
		return err
	}
	res.Stage = StageBucketEnsured
	if err := d.ConfigureWebsite(ctx, t.Bucket); err != nil {
		return err
	}
	res.Stage = StageWebsiteConfigured
	if err := d.ApplyPublicPolicy(ctx, t.Bucket); err != nil {
		return err
	}
	res.Stage = StagePolicyApplied
	items, err := d.UploadTree(ctx, t.Bucket, t.OutputDir)
	res.Objects = items
	for _, it := range items {
		res.Bytes += it.Size
	}
	if err != nil {
		return err
	}
	res.Stage = StageUploaded
	res.URL = WebsiteURL(t.Bucket, t.Region)
	res.Stage = StageDone
	d.logger.Info("website deployed", "url", res.URL, "objects", len(items), "bytes", res.Bytes)
	return nil
}
