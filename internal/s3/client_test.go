package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type recordingAPI struct {
	create  *awss3.CreateBucketInput
	website *awss3.PutBucketWebsiteInput
	policy  *awss3.PutBucketPolicyInput
	put     *awss3.PutObjectInput
	body    string
	err     error
}

func (r *recordingAPI) CreateBucket(_ context.Context, in *awss3.CreateBucketInput, _ ...func(*awss3.Options)) (*awss3.CreateBucketOutput, error) {
	r.create = in
	return &awss3.CreateBucketOutput{}, r.err
}

func (r *recordingAPI) PutBucketWebsite(_ context.Context, in *awss3.PutBucketWebsiteInput, _ ...func(*awss3.Options)) (*awss3.PutBucketWebsiteOutput, error) {
	r.website = in
	return &awss3.PutBucketWebsiteOutput{}, r.err
}

func (r *recordingAPI) PutBucketPolicy(_ context.Context, in *awss3.PutBucketPolicyInput, _ ...func(*awss3.Options)) (*awss3.PutBucketPolicyOutput, error) {
	r.policy = in
	return &awss3.PutBucketPolicyOutput{}, r.err
}

func (r *recordingAPI) PutObject(_ context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	r.put = in
	b, _ := io.ReadAll(in.Body)
	r.body = string(b)
	return &awss3.PutObjectOutput{}, r.err
}

func TestNormalizeEndpoint(t *testing.T) {
	cases := []struct {
		in   string
		ssl  bool
		want string
	}{
		{"", true, ""},
		{"minio.local:9000", false, "http://minio.local:9000"},
		{"minio.local:9000", true, "https://minio.local:9000"},
		{"http://minio.local:9000", true, "http://minio.local:9000"},
		{"https://s3.amazonaws.com/", false, "https://s3.amazonaws.com"},
	}
	for _, c := range cases {
		if got := normalizeEndpoint(c.in, c.ssl); got != c.want {
			t.Fatalf("normalizeEndpoint(%q,%v)=%q want %q", c.in, c.ssl, got, c.want)
		}
	}
}

func TestForcePathStyle(t *testing.T) {
	if !forcePathStyle("minio") {
		t.Fatal("minio should be path-style")
	}
	if !forcePathStyle("generic") {
		t.Fatal("generic should be path-style")
	}
	if forcePathStyle("aws") || forcePathStyle("") {
		t.Fatal("aws should not force path-style")
	}
}

func TestCreateBucketLocationConstraint(t *testing.T) {
	api := &recordingAPI{}
	c := New(api)
	if err := c.CreateBucket(context.Background(), "site", "ap-south-1"); err != nil {
		t.Fatal(err)
	}
	if aws.ToString(api.create.Bucket) != "site" {
		t.Fatalf("bucket = %q", aws.ToString(api.create.Bucket))
	}
	if api.create.CreateBucketConfiguration == nil || api.create.CreateBucketConfiguration.LocationConstraint != "ap-south-1" {
		t.Fatalf("expected ap-south-1 constraint, got %#v", api.create.CreateBucketConfiguration)
	}
	if err := c.CreateBucket(context.Background(), "site", "us-east-1"); err != nil {
		t.Fatal(err)
	}
	if api.create.CreateBucketConfiguration != nil {
		t.Fatal("us-east-1 must not send a location constraint")
	}
}

func TestPutWebsiteAndPolicy(t *testing.T) {
	api := &recordingAPI{}
	c := New(api)
	if err := c.PutWebsite(context.Background(), "site", "index.html", "404.html"); err != nil {
		t.Fatal(err)
	}
	wc := api.website.WebsiteConfiguration
	if aws.ToString(wc.IndexDocument.Suffix) != "index.html" || aws.ToString(wc.ErrorDocument.Key) != "404.html" {
		t.Fatalf("unexpected website config %#v", wc)
	}
	if err := c.PutPolicy(context.Background(), "site", `{"Version":"2012-10-17"}`); err != nil {
		t.Fatal(err)
	}
	if aws.ToString(api.policy.Policy) != `{"Version":"2012-10-17"}` {
		t.Fatalf("policy = %q", aws.ToString(api.policy.Policy))
	}
}

func TestUpload(t *testing.T) {
	api := &recordingAPI{}
	c := New(api)
	if err := c.Upload(context.Background(), "site", "a/b.css", strings.NewReader("body{}"), 6, "text/css"); err != nil {
		t.Fatal(err)
	}
	if aws.ToString(api.put.Key) != "a/b.css" || aws.ToString(api.put.ContentType) != "text/css" {
		t.Fatalf("unexpected put input %#v", api.put)
	}
	if aws.ToInt64(api.put.ContentLength) != 6 || api.body != "body{}" {
		t.Fatalf("unexpected body %q len %d", api.body, aws.ToInt64(api.put.ContentLength))
	}
	if err := c.Upload(context.Background(), "site", "x", strings.NewReader(""), -1, "text/plain"); err != nil {
		t.Fatal(err)
	}
	if api.put.ContentLength != nil {
		t.Fatal("unknown size should leave ContentLength unset")
	}
}

func TestIsBucketOwned(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{&types.BucketAlreadyOwnedByYou{}, true},
		{fmt.Errorf("create: %w", &types.BucketAlreadyOwnedByYou{}), true},
		{&smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"}, true},
		{&types.BucketAlreadyExists{}, false},
		{&smithy.GenericAPIError{Code: "AccessDenied"}, false},
		{errors.New("boom"), false},
	}
	for _, c := range cases {
		if got := IsBucketOwned(c.err); got != c.want {
			t.Fatalf("IsBucketOwned(%v)=%v want %v", c.err, got, c.want)
		}
	}
}

func TestAPIMessage(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"})
	if got := APIMessage(err); got != "Access Denied" {
		t.Fatalf("APIMessage = %q", got)
	}
	if got := APIMessage(errors.New("plain")); got != "plain" {
		t.Fatalf("APIMessage = %q", got)
	}
}
