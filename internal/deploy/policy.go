package deploy

import (
	"encoding/json"
)

const policyVersion = "2012-10-17"

type PolicyDocument struct {
	Version   string            `json:"Version"`
	Statement []PolicyStatement `json:"Statement"`
}

type PolicyStatement struct {
	Sid       string `json:"Sid,omitempty"`
	Effect    string `json:"Effect"`
	Principal any    `json:"Principal"`
	Action    any    `json:"Action"`
	Resource  any    `json:"Resource"`
}

// PublicReadPolicy returns the bucket policy allowing anonymous GetObject on every object in bucket.
func PublicReadPolicy(bucket string) (string, error) {
	doc := PolicyDocument{
		Version: policyVersion,
		Statement: []PolicyStatement{{
			Sid:       "PublicReadGetObject",
			Effect:    "Allow",
			Principal: "*",
			Action:    "s3:GetObject",
			Resource:  "arn:aws:s3:::" + bucket + "/*",
		}},
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
